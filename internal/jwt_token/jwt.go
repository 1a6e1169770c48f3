// Package jwttoken issues and validates the bearer tokens that guard the
// operator surface. Tokens are HS256 signed with a shared key from config.
package jwttoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "volition"

// Service handles token creation and validation.
type Service struct {
	signingKey []byte
}

func New(signingKey string) *Service {
	return &Service{signingKey: []byte(signingKey)}
}

// GenerateToken mints an operator token for subject valid for expiresIn.
func (s *Service) GenerateToken(subject string, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		ID:        uuid.NewString(),
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken verifies signature, expiry, and issuer.
func (s *Service) ValidateToken(tokenString string) error {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("token has expired")
		}
		return fmt.Errorf("invalid token")
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}
