// Package slack contains the platform-facing glue: request signature
// verification, mention sanitization, response rendering, and the outbound
// Web API client. Nothing here influences admission decisions.
package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const signatureVersion = "v0"

// maxSkew bounds how old a signed request may be before it is treated as a
// replay.
const maxSkew = 5 * time.Minute

var (
	ErrStaleTimestamp    = errors.New("signature timestamp outside allowed skew")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Verifier checks Slack's v0 request signatures: HMAC-SHA256 of
// "v0:<timestamp>:<body>" under the app's signing secret.
type Verifier struct {
	secret []byte
	clock  func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithVerifierClock injects a deterministic clock for tests.
func WithVerifierClock(clock func() time.Time) VerifierOption {
	return func(v *Verifier) { v.clock = clock }
}

func NewVerifier(secret string, opts ...VerifierOption) *Verifier {
	v := &Verifier{secret: []byte(secret), clock: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the signature headers against the raw request body.
func (v *Verifier) Verify(timestamp, signature string, body []byte) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("parse signature timestamp: %w", err)
	}
	if skew := v.clock().Sub(time.Unix(ts, 0)); skew > maxSkew || skew < -maxSkew {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%s:%s:", signatureVersion, timestamp)
	mac.Write(body)
	expected := signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// Sign computes the signature for a timestamp and body. Exposed for tests
// and local tooling that forge inbound requests.
func (v *Verifier) Sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%s:%s:", signatureVersion, timestamp)
	mac.Write(body)
	return signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))
}
