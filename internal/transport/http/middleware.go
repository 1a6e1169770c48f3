package httptransport

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	platformmw "volition/internal/platform/middleware"
	"volition/internal/slack"
)

// maxBodyBytes caps inbound payloads; Slack events are small.
const maxBodyBytes = 1 << 20

// Throttle applies a process-wide inbound rate gate ahead of signature
// checks so a flood is shed before any crypto work.
func Throttle(limiter *rate.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				logger.WarnContext(r.Context(), "inbound throttle tripped",
					"request_id", platformmw.GetRequestID(r.Context()),
				)
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// VerifySignature authenticates inbound Slack requests. The body is read
// once for the HMAC check and replayed for the handler.
func VerifySignature(verifier *slack.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			timestamp := r.Header.Get("X-Slack-Request-Timestamp")
			signature := r.Header.Get("X-Slack-Signature")
			if err := verifier.Verify(timestamp, signature, body); err != nil {
				logger.WarnContext(r.Context(), "rejected unsigned request",
					"error", err,
					"request_id", platformmw.GetRequestID(r.Context()),
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
