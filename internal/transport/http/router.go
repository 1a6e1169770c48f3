// Package httptransport is the thin HTTP layer. Handlers delegate to the
// admission engine and the outbound client without embedding business
// logic, so transport concerns stay isolated.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	platformmw "volition/internal/platform/middleware"
	"volition/internal/slack"
)

// NewRouter wires all public endpoints. The Slack surface sits behind
// signature verification and a global inbound throttle; the operator
// surface sits behind bearer-token auth, and is absent when no validator
// is configured.
func NewRouter(
	h *Handler,
	verifier *slack.Verifier,
	limiter *rate.Limiter,
	adminValidator platformmw.TokenValidator,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(platformmw.RequestID)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Throttle(limiter, logger))
		r.Use(VerifySignature(verifier, logger))
		r.Post("/slack/events", h.HandleEvents)
		r.Post("/slack/command", h.HandleCommand)
	})

	if adminValidator != nil {
		r.Group(func(r chi.Router) {
			r.Use(platformmw.RequireAdmin(adminValidator, logger))
			r.Get("/admin/ledger", h.HandleLedger)
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
