package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"volition/internal/platform/metrics"
	"volition/internal/slack"
	"volition/internal/volition"
	"volition/pkg/correlation"
)

// Poster delivers rendered responses back to the chat platform.
type Poster interface {
	PostMessage(ctx context.Context, channel, text string) error
}

// Handler wires the Slack surface to the admission engine.
type Handler struct {
	core    *volition.Core
	store   volition.Store
	poster  Poster
	metrics *metrics.Metrics
	logger  *slog.Logger

	// postTimeout bounds background deliveries after the HTTP ack.
	postTimeout time.Duration
}

func NewHandler(core *volition.Core, store volition.Store, poster Poster, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		core:        core,
		store:       store,
		poster:      poster,
		metrics:     m,
		logger:      logger,
		postTimeout: 15 * time.Second,
	}
}

// eventEnvelope is the subset of the Events API payload this service reads.
type eventEnvelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	TeamID    string `json:"team_id"`
	Event     struct {
		Type        string `json:"type"`
		ChannelType string `json:"channel_type"`
		Channel     string `json:"channel"`
		User        string `json:"user"`
		Team        string `json:"team"`
		Text        string `json:"text"`
	} `json:"event"`
	Authorizations []struct {
		UserID string `json:"user_id"`
	} `json:"authorizations"`
}

// HandleEvents processes Events API callbacks: the URL-verification
// handshake, app mentions, and direct messages. Slack expects a fast ack,
// so the rendered response is delivered after the 200 goes out.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	var envelope eventEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		http.Error(w, "malformed event payload", http.StatusBadRequest)
		return
	}

	switch envelope.Type {
	case "url_verification":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"challenge": envelope.Challenge})
		return
	case "event_callback":
		// Handled below.
	default:
		w.WriteHeader(http.StatusOK)
		return
	}

	botUserID := ""
	if len(envelope.Authorizations) > 0 {
		botUserID = envelope.Authorizations[0].UserID
	}

	event := envelope.Event
	switch event.Type {
	case "app_mention":
		// Always an instruction for us.
	case "message":
		if event.ChannelType != "im" || event.User == botUserID {
			w.WriteHeader(http.StatusOK)
			return
		}
	default:
		w.WriteHeader(http.StatusOK)
		return
	}
	if event.User == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	teamID := event.Team
	if teamID == "" {
		teamID = envelope.TeamID
	}
	text := slack.Sanitize(event.Text, botUserID)
	cid := correlation.New()

	result := h.core.HandleIntent(event.User, teamID, text, cid)
	h.observe(result)

	w.WriteHeader(http.StatusOK)
	h.deliver(event.Channel, slack.FormatResponse(result, cid), cid)
}

// HandleCommand processes the slash command's form-encoded payload and
// replies inline through the command response.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed command payload", http.StatusBadRequest)
		return
	}

	userID := r.PostFormValue("user_id")
	if userID == "" {
		w.WriteHeader(http.StatusOK)
		return
	}
	teamID := r.PostFormValue("team_id")
	text := slack.Sanitize(r.PostFormValue("text"), "")
	cid := correlation.New()

	result := h.core.HandleIntent(userID, teamID, text, cid)
	h.observe(result)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"response_type": "ephemeral",
		"text":          slack.FormatResponse(result, cid),
	})
}

// HandleLedger exposes the recent ledger to operators.
func (h *Handler) HandleLedger(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records := h.store.Recent(limit)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"count":   len(records),
		"records": records,
	})
}

func (h *Handler) observe(result volition.IntentResult) {
	if result.Accepted {
		h.metrics.IncrementAccepted()
		return
	}
	h.metrics.IncrementRejected(string(result.Reason))
}

// deliver posts the rendered response in the background. Delivery failures
// are logged and counted, never propagated back into engine state.
func (h *Handler) deliver(channel, text, cid string) {
	if channel == "" || h.poster == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.postTimeout)
		defer cancel()
		if err := h.poster.PostMessage(ctx, channel, text); err != nil {
			h.metrics.IncrementDeliveryFailure()
			h.logger.Warn("unable to deliver response",
				"error", err,
				"channel", channel,
				"correlation_id", cid,
			)
		}
	}()
}
