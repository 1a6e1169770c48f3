package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
)

// Client posts messages through the Slack Web API. Deliveries are wrapped
// in a retry policy and a circuit breaker; a failed delivery is the
// caller's to log and must never feed back into admission state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "slack-api",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		token:      token,
		breaker:    breaker,
		logger:     logger,
	}
}

// PostMessage delivers text to a channel, retrying transient failures.
func (c *Client) PostMessage(ctx context.Context, channel, text string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(3),
		)
		return nil, r.Do(func() error {
			callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return c.post(callCtx, channel, text)
		})
	})
	return err
}

// Heartbeat announces the service in its home channel. Best effort: the
// caller logs and moves on.
func (c *Client) Heartbeat(ctx context.Context, channel string) error {
	if channel == "" {
		return nil
	}
	return c.PostMessage(ctx, channel, "Reporting for duty. Mention me or send a DM to queue an instruction.")
}

func (c *Client) post(ctx context.Context, channel, text string) error {
	payload, err := json.Marshal(map[string]string{
		"channel": channel,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal chat.postMessage payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build chat.postMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post chat message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat.postMessage status %d", resp.StatusCode)
	}

	// Slack reports API-level failures inside a 200 response.
	var apiResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read chat.postMessage response: %w", err)
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("decode chat.postMessage response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("chat.postMessage failed: %s", apiResp.Error)
	}
	return nil
}
