package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPostMessage(t *testing.T) {
	t.Run("delivers payload with auth header", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/chat.postMessage", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "xoxb-test", discardLogger())
		err := client.PostMessage(context.Background(), "C123", "hello")

		require.NoError(t, err)
		assert.Equal(t, "Bearer xoxb-test", gotAuth)
		assert.Equal(t, "C123", gotBody["channel"])
		assert.Equal(t, "hello", gotBody["text"])
	})

	t.Run("api-level failure surfaces as error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "xoxb-test", discardLogger())
		err := client.PostMessage(context.Background(), "C123", "hello")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "channel_not_found")
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "xoxb-test", discardLogger())
		err := client.PostMessage(context.Background(), "C123", "hello")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, calls.Load(), int32(2))
	})
}

func TestHeartbeat(t *testing.T) {
	t.Run("empty home channel is a no-op", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:0", "xoxb-test", discardLogger())
		assert.NoError(t, client.Heartbeat(context.Background(), ""))
	})

	t.Run("posts to the configured channel", func(t *testing.T) {
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "xoxb-test", discardLogger())
		require.NoError(t, client.Heartbeat(context.Background(), "C-home"))
		assert.Equal(t, "C-home", gotBody["channel"])
	})
}
