package slack

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"volition/internal/volition"
)

func TestFormatResponse(t *testing.T) {
	t.Run("accepted with memory", func(t *testing.T) {
		ts := time.Date(2025, 6, 1, 9, 30, 15, 0, time.UTC)
		result := volition.IntentResult{
			Accepted: true,
			Message:  "Intent acknowledged.",
			Memory: []volition.IntentRecord{
				{UserID: "U1", Text: "deploy", Timestamp: ts},
			},
		}

		out := FormatResponse(result, "abcd1234")

		assert.True(t, strings.HasPrefix(out, "✅ Intent acknowledged."))
		assert.Contains(t, out, "correlation_id=abcd1234")
		assert.Contains(t, out, "Recent intents:")
		assert.Contains(t, out, "U1: deploy")
		assert.Contains(t, out, ts.Local().Format("15:04:05"))
	})

	t.Run("rejected without memory omits the block", func(t *testing.T) {
		result := volition.IntentResult{
			Accepted: false,
			Message:  "I already have that request on my queue.",
		}

		out := FormatResponse(result, "abcd1234")

		assert.True(t, strings.HasPrefix(out, "⚠️"))
		assert.NotContains(t, out, "Recent intents:")
	})
}
