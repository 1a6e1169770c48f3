package slack

import (
	"fmt"
	"strings"

	"volition/internal/volition"
)

// FormatResponse renders an admission result for chat delivery: a status
// marker, the engine's message, the correlation id, and a bulleted memory
// block when the ledger snapshot is non-empty.
func FormatResponse(result volition.IntentResult, correlationID string) string {
	status := "✅"
	if !result.Accepted {
		status = "⚠️"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n• correlation_id=%s", status, result.Message, correlationID)

	if len(result.Memory) > 0 {
		b.WriteString("\nRecent intents:")
		for _, record := range result.Memory {
			fmt.Fprintf(&b, "\n• %s %s: %s",
				record.Timestamp.Local().Format("15:04:05"),
				record.UserID,
				record.Text,
			)
		}
	}
	return b.String()
}
