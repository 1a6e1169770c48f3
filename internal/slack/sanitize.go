package slack

import "strings"

// Sanitize strips the bot's own mention markup from a message and trims
// surrounding whitespace, leaving the bare instruction text.
func Sanitize(raw, botUserID string) string {
	if raw == "" {
		return ""
	}
	if botUserID != "" {
		raw = strings.ReplaceAll(raw, "<@"+botUserID+">", "")
	}
	return strings.TrimSpace(raw)
}
