// Package volition implements the intent admission engine and its bounded
// event ledger. The engine decides, per incoming chat instruction, whether
// to queue it; every accepted instruction is recorded so later calls can
// detect duplicates and enforce per-user cooldowns.
package volition

import "time"

// Clock supplies the current instant. It is injected so the engine is
// deterministic under test; production wiring uses the wall clock.
type Clock func() time.Time

// RejectReason classifies why an intent was refused admission.
type RejectReason string

const (
	ReasonUntrustedWorkspace RejectReason = "untrusted_workspace"
	ReasonDuplicate          RejectReason = "duplicate"
	ReasonCooldown           RejectReason = "cooldown"
)

// IntentRecord is one accepted intent. Records are constructed exactly once,
// at acceptance time, and never mutated afterwards.
type IntentRecord struct {
	UserID        string    `json:"user_id"`
	TeamID        string    `json:"team_id"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id"`
}

// IntentResult is the outcome of a single HandleIntent call. Memory is the
// ledger's most-recent-first snapshot taken after any append performed by
// the same call, so an acceptance shows its own record as the newest entry.
type IntentResult struct {
	Accepted bool
	Message  string
	Reason   RejectReason // empty when accepted
	Memory   []IntentRecord
}
