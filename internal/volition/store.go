package volition

// Store is the bounded ledger of accepted intents. The interface keeps the
// engine testable and allows swapping the backing container without
// rewiring admission logic.
//
// Store implementations must make each method safe for concurrent use, but
// they do not serialize read-then-write sequences; the engine owns that
// critical section.
type Store interface {
	// Append adds record as the newest entry, evicting the oldest entry
	// once capacity is reached. It never fails.
	Append(record IntentRecord)

	// Recent returns up to limit records, newest first. A non-positive
	// limit selects DefaultRecentLimit.
	Recent(limit int) []IntentRecord

	// LastForUser returns the most recently appended record for userID,
	// or false if the user has no record in the ledger.
	LastForUser(userID string) (IntentRecord, bool)

	// Size reports the number of records currently held.
	Size() int
}
