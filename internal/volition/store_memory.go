package volition

import "sync"

const (
	// DefaultCapacity bounds the ledger; one eviction per append beyond it.
	DefaultCapacity = 200

	// DefaultRecentLimit is the snapshot size rendered back to chat users.
	DefaultRecentLimit = 5
)

// MemoryStore keeps accepted intents in a fixed-capacity ring buffer.
// Append is O(1); overflow overwrites the oldest record in place, so the
// ledger never grows past its capacity.
type MemoryStore struct {
	mu      sync.RWMutex
	records []IntentRecord
	head    int // index of the oldest record
	size    int
}

// NewMemoryStore creates a store holding at most capacity records.
// A non-positive capacity selects DefaultCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{records: make([]IntentRecord, capacity)}
}

// Append adds record as the newest entry, evicting the oldest at capacity.
func (s *MemoryStore) Append(record IntentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[(s.head+s.size)%len(s.records)] = record
	if s.size < len(s.records) {
		s.size++
		return
	}
	s.head = (s.head + 1) % len(s.records)
}

// Recent returns up to limit records, newest first.
func (s *MemoryStore) Recent(limit int) []IntentRecord {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(limit, s.size)
	out := make([]IntentRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.at(s.size-1-i))
	}
	return out
}

// LastForUser scans from newest to oldest for the user's latest record.
func (s *MemoryStore) LastForUser(userID string) (IntentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := s.size - 1; i >= 0; i-- {
		if record := s.at(i); record.UserID == userID {
			return record, true
		}
	}
	return IntentRecord{}, false
}

// Size reports the number of records currently held.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// at returns the record at logical position i, where 0 is the oldest.
// Callers must hold s.mu.
func (s *MemoryStore) at(i int) IntentRecord {
	return s.records[(s.head+i)%len(s.records)]
}
