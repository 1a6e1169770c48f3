// Package correlation issues short opaque ids tying one inbound request to
// its rendered response and log lines.
package correlation

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// New returns an 8 character hex id. Uniqueness is best effort; the id is a
// tracing aid, never a key.
func New() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}
