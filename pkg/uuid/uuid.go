// Package uuid provides time-ordered identifiers for transcript rows.
// UUID v7 sorts by creation time, which keeps SQLite index inserts append-only.
package uuid

import (
	guuid "github.com/google/uuid"
)

// UUID represents a UUID v7 identifier.
type UUID = guuid.UUID

// NewV7 generates a new UUID v7. It falls back to a random v4 if the
// system entropy source fails.
func NewV7() UUID {
	u, err := guuid.NewV7()
	if err != nil {
		return guuid.New()
	}
	return u
}

// NewString returns NewV7 in canonical string form.
func NewString() string {
	return NewV7().String()
}

// Parse validates s as a canonical UUID string.
func Parse(s string) (UUID, error) {
	return guuid.Parse(s)
}
