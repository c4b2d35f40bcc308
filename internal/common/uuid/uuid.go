// Package uuid wraps github.com/google/uuid and generates time-ordered
// UUIDv7 identifiers by default.
package uuid

import (
	"bytes"

	"github.com/google/uuid"
)

// UUID represents a UUID, aliased from github.com/google/uuid.UUID
type UUID = uuid.UUID

// Nil is the zero UUID value.
var Nil = uuid.Nil

// NewRandom returns a new UUIDv7 and any error encountered during generation.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

// New returns a new UUIDv7. Panics if UUID generation fails.
func New() UUID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id
}

// Parse accepts the canonical 36 character form as well as the urn, braced
// and undashed variants understood by github.com/google/uuid.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// Compare orders UUIDs bytewise, the same way PostgreSQL orders the uuid type.
func Compare(a, b UUID) int {
	return bytes.Compare(a[:], b[:])
}
