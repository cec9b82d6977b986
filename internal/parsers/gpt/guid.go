package gpt

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// GUID is a GUID in its on-disk GPT form: the first three groups are stored
// little-endian, the last two big-endian.
type GUID [16]byte

// GUIDFromUUID converts a UUID in RFC 4122 byte order to its on-disk form.
func GUIDFromUUID(u uuid.UUID) GUID {
	return GUID{
		u[3], u[2], u[1], u[0],
		u[5], u[4],
		u[7], u[6],
		u[8], u[9], u[10], u[11], u[12], u[13], u[14], u[15],
	}
}

// ParseGUID parses the textual form of a GUID (case-insensitive, with or without dashes).
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, fmt.Errorf("%w: invalid GUID %q: %v", types.ErrFormat, s, err)
	}
	return GUIDFromUUID(u), nil
}

// NewRandomGUID returns a random (version 4) GUID.
func NewRandomGUID() GUID {
	return GUIDFromUUID(uuid.New())
}

// UUID converts the GUID back to RFC 4122 byte order.
func (g GUID) UUID() uuid.UUID {
	return uuid.UUID{
		g[3], g[2], g[1], g[0],
		g[5], g[4],
		g[7], g[6],
		g[8], g[9], g[10], g[11], g[12], g[13], g[14], g[15],
	}
}

// String returns the canonical lower-case 8-4-4-4-12 representation.
func (g GUID) String() string {
	return g.UUID().String()
}

// IsZero reports whether every byte is zero, as in unused partition slots.
func (g GUID) IsZero() bool {
	return g == GUID{}
}
