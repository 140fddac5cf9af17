package aimage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IdentifierLength is the length of a canonical identifier.
const IdentifierLength = 32

// Identifier is an image identifier in canonical form: 32 upper-case
// hexadecimal characters without separators.
type Identifier string

// IdentifierGenerator produces new identifiers. It must be safe for concurrent use.
type IdentifierGenerator func() Identifier

// NewIdentifier returns a random 128-bit identifier in canonical form.
func NewIdentifier() Identifier {
	id := uuid.New()
	return Identifier(strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")))
}

// ParseIdentifier normalizes s to canonical form by stripping hyphens and
// upper-casing it. Returns ErrInvalidIdentifier if the result is not exactly
// 32 hexadecimal characters.
func ParseIdentifier(s string) (Identifier, error) {
	canonical := strings.ToUpper(strings.ReplaceAll(s, "-", ""))

	if len(canonical) != IdentifierLength {
		return "", fmt.Errorf("parse identifier %q: %w", s, ErrInvalidIdentifier)
	}

	for i := 0; i < len(canonical); i++ {
		if !isUpperHex(canonical[i]) {
			return "", fmt.Errorf("parse identifier %q: %w", s, ErrInvalidIdentifier)
		}
	}

	return Identifier(canonical), nil
}

// String returns the canonical form.
func (id Identifier) String() string {
	return string(id)
}

// Hyphenated returns the identifier in 8-4-4-4-12 UUID layout, lower-cased.
func (id Identifier) Hyphenated() string {
	s := strings.ToLower(string(id))
	if len(s) != IdentifierLength {
		return s
	}
	return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:32]
}

func isUpperHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')
}
