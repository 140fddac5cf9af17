package aimage

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultAllowedSubtypes is the allow-set used when none is configured.
var DefaultAllowedSubtypes = []string{"png", "jpg", "jpeg"}

// MediaTypeValidator decides whether a declared media type may be stored.
// Only "image/<subtype>" with a subtype from the allow-set is accepted.
type MediaTypeValidator struct {
	allowed map[string]struct{}
}

// NewMediaTypeValidator creates a validator for the given image subtypes.
// Subtypes are matched case-insensitively.
func NewMediaTypeValidator(subtypes []string) (*MediaTypeValidator, error) {
	if len(subtypes) == 0 {
		return nil, errors.New("new media type validator: allow-set cannot be empty")
	}

	allowed := make(map[string]struct{}, len(subtypes))
	for _, s := range subtypes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || strings.Contains(s, "/") {
			return nil, fmt.Errorf("new media type validator: invalid subtype %q", s)
		}
		allowed[s] = struct{}{}
	}

	return &MediaTypeValidator{allowed: allowed}, nil
}

// IsAllowed reports whether declared is an allowed image media type.
// Parameters such as "; charset=utf-8" are ignored. Malformed values are rejected.
func (v *MediaTypeValidator) IsAllowed(declared string) bool {
	if declared == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}

	typ, subtype, ok := strings.Cut(mediaType, "/")
	if !ok || typ != "image" || subtype == "" {
		return false
	}

	_, found := v.allowed[subtype]
	return found
}

// MatchesContent sniffs the payload and reports whether its detected type is an
// allowed image type. jpg and jpeg are treated as the same subtype.
func (v *MediaTypeValidator) MatchesContent(content []byte) bool {
	detected := mimetype.Detect(content)

	typ, subtype, ok := strings.Cut(detected.String(), "/")
	if !ok || typ != "image" {
		return false
	}

	if _, found := v.allowed[subtype]; found {
		return true
	}

	if subtype == "jpeg" {
		_, found := v.allowed["jpg"]
		return found
	}

	return false
}

// Subtypes returns the allow-set in no particular order.
func (v *MediaTypeValidator) Subtypes() []string {
	out := make([]string, 0, len(v.allowed))
	for s := range v.allowed {
		out = append(out, s)
	}
	return out
}
