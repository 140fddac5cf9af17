package aimage_test

import (
	"testing"

	"github.com/sagarc03/aimage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentifier(t *testing.T) {
	seen := make(map[aimage.Identifier]struct{})
	for range 1000 {
		id := aimage.NewIdentifier()

		assert.Len(t, id.String(), aimage.IdentifierLength)
		assert.Regexp(t, `^[0-9A-F]{32}$`, id.String())

		parsed, err := aimage.ParseIdentifier(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)

		_, dup := seen[id]
		assert.False(t, dup, "duplicate identifier %s", id)
		seen[id] = struct{}{}
	}
}

func TestParseIdentifier(t *testing.T) {
	const canonical = aimage.Identifier("A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D")

	tests := []struct {
		name    string
		input   string
		want    aimage.Identifier
		wantErr bool
	}{
		{name: "canonical", input: "A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D", want: canonical},
		{name: "lower case", input: "a1b2c3d4e5f64a7b8c9d0e1f2a3b4c5d", want: canonical},
		{name: "hyphenated", input: "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d", want: canonical},
		{name: "mixed case hyphenated", input: "A1b2C3d4-E5f6-4A7b-8C9d-0E1f2A3b4C5d", want: canonical},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "A1B2C3D4", wantErr: true},
		{name: "too long", input: "A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D00", wantErr: true},
		{name: "non hex", input: "G1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D", wantErr: true},
		{name: "path traversal", input: "../../../../etc/passwd0000000000", wantErr: true},
		{name: "braces", input: "{a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := aimage.ParseIdentifier(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, aimage.ErrInvalidIdentifier)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifier_Hyphenated(t *testing.T) {
	id := aimage.Identifier("A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D")
	assert.Equal(t, "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d", id.Hyphenated())

	back, err := aimage.ParseIdentifier(id.Hyphenated())
	require.NoError(t, err)
	assert.Equal(t, id, back)
}
