package aimage_test

import (
	"testing"

	"github.com/sagarc03/aimage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal valid magic numbers for content sniffing.
var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
)

func TestNewMediaTypeValidator(t *testing.T) {
	t.Run("default set", func(t *testing.T) {
		v, err := aimage.NewMediaTypeValidator(aimage.DefaultAllowedSubtypes)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"png", "jpg", "jpeg"}, v.Subtypes())
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		v, err := aimage.NewMediaTypeValidator([]string{" PNG ", "Gif"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"png", "gif"}, v.Subtypes())
	})

	t.Run("empty set", func(t *testing.T) {
		_, err := aimage.NewMediaTypeValidator(nil)
		assert.Error(t, err)
	})

	t.Run("blank entry", func(t *testing.T) {
		_, err := aimage.NewMediaTypeValidator([]string{"png", " "})
		assert.Error(t, err)
	})

	t.Run("full media type entry", func(t *testing.T) {
		_, err := aimage.NewMediaTypeValidator([]string{"image/png"})
		assert.Error(t, err)
	})
}

func TestMediaTypeValidator_IsAllowed(t *testing.T) {
	v, err := aimage.NewMediaTypeValidator(aimage.DefaultAllowedSubtypes)
	require.NoError(t, err)

	tests := []struct {
		declared string
		want     bool
	}{
		{"image/png", true},
		{"image/jpg", true},
		{"image/jpeg", true},
		{"IMAGE/PNG", true},
		{"image/png; charset=binary", true},
		{"image/gif", false},
		{"image/svg+xml", false},
		{"text/plain", false},
		{"application/octet-stream", false},
		{"png", false},
		{"image/", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			assert.Equal(t, tt.want, v.IsAllowed(tt.declared))
		})
	}
}

func TestMediaTypeValidator_IsAllowed_ConfiguredSet(t *testing.T) {
	v, err := aimage.NewMediaTypeValidator([]string{"gif", "webp"})
	require.NoError(t, err)

	assert.True(t, v.IsAllowed("image/gif"))
	assert.True(t, v.IsAllowed("image/webp"))
	assert.False(t, v.IsAllowed("image/png"))
}

func TestMediaTypeValidator_MatchesContent(t *testing.T) {
	v, err := aimage.NewMediaTypeValidator(aimage.DefaultAllowedSubtypes)
	require.NoError(t, err)

	assert.True(t, v.MatchesContent(pngHeader))
	assert.True(t, v.MatchesContent(jpegHeader))
	assert.False(t, v.MatchesContent(gifHeader))
	assert.False(t, v.MatchesContent([]byte("hello world")))

	t.Run("jpg only set accepts jpeg content", func(t *testing.T) {
		jpgOnly, err := aimage.NewMediaTypeValidator([]string{"jpg"})
		require.NoError(t, err)
		assert.True(t, jpgOnly.MatchesContent(jpegHeader))
		assert.False(t, jpgOnly.MatchesContent(pngHeader))
	})
}
