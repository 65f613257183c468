package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url with extra params", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with query", "youtu.be/a-B_c1D2e3F?si=xyz", "a-B_c1D2e3F"},
		{"longer token is truncated", "v=ABCDEFGHIJKLMNOP", "ABCDEFGHIJK"},
		{"embedded in text", "look at this: https://m.youtube.com/watch?v=___________ cool", "___________"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ExtractVideoID(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestExtractVideoID_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"not a url",
		"https://www.youtube.com/watch?v=short",
		"https://youtu.be/abc",
		"https://vimeo.com/123456789",
		"https://www.youtube.com/watch?v=dQw4w9WgX!Q",
	}

	for _, in := range inputs {
		id, err := ExtractVideoID(in)
		assert.ErrorIs(t, err, ErrInvalidURL, "input %q", in)
		assert.Empty(t, id)
	}
}

func TestIsVideoID(t *testing.T) {
	assert.True(t, IsVideoID("dQw4w9WgXcQ"))
	assert.True(t, IsVideoID("a-B_c1D2e3F"))
	assert.False(t, IsVideoID("abc"))
	assert.False(t, IsVideoID("dQw4w9WgXcQQ"))
	assert.False(t, IsVideoID("dQw4w9WgX.Q"))
}
