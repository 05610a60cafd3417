//nolint:nolintlint,revive // utils is a common and acceptable package name for utility functions.
package utils

import (
	"net/url"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsFileExist tests the IsFileExist function.
func TestIsFileExist(t *testing.T) {
	t.Parallel()

	// Create a temporary file.
	tempFile, err := os.CreateTemp(t.TempDir(), "test_file")
	require.NoError(t, err)

	tempFile.Close() //nolint:errcheck,gosec // Test cleanup, error is not critical.

	// Test existing file.
	exists, err := IsFileExist(tempFile.Name())
	require.NoError(t, err)
	assert.True(t, exists)

	// Directories are not files.
	exists, err = IsFileExist(t.TempDir())
	require.NoError(t, err)
	assert.False(t, exists)

	// Test non-existing file.
	exists, err = IsFileExist("/non/existing/file")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestIsTextContentType tests the IsTextContentType function.
func TestIsTextContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		expected    bool
	}{
		{
			name:        "text/plain",
			contentType: "text/plain",
			expected:    true,
		},
		{
			name:        "application/json with charset",
			contentType: "application/json; charset=UTF-8",
			expected:    true,
		},
		{
			name:        "form body",
			contentType: "application/x-www-form-urlencoded",
			expected:    true,
		},
		{
			name:        "image/jpeg",
			contentType: "image/jpeg",
			expected:    false,
		},
		{
			name:        "text with invalid charset",
			contentType: "text/plain; charset=invalid",
			expected:    false,
		},
		{
			name:        "malformed content type",
			contentType: ";;",
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := IsTextContentType(tt.contentType)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestRedactQuery tests the RedactQuery function.
func TestRedactQuery(t *testing.T) {
	t.Parallel()

	original, err := url.Parse("https://identitytoolkit.googleapis.com/v1/accounts:signUp?key=secret&alt=json")
	require.NoError(t, err)

	redacted := RedactQuery(original, "key", "missing")

	assert.Equal(t, Redacted(), redacted.Query().Get("key"))
	assert.Equal(t, "json", redacted.Query().Get("alt"))
	assert.False(t, redacted.Query().Has("missing"))
	// The original URL is untouched.
	assert.Equal(t, "secret", original.Query().Get("key"))
	assert.Nil(t, RedactQuery(nil, "key"))
}

// TestUnionUnique tests the UnionUnique function.
func TestUnionUnique(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		base     []string
		extra    []string
		expected []string
	}{
		{
			name:     "disjoint sets",
			base:     []string{"b"},
			extra:    []string{"a"},
			expected: []string{"b", "a"},
		},
		{
			name:     "overlapping sets",
			base:     []string{"a", "b"},
			extra:    []string{"b", "c"},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "duplicates in base",
			base:     []string{"a", "a"},
			extra:    nil,
			expected: []string{"a"},
		},
		{
			name:     "both empty",
			base:     nil,
			extra:    []string{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, UnionUnique(tt.base, tt.extra))
		})
	}
}

// TestMap tests the Map function.
func TestMap(t *testing.T) {
	t.Parallel()

	result := Map([]int{1, 2, 3}, strconv.Itoa)
	assert.Equal(t, []string{"1", "2", "3"}, result)
}
