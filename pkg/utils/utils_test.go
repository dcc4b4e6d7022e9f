// Test Type: Unit Test
// Description: Tests for path expansion and file checksums

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PATTERNS_DIR", "/srv/patterns")

	tests := []struct {
		input    string
		expected string
	}{
		{"~", home},
		{"~/patterns.yaml", filepath.Join(home, "patterns.yaml")},
		{"$PATTERNS_DIR/dates.yaml", "/srv/patterns/dates.yaml"},
		{"relative/file.json", "relative/file.json"},
		{"~other/file", "~other/file"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}

	assert.Equal(t, []string{home, "a"}, ExpandPaths([]string{"~", "a"}))
}

func TestFileChecksum(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("lorem"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("lorem"), 0o644))

	sumA, err := FileChecksum(a)
	require.NoError(t, err)
	assert.Len(t, sumA, 71)
	assert.Contains(t, sumA, "sha256:")

	sumB, err := FileChecksum(b)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB)

	require.NoError(t, os.WriteFile(b, []byte("ipsum"), 0o644))
	sumB, err = FileChecksum(b)
	require.NoError(t, err)
	assert.NotEqual(t, sumA, sumB)

	_, err = FileChecksum(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
