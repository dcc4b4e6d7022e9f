// Test Type: Unit Test
// Description: Tests for loading and saving pattern files

package patterns_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/patterns"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkFixture(t *testing.T, pats []types.Pattern) {
	t.Helper()
	require.Len(t, pats, 3)

	text, ok := pats[0].Pattern.Phrase()
	require.True(t, ok)
	assert.Equal(t, "21.04.1986", text)
	assert.Equal(t, "DATE", pats[0].Label)
	require.NotNil(t, pats[0].OnMatch)
	assert.Equal(t, "to_datetime.v1", pats[0].OnMatch.ID)
	assert.Equal(t, []any{"%d.%m.%Y"}, pats[0].OnMatch.Args)

	specs, ok := pats[1].Pattern.Tokens()
	require.True(t, ok)
	require.Len(t, specs, 2)
	assert.Equal(t, "san", specs[0]["LOWER"])
	assert.Equal(t, "sf", pats[1].ID)
	assert.Nil(t, pats[1].OnMatch)

	require.NotNil(t, pats[2].OnMatch)
	assert.EqualValues(t, 5, pats[2].OnMatch.Kwargs["max_size"])
}

func TestLoad(t *testing.T) {
	for _, name := range []string{"patterns.yaml", "patterns.toml", "patterns.jsonl", "patterns.json"} {
		t.Run(name, func(t *testing.T) {
			pats, err := patterns.Load(filepath.Join("testdata", name))
			require.NoError(t, err)
			checkFixture(t, pats)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("unsupported_extension", func(t *testing.T) {
		_, err := patterns.Load(write("p.txt", ""))
		assert.True(t, errors.IsErrorCode(err, errors.ErrPatternsLoad))
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := patterns.Load(filepath.Join(dir, "nope.yaml"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrPatternsLoad))
	})

	t.Run("malformed_yaml", func(t *testing.T) {
		_, err := patterns.Load(write("bad.yaml", "- label: [unclosed"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrPatternsParse))
	})

	t.Run("malformed_jsonl_line", func(t *testing.T) {
		_, err := patterns.Load(write("bad.jsonl", "{\"label\": \"A\", \"pattern\": \"a\"}\n{oops}\n"))
		require.True(t, errors.IsErrorCode(err, errors.ErrPatternsParse))
		assert.Equal(t, 2, errors.GetErrorDetails(err)["line"])
	})

	t.Run("pattern_neither_variant", func(t *testing.T) {
		_, err := patterns.Load(write("bad.json", `[{"label": "A", "pattern": 42}]`))
		require.True(t, errors.IsErrorCode(err, errors.ErrInvalidPattern))
		assert.Equal(t, 0, errors.GetErrorDetails(err)["index"])
	})

	t.Run("missing_pattern", func(t *testing.T) {
		_, err := patterns.Load(write("missing.yaml", "- label: A\n"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPattern))
	})

	t.Run("token_not_a_map", func(t *testing.T) {
		_, err := patterns.Load(write("list.yaml", "- label: A\n  pattern: [a, b]\n"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPattern))
	})

	t.Run("on_match_without_id", func(t *testing.T) {
		_, err := patterns.Load(write("noid.yaml", "- label: A\n  pattern: a\n  on_match:\n    args: [1]\n"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPattern))
	})
}

func TestSaveLoad(t *testing.T) {
	source, err := patterns.Load(filepath.Join("testdata", "patterns.yaml"))
	require.NoError(t, err)

	for _, format := range patterns.Formats {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out."+string(format))
			require.NoError(t, patterns.Save(path, source))

			loaded, err := patterns.Load(path)
			require.NoError(t, err)
			checkFixture(t, loaded)
		})
	}

	t.Run("invalid_pattern_not_written", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.yaml")
		err := patterns.Save(path, []types.Pattern{{Label: "X"}})
		assert.True(t, errors.IsErrorCode(err, errors.ErrPatternsWrite))
		assert.NoFileExists(t, path)
	})
}
