// Test Type: Integration Test
// Description: Tests for the spanruler commands run end to end against
// pattern files in testdata

package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/output"
	"github.com/arthur-debert/spanruler/pkg/patterns"
	"github.com/arthur-debert/spanruler/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patternsFile = "testdata/patterns.yaml"

func isolate(t *testing.T) string {
	t.Helper()
	return testutil.NewTestEnvironment(t).Root
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd, _ := newRoot()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMatch_JSON(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "match", "-p", patternsFile, "-f", "json",
		"My birthday is 21.04.1986 in San Francisco")
	require.NoError(t, err)

	var results []output.ResultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	spans := results[0].Spans
	require.Len(t, spans, 2)

	assert.Equal(t, "DATE", spans[0].Label)
	assert.Equal(t, "21.04.1986", spans[0].Text)
	assert.Equal(t, "1986-04-21T00:00:00Z", spans[0].Ext["date"])

	assert.Equal(t, "GPE", spans[1].Label)
	assert.Equal(t, "sf", spans[1].ID)
	assert.Equal(t, "San Francisco", spans[1].Text)
}

func TestMatch_LinesFromStdin(t *testing.T) {
	isolate(t)
	stdin := "lorem\n\nlorem ipsum dolor sit amet consectetur\nwelcome to San Francisco\n"
	out, err := run(t, stdin, "match", "-p", patternsFile, "--lines", "--no-color")
	require.NoError(t, err)

	// The long line is vetoed by no_match_on_large_doc.
	assert.Contains(t, out, "lorem[LOREM]")
	assert.NotContains(t, out, "lorem[LOREM] ipsum")
	assert.Contains(t, out, "welcome to San Francisco[GPE]")
	assert.Contains(t, out, "no matches")
}

func TestMatch_InputFiles(t *testing.T) {
	dir := isolate(t)
	input := testutil.CreateFile(t, dir, "notes.txt", "Born 21.04.1986\n")

	out, err := run(t, "", "match", "-p", patternsFile, "-i", input, "-f", "xml")
	require.NoError(t, err)
	assert.Contains(t, out, `source="`+input+`"`)
	assert.Contains(t, out, `<span label="DATE">21.04.1986</span>`)
}

func TestMatch_SpansKeyOverride(t *testing.T) {
	isolate(t)
	t.Setenv("SPANRULER_RULER__SPANS_KEY", "places")
	out, err := run(t, "", "match", "-p", patternsFile, "-f", "json", "San Francisco")
	require.NoError(t, err)

	var results []output.ResultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results[0].Spans, 1)
}

func TestMatch_Errors(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "match", "some text")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = run(t, "", "match", "-p", patternsFile, "--watch")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = run(t, "", "match", "-p", "testdata/missing.yaml", "text")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatternsLoad))

	_, err = run(t, "", "match", "-p", patternsFile, "-f", "csv", "text")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))

	_, err = run(t, "", "match", "-p", patternsFile, "--set", "nokey", "text")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestPatternsValidate(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "patterns", "validate", patternsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "3 patterns in testdata/patterns.yaml are valid")

	_, err = run(t, "", "patterns", "validate", "testdata/unknown_callback.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCallbackNotFound))
	assert.Equal(t, "testdata/unknown_callback.yaml", errors.GetErrorDetails(err)["path"])
}

func TestPatternsList(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "patterns", "list", patternsFile, "-f", "json")
	require.NoError(t, err)

	var table struct {
		Rows []map[string]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &table))
	require.Len(t, table.Rows, 3)
	assert.Equal(t, `"21.04.1986"`, table.Rows[0]["PATTERN"])
	assert.Equal(t, "to_datetime.v1(%d.%m.%Y)", table.Rows[0]["ON_MATCH"])
	assert.Equal(t, "tokens", table.Rows[1]["KIND"])
	assert.Equal(t, "no_match_on_large_doc.v1(max_size=5)", table.Rows[2]["ON_MATCH"])
}

func TestPatternsConvert(t *testing.T) {
	dir := isolate(t)
	dst := filepath.Join(dir, "patterns.toml")

	out, err := run(t, "", "patterns", "convert", patternsFile, dst)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 3 patterns")

	pats, err := patterns.Load(dst)
	require.NoError(t, err)
	require.Len(t, pats, 3)
	assert.Equal(t, "sf", pats[1].ID)
}

func TestInfoCommands(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "callbacks")
	require.NoError(t, err)
	assert.Contains(t, out, "to_datetime.v1")
	assert.Contains(t, out, "split_tokens.v1")

	out, err = run(t, "", "filters", "-f", "xml")
	require.NoError(t, err)
	assert.Contains(t, out, "first_longest")
}

func TestConfigCommands(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "config", "show", "--set", "ruler.spans_key=dates")
	require.NoError(t, err)
	assert.Contains(t, out, "[ruler]")
	assert.Contains(t, out, "dates")

	out, err = run(t, "", "config", "defaults")
	require.NoError(t, err)
	assert.Contains(t, out, `name = "second_opinion_ruler"`)

	out, err = run(t, "", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("spanruler", "config.toml"))
}

func TestHelpTopics(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "help", "topics")
	require.NoError(t, err)
	for _, topic := range []string{"patterns", "callbacks", "filters", "config", "--format"} {
		assert.Contains(t, out, topic)
	}

	out, err = run(t, "", "help", "filters")
	require.NoError(t, err)
	assert.Contains(t, out, "prioritize_existing")
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "spanruler version dev")
}

func TestExecute_ExitCode(t *testing.T) {
	isolate(t)
	assert.Equal(t, 0, Execute([]string{"version"}))
	assert.Equal(t, 1, Execute([]string{"match"}))
}

func TestSplitLines(t *testing.T) {
	docs := splitLines([]document{
		{source: "a.txt", text: "one\r\n\ntwo"},
		{text: "three"},
	})
	assert.Equal(t, []document{
		{source: "a.txt:1", text: "one"},
		{source: "a.txt:3", text: "two"},
		{source: "1", text: "three"},
	}, docs)
}
