// Test Type: Unit Test
// Description: Internal tests for key derivation, the zero-width and
// unknown-key guards, and deduplication

package rules

import (
	"testing"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/matchers"
	"github.com/arthur-debert/spanruler/pkg/tokenizer"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMatcher returns canned raw matches and accepts every pattern.
type fakeMatcher struct {
	raw []matchers.RawMatch
}

func (f *fakeMatcher) Validate([]types.TokenSpec) error              { return nil }
func (f *fakeMatcher) Add(types.MatchKey, [][]types.TokenSpec) error { return nil }
func (f *fakeMatcher) Clear()                                        { f.raw = nil }
func (f *fakeMatcher) Match(*types.Doc) []matchers.RawMatch          { return f.raw }

type fakePhrases struct {
	raw []matchers.RawMatch
}

func (f *fakePhrases) Add(types.MatchKey, []*types.Doc) error { return nil }
func (f *fakePhrases) Clear()                                 { f.raw = nil }
func (f *fakePhrases) Match(*types.Doc) []matchers.RawMatch   { return f.raw }

func rulerWithFakes(t *testing.T, tokens, phrases []matchers.RawMatch) *Ruler {
	t.Helper()
	r, err := New(nil)
	require.NoError(t, err)
	r.tokens = &fakeMatcher{}
	r.phrases = &fakePhrases{}
	require.NoError(t, r.AddPatterns([]types.Pattern{
		{Label: "A", Pattern: types.Tokens(types.TokenSpec{"ORTH": "a"})},
	}))
	r.tokens.(*fakeMatcher).raw = tokens
	r.phrases.(*fakePhrases).raw = phrases
	return r
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("DATE", "", ""), Key("DATE", "", ""))
	assert.NotEqual(t, Key("DATE", "", ""), Key("DATE", "", "to_datetime.v1"))
	assert.NotEqual(t, Key("DATE", "x", ""), Key("DATE", "", "x"))
	assert.NotEqual(t, Key("ab", "c", ""), Key("a", "bc", ""), "fields are length prefixed")
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	onMatch := &types.OnMatch{ID: "cb", Args: []any{1}}
	k1 := reg.Register("L", "id", onMatch)
	onMatch.Args = []any{99}

	rule, err := reg.Resolve(k1)
	require.NoError(t, err)
	assert.Equal(t, []any{1}, rule.OnMatch.Args, "registry keeps its own copy")

	k2 := reg.Register("L", "id", &types.OnMatch{ID: "cb", Args: []any{2}})
	assert.Equal(t, k1, k2)
	assert.Equal(t, 1, reg.Len())
	rule, _ = reg.Resolve(k1)
	assert.Equal(t, []any{2}, rule.OnMatch.Args)

	reg.Register("M", "", nil)
	assert.Len(t, reg.Keys(), 2)

	reg.Remove(k1)
	_, err = reg.Resolve(k1)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownKey))

	reg.Clear()
	assert.Equal(t, 0, reg.Len())
}

func TestMatch_DropsZeroWidth(t *testing.T) {
	key := Key("A", "", "")
	r := rulerWithFakes(t,
		[]matchers.RawMatch{{Key: key, Start: 1, End: 1}, {Key: key, Start: 0, End: 1}},
		[]matchers.RawMatch{{Key: key, Start: 2, End: 2}},
	)
	spans, err := r.Match(tokenizer.New().Tokenize("a b c"))
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, types.SpanKey{Start: 0, End: 1, Label: "A"}, spans[0].Key())
}

func TestMatch_UnknownKeyIsFatal(t *testing.T) {
	r := rulerWithFakes(t, nil, []matchers.RawMatch{{Key: 42, Start: 0, End: 1}})
	_, err := r.Match(tokenizer.New().Tokenize("a"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownKey))
}

func TestMatch_ConcatenatesBothMatchers(t *testing.T) {
	key := Key("A", "", "")
	r := rulerWithFakes(t,
		[]matchers.RawMatch{{Key: key, Start: 1, End: 2}},
		[]matchers.RawMatch{{Key: key, Start: 0, End: 1}, {Key: key, Start: 1, End: 2}},
	)
	spans, err := r.Match(tokenizer.New().Tokenize("a b"))
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 1, spans[1].Start)
}

func TestFinalize(t *testing.T) {
	doc := tokenizer.New().Tokenize("a b c d")
	first := types.NewSpan(doc, 1, 2, "X", "")
	first.Set("marker", "first")
	dup := types.NewSpan(doc, 1, 2, "X", "")
	dup.Set("marker", "second")

	out := finalize([]*types.Span{
		types.NewSpan(doc, 2, 3, "B", ""),
		first,
		nil,
		types.NewSpan(doc, 3, 3, "Z", ""),
		dup,
		types.NewSpan(doc, 1, 2, "X", "id"),
		types.NewSpan(doc, 0, 4, "A", ""),
		types.NewSpan(doc, 1, 3, "A", ""),
	})

	var keys []types.SpanKey
	for _, s := range out {
		keys = append(keys, s.Key())
	}
	assert.Equal(t, []types.SpanKey{
		{Start: 0, End: 4, Label: "A"},
		{Start: 1, End: 2, Label: "X"},
		{Start: 1, End: 2, Label: "X", ID: "id"},
		{Start: 1, End: 3, Label: "A"},
		{Start: 2, End: 3, Label: "B"},
	}, keys)

	marker, _ := out[1].Get("marker")
	assert.Equal(t, "first", marker, "first occurrence wins")
}

func TestDispatch_NilOnMatch(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	span := types.NewSpan(tokenizer.New().Tokenize("a"), 0, 1, "A", "")
	out, err := r.dispatch(span, nil)
	require.NoError(t, err)
	assert.Equal(t, []*types.Span{span}, out)
}
