// Test Type: Unit Test
// Description: Tests for span identity, ordering and extension values

package types_test

import (
	"testing"

	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc() *types.Doc {
	return types.NewDoc([]types.Token{
		{Text: "My", Whitespace: " "},
		{Text: "birthday", Whitespace: " "},
		{Text: "is", Whitespace: " "},
		{Text: "21.04.1986", Whitespace: ""},
	})
}

func TestNewDoc(t *testing.T) {
	d := testDoc()
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, "My birthday is 21.04.1986", d.Text())
	assert.Equal(t, 3, d.Tokens[3].Index)
	assert.Equal(t, 15, d.Tokens[3].Idx)
	assert.NotEqual(t, d.ID, testDoc().ID)
}

func TestSpanText(t *testing.T) {
	d := testDoc()
	assert.Equal(t, "birthday is", types.NewSpan(d, 1, 3, "X", "").Text())
	assert.Equal(t, "", types.NewSpan(d, 2, 2, "X", "").Text())
	assert.Nil(t, types.NewSpan(nil, 0, 1, "X", "").Tokens())
}

func TestSpanIdentity(t *testing.T) {
	d := testDoc()
	a := types.NewSpan(d, 0, 2, "A", "")
	b := types.NewSpan(d, 0, 2, "A", "")
	b.Set("extra", 1)

	assert.Equal(t, a.Key(), b.Key(), "extension values are not part of identity")
	assert.NotEqual(t, a.Key(), types.NewSpan(d, 0, 2, "A", "id").Key())
}

func TestSpanOrdering(t *testing.T) {
	d := testDoc()
	tests := []struct {
		name string
		a, b *types.Span
	}{
		{"start", types.NewSpan(d, 0, 3, "Z", ""), types.NewSpan(d, 1, 2, "A", "")},
		{"end", types.NewSpan(d, 0, 1, "Z", ""), types.NewSpan(d, 0, 2, "A", "")},
		{"label", types.NewSpan(d, 0, 1, "A", "z"), types.NewSpan(d, 0, 1, "B", "a")},
		{"id", types.NewSpan(d, 0, 1, "A", "a"), types.NewSpan(d, 0, 1, "A", "b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.a.Less(tt.b))
			assert.False(t, tt.b.Less(tt.a))
		})
	}
}

func TestSpanExt(t *testing.T) {
	d := testDoc()
	s := types.NewSpan(d, 3, 4, "DATE", "")
	_, ok := s.Get("date")
	assert.False(t, ok)
	assert.Nil(t, s.Ext())

	s.Set("date", "1986-04-21")
	c := s.Copy()
	c.Set("date", "changed")
	c.Label = "OTHER"

	v, ok := s.Get("date")
	require.True(t, ok)
	assert.Equal(t, "1986-04-21", v)
	assert.Equal(t, "DATE", s.Label)
	assert.Equal(t, map[string]any{"date": "1986-04-21"}, s.Ext())
}

func TestSpanOverlaps(t *testing.T) {
	d := testDoc()
	a := types.NewSpan(d, 0, 2, "A", "")
	assert.True(t, a.Overlaps(types.NewSpan(d, 1, 3, "B", "")))
	assert.False(t, a.Overlaps(types.NewSpan(d, 2, 3, "B", "")))
}

func TestPatternValue(t *testing.T) {
	var zero types.PatternValue
	assert.Equal(t, types.PatternInvalid, zero.Kind())

	p := types.Phrase("21.04.1986")
	text, ok := p.Phrase()
	assert.True(t, ok)
	assert.Equal(t, "21.04.1986", text)
	_, ok = p.Tokens()
	assert.False(t, ok)

	tk := types.Tokens(types.TokenSpec{"LOWER": "san"})
	specs, ok := tk.Tokens()
	assert.True(t, ok)
	assert.Len(t, specs, 1)
	assert.Equal(t, "tokens", tk.Kind().String())

	assert.Equal(t, "", types.Pattern{}.OnMatchID())
	assert.Equal(t, "cb", types.Pattern{OnMatch: &types.OnMatch{ID: "cb"}}.OnMatchID())
}
