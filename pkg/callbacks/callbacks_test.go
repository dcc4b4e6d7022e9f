// Test Type: Unit Test
// Description: Tests for the callback registry and the built-in callbacks

package callbacks_test

import (
	"testing"
	"time"

	"github.com/arthur-debert/spanruler/pkg/callbacks"
	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/tokenizer"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanOver(text string, start, end int, label string) *types.Span {
	doc := tokenizer.New().Tokenize(text)
	return types.NewSpan(doc, start, end, label, "")
}

func call(t *testing.T, id string, span *types.Span, args callbacks.Args) ([]*types.Span, error) {
	t.Helper()
	fn, err := callbacks.Default().Get(id)
	require.NoError(t, err)
	return fn(span, args)
}

func TestRegistry(t *testing.T) {
	reg := callbacks.NewRegistry()
	keep := func(s *types.Span, _ callbacks.Args) ([]*types.Span, error) { return []*types.Span{s}, nil }

	t.Run("register_and_lookup", func(t *testing.T) {
		require.NoError(t, reg.Register("keep.v1", keep))
		fn, ok := reg.Lookup("keep.v1")
		assert.True(t, ok)
		assert.NotNil(t, fn)
		assert.Equal(t, []string{"keep.v1"}, reg.Names())
	})

	t.Run("register_replaces", func(t *testing.T) {
		drop := func(*types.Span, callbacks.Args) ([]*types.Span, error) { return nil, nil }
		require.NoError(t, reg.Register("keep.v1", drop))
		fn, _ := reg.Lookup("keep.v1")
		out, err := fn(spanOver("a", 0, 1, "X"), callbacks.Args{})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("nil_function", func(t *testing.T) {
		assert.True(t, errors.IsErrorCode(reg.Register("nil.v1", nil), errors.ErrInvalidInput))
	})

	t.Run("get_missing", func(t *testing.T) {
		_, err := reg.Get("missing.v1")
		assert.True(t, errors.IsErrorCode(err, errors.ErrCallbackNotFound))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, reg.Remove("keep.v1"))
		assert.Empty(t, reg.Names())
	})
}

func TestDefaultHasBuiltins(t *testing.T) {
	names := callbacks.Default().Names()
	for _, id := range []string{
		callbacks.ToDatetime,
		callbacks.NoMatchOnLargeDoc,
		callbacks.RegexFilter,
		callbacks.Relabel,
		callbacks.SplitTokens,
	} {
		assert.Contains(t, names, id)
	}
}

func TestArgs(t *testing.T) {
	args := callbacks.Args{
		Positional: []any{"%d.%m.%Y", int64(7)},
		Named:      map[string]any{"attr": "when", "flag": true, "ratio": 2.5},
	}

	s, err := args.String(0, "format", "")
	require.NoError(t, err)
	assert.Equal(t, "%d.%m.%Y", s)

	s, err = args.String(5, "attr", "date")
	require.NoError(t, err)
	assert.Equal(t, "when", s, "named wins")

	s, err = args.String(9, "missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", s)

	n, err := args.Int(1, "size", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	b, err := args.Bool(9, "flag", false)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = args.Int(9, "ratio", 0)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCallbackArgs))

	_, err = args.String(1, "format", "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrCallbackArgs))
}

func TestToDatetime(t *testing.T) {
	want := time.Date(1986, time.April, 21, 0, 0, 0, 0, time.UTC)

	t.Run("positional_format", func(t *testing.T) {
		span := spanOver("My birthday is 21.04.1986", 3, 4, "DATE")
		out, err := call(t, callbacks.ToDatetime, span, callbacks.Args{Positional: []any{"%d.%m.%Y"}})
		require.NoError(t, err)
		require.Len(t, out, 1)
		got, ok := out[0].Get("date")
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("named_format_and_attr", func(t *testing.T) {
		span := spanOver("My birthday is 21.04.1986", 3, 4, "DATE")
		out, err := call(t, callbacks.ToDatetime, span, callbacks.Args{
			Named: map[string]any{"format": "%d.%m.%Y", "attr": "birthday"},
		})
		require.NoError(t, err)
		require.Len(t, out, 1)
		got, ok := out[0].Get("birthday")
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("unpadded_day_and_month", func(t *testing.T) {
		for _, text := range []string{"1.4.1986", "01.04.1986"} {
			span := spanOver(text, 0, 1, "DATE")
			out, err := call(t, callbacks.ToDatetime, span, callbacks.Args{Positional: []any{"%d.%m.%Y"}})
			require.NoError(t, err, text)
			got, _ := out[0].Get("date")
			assert.Equal(t, time.Date(1986, time.April, 1, 0, 0, 0, 0, time.UTC), got, text)
		}
	})

	t.Run("padded_time", func(t *testing.T) {
		doc := tokenizer.New().Tokenize("1986-04-21T07:05:09")
		span := types.NewSpan(doc, 0, doc.Len(), "DATE", "")
		out, err := call(t, callbacks.ToDatetime, span, callbacks.Args{Positional: []any{"%Y-%m-%dT%H:%M:%S"}})
		require.NoError(t, err)
		got, _ := out[0].Get("date")
		assert.Equal(t, time.Date(1986, time.April, 21, 7, 5, 9, 0, time.UTC), got)
	})

	t.Run("unparseable_text", func(t *testing.T) {
		span := spanOver("My birthday is tomorrow", 3, 4, "DATE")
		_, err := call(t, callbacks.ToDatetime, span, callbacks.Args{Positional: []any{"%d.%m.%Y"}})
		assert.True(t, errors.IsErrorCode(err, errors.ErrCallbackFailed))
	})

	t.Run("missing_format", func(t *testing.T) {
		span := spanOver("21.04.1986", 0, 1, "DATE")
		_, err := call(t, callbacks.ToDatetime, span, callbacks.Args{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrCallbackArgs))
	})
}

func TestStrftimeLayout(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"%d.%m.%Y", "2.1.2006"},
		{"%Y-%m-%d %H:%M:%S", "2006-1-2 15:4:5"},
		{"%d %B %y", "2 January 06"},
		{"%I:%M %p", "3:4 PM"},
		{"100%%", "100%"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := callbacks.StrftimeLayout(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := callbacks.StrftimeLayout("%Q")
	assert.True(t, errors.IsErrorCode(err, errors.ErrCallbackArgs))
	_, err = callbacks.StrftimeLayout("%")
	assert.True(t, errors.IsErrorCode(err, errors.ErrCallbackArgs))
}

func TestNoMatchOnLargeDoc(t *testing.T) {
	t.Run("small_doc_kept", func(t *testing.T) {
		out, err := call(t, callbacks.NoMatchOnLargeDoc, spanOver("lorem ipsum", 0, 1, "LOREM"), callbacks.Args{})
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("large_doc_vetoed", func(t *testing.T) {
		span := spanOver("lorem ipsum dolor sit amet consectetur", 0, 1, "LOREM")
		out, err := call(t, callbacks.NoMatchOnLargeDoc, span, callbacks.Args{})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("custom_max_size", func(t *testing.T) {
		span := spanOver("lorem ipsum dolor sit amet consectetur", 0, 1, "LOREM")
		out, err := call(t, callbacks.NoMatchOnLargeDoc, span, callbacks.Args{Named: map[string]any{"max_size": 10}})
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})
}

func TestRegexFilter(t *testing.T) {
	span := spanOver("Call ACME today", 1, 2, "ORG")

	out, err := call(t, callbacks.RegexFilter, span, callbacks.Args{Positional: []any{"^[A-Z]+$"}})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	out, err = call(t, callbacks.RegexFilter, span, callbacks.Args{Positional: []any{"^[A-Z]+$", true}})
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = call(t, callbacks.RegexFilter, span, callbacks.Args{Positional: []any{"("}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrCallbackArgs))
}

func TestRelabelAndSplit(t *testing.T) {
	span := spanOver("New York City", 0, 3, "GPE")
	span.Set("source", "test")

	out, err := call(t, callbacks.Relabel, span, callbacks.Args{Named: map[string]any{"label": "CITY"}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "CITY", out[0].Label)
	assert.Equal(t, "GPE", span.Label, "original span untouched")

	out, err = call(t, callbacks.SplitTokens, span, callbacks.Args{})
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, s := range out {
		assert.Equal(t, i, s.Start)
		assert.Equal(t, i+1, s.End)
		assert.Equal(t, "GPE", s.Label)
		v, _ := s.Get("source")
		assert.Equal(t, "test", v)
	}
}
