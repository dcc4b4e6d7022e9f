package types

import (
	"cmp"
	"strings"
)

// SpanKey is the identity of a span. Two spans with equal keys are
// duplicates regardless of their extension data.
type SpanKey struct {
	Start int
	End   int
	Label string
	ID    string
}

// Compare orders keys by start, then end, then label, then id.
func (k SpanKey) Compare(o SpanKey) int {
	if c := cmp.Compare(k.Start, o.Start); c != 0 {
		return c
	}
	if c := cmp.Compare(k.End, o.End); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Label, o.Label); c != 0 {
		return c
	}
	return cmp.Compare(k.ID, o.ID)
}

// Span is a half-open token range [Start, End) over a Doc.
//
// Ext carries side-channel values attached by callbacks (a parsed date,
// a normalized form, ...). It is not part of the span's identity.
type Span struct {
	Doc   *Doc
	Start int
	End   int
	Label string
	ID    string

	ext map[string]any
}

// NewSpan creates a span over doc.
func NewSpan(doc *Doc, start, end int, label, id string) *Span {
	return &Span{Doc: doc, Start: start, End: end, Label: label, ID: id}
}

// Key returns the identity tuple of the span.
func (s *Span) Key() SpanKey {
	return SpanKey{Start: s.Start, End: s.End, Label: s.Label, ID: s.ID}
}

// Less reports whether s sorts before o.
func (s *Span) Less(o *Span) bool {
	return s.Key().Compare(o.Key()) < 0
}

// Len returns the number of tokens covered.
func (s *Span) Len() int {
	return s.End - s.Start
}

// Empty reports whether the span covers no tokens.
func (s *Span) Empty() bool {
	return s.End <= s.Start
}

// Tokens returns the covered tokens.
func (s *Span) Tokens() []Token {
	if s.Doc == nil || s.Empty() {
		return nil
	}
	return s.Doc.Tokens[s.Start:s.End]
}

// Text returns the covered text without the trailing whitespace of the
// last token.
func (s *Span) Text() string {
	toks := s.Tokens()
	var b strings.Builder
	for i, t := range toks {
		b.WriteString(t.Text)
		if i < len(toks)-1 {
			b.WriteString(t.Whitespace)
		}
	}
	return b.String()
}

// Overlaps reports whether s and o share at least one token.
func (s *Span) Overlaps(o *Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Set attaches an extension value.
func (s *Span) Set(name string, value any) {
	if s.ext == nil {
		s.ext = make(map[string]any)
	}
	s.ext[name] = value
}

// Get returns an extension value.
func (s *Span) Get(name string) (any, bool) {
	v, ok := s.ext[name]
	return v, ok
}

// Ext returns a copy of all extension values.
func (s *Span) Ext() map[string]any {
	if len(s.ext) == 0 {
		return nil
	}
	out := make(map[string]any, len(s.ext))
	for k, v := range s.ext {
		out[k] = v
	}
	return out
}

// Copy returns a new span with the same range, identity and a shallow
// copy of the extension values.
func (s *Span) Copy() *Span {
	c := *s
	c.ext = s.Ext()
	return &c
}
