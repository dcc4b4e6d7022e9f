package types

import (
	"strings"

	"github.com/google/uuid"
)

// Doc is a tokenized document. The ruler reads Tokens and writes span
// groups into Spans (keyed by group name) and, optionally, Ents.
type Doc struct {
	ID     string
	Tokens []Token
	Spans  map[string][]*Span
	Ents   []*Span
}

// NewDoc builds a Doc over tokens, fixing up Index and Idx so they match
// the token positions.
func NewDoc(tokens []Token) *Doc {
	offset := 0
	for i := range tokens {
		tokens[i].Index = i
		tokens[i].Idx = offset
		offset += len(tokens[i].Text) + len(tokens[i].Whitespace)
	}
	return &Doc{
		ID:     uuid.NewString(),
		Tokens: tokens,
		Spans:  make(map[string][]*Span),
	}
}

// Len returns the number of tokens.
func (d *Doc) Len() int {
	return len(d.Tokens)
}

// Text reconstructs the original text, trailing whitespace included.
func (d *Doc) Text() string {
	var b strings.Builder
	for _, t := range d.Tokens {
		b.WriteString(t.Text)
		b.WriteString(t.Whitespace)
	}
	return b.String()
}

// Words returns the token texts.
func (d *Doc) Words() []string {
	words := make([]string, len(d.Tokens))
	for i, t := range d.Tokens {
		words[i] = t.Text
	}
	return words
}

// SpanGroup returns the spans stored under key, or nil.
func (d *Doc) SpanGroup(key string) []*Span {
	if d.Spans == nil {
		return nil
	}
	return d.Spans[key]
}

// SetSpanGroup stores spans under key.
func (d *Doc) SetSpanGroup(key string, spans []*Span) {
	if d.Spans == nil {
		d.Spans = make(map[string][]*Span)
	}
	d.Spans[key] = spans
}
