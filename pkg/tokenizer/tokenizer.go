// Package tokenizer splits raw text into annotated tokens.
//
// Splitting is rule-based: text is cut on whitespace, then leading and
// trailing punctuation is peeled off each chunk and hyphens between
// letters become their own tokens. Numbers, dates and abbreviations with
// inner punctuation ("21.04.1986", "3,5") stay whole.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/arthur-debert/spanruler/pkg/types"
)

const (
	defaultPrefixes = "\"'([{<¿¡«“‘$£€#"
	defaultSuffixes = "\"')]}>.,!?;:%»”’…"
	defaultInfixes  = "-–—/"
)

// Tokenizer turns text into a types.Doc.
type Tokenizer struct {
	prefixes string
	suffixes string
	infixes  string
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithPrefixes overrides the characters split off the front of a chunk.
func WithPrefixes(chars string) Option {
	return func(t *Tokenizer) { t.prefixes = chars }
}

// WithSuffixes overrides the characters split off the end of a chunk.
func WithSuffixes(chars string) Option {
	return func(t *Tokenizer) { t.suffixes = chars }
}

// WithInfixes overrides the characters split between two letters.
func WithInfixes(chars string) Option {
	return func(t *Tokenizer) { t.infixes = chars }
}

// New creates a tokenizer with the default punctuation rules.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		prefixes: defaultPrefixes,
		suffixes: defaultSuffixes,
		infixes:  defaultInfixes,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize splits text and annotates every token.
func (t *Tokenizer) Tokenize(text string) *types.Doc {
	var tokens []types.Token

	rest := text
	// Leading whitespace becomes a space token.
	if lead := leadingSpace(rest); lead != "" {
		tokens = append(tokens, types.Token{Text: lead})
		rest = rest[len(lead):]
	}

	for rest != "" {
		chunkEnd := strings.IndexFunc(rest, unicode.IsSpace)
		if chunkEnd < 0 {
			chunkEnd = len(rest)
		}
		chunk := rest[:chunkEnd]
		rest = rest[chunkEnd:]

		pieces := t.split(chunk)
		for _, p := range pieces {
			tokens = append(tokens, types.Token{Text: p})
		}

		ws := leadingSpace(rest)
		rest = rest[len(ws):]
		if ws == "" {
			continue
		}
		// The first space belongs to the previous token; any extra
		// whitespace is kept as its own token so offsets round-trip.
		first, size := utf8.DecodeRuneInString(ws)
		if first == ' ' {
			tokens[len(tokens)-1].Whitespace = " "
			ws = ws[size:]
		}
		if ws != "" {
			tokens = append(tokens, types.Token{Text: ws})
		}
	}

	for i := range tokens {
		Annotate(&tokens[i])
	}
	return types.NewDoc(tokens)
}

// TokenizeMany tokenizes each text independently.
func (t *Tokenizer) TokenizeMany(texts []string) []*types.Doc {
	docs := make([]*types.Doc, len(texts))
	for i, text := range texts {
		docs[i] = t.Tokenize(text)
	}
	return docs
}

// FromWords builds a Doc from pre-split words. spaces[i] reports whether
// word i is followed by a space; a nil spaces slice means "always".
func FromWords(words []string, spaces []bool) *types.Doc {
	tokens := make([]types.Token, len(words))
	for i, w := range words {
		tokens[i].Text = w
		if spaces == nil || (i < len(spaces) && spaces[i]) {
			tokens[i].Whitespace = " "
		}
		Annotate(&tokens[i])
	}
	return types.NewDoc(tokens)
}

func (t *Tokenizer) split(chunk string) []string {
	var prefix, suffix []string

	for chunk != "" {
		r, size := utf8.DecodeRuneInString(chunk)
		if size == len(chunk) || !strings.ContainsRune(t.prefixes, r) {
			break
		}
		prefix = append(prefix, chunk[:size])
		chunk = chunk[size:]
	}

	for chunk != "" {
		r, size := utf8.DecodeLastRuneInString(chunk)
		if size == len(chunk) || !strings.ContainsRune(t.suffixes, r) {
			break
		}
		suffix = append(suffix, chunk[len(chunk)-size:])
		chunk = chunk[:len(chunk)-size]
	}

	out := append(prefix, t.splitInfixes(chunk)...)
	for i := len(suffix) - 1; i >= 0; i-- {
		out = append(out, suffix[i])
	}
	return out
}

// splitInfixes cuts the chunk at infix characters sitting between two
// letters ("well-known" -> "well", "-", "known").
func (t *Tokenizer) splitInfixes(chunk string) []string {
	if chunk == "" {
		return nil
	}
	runes := []rune(chunk)
	var out []string
	start := 0
	for i := 1; i < len(runes)-1; i++ {
		if !strings.ContainsRune(t.infixes, runes[i]) {
			continue
		}
		if unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]) {
			out = append(out, string(runes[start:i]), string(runes[i]))
			start = i + 1
		}
	}
	return append(out, string(runes[start:]))
}

func leadingSpace(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) })
	if end < 0 {
		return s
	}
	return s[:end]
}
