package matchers

import (
	"slices"
	"sort"
	"strings"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/logging"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/coregx/ahocorasick"
	"github.com/rs/zerolog"
)

// Token boundaries in the encoded stream. A phrase can only match on
// whole tokens because every token is wrapped in both markers.
const (
	tokenOpen  = "\x00"
	tokenClose = "\x01"
)

// PhraseMatcher matches tokenized phrases against documents by comparing
// a single string attribute per token.
//
// Documents are encoded as a byte stream of delimited token values and
// scanned once with an Aho-Corasick automaton built over all phrases.
// Every overlapping hit that starts and ends on a token boundary is
// reported, so nested and overlapping phrases all match.
type PhraseMatcher struct {
	attr    string
	phrases map[string][]types.MatchKey
	byKey   map[types.MatchKey][]string

	automaton *ahocorasick.Automaton
	// encoded phrase per automaton pattern id
	compiled []string
	dirty    bool
	logger   zerolog.Logger
}

// NewPhraseMatcher creates a matcher comparing attr (ORTH, LOWER, NORM,
// or any other string token attribute). An empty attr means ORTH.
func NewPhraseMatcher(attr string) (*PhraseMatcher, error) {
	if attr == "" {
		attr = "ORTH"
	}
	attr = strings.ToUpper(attr)
	if _, ok := TokenAttr(&types.Token{}, attr); !ok {
		return nil, errors.Newf(errors.ErrInvalidInput, "phrase matcher attribute %q is not a string token attribute", attr)
	}
	return &PhraseMatcher{
		attr:    attr,
		phrases: make(map[string][]types.MatchKey),
		byKey:   make(map[types.MatchKey][]string),
		logger:  logging.GetLogger("matchers.phrase"),
	}, nil
}

// Attr returns the compared token attribute.
func (m *PhraseMatcher) Attr() string {
	return m.attr
}

// Add registers tokenized phrases under key. Empty phrases are rejected.
func (m *PhraseMatcher) Add(key types.MatchKey, phrases []*types.Doc) error {
	encoded := make([]string, 0, len(phrases))
	for _, doc := range phrases {
		if doc == nil || doc.Len() == 0 {
			return errors.New(errors.ErrInvalidPattern, "phrase pattern produced no tokens")
		}
		encoded = append(encoded, m.encode(doc.Tokens))
	}

	for _, enc := range encoded {
		if slices.Contains(m.phrases[enc], key) {
			continue
		}
		m.phrases[enc] = append(m.phrases[enc], key)
		m.byKey[key] = append(m.byKey[key], enc)
	}
	m.dirty = true
	return nil
}

// Remove drops every phrase registered under key.
func (m *PhraseMatcher) Remove(key types.MatchKey) {
	encs, ok := m.byKey[key]
	if !ok {
		return
	}
	for _, enc := range encs {
		keys := slices.DeleteFunc(m.phrases[enc], func(k types.MatchKey) bool { return k == key })
		if len(keys) == 0 {
			delete(m.phrases, enc)
		} else {
			m.phrases[enc] = keys
		}
	}
	delete(m.byKey, key)
	m.dirty = true
}

// Has reports whether key has phrases registered.
func (m *PhraseMatcher) Has(key types.MatchKey) bool {
	_, ok := m.byKey[key]
	return ok
}

// Len returns the number of distinct keys.
func (m *PhraseMatcher) Len() int {
	return len(m.byKey)
}

// Clear removes all phrases.
func (m *PhraseMatcher) Clear() {
	m.phrases = make(map[string][]types.MatchKey)
	m.byKey = make(map[types.MatchKey][]string)
	m.automaton = nil
	m.compiled = nil
	m.dirty = false
}

// Match returns every (key, start, end) where a registered phrase occurs,
// sorted by start, end and key.
func (m *PhraseMatcher) Match(doc *types.Doc) []RawMatch {
	if len(m.phrases) == 0 || doc == nil || doc.Len() == 0 {
		return nil
	}
	if err := m.build(); err != nil {
		m.logger.Error().Err(err).Msg("Failed to build phrase automaton")
		return nil
	}

	haystack, offsets := m.encodeDoc(doc)

	var out []RawMatch
	for _, hit := range m.automaton.FindAllOverlapping(haystack) {
		start, ok := tokenAt(offsets, hit.Start)
		if !ok {
			continue
		}
		end, ok := tokenAt(offsets, hit.End)
		if !ok || end <= start {
			continue
		}
		for _, key := range m.phrases[m.compiled[hit.PatternID]] {
			out = append(out, RawMatch{Key: key, Start: start, End: end})
		}
	}

	sortMatches(out)
	return out
}

// tokenAt maps a byte offset of the encoded stream to the token index
// starting there. The final sentinel maps to the token count.
func tokenAt(offsets []int, pos int) (int, bool) {
	i := sort.SearchInts(offsets, pos)
	return i, i < len(offsets) && offsets[i] == pos
}

func (m *PhraseMatcher) build() error {
	if !m.dirty && m.automaton != nil {
		return nil
	}
	compiled := make([]string, 0, len(m.phrases))
	for enc := range m.phrases {
		compiled = append(compiled, enc)
	}
	sort.Strings(compiled)
	builder := ahocorasick.NewBuilder()
	for _, enc := range compiled {
		builder.AddPattern([]byte(enc))
	}
	auto, err := builder.Build()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to build phrase automaton")
	}
	m.automaton = auto
	m.compiled = compiled
	m.dirty = false
	m.logger.Debug().
		Int("phrases", len(compiled)).
		Int("states", auto.StateCount()).
		Msg("Rebuilt phrase automaton")
	return nil
}

func (m *PhraseMatcher) encode(tokens []types.Token) string {
	var b strings.Builder
	for i := range tokens {
		v, _ := TokenAttr(&tokens[i], m.attr)
		b.WriteString(tokenOpen)
		b.WriteString(v)
		b.WriteString(tokenClose)
	}
	return b.String()
}

// encodeDoc returns the encoded stream and the byte offset of every token
// start, with a final sentinel equal to the stream length.
func (m *PhraseMatcher) encodeDoc(doc *types.Doc) ([]byte, []int) {
	offsets := make([]int, 0, doc.Len()+1)
	var b strings.Builder
	for i := range doc.Tokens {
		offsets = append(offsets, b.Len())
		v, _ := TokenAttr(&doc.Tokens[i], m.attr)
		b.WriteString(tokenOpen)
		b.WriteString(v)
		b.WriteString(tokenClose)
	}
	offsets = append(offsets, b.Len())
	return []byte(b.String()), offsets
}
