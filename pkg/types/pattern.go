package types

// MatchKey links a raw match produced by a matcher back to its rule.
type MatchKey uint64

// TokenSpec constrains a single token: attribute name to expected value
// or predicate map, plus an optional "OP" quantifier.
type TokenSpec map[string]any

// PatternKind discriminates the two pattern variants.
type PatternKind int

const (
	// PatternInvalid is the zero value; it is rejected at add time.
	PatternInvalid PatternKind = iota
	// PatternPhrase is a literal text, tokenized before matching.
	PatternPhrase
	// PatternTokens is an ordered sequence of per-token constraints.
	PatternTokens
)

func (k PatternKind) String() string {
	switch k {
	case PatternPhrase:
		return "phrase"
	case PatternTokens:
		return "tokens"
	default:
		return "invalid"
	}
}

// PatternValue is either a phrase or a token sequence, never both.
type PatternValue struct {
	kind   PatternKind
	phrase string
	tokens []TokenSpec
}

// Phrase returns a literal phrase pattern.
func Phrase(text string) PatternValue {
	return PatternValue{kind: PatternPhrase, phrase: text}
}

// Tokens returns a structured token-sequence pattern.
func Tokens(specs ...TokenSpec) PatternValue {
	return PatternValue{kind: PatternTokens, tokens: specs}
}

// Kind returns the variant.
func (v PatternValue) Kind() PatternKind {
	return v.kind
}

// Phrase returns the phrase text when v is a phrase.
func (v PatternValue) Phrase() (string, bool) {
	return v.phrase, v.kind == PatternPhrase
}

// Tokens returns the token specs when v is a token sequence.
func (v PatternValue) Tokens() ([]TokenSpec, bool) {
	return v.tokens, v.kind == PatternTokens
}

// OnMatch names a registered callback and the extra arguments passed to
// it after the matched span.
type OnMatch struct {
	ID     string         `json:"id" yaml:"id" toml:"id"`
	Args   []any          `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`
	Kwargs map[string]any `json:"kwargs,omitempty" yaml:"kwargs,omitempty" toml:"kwargs,omitempty"`
}

// Pattern is a single rule: a label, the pattern to match, an optional
// pattern id and an optional second-opinion callback.
type Pattern struct {
	Label   string
	Pattern PatternValue
	ID      string
	OnMatch *OnMatch
}

// OnMatchID returns the callback id or "" when no callback is set.
func (p Pattern) OnMatchID() string {
	if p.OnMatch == nil {
		return ""
	}
	return p.OnMatch.ID
}
