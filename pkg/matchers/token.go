package matchers

import (
	stderrors "errors"
	"strings"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/logging"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/rs/zerolog"
)

type quantifier int

const (
	exactlyOne quantifier = iota
	zeroOrOne
	zeroOrMore
	negated
)

type tokenStep struct {
	match predicate
	quant quantifier
}

type compiledPattern struct {
	key   types.MatchKey
	steps []tokenStep
}

// TokenMatcher matches sequences of token constraints. It is not safe for
// concurrent mutation; Match may run concurrently once patterns are added.
type TokenMatcher struct {
	patterns []compiledPattern
	keys     map[types.MatchKey]int
	logger   zerolog.Logger
}

// NewTokenMatcher creates an empty matcher.
func NewTokenMatcher() *TokenMatcher {
	return &TokenMatcher{
		keys:   make(map[types.MatchKey]int),
		logger: logging.GetLogger("matchers.token"),
	}
}

// Validate compiles specs without adding them.
func (m *TokenMatcher) Validate(specs []types.TokenSpec) error {
	_, err := compileSequence(specs)
	return err
}

// Add compiles each token sequence and registers it under key. Either all
// sequences are added or none.
func (m *TokenMatcher) Add(key types.MatchKey, sequences [][]types.TokenSpec) error {
	compiled := make([]compiledPattern, 0, len(sequences))
	for _, seq := range sequences {
		steps, err := compileSequence(seq)
		if err != nil {
			return err
		}
		compiled = append(compiled, compiledPattern{key: key, steps: steps})
	}

	m.patterns = append(m.patterns, compiled...)
	m.keys[key] += len(compiled)
	m.logger.Trace().
		Uint64("key", uint64(key)).
		Int("sequences", len(compiled)).
		Msg("Added token patterns")
	return nil
}

// Remove drops every sequence registered under key.
func (m *TokenMatcher) Remove(key types.MatchKey) {
	if _, ok := m.keys[key]; !ok {
		return
	}
	kept := m.patterns[:0]
	for _, p := range m.patterns {
		if p.key != key {
			kept = append(kept, p)
		}
	}
	m.patterns = kept
	delete(m.keys, key)
}

// Has reports whether key has sequences registered.
func (m *TokenMatcher) Has(key types.MatchKey) bool {
	_, ok := m.keys[key]
	return ok
}

// Len returns the number of distinct keys.
func (m *TokenMatcher) Len() int {
	return len(m.keys)
}

// Clear removes all patterns.
func (m *TokenMatcher) Clear() {
	m.patterns = nil
	m.keys = make(map[types.MatchKey]int)
}

// Match returns every (key, start, end) where a registered sequence
// matches, sorted by start, end and key. Each triple is reported once even
// when several sequences of the same key produce it.
func (m *TokenMatcher) Match(doc *types.Doc) []RawMatch {
	if len(m.patterns) == 0 || doc == nil {
		return nil
	}

	seen := make(map[RawMatch]struct{})
	var out []RawMatch
	for _, p := range m.patterns {
		for start := 0; start < doc.Len(); start++ {
			for _, end := range p.endsFrom(doc, start) {
				rm := RawMatch{Key: p.key, Start: start, End: end}
				if _, dup := seen[rm]; dup {
					continue
				}
				seen[rm] = struct{}{}
				out = append(out, rm)
			}
		}
	}
	sortMatches(out)
	return out
}

// endsFrom explores the pattern from start and returns every end position
// where all steps are satisfied. Zero-width results are not reported.
func (p compiledPattern) endsFrom(doc *types.Doc, start int) []int {
	type state struct{ step, pos int }
	visited := make(map[state]bool)
	ends := make(map[int]bool)
	var order []int

	var walk func(step, pos int)
	walk = func(step, pos int) {
		st := state{step, pos}
		if visited[st] {
			return
		}
		visited[st] = true

		if step == len(p.steps) {
			if pos > start && !ends[pos] {
				ends[pos] = true
				order = append(order, pos)
			}
			return
		}

		s := p.steps[step]
		canConsume := pos < doc.Len()
		var hit bool
		if canConsume {
			hit = s.match(&doc.Tokens[pos])
		}

		switch s.quant {
		case exactlyOne:
			if hit {
				walk(step+1, pos+1)
			}
		case negated:
			if canConsume && !hit {
				walk(step+1, pos+1)
			}
		case zeroOrOne:
			walk(step+1, pos)
			if hit {
				walk(step+1, pos+1)
			}
		case zeroOrMore:
			walk(step+1, pos)
			if hit {
				walk(step, pos+1)
			}
		}
	}
	walk(0, start)
	return order
}

func compileSequence(specs []types.TokenSpec) ([]tokenStep, error) {
	if len(specs) == 0 {
		return nil, invalid("token pattern must contain at least one token spec")
	}

	var steps []tokenStep
	for i, spec := range specs {
		match, op, err := compileSpec(spec)
		if err != nil {
			return nil, withTokenIndex(err, i)
		}
		switch op {
		case "", "1":
			steps = append(steps, tokenStep{match: match, quant: exactlyOne})
		case "!":
			steps = append(steps, tokenStep{match: match, quant: negated})
		case "?":
			steps = append(steps, tokenStep{match: match, quant: zeroOrOne})
		case "*":
			steps = append(steps, tokenStep{match: match, quant: zeroOrMore})
		case "+":
			steps = append(steps,
				tokenStep{match: match, quant: exactlyOne},
				tokenStep{match: match, quant: zeroOrMore})
		default:
			return nil, withTokenIndex(invalid("unknown OP %q", op), i)
		}
	}
	return steps, nil
}

func compileSpec(spec types.TokenSpec) (predicate, string, error) {
	var op string
	var checks []predicate
	for name, value := range spec {
		if strings.EqualFold(name, "OP") {
			s, ok := value.(string)
			if !ok {
				return nil, "", invalid("OP expects a string, got %T", value)
			}
			op = s
			continue
		}
		check, err := compileConstraint(name, value)
		if err != nil {
			return nil, "", err
		}
		checks = append(checks, check)
	}

	return func(t *types.Token) bool {
		for _, check := range checks {
			if !check(t) {
				return false
			}
		}
		return true
	}, op, nil
}

func withTokenIndex(err error, index int) error {
	var re *errors.RulerError
	if stderrors.As(err, &re) {
		re.WithDetail("token", index)
	}
	return err
}
