package patterns

import (
	"fmt"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// record is the on-disk shape shared by every format.
type record struct {
	Label   string         `json:"label" yaml:"label" toml:"label"`
	Pattern any            `json:"pattern" yaml:"pattern" toml:"pattern"`
	ID      string         `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	OnMatch *types.OnMatch `json:"on_match,omitempty" yaml:"on_match,omitempty" toml:"on_match,omitempty"`
}

func (r record) pattern() (types.Pattern, error) {
	value, err := patternValue(r.Pattern)
	if err != nil {
		return types.Pattern{}, err
	}
	if r.OnMatch != nil && r.OnMatch.ID == "" {
		return types.Pattern{}, errors.New(errors.ErrInvalidPattern, "on_match needs an id")
	}
	return types.Pattern{Label: r.Label, Pattern: value, ID: r.ID, OnMatch: r.OnMatch}, nil
}

// patternValue classifies a decoded pattern field: a string is a phrase,
// a list of maps is a token sequence.
func patternValue(v any) (types.PatternValue, error) {
	switch p := v.(type) {
	case string:
		return types.Phrase(p), nil
	case []any:
		specs := make([]types.TokenSpec, 0, len(p))
		for i, item := range p {
			m, ok := stringMap(item)
			if !ok {
				return types.PatternValue{}, errors.Newf(errors.ErrInvalidPattern,
					"token %d must be a map of attributes, got %T", i, item)
			}
			specs = append(specs, types.TokenSpec(m))
		}
		return types.Tokens(specs...), nil
	case []map[string]any:
		specs := make([]types.TokenSpec, len(p))
		for i, m := range p {
			specs[i] = types.TokenSpec(m)
		}
		return types.Tokens(specs...), nil
	case nil:
		return types.PatternValue{}, errors.New(errors.ErrInvalidPattern, "pattern is missing")
	}
	return types.PatternValue{}, errors.Newf(errors.ErrInvalidPattern,
		"pattern must be a string or a list of token maps, got %T", v)
}

// stringMap accepts the map shapes the decoders produce.
func stringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case types.TokenSpec:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func recordFor(p types.Pattern) (record, error) {
	rec := record{Label: p.Label, ID: p.ID, OnMatch: p.OnMatch}
	switch p.Pattern.Kind() {
	case types.PatternPhrase:
		rec.Pattern, _ = p.Pattern.Phrase()
	case types.PatternTokens:
		specs, _ := p.Pattern.Tokens()
		maps := make([]map[string]any, len(specs))
		for i, s := range specs {
			maps[i] = map[string]any(s)
		}
		rec.Pattern = maps
	default:
		return rec, errors.Newf(errors.ErrInvalidPattern, "pattern %q has no value", p.Label)
	}
	return rec, nil
}
