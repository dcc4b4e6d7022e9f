package rules

import (
	"strings"
	"time"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/logging"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// phraseBatch collects phrase patterns so they can be tokenized in one
// pipeline pass.
type phraseBatch struct {
	keys    []types.MatchKey
	texts   []string
	indexes []int
	labels  []string
}

// AddPatterns registers patterns in order.
//
// Token sequences are compiled as they are reached; phrases are tokenized
// together at the end. The call stops at the first invalid pattern and
// returns an INVALID_PATTERN error naming it. Patterns before it stay
// added. The ruler and every later pipeline stage are disabled for the
// duration of the call.
func (r *Ruler) AddPatterns(patterns []types.Pattern) error {
	restore, err := r.pipe.Disable(r.pipe.From(r.name)...)
	if err != nil {
		return err
	}
	defer restore()

	defer logging.LogDuration(time.Now(), "add_patterns")

	logger := r.logger.With().Int("patterns", len(patterns)).Logger()
	logger.Debug().Msg("Adding patterns")

	var batch phraseBatch
	for i, p := range patterns {
		if err := r.addPattern(i, p, &batch); err != nil {
			if cerr := r.compilePhrases(batch); cerr != nil {
				return cerr
			}
			return err
		}
	}
	if err := r.compilePhrases(batch); err != nil {
		return err
	}

	logger.Debug().
		Int("phrases", len(batch.texts)).
		Int("rules", r.rules.Len()).
		Int("total", len(r.patterns)).
		Msg("Added patterns")
	return nil
}

func (r *Ruler) addPattern(index int, p types.Pattern, batch *phraseBatch) error {
	if r.validate {
		if err := r.check(index, p); err != nil {
			return err
		}
	}

	// Register only once the pattern is known to compile.
	switch p.Pattern.Kind() {
	case types.PatternPhrase:
		text, _ := p.Pattern.Phrase()
		if strings.TrimSpace(text) == "" {
			return invalidPattern(index, p, errors.New(errors.ErrInvalidPattern, "phrase is empty"))
		}
		batch.keys = append(batch.keys, r.rules.Register(p.Label, p.ID, p.OnMatch))
		batch.texts = append(batch.texts, text)
		batch.indexes = append(batch.indexes, index)
		batch.labels = append(batch.labels, p.Label)
	case types.PatternTokens:
		specs, _ := p.Pattern.Tokens()
		if len(specs) == 0 {
			return invalidPattern(index, p, errors.New(errors.ErrInvalidPattern, "token sequence is empty"))
		}
		if err := r.tokens.Validate(specs); err != nil {
			return invalidPattern(index, p, err)
		}
		key := r.rules.Register(p.Label, p.ID, p.OnMatch)
		if err := r.tokens.Add(key, [][]types.TokenSpec{specs}); err != nil {
			return invalidPattern(index, p, err)
		}
	default:
		return invalidPattern(index, p, nil)
	}

	r.patterns = append(r.patterns, p)
	return nil
}

func (r *Ruler) compilePhrases(batch phraseBatch) error {
	if len(batch.texts) == 0 {
		return nil
	}
	docs, err := r.pipe.Pipe(batch.texts)
	if err != nil {
		return err
	}
	for i, doc := range docs {
		if err := r.phrases.Add(batch.keys[i], []*types.Doc{doc}); err != nil {
			return errors.Wrapf(err, errors.ErrInvalidPattern, "invalid pattern %d (label %q)", batch.indexes[i], batch.labels[i]).
				WithDetail("index", batch.indexes[i]).
				WithDetail("label", batch.labels[i])
		}
	}
	return nil
}

// check applies the strict rules enabled by WithValidate.
func (r *Ruler) check(index int, p types.Pattern) error {
	if p.Label == "" {
		return invalidPattern(index, p, errors.New(errors.ErrInvalidPattern, "label is empty"))
	}
	if p.OnMatch == nil {
		return nil
	}
	if p.OnMatch.ID == "" {
		return invalidPattern(index, p, errors.New(errors.ErrInvalidPattern, "on_match has no id"))
	}
	if _, ok := r.callbacks.Lookup(p.OnMatch.ID); !ok {
		return errors.Newf(errors.ErrCallbackNotFound, "pattern %d (label %q) references unregistered callback %q", index, p.Label, p.OnMatch.ID).
			WithDetail("index", index).
			WithDetail("label", p.Label).
			WithDetail("callback", p.OnMatch.ID)
	}
	return nil
}

func invalidPattern(index int, p types.Pattern, cause error) error {
	var err *errors.RulerError
	if cause == nil {
		err = errors.Newf(errors.ErrInvalidPattern,
			"pattern %d (label %q) is neither a phrase nor a token sequence", index, p.Label)
	} else {
		err = errors.Wrapf(cause, errors.ErrInvalidPattern, "invalid pattern %d (label %q)", index, p.Label)
	}
	return err.WithDetail("index", index).WithDetail("label", p.Label)
}
