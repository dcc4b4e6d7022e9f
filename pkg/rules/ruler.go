package rules

import (
	"slices"

	"github.com/arthur-debert/spanruler/pkg/callbacks"
	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/logging"
	"github.com/arthur-debert/spanruler/pkg/matchers"
	"github.com/arthur-debert/spanruler/pkg/pipeline"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// DefaultName is the stage name of a ruler.
	DefaultName = "second_opinion_ruler"
	// DefaultSpansKey is the span group matches are written to.
	DefaultSpansKey = "ruler"
)

type tokenMatcher interface {
	Validate(specs []types.TokenSpec) error
	Add(key types.MatchKey, sequences [][]types.TokenSpec) error
	Clear()
	Match(doc *types.Doc) []matchers.RawMatch
}

type phraseMatcher interface {
	Add(key types.MatchKey, phrases []*types.Doc) error
	Clear()
	Match(doc *types.Doc) []matchers.RawMatch
}

// Ruler matches rule patterns against documents. A Ruler is meant to be
// configured and fed patterns from one goroutine; it holds no locks.
type Ruler struct {
	name         string
	pipe         *pipeline.Pipeline
	spansKey     string
	annotateEnts bool
	overwrite    bool
	validate     bool
	phraseAttr   string
	callbacks    *callbacks.Registry
	spansFilter  SpanFilter
	entsFilter   SpanFilter

	rules    *Registry
	tokens   tokenMatcher
	phrases  phraseMatcher
	patterns []types.Pattern
	logger   zerolog.Logger
}

// Option configures a Ruler.
type Option func(*Ruler)

// WithName sets the stage name the ruler uses inside its pipeline.
func WithName(name string) Option {
	return func(r *Ruler) { r.name = name }
}

// WithSpansKey sets the span group written by Process. An empty key
// disables span group output.
func WithSpansKey(key string) Option {
	return func(r *Ruler) { r.spansKey = key }
}

// WithAnnotateEnts makes Process write matches to the document entities.
func WithAnnotateEnts(annotate bool) Option {
	return func(r *Ruler) { r.annotateEnts = annotate }
}

// WithOverwrite controls whether Process replaces existing spans and
// entities (the default) or merges with them.
func WithOverwrite(overwrite bool) Option {
	return func(r *Ruler) { r.overwrite = overwrite }
}

// WithPhraseMatcherAttr sets the token attribute phrases are compared on.
func WithPhraseMatcherAttr(attr string) Option {
	return func(r *Ruler) { r.phraseAttr = attr }
}

// WithValidate enables strict pattern checks in AddPatterns.
func WithValidate(validate bool) Option {
	return func(r *Ruler) { r.validate = validate }
}

// WithCallbacks sets the registry callbacks are looked up in.
func WithCallbacks(reg *callbacks.Registry) Option {
	return func(r *Ruler) { r.callbacks = reg }
}

// WithSpansFilter sets the filter applied when writing the span group.
func WithSpansFilter(f SpanFilter) Option {
	return func(r *Ruler) { r.spansFilter = f }
}

// WithEntsFilter sets the filter applied when writing entities.
func WithEntsFilter(f SpanFilter) Option {
	return func(r *Ruler) { r.entsFilter = f }
}

// New creates a ruler bound to pipe. A nil pipe gets a pipeline with the
// default tokenizer and no stages.
func New(pipe *pipeline.Pipeline, opts ...Option) (*Ruler, error) {
	if pipe == nil {
		pipe = pipeline.New(nil)
	}
	r := &Ruler{
		name:       DefaultName,
		pipe:       pipe,
		spansKey:   DefaultSpansKey,
		overwrite:  true,
		phraseAttr: "ORTH",
		callbacks:  callbacks.Default(),
		entsFilter: FirstLongest,
		rules:      NewRegistry(),
		tokens:     matchers.NewTokenMatcher(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.callbacks == nil {
		r.callbacks = callbacks.Default()
	}
	if r.entsFilter == nil {
		r.entsFilter = FirstLongest
	}

	phrases, err := matchers.NewPhraseMatcher(r.phraseAttr)
	if err != nil {
		return nil, err
	}
	r.phrases = phrases
	r.phraseAttr = phrases.Attr()
	r.logger = logging.GetLogger("rules").With().Str("ruler", r.name).Logger()
	return r, nil
}

// Name returns the stage name.
func (r *Ruler) Name() string {
	return r.name
}

// SpansKey returns the span group Process writes to.
func (r *Ruler) SpansKey() string {
	return r.spansKey
}

// Patterns returns the added patterns in insertion order.
func (r *Ruler) Patterns() []types.Pattern {
	return slices.Clone(r.patterns)
}

// Len returns the number of added patterns.
func (r *Ruler) Len() int {
	return len(r.patterns)
}

// Labels returns the distinct pattern labels, sorted.
func (r *Ruler) Labels() []string {
	return r.distinct(func(p types.Pattern) string { return p.Label })
}

// IDs returns the distinct non-empty pattern ids, sorted.
func (r *Ruler) IDs() []string {
	return r.distinct(func(p types.Pattern) string { return p.ID })
}

func (r *Ruler) distinct(field func(types.Pattern) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range r.patterns {
		v := field(p)
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Clear removes every pattern and rule.
func (r *Ruler) Clear() {
	r.rules.Clear()
	r.tokens.Clear()
	r.phrases.Clear()
	r.patterns = nil
	r.logger.Debug().Msg("Cleared patterns")
}

// Remove drops every pattern with the given label.
func (r *Ruler) Remove(label string) error {
	return r.removeWhere("label", label, func(p types.Pattern) bool { return p.Label == label })
}

// RemoveByID drops every pattern with the given pattern id.
func (r *Ruler) RemoveByID(id string) error {
	return r.removeWhere("id", id, func(p types.Pattern) bool { return p.ID == id })
}

// removeWhere rebuilds the ruler from the patterns that survive drop. The
// rebuild happens on fresh matchers; if it fails, the previous state is
// put back and the error returned.
func (r *Ruler) removeWhere(field, value string, drop func(types.Pattern) bool) error {
	kept := slices.DeleteFunc(slices.Clone(r.patterns), drop)
	if len(kept) == len(r.patterns) {
		return errors.Newf(errors.ErrNotFound, "no pattern with %s %q", field, value).
			WithDetail(field, value)
	}

	phrases, err := matchers.NewPhraseMatcher(r.phraseAttr)
	if err != nil {
		return err
	}
	oldRules, oldTokens, oldPhrases, patterns := r.rules, r.tokens, r.phrases, r.patterns
	r.rules = NewRegistry()
	r.tokens = matchers.NewTokenMatcher()
	r.phrases = phrases
	r.patterns = nil

	if err := r.AddPatterns(kept); err != nil {
		r.rules, r.tokens, r.phrases, r.patterns = oldRules, oldTokens, oldPhrases, patterns
		r.logger.Warn().Err(err).Str(field, value).Msg("Rebuild failed, kept previous patterns")
		return err
	}
	r.logger.Debug().Str(field, value).Int("removed", len(patterns)-len(kept)).Msg("Removed patterns")
	return nil
}
