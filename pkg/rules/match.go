package rules

import (
	"slices"

	"github.com/arthur-debert/spanruler/pkg/callbacks"
	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// Match returns the spans found in doc after every rule's callback has
// had its say, deduplicated and sorted by (start, end, label, id).
//
// It fails with NO_PATTERNS when no pattern was added and with
// CALLBACK_FAILED when a callback returns an error.
func (r *Ruler) Match(doc *types.Doc) ([]*types.Span, error) {
	if len(r.patterns) == 0 {
		return nil, errors.Newf(errors.ErrNoPatterns, "ruler %q has no patterns", r.name)
	}

	raw := append(r.tokens.Match(doc), r.phrases.Match(doc)...)

	var spans []*types.Span
	for _, m := range raw {
		if m.Start == m.End {
			continue
		}
		rule, err := r.rules.Resolve(m.Key)
		if err != nil {
			return nil, err
		}
		span := types.NewSpan(doc, m.Start, m.End, rule.Label, rule.ID)
		resolved, err := r.dispatch(span, rule.OnMatch)
		if err != nil {
			return nil, err
		}
		spans = append(spans, resolved...)
	}

	out := finalize(spans)
	r.logger.Debug().
		Str("doc", doc.ID).
		Int("raw", len(raw)).
		Int("spans", len(out)).
		Msg("Matched document")
	return out, nil
}

// dispatch runs the rule callback for span. Unregistered callbacks keep
// the raw span.
func (r *Ruler) dispatch(span *types.Span, onMatch *types.OnMatch) ([]*types.Span, error) {
	if onMatch == nil {
		return []*types.Span{span}, nil
	}

	fn, ok := r.callbacks.Lookup(onMatch.ID)
	if !ok {
		r.logger.Warn().
			Str("callback", onMatch.ID).
			Str("label", span.Label).
			Msg("Callback is not registered, keeping the match unchanged")
		return []*types.Span{span}, nil
	}

	out, err := fn(span, callbacks.ArgsFrom(onMatch))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCallbackFailed, "callback %q failed on %q", onMatch.ID, span.Text()).
			WithDetail("callback", onMatch.ID).
			WithDetail("label", span.Label).
			WithDetail("start", span.Start).
			WithDetail("end", span.End)
	}
	return out, nil
}

// finalize drops empty spans and duplicates, keeping the first occurrence
// of every (start, end, label, id), and sorts the rest.
func finalize(spans []*types.Span) []*types.Span {
	seen := make(map[types.SpanKey]struct{}, len(spans))
	out := make([]*types.Span, 0, len(spans))
	for _, s := range spans {
		if s == nil || s.Empty() {
			continue
		}
		k := s.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b *types.Span) int {
		return a.Key().Compare(b.Key())
	})
	return out
}
