package rules

import (
	"slices"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// Process runs the ruler as a pipeline stage. Matches are written to the
// span group named by the spans key and, when entity annotation is on, to
// doc.Ents. A ruler without patterns logs a warning and writes empty
// results.
func (r *Ruler) Process(doc *types.Doc) error {
	matches, err := r.Match(doc)
	if errors.IsErrorCode(err, errors.ErrNoPatterns) {
		r.logger.Warn().Msg("Ruler has no patterns")
		matches, err = nil, nil
	}
	if err != nil {
		return err
	}
	r.setAnnotations(doc, matches)
	return nil
}

func (r *Ruler) setAnnotations(doc *types.Doc, matches []*types.Span) {
	if r.spansKey != "" {
		var existing []*types.Span
		if !r.overwrite {
			existing = doc.SpanGroup(r.spansKey)
		}
		var group []*types.Span
		if r.spansFilter != nil {
			group = r.spansFilter(existing, matches)
		} else {
			group = append(slices.Clone(existing), matches...)
		}
		doc.SetSpanGroup(r.spansKey, finalize(group))
	}

	if r.annotateEnts {
		var existing []*types.Span
		if !r.overwrite {
			existing = doc.Ents
		}
		setEnts(doc, finalize(r.entsFilter(existing, matches)))
	}
}

// setEnts replaces the document entities and the per-token entity types.
func setEnts(doc *types.Doc, ents []*types.Span) {
	doc.Ents = ents
	for i := range doc.Tokens {
		doc.Tokens[i].EntType = ""
	}
	for _, e := range ents {
		for i := e.Start; i < e.End && i < len(doc.Tokens); i++ {
			doc.Tokens[i].EntType = e.Label
		}
	}
}
