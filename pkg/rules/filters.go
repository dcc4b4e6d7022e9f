package rules

import (
	"cmp"
	"slices"

	"github.com/arthur-debert/spanruler/pkg/registry"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// SpanFilter combines the spans already on a document with new matches.
type SpanFilter func(existing, incoming []*types.Span) []*types.Span

// Filter names usable in configuration.
const (
	FilterFirstLongest       = "first_longest"
	FilterPrioritizeNew      = "prioritize_new"
	FilterPrioritizeExisting = "prioritize_existing"
)

var filters = registry.New[SpanFilter]()

func init() {
	registry.MustRegister[SpanFilter](filters, FilterFirstLongest, FirstLongest)
	registry.MustRegister[SpanFilter](filters, FilterPrioritizeNew, PrioritizeNew)
	registry.MustRegister[SpanFilter](filters, FilterPrioritizeExisting, PrioritizeExisting)
}

// LookupFilter returns a filter by name.
func LookupFilter(name string) (SpanFilter, error) {
	return filters.Get(name)
}

// FilterNames lists the registered filter names.
func FilterNames() []string {
	return filters.List()
}

// FirstLongest keeps a non-overlapping subset of both groups, preferring
// longer spans and, among equally long ones, the earliest.
func FirstLongest(existing, incoming []*types.Span) []*types.Span {
	return nonOverlapping(append(slices.Clone(existing), incoming...))
}

// PrioritizeNew keeps the non-overlapping longest incoming spans and the
// existing spans that do not overlap any of them.
func PrioritizeNew(existing, incoming []*types.Span) []*types.Span {
	return layer(incoming, existing)
}

// PrioritizeExisting keeps every existing span and the non-overlapping
// longest incoming spans that do not overlap them.
func PrioritizeExisting(existing, incoming []*types.Span) []*types.Span {
	return layer(existing, incoming)
}

func layer(first, second []*types.Span) []*types.Span {
	kept := nonOverlapping(first)
	taken := occupied(kept)
	var rest []*types.Span
	for _, s := range second {
		if !overlapsAny(taken, s) {
			rest = append(rest, s)
		}
	}
	out := append(kept, nonOverlapping(rest)...)
	sortByStart(out)
	return out
}

func nonOverlapping(spans []*types.Span) []*types.Span {
	ordered := slices.Clone(spans)
	slices.SortStableFunc(ordered, func(a, b *types.Span) int {
		if c := cmp.Compare(b.Len(), a.Len()); c != 0 {
			return c
		}
		return cmp.Compare(a.Start, b.Start)
	})

	taken := make(map[int]struct{})
	var out []*types.Span
	for _, s := range ordered {
		if s.Empty() || overlapsAny(taken, s) {
			continue
		}
		for i := s.Start; i < s.End; i++ {
			taken[i] = struct{}{}
		}
		out = append(out, s)
	}
	sortByStart(out)
	return out
}

func occupied(spans []*types.Span) map[int]struct{} {
	taken := make(map[int]struct{})
	for _, s := range spans {
		for i := s.Start; i < s.End; i++ {
			taken[i] = struct{}{}
		}
	}
	return taken
}

func overlapsAny(taken map[int]struct{}, s *types.Span) bool {
	for i := s.Start; i < s.End; i++ {
		if _, ok := taken[i]; ok {
			return true
		}
	}
	return false
}

func sortByStart(spans []*types.Span) {
	slices.SortStableFunc(spans, func(a, b *types.Span) int {
		return a.Key().Compare(b.Key())
	})
}
