// Package matchers provides the two match-producing primitives the ruler
// is built on:
//
//   - TokenMatcher matches ordered sequences of per-token attribute
//     constraints ({"LOWER": "san"}, {"SHAPE": "dd.dd.dddd"},
//     {"TEXT": {"REGEX": "^[A-Z]"}, "OP": "+"}).
//   - PhraseMatcher matches tokenized literal phrases, comparing one token
//     attribute (ORTH, LOWER or NORM).
//
// Both report raw (key, start, end) triples. Keys are opaque to the
// matchers; the caller maps them back to rule metadata.
package matchers

import (
	"cmp"
	"slices"

	"github.com/arthur-debert/spanruler/pkg/types"
)

// RawMatch is a single match before any rule resolution.
type RawMatch struct {
	Key   types.MatchKey
	Start int
	End   int
}

func sortMatches(ms []RawMatch) {
	slices.SortFunc(ms, func(a, b RawMatch) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(a.End, b.End); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}
