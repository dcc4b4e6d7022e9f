package rules

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"slices"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// Rule is what a match key resolves to.
type Rule struct {
	Label   string
	ID      string
	OnMatch *types.OnMatch
}

// Registry maps match keys to rules. Keys depend only on the
// (label, id, on_match id) triple, so re-registering a triple returns the
// same key and replaces the stored callback spec.
type Registry struct {
	rules map[types.MatchKey]Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[types.MatchKey]Rule)}
}

// Key derives the match key of a rule triple: 64-bit FNV-1a over the
// length-prefixed fields.
func Key(label, id, onMatchID string) types.MatchKey {
	h := fnv.New64a()
	var size [binary.MaxVarintLen64]byte
	for _, field := range []string{label, id, onMatchID} {
		n := binary.PutUvarint(size[:], uint64(len(field)))
		_, _ = h.Write(size[:n])
		_, _ = io.WriteString(h, field)
	}
	return types.MatchKey(h.Sum64())
}

// Register stores a rule and returns its key.
func (r *Registry) Register(label, id string, onMatch *types.OnMatch) types.MatchKey {
	onMatchID := ""
	if onMatch != nil {
		onMatchID = onMatch.ID
		cp := *onMatch
		onMatch = &cp
	}
	key := Key(label, id, onMatchID)
	r.rules[key] = Rule{Label: label, ID: id, OnMatch: onMatch}
	return key
}

// Resolve returns the rule registered under key.
func (r *Registry) Resolve(key types.MatchKey) (Rule, error) {
	rule, ok := r.rules[key]
	if !ok {
		return Rule{}, errors.Newf(errors.ErrUnknownKey, "match key %d is not registered", key).
			WithDetail("key", uint64(key))
	}
	return rule, nil
}

// Remove forgets key.
func (r *Registry) Remove(key types.MatchKey) {
	delete(r.rules, key)
}

// Keys returns the registered keys in ascending order.
func (r *Registry) Keys() []types.MatchKey {
	keys := make([]types.MatchKey, 0, len(r.rules))
	for k := range r.rules {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of distinct rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Clear removes every rule.
func (r *Registry) Clear() {
	r.rules = make(map[types.MatchKey]Rule)
}
