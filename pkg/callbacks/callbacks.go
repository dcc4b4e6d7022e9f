// Package callbacks holds the "second opinion" functions a rule can name
// in its on_match spec. A callback receives the raw matched span plus the
// rule's stored arguments and returns the spans to keep: none to veto the
// match, the span itself (possibly enriched), or several to split it.
//
// Callbacks are looked up by string id in a Registry. Default() is the
// process-wide registry that built-ins and embedding applications register
// into; rulers can be given their own registry instead.
package callbacks

import (
	"fmt"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/registry"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// Func is a second-opinion callback.
type Func func(span *types.Span, args Args) ([]*types.Span, error)

// Args are the extra arguments stored with a rule's on_match spec.
type Args struct {
	Positional []any
	Named      map[string]any
}

// ArgsFrom builds Args from an on_match spec.
func ArgsFrom(spec *types.OnMatch) Args {
	if spec == nil {
		return Args{}
	}
	return Args{Positional: spec.Args, Named: spec.Kwargs}
}

// Param returns the argument bound to a parameter, looking at the named
// arguments first and then at position pos.
func (a Args) Param(pos int, name string) (any, bool) {
	if v, ok := a.Named[name]; ok {
		return v, true
	}
	if pos >= 0 && pos < len(a.Positional) {
		return a.Positional[pos], true
	}
	return nil, false
}

// String returns a string parameter or def when unset.
func (a Args) String(pos int, name, def string) (string, error) {
	v, ok := a.Param(pos, name)
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Newf(errors.ErrCallbackArgs, "argument %q must be a string, got %T", name, v)
	}
	return s, nil
}

// Int returns an integer parameter or def when unset. Decoded numbers of
// any width are accepted as long as they are whole.
func (a Args) Int(pos int, name string, def int) (int, error) {
	v, ok := a.Param(pos, name)
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, errors.Newf(errors.ErrCallbackArgs, "argument %q must be an integer, got %v", name, v)
}

// Bool returns a boolean parameter or def when unset.
func (a Args) Bool(pos int, name string, def bool) (bool, error) {
	v, ok := a.Param(pos, name)
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.Newf(errors.ErrCallbackArgs, "argument %q must be a boolean, got %T", name, v)
	}
	return b, nil
}

// Registry maps callback ids to functions. It is safe for concurrent use.
type Registry struct {
	items registry.Registry[Func]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: registry.New[Func]()}
}

// Register adds fn under id, replacing any previous registration.
func (r *Registry) Register(id string, fn Func) error {
	if fn == nil {
		return errors.Newf(errors.ErrInvalidInput, "callback %q is nil", id)
	}
	return r.items.Set(id, fn)
}

// MustRegister is Register for init() functions.
func (r *Registry) MustRegister(id string, fn Func) {
	if err := r.Register(id, fn); err != nil {
		panic(fmt.Sprintf("failed to register callback %s: %v", id, err))
	}
}

// Lookup returns the callback for id.
func (r *Registry) Lookup(id string) (Func, bool) {
	return r.items.Lookup(id)
}

// Get returns the callback for id or a CALLBACK_NOT_FOUND error.
func (r *Registry) Get(id string) (Func, error) {
	fn, ok := r.items.Lookup(id)
	if !ok {
		return nil, errors.Newf(errors.ErrCallbackNotFound, "callback %q is not registered", id)
	}
	return fn, nil
}

// Remove unregisters id.
func (r *Registry) Remove(id string) error {
	return r.items.Remove(id)
}

// Names lists the registered ids in sorted order.
func (r *Registry) Names() []string {
	return r.items.List()
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds fn to the process-wide registry.
func Register(id string, fn Func) error {
	return defaultRegistry.Register(id, fn)
}

// MustRegister adds fn to the process-wide registry and panics on error.
func MustRegister(id string, fn Func) {
	defaultRegistry.MustRegister(id, fn)
}
