package pipeline

import (
	"fmt"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/registry"
)

// Factory builds a stage for pipeline p. name is the stage name the
// result will be added under; cfg holds factory-specific settings.
type Factory func(p *Pipeline, name string, cfg map[string]any) (Stage, error)

var factories = registry.New[Factory]()

// RegisterFactory makes a stage factory available by name.
func RegisterFactory(name string, f Factory) error {
	return factories.Register(name, f)
}

// MustRegisterFactory is RegisterFactory for init() functions.
func MustRegisterFactory(name string, f Factory) {
	if err := RegisterFactory(name, f); err != nil {
		panic(fmt.Sprintf("failed to register stage factory %s: %v", name, err))
	}
}

// Factories lists the registered factory names.
func Factories() []string {
	return factories.List()
}

// AddFromFactory builds a stage with the named factory and appends it
// under name. An empty name defaults to the factory name.
func (p *Pipeline) AddFromFactory(factory, name string, cfg map[string]any) (Stage, error) {
	f, ok := factories.Lookup(factory)
	if !ok {
		return nil, errors.Newf(errors.ErrStageNotFound, "no stage factory named %q", factory).
			WithDetail("factory", factory)
	}
	if name == "" {
		name = factory
	}
	stage, err := f(p, name, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.AddStage(name, stage); err != nil {
		return nil, err
	}
	return stage, nil
}
