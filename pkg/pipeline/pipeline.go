// Package pipeline runs a tokenizer followed by an ordered list of named
// stages over each document. Stages can be temporarily disabled, which the
// ruler relies on to tokenize its own phrase patterns without running
// itself or anything after it.
package pipeline

import (
	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/logging"
	"github.com/arthur-debert/spanruler/pkg/tokenizer"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/rs/zerolog"
)

// Stage processes a document in place.
type Stage interface {
	Process(doc *types.Doc) error
}

// StageFunc adapts a function to Stage.
type StageFunc func(doc *types.Doc) error

// Process calls f(doc).
func (f StageFunc) Process(doc *types.Doc) error {
	return f(doc)
}

type entry struct {
	name  string
	stage Stage
}

// Pipeline is a tokenizer plus named stages. It is not safe for
// concurrent mutation.
type Pipeline struct {
	tokenizer *tokenizer.Tokenizer
	stages    []entry
	disabled  map[string]int
	logger    zerolog.Logger
}

// New creates a pipeline. A nil tokenizer uses tokenizer.New().
func New(tok *tokenizer.Tokenizer) *Pipeline {
	if tok == nil {
		tok = tokenizer.New()
	}
	return &Pipeline{
		tokenizer: tok,
		disabled:  make(map[string]int),
		logger:    logging.GetLogger("pipeline"),
	}
}

// Tokenizer returns the pipeline tokenizer.
func (p *Pipeline) Tokenizer() *tokenizer.Tokenizer {
	return p.tokenizer
}

// AddStage appends a stage. Names must be unique.
func (p *Pipeline) AddStage(name string, stage Stage) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "stage name cannot be empty")
	}
	if stage == nil {
		return errors.Newf(errors.ErrInvalidInput, "stage %q is nil", name)
	}
	if p.index(name) >= 0 {
		return errors.Newf(errors.ErrAlreadyExists, "stage %q already exists", name)
	}
	p.stages = append(p.stages, entry{name: name, stage: stage})
	p.logger.Debug().Str("stage", name).Int("position", len(p.stages)-1).Msg("Added stage")
	return nil
}

// RemoveStage removes a stage by name.
func (p *Pipeline) RemoveStage(name string) error {
	i := p.index(name)
	if i < 0 {
		return errors.Newf(errors.ErrStageNotFound, "stage %q not found", name).WithDetail("stage", name)
	}
	p.stages = append(p.stages[:i], p.stages[i+1:]...)
	delete(p.disabled, name)
	return nil
}

// Stage returns the stage registered under name.
func (p *Pipeline) Stage(name string) (Stage, bool) {
	if i := p.index(name); i >= 0 {
		return p.stages[i].stage, true
	}
	return nil, false
}

// Names lists all stage names in order, disabled ones included.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, e := range p.stages {
		names[i] = e.name
	}
	return names
}

// Enabled lists the names of the stages that currently run.
func (p *Pipeline) Enabled() []string {
	var names []string
	for _, e := range p.stages {
		if p.disabled[e.name] == 0 {
			names = append(names, e.name)
		}
	}
	return names
}

// From returns name and every stage after it. It returns nil when name is
// not part of the pipeline.
func (p *Pipeline) From(name string) []string {
	i := p.index(name)
	if i < 0 {
		return nil
	}
	return p.Names()[i:]
}

// Disable turns off the named stages until the returned restore function
// is called. Disables nest: a stage runs again once every restore that
// covers it has been called. Restore is idempotent.
func (p *Pipeline) Disable(names ...string) (restore func(), err error) {
	for _, name := range names {
		if p.index(name) < 0 {
			return func() {}, errors.Newf(errors.ErrStageNotFound, "cannot disable unknown stage %q", name).
				WithDetail("stage", name)
		}
	}
	for _, name := range names {
		p.disabled[name]++
	}
	if len(names) > 0 {
		p.logger.Debug().Strs("stages", names).Msg("Disabled stages")
	}

	done := false
	return func() {
		if done {
			return
		}
		done = true
		for _, name := range names {
			if p.disabled[name] > 0 {
				p.disabled[name]--
			}
		}
	}, nil
}

// Run tokenizes text and runs the enabled stages over it.
func (p *Pipeline) Run(text string) (*types.Doc, error) {
	doc := p.tokenizer.Tokenize(text)
	if err := p.Process(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Pipe runs every text through the pipeline, stopping at the first error.
func (p *Pipeline) Pipe(texts []string) ([]*types.Doc, error) {
	docs := make([]*types.Doc, 0, len(texts))
	for _, text := range texts {
		doc, err := p.Run(text)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Process runs the enabled stages over an already tokenized document.
func (p *Pipeline) Process(doc *types.Doc) error {
	for _, e := range p.stages {
		if p.disabled[e.name] > 0 {
			continue
		}
		if err := e.stage.Process(doc); err != nil {
			return errors.Wrapf(err, errors.ErrStageFailed, "stage %q failed", e.name).
				WithDetail("stage", e.name)
		}
	}
	return nil
}

// TokenizeMany tokenizes texts without running any stage.
func (p *Pipeline) TokenizeMany(texts []string) []*types.Doc {
	return p.tokenizer.TokenizeMany(texts)
}

func (p *Pipeline) index(name string) int {
	for i, e := range p.stages {
		if e.name == name {
			return i
		}
	}
	return -1
}
