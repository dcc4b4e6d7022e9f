package rules

import (
	"github.com/arthur-debert/spanruler/pkg/callbacks"
	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/pipeline"
	"github.com/go-viper/mapstructure/v2"
)

// Config is the settings map accepted by the ruler stage factory.
type Config struct {
	SpansKey          string `mapstructure:"spans_key"`
	SpansFilter       string `mapstructure:"spans_filter"`
	AnnotateEnts      bool   `mapstructure:"annotate_ents"`
	EntsFilter        string `mapstructure:"ents_filter"`
	PhraseMatcherAttr string `mapstructure:"phrase_matcher_attr"`
	Validate          bool   `mapstructure:"validate"`
	Overwrite         bool   `mapstructure:"overwrite"`
}

// DefaultConfig returns the factory defaults.
func DefaultConfig() Config {
	return Config{
		SpansKey:          DefaultSpansKey,
		EntsFilter:        FilterFirstLongest,
		PhraseMatcherAttr: "ORTH",
		Overwrite:         true,
	}
}

// DecodeConfig overlays settings on the defaults. Unknown keys are errors.
func DecodeConfig(settings map[string]any) (Config, error) {
	cfg := DefaultConfig()
	if len(settings) == 0 {
		return cfg, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return cfg, errors.Wrap(err, errors.ErrInternal, "failed to create config decoder")
	}
	if err := dec.Decode(settings); err != nil {
		return cfg, errors.Wrap(err, errors.ErrConfigValid, "invalid ruler settings")
	}
	return cfg, nil
}

// Options converts the config to ruler options.
func (c Config) Options() ([]Option, error) {
	opts := []Option{
		WithSpansKey(c.SpansKey),
		WithAnnotateEnts(c.AnnotateEnts),
		WithOverwrite(c.Overwrite),
		WithPhraseMatcherAttr(c.PhraseMatcherAttr),
		WithValidate(c.Validate),
	}
	if c.SpansFilter != "" {
		f, err := LookupFilter(c.SpansFilter)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "unknown spans_filter %q", c.SpansFilter)
		}
		opts = append(opts, WithSpansFilter(f))
	}
	if c.EntsFilter != "" {
		f, err := LookupFilter(c.EntsFilter)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "unknown ents_filter %q", c.EntsFilter)
		}
		opts = append(opts, WithEntsFilter(f))
	}
	return opts, nil
}

func init() {
	pipeline.MustRegisterFactory(DefaultName, newStage)
}

// newStage builds a ruler stage from a settings map using the process-wide
// callback registry.
func newStage(p *pipeline.Pipeline, name string, settings map[string]any) (pipeline.Stage, error) {
	cfg, err := DecodeConfig(settings)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithName(name), WithCallbacks(callbacks.Default()))
	r, err := New(p, opts...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// AddToPipeline builds a ruler with the stage factory and appends it to p.
func AddToPipeline(p *pipeline.Pipeline, name string, settings map[string]any) (*Ruler, error) {
	stage, err := p.AddFromFactory(DefaultName, name, settings)
	if err != nil {
		return nil, err
	}
	return stage.(*Ruler), nil
}
