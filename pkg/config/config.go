package config

import (
	"slices"
	"strings"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/matchers"
	"github.com/arthur-debert/spanruler/pkg/rules"
	"github.com/arthur-debert/spanruler/pkg/tokenizer"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// OutputFormats are the accepted values of output.format.
var OutputFormats = []string{"text", "json", "xml"}

// Config is the full application configuration.
type Config struct {
	Ruler     RulerConfig     `koanf:"ruler" toml:"ruler"`
	Tokenizer TokenizerConfig `koanf:"tokenizer" toml:"tokenizer"`
	Output    OutputConfig    `koanf:"output" toml:"output"`
	Log       LogConfig       `koanf:"log" toml:"log"`
}

// RulerConfig holds the ruler stage settings.
type RulerConfig struct {
	Name              string `koanf:"name" toml:"name"`
	SpansKey          string `koanf:"spans_key" toml:"spans_key"`
	SpansFilter       string `koanf:"spans_filter" toml:"spans_filter"`
	AnnotateEnts      bool   `koanf:"annotate_ents" toml:"annotate_ents"`
	EntsFilter        string `koanf:"ents_filter" toml:"ents_filter"`
	Overwrite         bool   `koanf:"overwrite" toml:"overwrite"`
	Validate          bool   `koanf:"validate" toml:"validate"`
	PhraseMatcherAttr string `koanf:"phrase_matcher_attr" toml:"phrase_matcher_attr"`
}

// TokenizerConfig overrides the tokenizer punctuation sets. Empty values
// keep the built-in sets.
type TokenizerConfig struct {
	Prefixes string `koanf:"prefixes" toml:"prefixes"`
	Suffixes string `koanf:"suffixes" toml:"suffixes"`
	Infixes  string `koanf:"infixes" toml:"infixes"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"`
	NoColor bool   `koanf:"no_color" toml:"no_color"`
	// Styles is an optional styles YAML file replacing the built-in one.
	Styles  string `koanf:"styles" toml:"styles"`
}

// LogConfig controls logging.
type LogConfig struct {
	Verbosity int `koanf:"verbosity" toml:"verbosity"`
}

// Validate checks values that cannot be expressed in the types.
func (c *Config) Validate() error {
	if c.Ruler.Name == "" {
		return errors.New(errors.ErrConfigValid, "ruler.name cannot be empty")
	}
	attr := strings.ToUpper(c.Ruler.PhraseMatcherAttr)
	if _, ok := matchers.TokenAttr(&types.Token{}, attr); attr != "" && !ok {
		return errors.Newf(errors.ErrConfigValid, "ruler.phrase_matcher_attr %q is not a string token attribute", c.Ruler.PhraseMatcherAttr).
			WithDetail("key", "ruler.phrase_matcher_attr")
	}
	ruler, err := rules.DecodeConfig(c.RulerSettings())
	if err != nil {
		return err
	}
	if _, err := ruler.Options(); err != nil {
		return err
	}
	if !slices.Contains(OutputFormats, c.Output.Format) {
		return errors.Newf(errors.ErrConfigValid, "output.format %q must be one of %s", c.Output.Format, strings.Join(OutputFormats, ", ")).
			WithDetail("key", "output.format")
	}
	if c.Log.Verbosity < 0 || c.Log.Verbosity > 3 {
		return errors.Newf(errors.ErrConfigValid, "log.verbosity %d must be between 0 and 3", c.Log.Verbosity).
			WithDetail("key", "log.verbosity")
	}
	return nil
}

// RulerSettings returns the ruler section in the shape the ruler stage
// factory accepts.
func (c *Config) RulerSettings() map[string]any {
	return map[string]any{
		"spans_key":           c.Ruler.SpansKey,
		"spans_filter":        c.Ruler.SpansFilter,
		"annotate_ents":       c.Ruler.AnnotateEnts,
		"ents_filter":         c.Ruler.EntsFilter,
		"overwrite":           c.Ruler.Overwrite,
		"validate":            c.Ruler.Validate,
		"phrase_matcher_attr": c.Ruler.PhraseMatcherAttr,
	}
}

// TokenizerOptions returns tokenizer options for the non-empty overrides.
func (c *Config) TokenizerOptions() []tokenizer.Option {
	var opts []tokenizer.Option
	if c.Tokenizer.Prefixes != "" {
		opts = append(opts, tokenizer.WithPrefixes(c.Tokenizer.Prefixes))
	}
	if c.Tokenizer.Suffixes != "" {
		opts = append(opts, tokenizer.WithSuffixes(c.Tokenizer.Suffixes))
	}
	if c.Tokenizer.Infixes != "" {
		opts = append(opts, tokenizer.WithInfixes(c.Tokenizer.Infixes))
	}
	return opts
}
