package output

import (
	_ "embed"
	"hash/fnv"
	"io"
	"os"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

//go:embed embedded/styles.yaml
var defaultStyles []byte

// ColorDef is an adaptive color definition.
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style definition referencing named colors.
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
}

// StylesConfig is the styles file layout.
type StylesConfig struct {
	Colors map[string]ColorDef  `yaml:"colors"`
	Styles map[string]StyleDef  `yaml:"styles"`
	Labels []string             `yaml:"labels"`
}

// StyleMap maps semantic names to lipgloss styles.
type StyleMap map[string]lipgloss.Style

// Styles holds the resolved styles and the label palette.
type Styles struct {
	Named  StyleMap
	labels []lipgloss.AdaptiveColor
}

// DefaultStyles returns the embedded styles.
func DefaultStyles() *Styles {
	s, err := ParseStyles(defaultStyles)
	if err != nil {
		panic("embedded styles are invalid: " + err.Error())
	}
	return s
}

// LoadStyles reads a styles YAML file.
func LoadStyles(path string) (*Styles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read styles file %s", path)
	}
	return ParseStyles(data)
}

// ParseStyles builds styles from YAML.
func ParseStyles(data []byte) (*Styles, error) {
	var cfg StylesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse styles")
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	s := &Styles{Named: make(StyleMap, len(cfg.Styles))}
	for name, def := range cfg.Styles {
		s.Named[name] = buildStyle(def, colors)
	}
	for _, name := range cfg.Labels {
		if c, ok := colors[name]; ok {
			s.labels = append(s.labels, c)
		}
	}
	return s, nil
}

func buildStyle(def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	style := lipgloss.NewStyle()
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}
	if c, ok := colors[def.Foreground]; ok {
		style = style.Foreground(c)
	}
	if c, ok := colors[def.Background]; ok {
		style = style.Background(c)
	}
	return style
}

// Get returns a named style, or a plain style when missing.
func (s *Styles) Get(name string) lipgloss.Style {
	if st, ok := s.Named[name]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// ForLabel returns the span style colored for label. The same label
// always gets the same color.
func (s *Styles) ForLabel(label string) lipgloss.Style {
	base := s.Get("Span")
	if len(s.labels) == 0 {
		return base
	}
	h := fnv.New32a()
	_, _ = io.WriteString(h, label)
	return base.Foreground(s.labels[int(h.Sum32()%uint32(len(s.labels)))])
}

// ColorSupported reports whether styled output should be written to f:
// NO_COLOR is unset, f is a terminal and the terminal has colors.
func ColorSupported(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return termenv.NewOutput(f).ColorProfile() != termenv.Ascii
}
