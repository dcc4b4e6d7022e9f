// Package output renders match results and listings as text, JSON or XML.
package output

import (
	"io"
	"strings"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatXML}

// Result is one processed document and the spans to report for it.
type Result struct {
	Source string
	Doc    *types.Doc
	Spans  []*types.Span
}

// Table is a generic listing such as patterns or callbacks.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// Renderer writes results in one format.
type Renderer interface {
	RenderResults(results []*Result) error
	RenderTable(t *Table) error
	RenderMessage(msg string) error
	RenderError(err error) error
}

// Options configure a renderer.
type Options struct {
	Format string
	Color  bool
	Styles *Styles
}

// New returns the renderer for opts.Format writing to w.
func New(w io.Writer, opts Options) (Renderer, error) {
	styles := opts.Styles
	if styles == nil {
		styles = DefaultStyles()
	}
	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		return &TextRenderer{w: w, color: opts.Color, styles: styles}, nil
	case FormatJSON:
		return NewJSONRenderer(w), nil
	case FormatXML:
		return NewXMLRenderer(w), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown output format %q", opts.Format).
			WithDetail("format", opts.Format)
	}
}

// rowMap pairs table headers with a row.
func rowMap(header, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(row) {
			m[h] = row[i]
		} else {
			m[h] = ""
		}
	}
	return m
}
