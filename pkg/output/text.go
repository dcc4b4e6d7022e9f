package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/pterm/pterm"
)

// TextRenderer writes human readable output: the document with
// highlighted spans followed by a table of every span.
type TextRenderer struct {
	w      io.Writer
	color  bool
	styles *Styles
}

func (r *TextRenderer) style(tag, text string) string {
	if !r.color {
		return text
	}
	return r.styles.Get(tag).Render(text)
}

func (r *TextRenderer) RenderResults(results []*Result) error {
	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(r.w); err != nil {
				return errors.Wrap(err, errors.ErrRender, "failed to write output")
			}
		}
		if err := r.renderResult(res); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextRenderer) renderResult(res *Result) error {
	var b strings.Builder
	if res.Source != "" {
		b.WriteString(r.style("Header", res.Source))
		b.WriteString("\n")
	}
	b.WriteString(styleMarkup(markup(res.Doc, res.Spans), r.styles, r.color))
	b.WriteString("\n")

	if len(res.Spans) == 0 {
		b.WriteString(r.style("Muted", "no matches"))
		b.WriteString("\n")
	} else {
		data := pterm.TableData{{"START", "END", "LABEL", "ID", "TEXT", "EXT"}}
		for _, s := range res.Spans {
			data = append(data, []string{
				strconv.Itoa(s.Start), strconv.Itoa(s.End), s.Label, s.ID, s.Text(), formatExt(s.Ext()),
			})
		}
		table, err := r.table().WithData(data).Srender()
		if err != nil {
			return errors.Wrap(err, errors.ErrRender, "failed to render span table")
		}
		b.WriteString(table)
		b.WriteString("\n")
	}
	return r.write(b.String())
}

func (r *TextRenderer) RenderTable(t *Table) error {
	var b strings.Builder
	if t.Title != "" {
		b.WriteString(r.style("Header", t.Title))
		b.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		b.WriteString(r.style("Muted", "none"))
		b.WriteString("\n")
		return r.write(b.String())
	}
	data := pterm.TableData{t.Header}
	data = append(data, t.Rows...)
	table, err := r.table().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrRender, "failed to render table")
	}
	b.WriteString(table)
	b.WriteString("\n")
	return r.write(b.String())
}

// RenderMessage writes msg, expanding inline style tags.
func (r *TextRenderer) RenderMessage(msg string) error {
	if r.color {
		msg = ExpandTags(msg, r.styles)
	} else {
		msg = StripTags(msg)
	}
	return r.write(msg + "\n")
}

func (r *TextRenderer) RenderError(err error) error {
	msg := "<Error>Error:</Error> " + Escape(err.Error())
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg += fmt.Sprintf("\n  <Muted>%s:</Muted> %s", Escape(k), Escape(fmt.Sprint(details[k])))
		}
	}
	return r.RenderMessage(msg)
}

func (r *TextRenderer) table() *pterm.TablePrinter {
	t := pterm.DefaultTable.WithHasHeader()
	if !r.color {
		t = t.WithHeaderStyle(pterm.NewStyle()).WithSeparatorStyle(pterm.NewStyle())
	}
	return t
}

func (r *TextRenderer) write(s string) error {
	if _, err := io.WriteString(r.w, s); err != nil {
		return errors.Wrap(err, errors.ErrRender, "failed to write output")
	}
	return nil
}

// formatExt renders extension attributes as sorted key=value pairs.
func formatExt(ext map[string]any) string {
	if len(ext) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ext))
	for k := range ext {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, ext[k]))
	}
	return strings.Join(parts, " ")
}

var _ Renderer = (*TextRenderer)(nil)

