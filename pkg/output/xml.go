package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/beevik/etree"
)

// XMLRenderer writes results as XML documents. Mixed content is not
// indented so the document text is reproduced exactly.
type XMLRenderer struct {
	w io.Writer
}

// NewXMLRenderer creates an XML renderer writing to w.
func NewXMLRenderer(w io.Writer) *XMLRenderer {
	return &XMLRenderer{w: w}
}

// ResultElement builds the <document> element for res: the text with
// inline highlighted spans, then every span and entity as attributes.
func ResultElement(res *Result) *etree.Element {
	el := etree.NewElement("document")
	el.CreateAttr("id", res.Doc.ID)
	if res.Source != "" {
		el.CreateAttr("source", res.Source)
	}
	el.AddChild(markup(res.Doc, res.Spans))
	el.AddChild(spansElement("spans", res.Spans))
	if len(res.Doc.Ents) > 0 {
		el.AddChild(spansElement("ents", res.Doc.Ents))
	}
	return el
}

func spansElement(tag string, spans []*types.Span) *etree.Element {
	group := etree.NewElement(tag)
	for _, s := range spans {
		span := group.CreateElement("span")
		span.CreateAttr("start", strconv.Itoa(s.Start))
		span.CreateAttr("end", strconv.Itoa(s.End))
		span.CreateAttr("label", s.Label)
		if s.ID != "" {
			span.CreateAttr("id", s.ID)
		}
		span.SetText(s.Text())
		ext := s.Ext()
		keys := make([]string, 0, len(ext))
		for k := range ext {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			e := span.CreateElement("ext")
			e.CreateAttr("name", k)
			e.SetText(fmt.Sprint(ext[k]))
		}
	}
	return group
}

func (r *XMLRenderer) RenderResults(results []*Result) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("results")
	for _, res := range results {
		root.AddChild(ResultElement(res))
	}
	return r.write(doc)
}

func (r *XMLRenderer) RenderTable(t *Table) error {
	doc := etree.NewDocument()
	table := doc.CreateElement("table")
	if t.Title != "" {
		table.CreateAttr("title", t.Title)
	}
	for _, row := range t.Rows {
		rowEl := table.CreateElement("row")
		for i, h := range t.Header {
			cell := rowEl.CreateElement("cell")
			cell.CreateAttr("name", h)
			if i < len(row) {
				cell.SetText(row[i])
			}
		}
	}
	doc.Indent(2)
	return r.write(doc)
}

func (r *XMLRenderer) RenderMessage(msg string) error {
	doc := etree.NewDocument()
	doc.CreateElement("message").SetText(StripTags(msg))
	return r.write(doc)
}

func (r *XMLRenderer) RenderError(err error) error {
	doc := etree.NewDocument()
	el := doc.CreateElement("error")
	el.CreateAttr("code", string(errors.GetErrorCode(err)))
	el.SetText(err.Error())
	return r.write(doc)
}

func (r *XMLRenderer) write(doc *etree.Document) error {
	if _, err := doc.WriteTo(r.w); err != nil {
		return errors.Wrap(err, errors.ErrRender, "failed to write XML")
	}
	if _, err := io.WriteString(r.w, "\n"); err != nil {
		return errors.Wrap(err, errors.ErrRender, "failed to write XML")
	}
	return nil
}

var _ Renderer = (*XMLRenderer)(nil)
