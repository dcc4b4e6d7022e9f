package output

import (
	"strings"

	"github.com/arthur-debert/spanruler/pkg/rules"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/beevik/etree"
)

// markup builds a <text> element holding the document text with the
// highlighted spans as inline <span> children. Overlapping spans cannot
// nest inline, so only a first-longest selection is highlighted.
func markup(doc *types.Doc, spans []*types.Span) *etree.Element {
	el := etree.NewElement("text")
	selected := rules.FirstLongest(nil, spans)

	pos := 0
	for _, s := range selected {
		if s.Start > pos {
			el.CreateText(textBetween(doc, pos, s.Start))
		}
		span := el.CreateElement("span")
		span.CreateAttr("label", s.Label)
		if s.ID != "" {
			span.CreateAttr("id", s.ID)
		}
		span.SetText(s.Text())
		last := doc.Tokens[s.End-1]
		if last.Whitespace != "" {
			el.CreateText(last.Whitespace)
		}
		pos = s.End
	}
	if pos < doc.Len() {
		el.CreateText(textBetween(doc, pos, doc.Len()))
	}
	return el
}

// textBetween returns the text of tokens [start, end) with whitespace.
func textBetween(doc *types.Doc, start, end int) string {
	var b strings.Builder
	for _, t := range doc.Tokens[start:end] {
		b.WriteString(t.Text)
		b.WriteString(t.Whitespace)
	}
	return b.String()
}

// styleMarkup renders a markup element for the terminal. Without color
// spans are shown as text[LABEL].
func styleMarkup(el *etree.Element, styles *Styles, color bool) string {
	var b strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			label := t.SelectAttrValue("label", "")
			if color {
				b.WriteString(styles.ForLabel(label).Render(t.Text()))
				b.WriteString(styles.Get("Label").Render("[" + label + "]"))
			} else {
				b.WriteString(t.Text() + "[" + label + "]")
			}
		}
	}
	return b.String()
}

// ExpandTags renders inline style tags such as "<Error>failed</Error>"
// using the named styles. Input that is not well formed is returned
// unchanged.
func ExpandTags(input string, styles *Styles) string {
	return walkTags(input, func(tag, text string) string {
		return styles.Get(tag).Render(text)
	})
}

// StripTags removes inline style tags, keeping their text.
func StripTags(input string) string {
	return walkTags(input, func(_, text string) string { return text })
}

func walkTags(input string, render func(tag, text string) string) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString("<root>" + input + "</root>"); err != nil {
		return input
	}
	var b strings.Builder
	for _, tok := range doc.Root().Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			b.WriteString(render(t.Tag, t.Text()))
		}
	}
	return b.String()
}

// Escape makes s safe to embed in tag markup.
func Escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
