package output

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// JSONRenderer writes indented JSON, one value per call.
type JSONRenderer struct {
	w io.Writer
}

// NewJSONRenderer creates a JSON renderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{w: w}
}

// SpanJSON is the JSON form of a span.
type SpanJSON struct {
	Start int            `json:"start"`
	End   int            `json:"end"`
	Label string         `json:"label"`
	ID    string         `json:"id,omitempty"`
	Text  string         `json:"text"`
	Ext   map[string]any `json:"ext,omitempty"`
}

// ResultJSON is the JSON form of a result.
type ResultJSON struct {
	Source string     `json:"source,omitempty"`
	DocID  string     `json:"doc_id"`
	Text   string     `json:"text"`
	Spans  []SpanJSON `json:"spans"`
	Ents   []SpanJSON `json:"ents,omitempty"`
}

// NewResultJSON converts a result.
func NewResultJSON(res *Result) ResultJSON {
	return ResultJSON{
		Source: res.Source,
		DocID:  res.Doc.ID,
		Text:   res.Doc.Text(),
		Spans:  spansJSON(res.Spans),
		Ents:   spansJSON(res.Doc.Ents),
	}
}

func spansJSON(spans []*types.Span) []SpanJSON {
	out := make([]SpanJSON, 0, len(spans))
	for _, s := range spans {
		out = append(out, SpanJSON{
			Start: s.Start,
			End:   s.End,
			Label: s.Label,
			ID:    s.ID,
			Text:  s.Text(),
			Ext:   s.Ext(),
		})
	}
	return out
}

func (r *JSONRenderer) RenderResults(results []*Result) error {
	out := make([]ResultJSON, 0, len(results))
	for _, res := range results {
		out = append(out, NewResultJSON(res))
	}
	return r.encode(out)
}

func (r *JSONRenderer) RenderTable(t *Table) error {
	rows := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rows = append(rows, rowMap(t.Header, row))
	}
	return r.encode(map[string]any{"title": t.Title, "rows": rows})
}

func (r *JSONRenderer) RenderMessage(msg string) error {
	return r.encode(map[string]string{"message": StripTags(msg)})
}

func (r *JSONRenderer) RenderError(err error) error {
	payload := map[string]any{
		"error": err.Error(),
		"code":  errors.GetErrorCode(err),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		payload["details"] = details
	}
	return r.encode(payload)
}

func (r *JSONRenderer) encode(v any) error {
	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrRender, "failed to encode JSON")
	}
	return nil
}

var _ Renderer = (*JSONRenderer)(nil)
