package callbacks

import (
	"strings"
	"time"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/coregx/coregex"
)

// Built-in callback ids.
const (
	ToDatetime        = "to_datetime.v1"
	NoMatchOnLargeDoc = "no_match_on_large_doc.v1"
	RegexFilter       = "regex_filter.v1"
	Relabel           = "relabel.v1"
	SplitTokens       = "split_tokens.v1"
)

func init() {
	RegisterBuiltins(defaultRegistry)
}

// RegisterBuiltins adds the built-in callbacks to r.
func RegisterBuiltins(r *Registry) {
	r.MustRegister(ToDatetime, toDatetime)
	r.MustRegister(NoMatchOnLargeDoc, noMatchOnLargeDoc)
	r.MustRegister(RegexFilter, regexFilter)
	r.MustRegister(Relabel, relabel)
	r.MustRegister(SplitTokens, splitTokens)
}

// toDatetime(span, format, attr="date") parses the span text with a
// strftime-style format and stores the time.Time under attr.
func toDatetime(span *types.Span, args Args) ([]*types.Span, error) {
	format, err := args.String(0, "format", "")
	if err != nil {
		return nil, err
	}
	if format == "" {
		return nil, errors.New(errors.ErrCallbackArgs, "to_datetime requires a format")
	}
	attr, err := args.String(1, "attr", "date")
	if err != nil {
		return nil, err
	}

	layout, err := StrftimeLayout(format)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(layout, span.Text())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCallbackFailed, "cannot parse %q with format %q", span.Text(), format)
	}
	span.Set(attr, date)
	return []*types.Span{span}, nil
}

// noMatchOnLargeDoc(span, max_size=5) vetoes matches in documents longer
// than max_size tokens.
func noMatchOnLargeDoc(span *types.Span, args Args) ([]*types.Span, error) {
	maxSize, err := args.Int(0, "max_size", 5)
	if err != nil {
		return nil, err
	}
	if span.Doc != nil && span.Doc.Len() > maxSize {
		return nil, nil
	}
	return []*types.Span{span}, nil
}

// regexFilter(span, pattern, negate=false) keeps the span when its text
// matches pattern (or does not, with negate).
func regexFilter(span *types.Span, args Args) ([]*types.Span, error) {
	expr, err := args.String(0, "pattern", "")
	if err != nil {
		return nil, err
	}
	negate, err := args.Bool(1, "negate", false)
	if err != nil {
		return nil, err
	}
	re, err := coregex.Compile(expr)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCallbackArgs, "invalid pattern %q", expr)
	}
	if re.MatchString(span.Text()) != negate {
		return []*types.Span{span}, nil
	}
	return nil, nil
}

// relabel(span, label) replaces the span label.
func relabel(span *types.Span, args Args) ([]*types.Span, error) {
	label, err := args.String(0, "label", "")
	if err != nil {
		return nil, err
	}
	if label == "" {
		return nil, errors.New(errors.ErrCallbackArgs, "relabel requires a label")
	}
	out := span.Copy()
	out.Label = label
	return []*types.Span{out}, nil
}

// splitTokens(span) returns one span per covered token, keeping label,
// id and extension values.
func splitTokens(span *types.Span, _ Args) ([]*types.Span, error) {
	out := make([]*types.Span, 0, span.Len())
	for i := span.Start; i < span.End; i++ {
		part := span.Copy()
		part.Start, part.End = i, i+1
		out = append(out, part)
	}
	return out, nil
}

// Numeric fields use the unpadded Go layouts, which accept one or two
// digits when parsing, so "1.4.1986" and "01.04.1986" both match %d.%m.%Y.
var strftimeDirectives = map[byte]string{
	'd': "2",
	'm': "1",
	'Y': "2006",
	'y': "06",
	'H': "15",
	'I': "3",
	'M': "4",
	'S': "5",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'j': "002",
	'z': "-0700",
	'Z': "MST",
	'%': "%",
}

// StrftimeLayout converts a strftime format ("%d.%m.%Y") to a Go layout
// for time.Parse ("2.1.2006").
func StrftimeLayout(format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", errors.Newf(errors.ErrCallbackArgs, "format %q ends with a lone %%", format)
		}
		i++
		layout, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", errors.Newf(errors.ErrCallbackArgs, "unsupported directive %%%c in format %q", format[i], format)
		}
		b.WriteString(layout)
	}
	return b.String(), nil
}
