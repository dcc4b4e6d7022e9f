// Package patterns reads and writes rule pattern files.
//
// Supported formats, chosen by file extension:
//
//   - .yaml / .yml: a list of pattern records
//   - .toml: an array of [[patterns]] tables
//   - .jsonl: one JSON record per line
//   - .json: a JSON array of records
//
// A record has a label, a pattern (a string for a phrase, a list of token
// constraint maps for a token sequence), an optional id and an optional
// on_match callback spec:
//
//	- label: DATE
//	  pattern: [{SHAPE: dd.dd.dddd}]
//	  on_match:
//	    id: to_datetime.v1
//	    args: ["%d.%m.%Y"]
package patterns

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/logging"
	"github.com/arthur-debert/spanruler/pkg/types"
)

// Format is a pattern file format.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
	FormatJSONL Format = "jsonl"
	FormatJSON  Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatYAML, FormatTOML, FormatJSONL, FormatJSON}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".jsonl":
		return FormatJSONL, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.Newf(errors.ErrPatternsLoad, "unsupported pattern file extension %q", filepath.Ext(path)).
		WithDetail("path", path)
}

// Load reads a pattern file.
func Load(path string) ([]types.Pattern, error) {
	logger := logging.GetLogger("patterns")

	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPatternsLoad, "failed to read pattern file %s", path).
			WithDetail("path", path)
	}

	pats, err := Decode(data, format)
	if err != nil {
		if re, ok := err.(*errors.RulerError); ok {
			re.WithDetail("path", path)
		}
		return nil, err
	}
	logger.Debug().Str("path", path).Str("format", string(format)).Int("patterns", len(pats)).Msg("Loaded patterns")
	return pats, nil
}

// Decode parses pattern records in the given format.
func Decode(data []byte, format Format) ([]types.Pattern, error) {
	var (
		records []record
		err     error
	)
	switch format {
	case FormatYAML:
		records, err = decodeYAML(data)
	case FormatTOML:
		records, err = decodeTOML(data)
	case FormatJSONL:
		records, err = decodeJSONL(data)
	case FormatJSON:
		records, err = decodeJSON(data)
	default:
		return nil, errors.Newf(errors.ErrPatternsParse, "unknown pattern format %q", format)
	}
	if err != nil {
		return nil, err
	}

	pats := make([]types.Pattern, 0, len(records))
	for i, rec := range records {
		p, err := rec.pattern()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidPattern, "invalid pattern record %d", i).
				WithDetail("index", i).
				WithDetail("label", rec.Label)
		}
		pats = append(pats, p)
	}
	return pats, nil
}

// Save writes patterns to path in the format implied by its extension.
func Save(path string, pats []types.Pattern) error {
	format, err := FormatFor(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrPatternsWrite, "cannot choose output format")
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, pats); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrPatternsWrite, "failed to write pattern file %s", path).
			WithDetail("path", path)
	}
	return nil
}

// Encode writes patterns in the given format.
func Encode(w io.Writer, format Format, pats []types.Pattern) error {
	records := make([]record, 0, len(pats))
	for i, p := range pats {
		rec, err := recordFor(p)
		if err != nil {
			return errors.Wrapf(err, errors.ErrPatternsWrite, "cannot encode pattern %d", i).WithDetail("index", i)
		}
		records = append(records, rec)
	}

	switch format {
	case FormatYAML:
		return encodeYAML(w, records)
	case FormatTOML:
		return encodeTOML(w, records)
	case FormatJSONL:
		return encodeJSONL(w, records)
	case FormatJSON:
		return encodeJSON(w, records)
	}
	return errors.Newf(errors.ErrPatternsWrite, "unknown pattern format %q", format)
}
