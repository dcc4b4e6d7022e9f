package patterns

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type tomlFile struct {
	Patterns []record `toml:"patterns"`
}

func decodeYAML(data []byte) ([]record, error) {
	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, errors.ErrPatternsParse, "failed to parse YAML patterns")
	}
	return records, nil
}

func decodeTOML(data []byte) ([]record, error) {
	var file tomlFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, errors.ErrPatternsParse, "failed to parse TOML patterns")
	}
	return file.Patterns, nil
}

func decodeJSON(data []byte) ([]record, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, errors.ErrPatternsParse, "failed to parse JSON patterns")
	}
	return records, nil
}

// decodeJSONL reads one record per non-blank line.
func decodeJSONL(data []byte) ([]record, error) {
	var records []record
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, errors.Wrapf(err, errors.ErrPatternsParse, "failed to parse JSONL line %d", line).
				WithDetail("line", line)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrPatternsParse, "failed to read JSONL patterns")
	}
	return records, nil
}

func encodeYAML(w io.Writer, records []record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return errors.Wrap(err, errors.ErrPatternsWrite, "failed to encode YAML patterns")
	}
	return enc.Close()
}

func encodeTOML(w io.Writer, records []record) error {
	if err := toml.NewEncoder(w).Encode(tomlFile{Patterns: records}); err != nil {
		return errors.Wrap(err, errors.ErrPatternsWrite, "failed to encode TOML patterns")
	}
	return nil
}

func encodeJSON(w io.Writer, records []record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return errors.Wrap(err, errors.ErrPatternsWrite, "failed to encode JSON patterns")
	}
	return nil
}

func encodeJSONL(w io.Writer, records []record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return errors.Wrap(err, errors.ErrPatternsWrite, "failed to encode JSONL patterns")
		}
	}
	return nil
}
