package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
)

// jsonSource reads an array of flat objects. Column order follows the
// key order of the first object; later objects may add nothing.
type jsonSource struct {
	columns []string
	rows    [][]string
	pos     int
}

func openJSON(path string) (rowSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	dec := json.NewDecoder(f)
	if err := expectDelim(dec, '['); err != nil {
		return nil, eris.Wrapf(err, "importer: %s is not a JSON array", path)
	}

	src := &jsonSource{}
	for dec.More() {
		columns, values, err := decodeObject(dec)
		if err != nil {
			return nil, eris.Wrapf(err, "importer: decode object in %s", path)
		}
		if src.columns == nil {
			src.columns = columns
		}

		row := make([]string, len(src.columns))
		for i, col := range src.columns {
			row[i] = values[col]
		}
		src.rows = append(src.rows, row)
	}
	return src, nil
}

func (s *jsonSource) Columns() []string {
	return s.columns
}

func (s *jsonSource) Next() ([]string, bool) {
	if s.pos >= len(s.rows) {
		return nil, false
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true
}

func (s *jsonSource) Err() error { return nil }

func (s *jsonSource) Close() error { return nil }

// decodeObject reads one object token-wise so key order survives.
func decodeObject(dec *json.Decoder) ([]string, map[string]string, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}

	var keys []string
	values := map[string]string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, eris.Errorf("unexpected key token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values[key] = stringifyJSON(raw)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

// stringifyJSON renders a scalar value as the TEXT cell it becomes.
// Nested structures keep their JSON form.
func stringifyJSON(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return string(raw)
	}
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
