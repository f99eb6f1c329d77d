// Package importer implements the data-import pipeline: parsing CSV/JSON
// exports into raw records, normalizing rows to canonical activity entries,
// deduplicating against an existing collection, and summarizing batches for
// human review before commit.
package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than .csv and .json.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrMalformedJSON wraps JSON decode failures.
	ErrMalformedJSON = errors.New("unable to parse JSON")
	// ErrNoDataRows is returned when a CSV file has no rows beyond the header.
	ErrNoDataRows = errors.New("CSV file needs a header row and at least one data row")
)

// ParseFile decodes raw file content into ordered records. The format is
// selected by file extension; anything other than .csv or .json is rejected.
func ParseFile(content []byte, fileName string) ([]*domain.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return parseCSV(string(content))
	case ".json":
		return parseJSON(content)
	default:
		return nil, fmt.Errorf("%w: %q (expected .csv or .json)", ErrUnsupportedFormat, fileName)
	}
}

// parseCSV scans line-oriented CSV. The first line is always the header;
// subsequent lines are zipped positionally against it. Quoted fields may
// contain embedded commas but cannot span lines.
func parseCSV(content string) ([]*domain.RawRecord, error) {
	lines := make([]string, 0)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil, ErrNoDataRows
	}

	headers := splitCSVLine(lines[0])
	records := make([]*domain.RawRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitCSVLine(line)
		record := domain.NewRawRecord()
		for i, header := range headers {
			value := ""
			if i < len(fields) {
				value = fields[i]
			}
			record.Set(header, value)
		}
		if record.Empty() {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// splitCSVLine splits one line on commas. A double quote toggles the
// "inside quotes" state; commas inside quotes do not split. Quote characters
// themselves are not part of the value.
func splitCSVLine(line string) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

// parseJSON accepts a single object or an array of objects. Field order is
// preserved by walking the token stream instead of decoding into a map.
func parseJSON(content []byte) ([]*domain.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value must be an object or array", ErrMalformedJSON)
	}

	switch delim {
	case '{':
		record, err := decodeObjectFields(dec)
		if err != nil {
			return nil, err
		}
		return []*domain.RawRecord{record}, nil
	case '[':
		records := make([]*domain.RawRecord, 0)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
			}
			if open, ok := tok.(json.Delim); !ok || open != '{' {
				return nil, fmt.Errorf("%w: array elements must be objects", ErrMalformedJSON)
			}
			record, err := decodeObjectFields(dec)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("%w: top-level value must be an object or array", ErrMalformedJSON)
	}
}

// decodeObjectFields consumes the fields of an object whose opening brace has
// already been read, stringifying each value.
func decodeObjectFields(dec *json.Decoder) (*domain.RawRecord, error) {
	record := domain.NewRawRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key is not a string", ErrMalformedJSON)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		record.Set(key, stringifyJSONValue(raw))
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return record, nil
}

// stringifyJSONValue renders a decoded JSON value the way a loosely typed
// export would: strings unwrapped, null as empty, everything else verbatim.
func stringifyJSONValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	return string(bytes.TrimSpace(raw))
}
