package textparse

import (
	"encoding/csv"
	"io"
	"strings"

	apperrors "github.com/kastchile2025-star/-elias-v19-sub004/pkg/errors"
)

// CSVReader parses comma-delimited text. The first non-empty line is the
// header; doubled quotes inside quoted fields are literal quotes; blank
// lines are skipped; malformed lines are recorded and skipped.
type CSVReader struct {
	r      *csv.Reader
	header []string
	errs   []RowError
	line   int
}

func NewCSVReader(text string) (*CSVReader, error) {
	cleaned := normalizeQuoting(text)

	r := csv.NewReader(strings.NewReader(cleaned))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	cr := &CSVReader{r: r}

	// First non-empty line is the header. encoding/csv already skips
	// fully empty lines.
	fields, err := r.Read()
	if err == io.EOF {
		return nil, apperrors.ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = strings.ToLower(strings.TrimSpace(f))
	}
	cr.header = header
	cr.line = 1
	return cr, nil
}

func (c *CSVReader) Next() (Record, bool) {
	for {
		fields, err := c.r.Read()
		if err == io.EOF {
			return Record{}, false
		}
		c.line++
		if err != nil {
			c.errs = append(c.errs, RowError{Line: c.line, Err: err})
			continue
		}
		rec := NewRecord(c.header, fields)
		if rec.Empty() {
			continue
		}
		return rec, true
	}
}

func (c *CSVReader) Errs() []RowError {
	return c.errs
}

// normalizeQuoting repairs exports that wrap entire data lines in quotes
// ("a","b" becomes ""a"",""b"" inside an outer pair). The wrapping quotes
// are stripped and internal doubled quotes collapsed; the header line is
// left untouched.
func normalizeQuoting(raw string) string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) == 0 {
		return normalized
	}

	fixed := make([]string, 0, len(lines))
	fixed = append(fixed, lines[0])
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) {
			inner := trimmed[1 : len(trimmed)-1]
			line = strings.ReplaceAll(inner, `""`, `"`)
		}
		fixed = append(fixed, line)
	}
	return strings.Join(fixed, "\n")
}
