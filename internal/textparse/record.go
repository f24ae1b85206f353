package textparse

// Record is one parsed data row: an ordered mapping of lower-cased,
// trimmed header name to raw string value. Field access never relies on
// implicit presence; missing columns read as empty strings.
type Record struct {
	keys   []string
	values map[string]string
}

func NewRecord(header, fields []string) Record {
	values := make(map[string]string, len(header))
	for i, key := range header {
		if key == "" {
			continue
		}
		if i < len(fields) {
			values[key] = fields[i]
		} else {
			values[key] = ""
		}
	}
	return Record{keys: header, values: values}
}

func (r Record) Get(key string) string {
	return r.values[key]
}

func (r Record) Keys() []string {
	return r.keys
}

// Empty reports whether every field of the row is blank.
func (r Record) Empty() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

// RowError records a line that could not be parsed. Parsing is fail-open:
// the error is kept for reporting and the run continues.
type RowError struct {
	Line int
	Err  error
}

// RowReader is a one-pass, non-restartable iterator over parsed rows.
type RowReader interface {
	// Next returns the next data row, or false when the input is drained.
	Next() (Record, bool)
	// Errs returns the per-line errors accumulated so far.
	Errs() []RowError
}
