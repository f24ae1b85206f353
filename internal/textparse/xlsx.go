package textparse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/kastchile2025-star/-elias-v19-sub004/pkg/errors"
)

// XLSXReader adapts the first worksheet of an Excel workbook to the same
// row contract as the CSV reader. Workbooks are zip containers, so they
// bypass the byte-level encoding normalizer entirely.
type XLSXReader struct {
	header []string
	rows   [][]string
	idx    int
	errs   []RowError
}

func NewXLSXReader(data []byte) (*XLSXReader, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ErrInvalidFileFormat
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNoRows
	}

	header := make([]string, len(rows[0]))
	for i, f := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(f))
	}

	return &XLSXReader{header: header, rows: rows[1:]}, nil
}

func (x *XLSXReader) Next() (Record, bool) {
	for x.idx < len(x.rows) {
		fields := x.rows[x.idx]
		x.idx++
		rec := NewRecord(x.header, fields)
		if rec.Empty() {
			continue
		}
		return rec, true
	}
	return Record{}, false
}

func (x *XLSXReader) Errs() []RowError {
	return x.errs
}
