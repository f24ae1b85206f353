package textparse

import (
	"path/filepath"
	"strings"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/encoding"
)

// ForFile picks the parsing strategy from the filename extension. Delimited
// text runs through the encoding normalizer first; .xlsx does not.
func ForFile(filename string, data []byte) (RowReader, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return NewXLSXReader(data)
	}

	text, err := encoding.Normalize(data)
	if err != nil {
		return nil, err
	}
	return NewCSVReader(text)
}
