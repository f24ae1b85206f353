// Package encoding recovers readable text from the arbitrary byte streams
// that school spreadsheet exports produce: BOM-prefixed files, Latin-1
// files saved on Windows, and UTF-8 text that a browser re-encoded as
// Latin-1 on the way up (double encoding, "Ã­" where "í" was meant).
package encoding

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	apperrors "github.com/kastchile2025-star/-elias-v19-sub004/pkg/errors"
)

// replacementThreshold is how many UTF-8 decode failures we tolerate before
// assuming the file is not UTF-8 at all.
const replacementThreshold = 10

// accentedSet drives double-encoding detection: each rune's UTF-8 byte pair
// read back as Latin-1 yields the tell-tale two-character sequence.
const accentedSet = "áéíóúñüÁÉÍÓÚÑ"

var mojibakeForms = buildMojibakeForms(accentedSet)

func buildMojibakeForms(set string) []string {
	forms := make([]string, 0, utf8.RuneCountInString(set))
	for _, r := range set {
		b := []byte(string(r))
		broken := make([]rune, len(b))
		for i, bb := range b {
			broken[i] = rune(bb)
		}
		forms = append(forms, string(broken))
	}
	return forms
}

// Normalize turns a raw upload into text. It strips a leading BOM, decodes
// as UTF-8, repairs double-encoded accents when their signature appears, and
// falls back to ISO-8859-1 when UTF-8 decoding fails too often.
func Normalize(data []byte) (string, error) {
	data = stripBOM(data)

	text, replacements := decodeUTF8(data)

	if countMojibake(text) > 0 {
		text = repairDoubleEncoding(text)
	} else if replacements > replacementThreshold {
		if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil {
			text = string(decoded)
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", apperrors.ErrEmptyInput
	}
	return text, nil
}

func stripBOM(data []byte) []byte {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return data[3:]
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return data[2:]
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return data[2:]
	default:
		return data
	}
}

// decodeUTF8 decodes with U+FFFD substitution and reports how many
// substitutions were made.
func decodeUTF8(data []byte) (string, int) {
	var b strings.Builder
	b.Grow(len(data))
	replacements := 0
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			replacements++
		}
		b.WriteRune(r)
		data = data[size:]
	}
	return b.String(), replacements
}

func countMojibake(text string) int {
	n := 0
	for _, form := range mojibakeForms {
		n += strings.Count(text, form)
	}
	return n
}

// repairDoubleEncoding reverses UTF-8 text that was read as Latin-1: each
// code point below 0x100 is its original byte value, so collapsing code
// points back to bytes and re-decoding as UTF-8 restores the accents.
func repairDoubleEncoding(text string) string {
	raw := make([]byte, 0, len(text))
	for _, r := range text {
		raw = append(raw, byte(r&0xFF))
	}
	repaired, _ := decodeUTF8(raw)
	return repaired
}
