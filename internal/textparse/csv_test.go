package textparse

import (
	"errors"
	"testing"

	apperrors "github.com/kastchile2025-star/-elias-v19-sub004/pkg/errors"
)

func drain(t *testing.T, r RowReader) []Record {
	t.Helper()
	var rows []Record
	for {
		rec, ok := r.Next()
		if !ok {
			return rows
		}
		rows = append(rows, rec)
	}
}

func TestCSVReaderHeaderNormalization(t *testing.T) {
	r, err := NewCSVReader(" Nombre , RUT ,Curso\nJuan,11.111.111-1,1A\n")
	if err != nil {
		t.Fatalf("NewCSVReader: %v", err)
	}
	rows := drain(t, r)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if got := rows[0].Get("nombre"); got != "Juan" {
		t.Errorf("Get(nombre) = %q", got)
	}
	if got := rows[0].Get("rut"); got != "11.111.111-1" {
		t.Errorf("Get(rut) = %q", got)
	}
}

func TestCSVReaderSkipsBlankRows(t *testing.T) {
	r, err := NewCSVReader("nombre,nota\nJuan,6.5\n\n,,\nAna,5.0\n")
	if err != nil {
		t.Fatalf("NewCSVReader: %v", err)
	}
	rows := drain(t, r)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Get("nombre") != "Ana" {
		t.Errorf("second row = %q", rows[1].Get("nombre"))
	}
}

func TestCSVReaderWrappedLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "whole line quoted",
			input: "nombre,rut,nota\n\"Juan,11.111.111-1,6.5\"\n",
			want:  []string{"Juan", "11.111.111-1", "6.5"},
		},
		{
			name:  "wrapped with doubled inner quotes",
			input: "nombre,rut,nota\n\"\"\"Juan Pérez\"\",\"\"11.111.111-1\"\",\"\"5,5\"\"\"\n",
			want:  []string{"Juan Pérez", "11.111.111-1", "5,5"},
		},
		{
			name:  "plain line untouched",
			input: "nombre,rut,nota\nAna,22.222.222-2,7.0\n",
			want:  []string{"Ana", "22.222.222-2", "7.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewCSVReader(tt.input)
			if err != nil {
				t.Fatalf("NewCSVReader: %v", err)
			}
			rows := drain(t, r)
			if len(rows) != 1 {
				t.Fatalf("expected 1 row, got %d", len(rows))
			}
			for i, key := range []string{"nombre", "rut", "nota"} {
				if got := rows[0].Get(key); got != tt.want[i] {
					t.Errorf("Get(%s) = %q, want %q", key, got, tt.want[i])
				}
			}
		})
	}
}

func TestCSVReaderCRLF(t *testing.T) {
	r, err := NewCSVReader("nombre,nota\r\nJuan,6.5\r\nAna,5.0\r\n")
	if err != nil {
		t.Fatalf("NewCSVReader: %v", err)
	}
	if rows := drain(t, r); len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestCSVReaderRaggedRows(t *testing.T) {
	// Rows shorter than the header read missing columns as empty strings;
	// longer rows keep their extra fields out of the record.
	r, err := NewCSVReader("nombre,rut,nota\nJuan,11.111.111-1\nAna,22.222.222-2,5.0,extra\n")
	if err != nil {
		t.Fatalf("NewCSVReader: %v", err)
	}
	rows := drain(t, r)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0].Get("nota"); got != "" {
		t.Errorf("short row nota = %q, want empty", got)
	}
	if got := rows[1].Get("nota"); got != "5.0" {
		t.Errorf("long row nota = %q", got)
	}
}

func TestCSVReaderNoRows(t *testing.T) {
	if _, err := NewCSVReader(""); !errors.Is(err, apperrors.ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}
