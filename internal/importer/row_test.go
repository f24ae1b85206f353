package importer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	apperrors "github.com/kastchile2025-star/-elias-v19-sub004/pkg/errors"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"6.5", 6.5, true},
		{"5,5", 5.5, true},
		{"0", 0, true},
		{"100", 100, true},
		{" 7,0 ", 7, true},
		{"100.1", 0, false},
		{"150", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseScore(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseScore(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseFlexibleDateDateOnly(t *testing.T) {
	tests := []struct {
		in              string
		year, month, day int
	}{
		{"2025-03-15", 2025, 3, 15},
		{"2025/03/15", 2025, 3, 15},
		{"2025.03.15", 2025, 3, 15},
		{"15/03/2025", 2025, 3, 15},
		{"15-03-2025", 2025, 3, 15},
		{"1/9/2025", 2025, 9, 1},
	}
	for _, tt := range tests {
		got, ok := ParseFlexibleDate(tt.in)
		if !ok {
			t.Errorf("ParseFlexibleDate(%q) failed", tt.in)
			continue
		}
		if got.Year() != tt.year || got.Month() != time.Month(tt.month) || got.Day() != tt.day {
			t.Errorf("ParseFlexibleDate(%q) = %v", tt.in, got)
		}
		// Date-only inputs anchor at local noon so UTC conversion cannot
		// move the calendar day for any offset within ±12h.
		if got.Hour() != 12 {
			t.Errorf("ParseFlexibleDate(%q) hour = %d, want 12", tt.in, got.Hour())
		}
		if got.Location() != time.Local {
			t.Errorf("ParseFlexibleDate(%q) location = %v", tt.in, got.Location())
		}
	}
}

func TestParseFlexibleDateWithTime(t *testing.T) {
	got, ok := ParseFlexibleDate("2025-03-15T10:30:00")
	if !ok {
		t.Fatal("ParseFlexibleDate failed")
	}
	if got.Hour() != 10 || got.Minute() != 30 {
		t.Errorf("time component lost: %v", got)
	}

	got, ok = ParseFlexibleDate("2025-03-15 08:15")
	if !ok {
		t.Fatal("ParseFlexibleDate failed")
	}
	if got.Hour() != 8 || got.Minute() != 15 {
		t.Errorf("time component lost: %v", got)
	}
}

func TestParseFlexibleDateInvalid(t *testing.T) {
	for _, in := range []string{"", "mañana", "31/02/2025", "2025-13-01", "15/03/25", "0/0/2025"} {
		if _, ok := ParseFlexibleDate(in); ok {
			t.Errorf("ParseFlexibleDate(%q) accepted invalid date", in)
		}
	}
}

func validRaw() RawRow {
	return RawRow{
		Number:      2,
		StudentName: "Juan Pérez",
		StudentID:   "11.111.111-1",
		Course:      "1A",
		DateStr:     "2025-03-15",
		ScoreStr:    "6.5",
	}
}

func TestTransformRowValid(t *testing.T) {
	resolved, err := TransformRow(validRaw())
	if err != nil {
		t.Fatalf("TransformRow: %v", err)
	}
	if resolved.Score != 6.5 {
		t.Errorf("Score = %v", resolved.Score)
	}
	if resolved.Type != model.TaskTypeEvaluacion {
		t.Errorf("Type = %v, want default evaluacion", resolved.Type)
	}
}

func TestTransformRowTaskTypes(t *testing.T) {
	tests := []struct {
		in   string
		want model.TaskType
	}{
		{"tarea", model.TaskTypeTarea},
		{"PRUEBA", model.TaskTypePrueba},
		{"evaluacion", model.TaskTypeEvaluacion},
		{"examen final", model.TaskTypeEvaluacion},
		{"", model.TaskTypeEvaluacion},
	}
	for _, tt := range tests {
		raw := validRaw()
		raw.TypeStr = tt.in
		resolved, err := TransformRow(raw)
		if err != nil {
			t.Fatalf("TransformRow(%q): %v", tt.in, err)
		}
		if resolved.Type != tt.want {
			t.Errorf("type %q normalized to %v, want %v", tt.in, resolved.Type, tt.want)
		}
	}
}

func TestTransformRowMissingFields(t *testing.T) {
	raw := validRaw()
	raw.ScoreStr = ""
	raw.StudentID = ""

	_, err := TransformRow(raw)
	var mf apperrors.MissingFieldsError
	if !errors.As(err, &mf) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if mf.Row != 2 {
		t.Errorf("Row = %d", mf.Row)
	}
	msg := mf.Error()
	if !strings.Contains(msg, "fila 2") || !strings.Contains(msg, "rut=?") || !strings.Contains(msg, "nota=?") {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestTransformRowRejectsOutOfRangeScore(t *testing.T) {
	raw := validRaw()
	raw.ScoreStr = "150"

	_, err := TransformRow(raw)
	var is apperrors.InvalidScoreError
	if !errors.As(err, &is) {
		t.Fatalf("expected InvalidScoreError, got %v", err)
	}
	if is.Value != "150" {
		t.Errorf("Value = %q", is.Value)
	}
}

func TestTransformRowInvalidDate(t *testing.T) {
	raw := validRaw()
	raw.DateStr = "ayer"

	_, err := TransformRow(raw)
	var id apperrors.InvalidDateError
	if !errors.As(err, &id) {
		t.Fatalf("expected InvalidDateError, got %v", err)
	}
}
