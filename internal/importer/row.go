package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/textparse"
	apperrors "github.com/kastchile2025-star/-elias-v19-sub004/pkg/errors"
)

// RawRow holds the alias-resolved string fields of one data row. Number is
// the 1-based file line (the header is line 1).
type RawRow struct {
	Number        int
	StudentName   string
	StudentID     string
	Course        string
	Section       string
	Subject       string
	Teacher       string
	DateStr       string
	TypeStr       string
	Topic         string
	ActivityLabel string
	ScoreStr      string
	Semester      string
}

// ResolvedRow is a RawRow whose score, date and type parsed successfully.
type ResolvedRow struct {
	RawRow
	Score    float64
	GradedAt time.Time
	Type     model.TaskType
}

func ExtractRow(rec textparse.Record, number int) RawRow {
	return RawRow{
		Number:        number,
		StudentName:   FieldValue(rec, aliasStudentName),
		StudentID:     FieldValue(rec, aliasStudentID),
		Course:        FieldValue(rec, aliasCourse),
		Section:       FieldValue(rec, aliasSection),
		Subject:       FieldValue(rec, aliasSubject),
		Teacher:       FieldValue(rec, aliasTeacher),
		DateStr:       FieldValue(rec, aliasDate),
		TypeStr:       FieldValue(rec, aliasType),
		Topic:         FieldValue(rec, aliasTopic),
		ActivityLabel: FieldValue(rec, aliasActivity),
		ScoreStr:      FieldValue(rec, aliasScore),
		Semester:      FieldValue(rec, aliasSemester),
	}
}

// TransformRow validates required fields and parses the typed values. Every
// returned error is row-local: the caller records it and moves on.
func TransformRow(raw RawRow) (*ResolvedRow, error) {
	if raw.StudentName == "" || raw.StudentID == "" || raw.Course == "" || raw.DateStr == "" || raw.ScoreStr == "" {
		return nil, apperrors.MissingFieldsError{
			Row: raw.Number,
			Fields: map[string]string{
				"nombre": raw.StudentName,
				"rut":    raw.StudentID,
				"curso":  raw.Course,
				"fecha":  raw.DateStr,
				"nota":   raw.ScoreStr,
			},
		}
	}

	score, ok := ParseScore(raw.ScoreStr)
	if !ok {
		return nil, apperrors.InvalidScoreError{Row: raw.Number, Value: raw.ScoreStr}
	}

	gradedAt, ok := ParseFlexibleDate(raw.DateStr)
	if !ok {
		return nil, apperrors.InvalidDateError{Row: raw.Number, Value: raw.DateStr}
	}

	return &ResolvedRow{
		RawRow:   raw,
		Score:    score,
		GradedAt: gradedAt,
		Type:     model.NormalizeTaskType(raw.TypeStr),
	}, nil
}

// ParseScore accepts comma or dot decimal separators. Values outside [0,100]
// are rejected outright, never clamped.
func ParseScore(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}

var (
	timeHintRe = regexp.MustCompile(`[Tt]|:\d{2}`)
	ymdRe      = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
	dmyRe      = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// ParseFlexibleDate accepts ISO-like datetimes plus date-only forms in
// YYYY/MM/DD and DD/MM/YYYY order with '.', '-' or '/' separators. Date-only
// inputs are anchored at local noon so time-zone normalization cannot shift
// the calendar day the operator typed.
func ParseFlexibleDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if timeHintRe.MatchString(raw) {
		layouts := []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02 15:04",
		}
		for _, layout := range layouts {
			if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	normalized := strings.ReplaceAll(strings.ReplaceAll(raw, ".", "/"), "-", "/")
	var year, month, day int
	if m := ymdRe.FindStringSubmatch(normalized); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else if m := dmyRe.FindStringSubmatch(normalized); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else {
		return time.Time{}, false
	}

	if year == 0 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.Local)
	// time.Date normalizes overflow (Feb 31 -> Mar 2); treat that as invalid.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}
