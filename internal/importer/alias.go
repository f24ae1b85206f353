package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/textparse"
)

// Recognized column aliases, in precedence order. Spreadsheets arrive with
// Spanish, English, camelCase and snake_case headers; the first alias with a
// non-empty value wins.
var (
	aliasStudentName = []string{"nombre", "student", "studentname", "student_name"}
	aliasStudentID   = []string{"rut", "studentid", "id", "studentrut", "student_rut"}
	aliasCourse      = []string{"curso", "course", "courseid", "course_id"}
	aliasSection     = []string{"seccion", "section", "sectionid", "section_id"}
	aliasSubject     = []string{"asignatura", "subject", "subjectid", "subject_id", "materia"}
	aliasTeacher     = []string{"profesor", "teacher", "teachername", "teacher_name"}
	aliasDate        = []string{"fecha", "gradedat", "date", "activitydate", "activity_date"}
	aliasType        = []string{"tipo", "type", "activitytype", "activity_type"}
	aliasTopic       = []string{"tema", "topic", "theme"}
	aliasActivity    = []string{"actividad", "activity", "title", "nombre_actividad", "activitynumber", "activity_number"}
	aliasScore       = []string{"nota", "score", "grade", "calificacion", "nota_final"}
	aliasSemester    = []string{"semestre", "semester", "periodo", "period"}
)

// stripDiacritics removes combining marks: "Básico" -> "Basico".
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normKey is the comparison space for header matching: lower-cased,
// accent-stripped, trimmed.
func normKey(s string) string {
	return strings.TrimSpace(strings.ToLower(stripDiacritics(s)))
}

// FieldValue returns the first non-empty value among the declared aliases.
// Comparison is case/accent-insensitive first, with an exact-key fallback
// for inputs whose headers are already normalized.
func FieldValue(rec textparse.Record, aliases []string) string {
	for _, alias := range aliases {
		want := normKey(alias)
		for _, key := range rec.Keys() {
			if normKey(key) != want {
				continue
			}
			if v := strings.TrimSpace(rec.Get(key)); v != "" {
				return v
			}
		}
	}
	for _, alias := range aliases {
		if v := strings.TrimSpace(rec.Get(alias)); v != "" {
			return v
		}
	}
	return ""
}
