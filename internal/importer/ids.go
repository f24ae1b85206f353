package importer

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Slug derives a stable, identifier-safe token from free text: lower-cased,
// whitespace collapsed to underscores, diacritics stripped, anything outside
// [a-z0-9_-] dropped. Parts are joined with '-'; empty parts are skipped.
// The same inputs always yield the same slug, which is what makes re-imports
// upsert instead of duplicate.
func Slug(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := slugPart(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "-")
}

func slugPart(p string) string {
	p = strings.ToLower(p)
	p = whitespaceRe.ReplaceAllString(p, "_")
	p = stripDiacritics(p)

	var b strings.Builder
	b.Grow(len(p))
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ActivityKey identifies one graded event. It is independent of the job id
// so repeated imports of the same file converge on the same activity
// document. An empty section means the activity spans the whole course.
func ActivityKey(courseID, sectionID, subjectID string, taskType, isoDay string) string {
	if sectionID == "" {
		sectionID = "all"
	}
	return Slug(courseID, sectionID, subjectID, taskType, isoDay)
}

// JobIDSuffix bounds the job id's contribution to grade identifiers to the
// last 12 slug characters.
func JobIDSuffix(jobID string) string {
	s := Slug(jobID)
	if len(s) > 12 {
		s = s[len(s)-12:]
	}
	if s == "" {
		s = "job"
	}
	return s
}

// GradeID scopes a grade document to one import run: same file plus same job
// id rewrites the same documents, while a new job id deliberately creates
// new grade identities (the activity key stays stable either way).
func GradeID(jobSuffix, studentID, courseID, activityKey string) string {
	return Slug(jobSuffix, studentID, courseID, activityKey)
}
