package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
)

// CourseSectionMapping resolves course and section display names to the
// stable identifiers of the caller's catalog. It is read-only for the run
// and never fails: when no catalog entry matches, it degrades to a slug of
// the display name.
type CourseSectionMapping struct {
	courseIDByName map[string]string
	sectionIDByKey map[string]string
	sections       []sectionEntry
}

type sectionEntry struct {
	course  string
	section string
	id      string
}

func NewCourseSectionMapping(courses []model.CatalogCourse, sections []model.CatalogSection) *CourseSectionMapping {
	m := &CourseSectionMapping{
		courseIDByName: make(map[string]string),
		sectionIDByKey: make(map[string]string),
	}

	courseNameByID := make(map[string]string)
	for _, c := range courses {
		id := idString(c.ID)
		name := strings.TrimSpace(c.Name)
		if id == "" || name == "" {
			continue
		}
		courseNameByID[id] = name
		m.courseIDByName[normKey(name)] = id
	}

	for _, s := range sections {
		id := idString(s.ID)
		name := strings.TrimSpace(s.Name)
		courseName := courseNameByID[idString(s.CourseID)]
		if id == "" || name == "" || courseName == "" {
			continue
		}
		m.sectionIDByKey[courseName+"|"+name] = id
		m.sections = append(m.sections, sectionEntry{course: courseName, section: name, id: id})
	}

	return m
}

// ResolveCourse returns the catalog id for a course display name, or a slug
// of the name when the catalog has no match.
func (m *CourseSectionMapping) ResolveCourse(name string) string {
	if m != nil {
		if id, ok := m.courseIDByName[normKey(name)]; ok {
			return id
		}
	}
	return Slug(name)
}

// ResolveSection returns the catalog id for a (course, section) pair: exact
// match first, then a normalized scan (case/accent folded), then a slug of
// the section name. An empty section name resolves to "".
func (m *CourseSectionMapping) ResolveSection(courseName, sectionName string) string {
	if sectionName == "" {
		return ""
	}
	if m != nil {
		if id, ok := m.sectionIDByKey[courseName+"|"+sectionName]; ok {
			return id
		}
		wantCourse := normKey(courseName)
		wantSection := normKey(sectionName)
		for _, e := range m.sections {
			if normKey(e.course) == wantCourse && normKey(e.section) == wantSection {
				return e.id
			}
		}
	}
	return Slug(sectionName)
}

// idString renders catalog ids that arrive as JSON strings or numbers.
func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
