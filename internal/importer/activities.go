package importer

import (
	"strings"
	"time"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/store"
)

// Aggregator folds grade rows into one ActivityRecord per distinct
// (course, section, subject, type, day) tuple. The first row observed for a
// tuple creates the record; later rows are absorbed. Rows without a subject
// aggregate under the "general" subject id.
type Aggregator struct {
	records map[string]*model.ActivityRecord
	order   []string
}

func NewAggregator() *Aggregator {
	return &Aggregator{records: make(map[string]*model.ActivityRecord)}
}

// Observe registers one resolved row under its activity tuple and returns
// the run-independent activity key the owning grade should reference.
func (a *Aggregator) Observe(row *ResolvedRow, courseID, sectionID string, year int, now time.Time) string {
	subjectID := "general"
	if row.Subject != "" {
		subjectID = Slug(row.Subject)
	}
	day := row.GradedAt.UTC().Format("2006-01-02")
	key := ActivityKey(courseID, sectionID, subjectID, string(row.Type), day)

	if _, ok := a.records[key]; ok {
		return key
	}

	var topic *string
	if t := strings.TrimSpace(row.Topic); t != "" {
		topic = &t
	}

	var sectionPtr *string
	if sectionID != "" {
		sectionPtr = &sectionID
	}

	assignedBy := "System"
	if row.Teacher != "" {
		assignedBy = row.Teacher
	}

	a.records[key] = &model.ActivityRecord{
		ID:             key,
		TaskType:       row.Type,
		Title:          activityTitle(topic, row.Type, row.Subject, day),
		Topic:          topic,
		SubjectID:      subjectID,
		SubjectName:    row.Subject,
		CourseID:       courseID,
		SectionID:      sectionPtr,
		CreatedAt:      now,
		StartAt:        row.GradedAt,
		OpenAt:         row.GradedAt,
		DueDate:        row.GradedAt,
		Status:         "completed",
		AssignedByID:   "system",
		AssignedByName: assignedBy,
		Year:           year,
	}
	a.order = append(a.order, key)
	return key
}

func (a *Aggregator) Count() int {
	return len(a.records)
}

// Flush returns the accumulated activities in first-observed order, ready
// for the batched writer.
func (a *Aggregator) Flush() []store.Document {
	docs := make([]store.Document, 0, len(a.order))
	for _, key := range a.order {
		docs = append(docs, a.records[key])
	}
	return docs
}

// activityTitle prefers an explicit topic; otherwise it generates the
// "{TYPE} {subject} {date}" form the dashboards expect.
func activityTitle(topic *string, taskType model.TaskType, subject, day string) string {
	if topic != nil {
		return *topic
	}
	parts := []string{strings.ToUpper(string(taskType))}
	if subject != "" {
		parts = append(parts, subject)
	}
	parts = append(parts, day)
	return strings.Join(parts, " ")
}
