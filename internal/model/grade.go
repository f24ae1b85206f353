package model

import (
	"strings"
	"time"
)

type TaskType string

const (
	TaskTypeTarea      TaskType = "tarea"
	TaskTypePrueba     TaskType = "prueba"
	TaskTypeEvaluacion TaskType = "evaluacion"
)

// NormalizeTaskType maps free-text type values onto the three known task
// types. Anything unrecognized counts as a generic evaluacion.
func NormalizeTaskType(raw string) TaskType {
	switch TaskType(strings.ToLower(strings.TrimSpace(raw))) {
	case TaskTypeTarea:
		return TaskTypeTarea
	case TaskTypePrueba:
		return TaskTypePrueba
	case TaskTypeEvaluacion:
		return TaskTypeEvaluacion
	default:
		return TaskTypeEvaluacion
	}
}

// GradeRecord is one student's score on one graded activity. The ID is a
// pure function of (job id suffix, student id, course id, activity key) so
// re-importing the same file under the same job id overwrites rather than
// duplicates.
type GradeRecord struct {
	ID          string    `bson:"id" json:"id"`
	ActivityID  string    `bson:"testId" json:"testId"`
	JobID       string    `bson:"jobId" json:"jobId"`
	StudentID   string    `bson:"studentId" json:"studentId"`
	StudentName string    `bson:"studentName" json:"studentName"`
	Score       float64   `bson:"score" json:"score"`
	CourseID    string    `bson:"courseId" json:"courseId"`
	SectionID   *string   `bson:"sectionId" json:"sectionId"`
	SubjectID   *string   `bson:"subjectId" json:"subjectId"`
	SubjectName *string   `bson:"subjectName" json:"subjectName"`
	Title       string    `bson:"title" json:"title"`
	Topic       *string   `bson:"topic" json:"topic"`
	GradedAt    time.Time `bson:"gradedAt" json:"gradedAt"`
	Year        int       `bson:"year" json:"year"`
	Type        TaskType  `bson:"type" json:"type"`
	TeacherName *string   `bson:"teacherName" json:"teacherName"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (g *GradeRecord) DocumentID() string { return g.ID }

// ActivityRecord is the derived aggregate for one graded event shared by all
// students of a course/section/subject/type/day. Its ID does not depend on
// the job id, so repeated imports converge on the same document.
type ActivityRecord struct {
	ID             string    `bson:"id" json:"id"`
	TaskType       TaskType  `bson:"taskType" json:"taskType"`
	Title          string    `bson:"title" json:"title"`
	Topic          *string   `bson:"topic" json:"topic"`
	SubjectID      string    `bson:"subjectId" json:"subjectId"`
	SubjectName    string    `bson:"subjectName" json:"subjectName"`
	CourseID       string    `bson:"courseId" json:"courseId"`
	SectionID      *string   `bson:"sectionId" json:"sectionId"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	StartAt        time.Time `bson:"startAt" json:"startAt"`
	OpenAt         time.Time `bson:"openAt" json:"openAt"`
	DueDate        time.Time `bson:"dueDate" json:"dueDate"`
	Status         string    `bson:"status" json:"status"`
	AssignedByID   string    `bson:"assignedById" json:"assignedById"`
	AssignedByName string    `bson:"assignedByName" json:"assignedByName"`
	Year           int       `bson:"year" json:"year"`
}

func (a *ActivityRecord) DocumentID() string { return a.ID }

// CourseDoc is the minimal course document provisioned before grade writes
// so grades, activities and attendance share a course anchor.
type CourseDoc struct {
	ID        string    `bson:"id" json:"id"`
	Year      int       `bson:"year" json:"year"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (c *CourseDoc) DocumentID() string { return c.ID }
