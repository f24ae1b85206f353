package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/config"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/logger"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/store"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/textparse"
	apperrors "github.com/kastchile2025-star/-elias-v19-sub004/pkg/errors"
)

// Params describes one uploaded file. Catalogs are optional JSON arrays; an
// empty Year defaults to the current year and an empty JobID is generated.
type Params struct {
	Filename     string
	Data         []byte
	Year         int
	JobID        string
	CoursesJSON  string
	SectionsJSON string
}

// Service runs the whole import pipeline for one file: parse, validate,
// resolve identities, accumulate grades and activities, write both through
// the batched writer, and keep the progress document current throughout.
// One run owns all of its mutable state; two concurrent runs only contend
// when the caller reuses a job id (last writer wins on the progress doc).
type Service struct {
	store    store.DocumentStore
	cfg      config.ImporterConfig
	log      zerolog.Logger
	notifier func(ctx context.Context, job model.ImportJob)
}

func NewService(st store.DocumentStore, cfg config.ImporterConfig) *Service {
	cfg.ApplyDefaults()
	return &Service{
		store: st,
		cfg:   cfg,
		log:   logger.Get(),
	}
}

// SetNotifier installs a best-effort hook invoked after each committed grade
// batch, e.g. to publish progress events. Hook failures never affect the run.
func (s *Service) SetNotifier(fn func(ctx context.Context, job model.ImportJob)) {
	s.notifier = fn
}

// Run executes the pipeline. Input errors (unreadable or empty payloads)
// return before any job document exists; once the job document is created,
// an unrecovered error marks it failed before propagating so polling
// clients always reach a terminal state.
func (s *Service) Run(ctx context.Context, p Params) (*model.ImportSummary, error) {
	year := p.Year
	if year == 0 {
		year = time.Now().Year()
	}
	jobID := strings.TrimSpace(p.JobID)
	if jobID == "" {
		jobID = fmt.Sprintf("import-grades-%d", time.Now().UnixMilli())
	}

	log := s.log.With().Str("job_id", jobID).Int("year", year).Logger()
	log.Info().Str("filename", p.Filename).Int("bytes", len(p.Data)).Msg("Starting grade import")

	reader, err := textparse.ForFile(p.Filename, p.Data)
	if err != nil {
		return nil, err
	}

	var rows []textparse.Record
	for {
		rec, ok := reader.Next()
		if !ok {
			break
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNoRows
	}

	var errorList []string
	for _, re := range reader.Errs() {
		errorList = append(errorList, fmt.Sprintf("fila %d: %v", re.Line, re.Err))
	}

	mapping := s.buildMapping(log, p.CoursesJSON, p.SectionsJSON)

	rep := NewReporter(s.store, jobID, s.cfg.ProgressInterval)
	if err := rep.Start(ctx, year, len(rows)); err != nil {
		return nil, err
	}

	summary, err := s.process(ctx, log, rep, jobID, year, rows, errorList, mapping)
	if err != nil {
		log.Error().Err(err).Msg("Import failed")
		rep.Fail(ctx, err.Error())
		return nil, err
	}

	rep.Complete(ctx, summary)
	log.Info().
		Int("processed", summary.Processed).
		Int("saved", summary.Saved).
		Int("activities", summary.Activities).
		Int("errors", summary.TotalErrors).
		Msg("Import completed")
	return summary, nil
}

func (s *Service) process(
	ctx context.Context,
	log zerolog.Logger,
	rep *Reporter,
	jobID string,
	year int,
	rows []textparse.Record,
	errorList []string,
	mapping *CourseSectionMapping,
) (*model.ImportSummary, error) {
	jobSuffix := JobIDSuffix(jobID)
	now := time.Now()
	agg := NewAggregator()

	rowErrors := len(errorList)
	for i := 0; i < rowErrors; i++ {
		rep.RowError(ctx)
	}

	grades := make([]store.Document, 0, len(rows))
	courseSeen := make(map[string]bool)
	var courseOrder []string

	for i, rec := range rows {
		// +2: header line plus 1-based numbering, for operator diagnostics.
		raw := ExtractRow(rec, i+2)

		resolved, err := TransformRow(raw)
		if err != nil {
			errorList = append(errorList, err.Error())
			rowErrors++
			rep.RowError(ctx)
			continue
		}

		courseID := mapping.ResolveCourse(raw.Course)
		sectionID := mapping.ResolveSection(raw.Course, raw.Section)
		if !courseSeen[courseID] {
			courseSeen[courseID] = true
			courseOrder = append(courseOrder, courseID)
		}

		activityKey := agg.Observe(resolved, courseID, sectionID, year, now)
		grades = append(grades, buildGrade(resolved, jobSuffix, courseID, sectionID, activityKey, year, now))
		rep.RowProcessed(ctx)
	}
	processed := len(grades)

	// Course anchors go in first so grades and activities always hang off an
	// existing course document.
	courseDocs := make([]store.Document, 0, len(courseOrder))
	for _, id := range courseOrder {
		courseDocs = append(courseDocs, &model.CourseDoc{ID: id, Year: year, CreatedAt: now, UpdatedAt: now})
	}
	courseWriter := NewBatchWriter(s.store, s.cfg)
	errorList = append(errorList, courseWriter.WriteAll(ctx, store.CollectionCourses, courseDocs, "id")...)
	rep.SetMessage(ctx, fmt.Sprintf("Cursos preparados (%d). Importando calificaciones...", len(courseDocs)))

	gradeWriter := NewBatchWriter(s.store, s.cfg)
	gradeWriter.OnBatchCommitted(func(ctx context.Context, committed int) {
		rep.BatchCommitted(ctx, committed)
		if s.notifier != nil {
			s.notifier(ctx, rep.Job())
		}
	})
	errorList = append(errorList, gradeWriter.WriteAll(ctx, store.CollectionGrades, grades, "id")...)

	activities := agg.Flush()
	log.Info().Int("activities", len(activities)).Msg("Writing derived activities")
	activityWriter := NewBatchWriter(s.store, s.cfg)
	errorList = append(errorList, activityWriter.WriteAll(ctx, store.CollectionActivities, activities, "id")...)
	rep.SetActivities(ctx, agg.Count())

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("import interrupted: %w", err)
	}

	saved := gradeWriter.Saved()
	failedWrites := courseWriter.Failed() + gradeWriter.Failed() + activityWriter.Failed()
	totalErrors := rowErrors + failedWrites

	var yearCount *int64
	if n, err := s.store.CountGradesByYear(ctx, year); err == nil {
		yearCount = &n
	} else {
		log.Warn().Err(err).Msg("Failed to count grades for year")
	}

	message := fmt.Sprintf("Importadas %d calificaciones (de %d procesadas) y %d actividades", saved, processed, agg.Count())
	if totalErrors > 0 {
		message += fmt.Sprintf(". Errores: %d", totalErrors)
	}

	sample := errorList
	if len(sample) > s.cfg.ErrorSampleSize {
		sample = sample[:s.cfg.ErrorSampleSize]
	}

	return &model.ImportSummary{
		Processed:      processed,
		Saved:          saved,
		Activities:     agg.Count(),
		Errors:         sample,
		TotalErrors:    totalErrors,
		Year:           year,
		YearCountAfter: yearCount,
		Message:        message,
	}, nil
}

func buildGrade(row *ResolvedRow, jobSuffix, courseID, sectionID, activityKey string, year int, now time.Time) *model.GradeRecord {
	g := &model.GradeRecord{
		ID:          GradeID(jobSuffix, row.StudentID, courseID, activityKey),
		ActivityID:  activityKey,
		JobID:       jobSuffix,
		StudentID:   row.StudentID,
		StudentName: row.StudentName,
		Score:       row.Score,
		CourseID:    courseID,
		Title:       gradeTitle(row),
		GradedAt:    row.GradedAt,
		Year:        year,
		Type:        row.Type,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if sectionID != "" {
		g.SectionID = &sectionID
	}
	if row.Subject != "" {
		subjectID := Slug(row.Subject)
		subjectName := row.Subject
		g.SubjectID = &subjectID
		g.SubjectName = &subjectName
	}
	if row.Teacher != "" {
		teacher := row.Teacher
		g.TeacherName = &teacher
	}
	if t := strings.TrimSpace(row.Topic); t != "" {
		g.Topic = &t
	}
	return g
}

func gradeTitle(row *ResolvedRow) string {
	if t := strings.TrimSpace(row.Topic); t != "" {
		return t
	}
	subject := row.Subject
	if subject == "" {
		subject = "Evaluación"
	}
	return fmt.Sprintf("%s %s", subject, row.GradedAt.UTC().Format("2006-01-02"))
}

// buildMapping decodes the optional catalog payloads. Malformed catalogs are
// logged and ignored: the resolver then degrades to slug identifiers, which
// is the documented fallback.
func (s *Service) buildMapping(log zerolog.Logger, coursesJSON, sectionsJSON string) *CourseSectionMapping {
	var courses []model.CatalogCourse
	var sections []model.CatalogSection

	if coursesJSON != "" {
		if err := json.Unmarshal([]byte(coursesJSON), &courses); err != nil {
			log.Warn().Err(err).Msg("Ignoring malformed courses catalog")
			courses = nil
		}
	}
	if sectionsJSON != "" {
		if err := json.Unmarshal([]byte(sectionsJSON), &sections); err != nil {
			log.Warn().Err(err).Msg("Ignoring malformed sections catalog")
			sections = nil
		}
	}

	return NewCourseSectionMapping(courses, sections)
}
