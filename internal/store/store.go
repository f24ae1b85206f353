package store

import (
	"context"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
)

const (
	CollectionGrades     = "grades"
	CollectionActivities = "activities"
	CollectionCourses    = "courses"
	CollectionImports    = "imports"
)

// Document is anything the store can upsert. DocumentID returns the value
// of the record's conflict key.
type Document interface {
	DocumentID() string
}

// DocumentStore is the import pipeline's only dependency on persistence.
// Credential acquisition and connection management live with the caller.
type DocumentStore interface {
	// Upsert inserts or overwrites each document, matching on conflictKey.
	// It never produces duplicates for documents sharing an id.
	Upsert(ctx context.Context, collection string, docs []Document, conflictKey string) error
	// GetImportJob fetches the progress document for a job id.
	GetImportJob(ctx context.Context, jobID string) (*model.ImportJob, error)
	// CountGradesByYear reports how many grade documents exist for a year.
	CountGradesByYear(ctx context.Context, year int) (int64, error)
}
