package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/logger"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/store"
)

// Reporter persists incremental progress to the job's side-channel document
// so a polling client can render a progress bar. Counters mutate in memory
// on every row; store writes are throttled to one per interval, plus a
// forced flush after every committed writer batch and at terminal states.
// Flush failures are logged and swallowed: losing a progress tick must not
// fail the import.
type Reporter struct {
	store     store.DocumentStore
	interval  time.Duration
	job       model.ImportJob
	lastFlush time.Time
	log       zerolog.Logger
	now       func() time.Time
}

func NewReporter(st store.DocumentStore, jobID string, interval time.Duration) *Reporter {
	return &Reporter{
		store:    st,
		interval: interval,
		job: model.ImportJob{
			ID:   jobID,
			Type: "grades",
		},
		log: logger.Get().With().Str("job_id", jobID).Logger(),
		now: time.Now,
	}
}

// Start writes the initial running document. This first write is not
// best-effort: if the store cannot even record the job, the run aborts.
func (r *Reporter) Start(ctx context.Context, year, totalRows int) error {
	now := r.now()
	r.job.Status = model.JobStatusRunning
	r.job.Year = year
	r.job.TotalRows = totalRows
	r.job.Message = "Iniciando importación de calificaciones..."
	r.job.StartedAt = now
	r.job.UpdatedAt = now
	if err := r.store.Upsert(ctx, store.CollectionImports, []store.Document{&r.job}, "id"); err != nil {
		return fmt.Errorf("failed to create import job document: %w", err)
	}
	r.lastFlush = now
	return nil
}

func (r *Reporter) RowProcessed(ctx context.Context) {
	r.job.Processed++
	r.maybeFlush(ctx)
}

func (r *Reporter) RowError(ctx context.Context) {
	r.job.Errors++
	r.maybeFlush(ctx)
}

// BatchCommitted records newly saved documents and always flushes.
func (r *Reporter) BatchCommitted(ctx context.Context, committed int) {
	r.job.Saved += committed
	r.job.Message = fmt.Sprintf("Guardadas %d/%d calificaciones", r.job.Saved, r.job.TotalRows)
	r.flush(ctx)
}

func (r *Reporter) SetMessage(ctx context.Context, message string) {
	r.job.Message = message
	r.flush(ctx)
}

func (r *Reporter) SetActivities(ctx context.Context, count int) {
	r.job.Activities = count
	r.job.Message = fmt.Sprintf("Actividades creadas: %d", count)
	r.flush(ctx)
}

// Complete writes the terminal completed state. The document is not touched
// again after this.
func (r *Reporter) Complete(ctx context.Context, summary *model.ImportSummary) {
	now := r.now()
	r.job.Status = model.JobStatusCompleted
	r.job.Processed = summary.Processed
	r.job.Saved = summary.Saved
	r.job.Activities = summary.Activities
	r.job.Errors = summary.TotalErrors
	r.job.Percent = 100
	r.job.Message = summary.Message
	r.job.FinishedAt = &now
	r.flush(ctx)
}

// Fail writes the terminal failed state so polling clients never hang
// waiting for a run that already died.
func (r *Reporter) Fail(ctx context.Context, message string) {
	now := r.now()
	r.job.Status = model.JobStatusFailed
	r.job.Message = message
	r.job.FinishedAt = &now
	r.flush(ctx)
}

// Job returns a snapshot of the current progress state.
func (r *Reporter) Job() model.ImportJob {
	return r.job
}

func (r *Reporter) maybeFlush(ctx context.Context) {
	if r.now().Sub(r.lastFlush) < r.interval {
		return
	}
	r.flush(ctx)
}

func (r *Reporter) flush(ctx context.Context) {
	now := r.now()
	if r.job.TotalRows > 0 && r.job.Status == model.JobStatusRunning {
		percent := r.job.Processed * 100 / r.job.TotalRows
		if percent > 100 {
			percent = 100
		}
		r.job.Percent = percent
	}
	r.job.UpdatedAt = now
	if err := r.store.Upsert(ctx, store.CollectionImports, []store.Document{&r.job}, "id"); err != nil {
		r.log.Warn().Err(err).Msg("Failed to flush import progress")
		return
	}
	r.lastFlush = now
}
