package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/config"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/importer"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/logger"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/queue"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/storage"
)

// ImportWorker drains the async import queue: each message points at a
// staged upload in object storage, which is downloaded and fed through the
// same pipeline the synchronous endpoint uses.
type ImportWorker struct {
	cfg      *config.Config
	service  *importer.Service
	storage  storage.Storage
	consumer *queue.Consumer
	pool     *Pool
	log      zerolog.Logger
}

func NewImportWorker(
	cfg *config.Config,
	service *importer.Service,
	st storage.Storage,
	redisClient *queue.RedisClient,
) *ImportWorker {
	return &ImportWorker{
		cfg:      cfg,
		service:  service,
		storage:  st,
		consumer: queue.NewConsumer(redisClient, cfg),
		pool:     NewPool(cfg.Workers.Import.Count),
		log:      logger.Get(),
	}
}

func (w *ImportWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting import worker")
	w.pool.Start(ctx)
	return w.consumer.ConsumeImportQueue(ctx, w.handleMessage)
}

func (w *ImportWorker) Stop() {
	w.log.Info().Msg("Stopping import worker")
	w.pool.Stop()
}

func (w *ImportWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.QueuedImport
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal queued import")
		return err
	}

	w.log.Info().Str("job_id", job.JobID).Str("object_key", job.ObjectKey).Msg("Processing queued import")

	return w.pool.Submit(ctx, func(ctx context.Context) error {
		return w.runImport(ctx, job)
	})
}

func (w *ImportWorker) runImport(ctx context.Context, job model.QueuedImport) error {
	log := w.log.With().Str("job_id", job.JobID).Logger()

	reader, err := w.storage.Download(ctx, job.ObjectKey)
	if err != nil {
		return fmt.Errorf("failed to download staged upload: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read staged upload: %w", err)
	}

	summary, err := w.service.Run(ctx, importer.Params{
		Filename:     job.Filename,
		Data:         data,
		Year:         job.Year,
		JobID:        job.JobID,
		CoursesJSON:  job.Courses,
		SectionsJSON: job.Sections,
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("processed", summary.Processed).
		Int("saved", summary.Saved).
		Int("activities", summary.Activities).
		Msg("Queued import finished")

	// The staged payload is no longer needed once the run is terminal.
	if err := w.storage.Delete(ctx, job.ObjectKey); err != nil {
		log.Warn().Err(err).Str("object_key", job.ObjectKey).Msg("Failed to delete staged upload")
	}
	return nil
}
