package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/config"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/logger"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/store"
)

// BatchWriter commits documents to one collection in bounded batches, one
// outstanding commit at a time. A failing batch is retried with escalating
// backoff; when retries exhaust, the batch is split into small sub-batches
// that each get an independent attempt, so a single poison write costs as
// few rows as possible. Rows in sub-batches that still fail are permanent
// errors, counted and reported, never dropped silently.
type BatchWriter struct {
	store      store.DocumentStore
	cfg        config.ImporterConfig
	log        zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
	afterBatch []func(ctx context.Context, committed int)

	saved  int
	failed int
}

func NewBatchWriter(st store.DocumentStore, cfg config.ImporterConfig) *BatchWriter {
	cfg.ApplyDefaults()
	return &BatchWriter{
		store: st,
		cfg:   cfg,
		log:   logger.Get(),
		sleep: sleepCtx,
	}
}

// OnBatchCommitted registers a post-commit hook. Hooks are best-effort side
// channels (progress flushes, notifications); they cannot fail the write.
func (w *BatchWriter) OnBatchCommitted(hook func(ctx context.Context, committed int)) {
	w.afterBatch = append(w.afterBatch, hook)
}

// Saved reports the cumulative count of durably committed documents.
func (w *BatchWriter) Saved() int { return w.saved }

// Failed reports the cumulative count of documents that could not be
// committed at the smallest granularity attempted.
func (w *BatchWriter) Failed() int { return w.failed }

// WriteAll partitions docs by the volume-aware policy and commits the
// batches sequentially, pausing briefly between them. The returned strings
// describe sub-batches that failed permanently.
func (w *BatchWriter) WriteAll(ctx context.Context, collection string, docs []store.Document, conflictKey string) []string {
	if len(docs) == 0 {
		return nil
	}

	size := w.cfg.BatchSizeFor(len(docs))
	var errs []string

	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		committed, batchErrs := w.commitBatch(ctx, collection, batch, conflictKey)
		w.saved += committed
		w.failed += len(batch) - committed
		errs = append(errs, batchErrs...)

		for _, hook := range w.afterBatch {
			hook(ctx, committed)
		}

		if end < len(docs) {
			if err := w.sleep(ctx, w.cfg.InterBatchDelay); err != nil {
				// Context gone: remaining rows are permanent failures.
				w.failed += len(docs) - end
				errs = append(errs, fmt.Sprintf("%s: importacion interrumpida (%d registros pendientes): %v", collection, len(docs)-end, err))
				return errs
			}
		}
	}
	return errs
}

func (w *BatchWriter) commitBatch(ctx context.Context, collection string, batch []store.Document, conflictKey string) (int, []string) {
	err := w.commitWithRetry(ctx, collection, batch, conflictKey)
	if err == nil {
		return len(batch), nil
	}

	w.log.Warn().
		Err(err).
		Str("collection", collection).
		Int("batch_size", len(batch)).
		Int("sub_batch_size", w.cfg.SubBatchSize).
		Msg("Batch failed after retries, splitting into sub-batches")

	committed := 0
	var errs []string
	for start := 0; start < len(batch); start += w.cfg.SubBatchSize {
		end := start + w.cfg.SubBatchSize
		if end > len(batch) {
			end = len(batch)
		}
		sub := batch[start:end]
		if subErr := w.store.Upsert(ctx, collection, sub, conflictKey); subErr != nil {
			w.log.Error().
				Err(subErr).
				Str("collection", collection).
				Int("rows", len(sub)).
				Msg("Sub-batch failed permanently")
			errs = append(errs, fmt.Sprintf("%s: sub-lote de %d registros fallo definitivamente: %v", collection, len(sub), subErr))
		} else {
			committed += len(sub)
		}
	}
	return committed, errs
}

func (w *BatchWriter) commitWithRetry(ctx context.Context, collection string, batch []store.Document, conflictKey string) error {
	var lastErr error
	for attempt := 1; attempt <= w.cfg.RetryAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * w.cfg.RetryDelay
			if err := w.sleep(ctx, backoff); err != nil {
				return err
			}
		}

		lastErr = w.store.Upsert(ctx, collection, batch, conflictKey)
		if lastErr == nil {
			return nil
		}
		w.log.Warn().
			Err(lastErr).
			Str("collection", collection).
			Int("attempt", attempt).
			Int("max_attempts", w.cfg.RetryAttempts).
			Msg("Batch commit failed, retrying")
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
