package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/logger"
)

// Pool runs queued import jobs on a bounded set of goroutines. Each job is
// a full pipeline run, so the pool mostly exists to bound how many imports
// hit the document store at once.
type Pool struct {
	workerCount int
	jobChan     chan func(context.Context) error
	wg          sync.WaitGroup
	log         zerolog.Logger
}

func NewPool(workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Pool{
		workerCount: workerCount,
		jobChan:     make(chan func(context.Context) error, workerCount*2),
		log:         logger.Get(),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.workerCount).Msg("Starting worker pool")
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	close(p.jobChan)
	p.wg.Wait()
	p.log.Info().Msg("Worker pool stopped")
}

// Submit hands a job to the pool, blocking while all workers are busy so
// queued imports are never silently dropped.
func (p *Pool) Submit(ctx context.Context, job func(context.Context) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.jobChan <- job:
		return nil
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	log := p.log.With().Int("worker_id", id).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobChan:
			if !ok {
				return
			}
			if err := job(ctx); err != nil {
				log.Error().Err(err).Msg("Import job failed")
			}
		}
	}
}
