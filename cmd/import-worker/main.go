package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/config"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/importer"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/logger"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/queue"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/storage"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/store"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting import worker")

	// Initialize document store
	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	mongoStore, err := store.ConnectMongo(connectCtx, cfg.Mongo)
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoStore.Close(context.Background())

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	// Initialize import service with progress fan-out
	producer := queue.NewProducer(redisClient, cfg)
	service := importer.NewService(mongoStore, cfg.Importer)
	service.SetNotifier(func(ctx context.Context, job model.ImportJob) {
		_ = producer.PublishProgress(ctx, job)
	})

	// Create import worker
	importWorker := worker.NewImportWorker(cfg, service, s3Storage, redisClient)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker
	go func() {
		if err := importWorker.Start(ctx); err != nil && err != context.Canceled {
			log.Fatal().Err(err).Msg("Import worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down import worker...")

	// Cancel context to stop worker
	cancel()
	importWorker.Stop()

	log.Info().Msg("Import worker exited")
}
