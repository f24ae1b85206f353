package queue

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/config"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
)

type Producer struct {
	client *redis.Client
	cfg    *config.Config
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		cfg:    cfg,
	}
}

// EnqueueImport queues one staged upload for the import worker.
func (p *Producer) EnqueueImport(ctx context.Context, job model.QueuedImport) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.client.LPush(ctx, p.cfg.Redis.ImportQueue, data).Err()
}

// PublishProgress broadcasts a progress snapshot. This is a best-effort
// post-commit side write: subscribers may or may not exist, and a publish
// failure never affects the import itself.
func (p *Producer) PublishProgress(ctx context.Context, job model.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.cfg.Redis.ProgressChannel, data).Err()
}
