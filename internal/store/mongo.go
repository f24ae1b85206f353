package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/config"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	apperrors "github.com/kastchile2025-star/-elias-v19-sub004/pkg/errors"
)

var ErrJobNotFound = errors.New("import job not found")

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Upsert issues one unordered bulk write of replace-with-upsert models, so
// documents sharing an id converge instead of duplicating. Failures are
// wrapped as retryable; the batch writer owns the retry policy.
func (s *MongoStore) Upsert(ctx context.Context, collection string, docs []Document, conflictKey string) error {
	if len(docs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{conflictKey: doc.DocumentID()}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := s.db.Collection(collection).BulkWrite(ctx, models, opts); err != nil {
		return apperrors.NewRetryableError(err, fmt.Sprintf("bulk upsert into %s failed", collection))
	}
	return nil
}

func (s *MongoStore) GetImportJob(ctx context.Context, jobID string) (*model.ImportJob, error) {
	var job model.ImportJob
	err := s.db.Collection(CollectionImports).
		FindOne(ctx, bson.M{"id": jobID}).
		Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch import job: %w", err)
	}
	return &job, nil
}

func (s *MongoStore) CountGradesByYear(ctx context.Context, year int) (int64, error) {
	return s.db.Collection(CollectionGrades).CountDocuments(ctx, bson.M{"year": year})
}
