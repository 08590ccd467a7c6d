// Package app assembles the pipeline from configuration for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/classifier"
	"github.com/clintrovert/taskfeatures/internal/config"
	"github.com/clintrovert/taskfeatures/internal/pipeline"
	"github.com/clintrovert/taskfeatures/internal/store"
	"github.com/clintrovert/taskfeatures/internal/store/memory"
	"github.com/clintrovert/taskfeatures/internal/store/postgres"
	"github.com/clintrovert/taskfeatures/internal/taxonomy"
)

// ErrNoStore is returned when neither a database nor a snapshot is configured
var ErrNoStore = errors.New("no task store configured: set database_url or snapshot_path")

// OpenStore opens the configured task store. A snapshot takes precedence over
// the database. The returned function releases the store.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	switch {
	case cfg.SnapshotPath != "":
		f, err := os.Open(cfg.SnapshotPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()

		s, err := memory.Load(f)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("loaded snapshot", zap.String("path", cfg.SnapshotPath))
		return s, func() {}, nil
	case cfg.DatabaseURL != "":
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(pool, logger), pool.Close, nil
	default:
		return nil, nil, ErrNoStore
	}
}

// NewPipeline builds a pipeline over s with the default taxonomy, adding the
// classifier when classification is enabled
func NewPipeline(cfg *config.Config, s store.Store, logger *zap.Logger, opts ...pipeline.Option) *pipeline.Pipeline {
	if cfg.Classify.Enabled {
		c := classifier.NewAIClassifier(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
		opts = append(opts, pipeline.WithClassifier(c, cfg.Classify.CodeOnly))
	}
	return pipeline.New(s, taxonomy.Default(), logger, opts...)
}
