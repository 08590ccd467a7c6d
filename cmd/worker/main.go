package main

import (
	"context"
	"fmt"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/activities"
	"github.com/clintrovert/taskfeatures/internal/app"
	"github.com/clintrovert/taskfeatures/internal/config"
	"github.com/clintrovert/taskfeatures/internal/logger"
	workflows "github.com/clintrovert/taskfeatures/internal/temporal/workflows"
)

func main() {
	// Get configuration from file and environment
	cfg, err := config.Load(config.Options{
		ConfigFile: getEnv("TASKFEATURES_CONFIG", ""),
		EnvFile:    ".env",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Open task store
	s, closeStore, err := app.OpenStore(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	// Create Temporal client
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatal("failed to create temporal client", zap.Error(err))
	}
	defer c.Close()

	// Initialize activities
	extraction := activities.NewExtractionActivities(app.NewPipeline(cfg, s, log), log)

	// Create worker
	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ExtractFeaturesWorkflow)
	w.RegisterActivity(extraction)

	// Start worker
	log.Info("starting worker",
		zap.String("task_queue", cfg.Temporal.TaskQueue),
		zap.String("namespace", cfg.Temporal.Namespace),
		zap.Bool("classify", cfg.Classify.Enabled),
	)

	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal("worker failed", zap.Error(err))
	}
	log.Info("shutting down worker")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
