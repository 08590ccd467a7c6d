package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/api/rest"
	"github.com/clintrovert/taskfeatures/internal/app"
	"github.com/clintrovert/taskfeatures/internal/metrics"
	"github.com/clintrovert/taskfeatures/internal/pipeline"
	"github.com/clintrovert/taskfeatures/internal/temporal"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Bool("workflows", true, "Expose extraction workflows through Temporal")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, map[string]string{"http.addr": "addr"})
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var opts []pipeline.Option
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		recorder, err := metrics.NewRecorder(reg)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithRecorder(recorder))
		metricsHandler = metrics.Handler(reg)
	}
	p := app.NewPipeline(cfg, s, logger, opts...)

	// Create Temporal client
	var starter rest.ExtractionStarter
	if enabled, _ := cmd.Flags().GetBool("workflows"); enabled {
		temporalClient, err := temporal.NewClient(cfg.Temporal.Address, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue, logger)
		if err != nil {
			return err
		}
		defer temporalClient.Close()
		starter = temporalClient.WithClassification(cfg.Classify.Enabled)
	}

	restServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           rest.NewRouter(rest.NewHandler(p, starter, logger), metricsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting REST API server", zap.String("address", cfg.HTTP.Addr))
		if err := restServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return restServer.Shutdown(shutdownCtx)
}
