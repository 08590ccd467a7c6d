package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/app"
	"github.com/clintrovert/taskfeatures/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [organization...]",
	Short: "Run one extraction and write the feature records",
	Long: `Resolves the given organizations (or the configured ones) into projects,
fetches their accepted tasks and writes one feature record per task with points.
Nothing is written when the run fails.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "-", "Output file, - for stdout")
	exportCmd.Flags().StringP("format", "f", "json", "Output format (json, jsonl)")
	exportCmd.Flags().Bool("classify", false, "Classify tasks with the language model")
	exportCmd.Flags().Bool("code-only", false, "Keep only tasks classified as code related")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"output.path":        "output",
		"output.format":      "format",
		"classify.enabled":   "classify",
		"classify.code_only": "code-only",
	})
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	orgs := cfg.Organizations
	if len(args) > 0 {
		orgs = args
	}

	ctx := cmd.Context()
	s, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	out, err := app.NewPipeline(cfg, s, logger).Run(ctx, orgs)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if cfg.Output.Path != "-" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := export.Write(w, out, format); err != nil {
		return err
	}

	logger.Info("wrote features",
		zap.Int("count", len(out)),
		zap.String("path", cfg.Output.Path),
		zap.String("format", string(format)),
	)
	return nil
}
