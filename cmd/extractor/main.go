package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/config"
	"github.com/clintrovert/taskfeatures/internal/logger"
)

var (
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:           "extractor",
	Short:         "Extract ML feature records from accepted tasks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection string")
	rootCmd.PersistentFlags().String("snapshot", "", "JSON snapshot to read instead of the database")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format (json, console)")

	rootCmd.AddCommand(exportCmd, serveCmd)
}

// loadConfig reads the configuration, letting the flags of cmd override it
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	all := map[string]string{
		"database_url":  "database-url",
		"snapshot_path": "snapshot",
		"log.level":     "log-level",
		"log.format":    "log-format",
	}
	for key, name := range bindings {
		all[key] = name
	}

	flags := make(map[string]*pflag.Flag, len(all))
	for key, name := range all {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}
	return config.Load(config.Options{ConfigFile: configFile, EnvFile: envFile, Flags: flags})
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Log.Level, cfg.Log.Format)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
