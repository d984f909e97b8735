// Command cleaner runs the football player data cleaning pipeline.
// It needs no arguments: all paths have working defaults and can be
// overridden via config.yaml or flags.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"fifaclean/internal/cleaning"
	"fifaclean/internal/config"
	"fifaclean/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file (optional)")
	input := flag.String("input", "", "input SQLite store (overrides config)")
	output := flag.String("output", "", "output SQLite store (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Pipeline.InputDB = *input
	}
	if *output != "" {
		cfg.Pipeline.OutputDB = *output
	}

	paths := config.NewPaths(cfg)
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	// One trace ID per run, carried through every stage log line.
	ctx := infrastructure.ContextWithTraceID(context.Background())
	logger.InfoContext(ctx, "cleaning run started",
		"input", paths.InputDB,
		"output", paths.OutputDB)

	pipeline := cleaning.NewPipeline(cfg, paths, logger, os.Stdout)
	result, err := pipeline.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "cleaning run failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "cleaning run completed",
		"rows", result.Rows,
		"columns", result.Columns,
		"remaining_nulls", result.FinalNulls,
		"null_reduction_pct", result.NullReduction,
		"inference_failures", result.InferenceFailures)
}
