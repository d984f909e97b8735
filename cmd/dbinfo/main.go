// Command dbinfo prints a structural report of the input SQLite store:
// tables, columns, row counts, sample value kinds, and discovered
// football attribute columns. It is read-only.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"fifaclean/internal/config"
	"fifaclean/internal/inspect"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file (optional)")
	input := flag.String("input", "", "SQLite store to inspect (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	path := cfg.Pipeline.InputDB
	if *input != "" {
		path = *input
	}

	analyzer, err := inspect.NewAnalyzer(path)
	if err != nil {
		slog.Error("Failed to open store", "path", path, "error", err)
		os.Exit(1)
	}
	defer analyzer.Close()

	if err := analyzer.WriteReport(context.Background(), os.Stdout); err != nil {
		slog.Error("Failed to generate report", "path", path, "error", err)
		os.Exit(1)
	}
}
