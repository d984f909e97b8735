package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Paths is the single source of truth for every filesystem path the
// pipeline touches. All derived artifact paths share the output store's
// base name.
type Paths struct {
	InputDB         string
	OutputDB        string
	OutputCSV       string
	ProfileWorkbook string
	OutputDir       string
	LogsDir         string
	LogFile         string
}

// NewPaths derives all paths from the configuration. The CSV copy
// replaces the store extension with .csv and the profile workbook
// appends _profile.xlsx to the base name.
func NewPaths(cfg *Config) *Paths {
	out := cfg.Pipeline.OutputDB
	base := strings.TrimSuffix(out, filepath.Ext(out))

	return &Paths{
		InputDB:         cfg.Pipeline.InputDB,
		OutputDB:        out,
		OutputCSV:       base + ".csv",
		ProfileWorkbook: base + "_profile.xlsx",
		OutputDir:       filepath.Dir(out),
		LogsDir:         filepath.Dir(cfg.Logging.FilePath),
		LogFile:         cfg.Logging.FilePath,
	}
}

// EnsureDirectories creates the output and log directories recursively.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
