package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved, absolute locations used by the application.
// It is the single source of truth for file paths.
type Paths struct {
	ProjectDir string
	DataDir    string
	ReportsDir string
	LogsDir    string
	InputFile  string
}

// ResolvePaths anchors every configured path at the project directory. An
// empty ProjectDir means the current working directory.
func ResolvePaths(cfg *Config) (*Paths, error) {
	projectDir := cfg.Paths.ProjectDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		projectDir = wd
	}

	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(projectDir, p)
	}

	return &Paths{
		ProjectDir: projectDir,
		DataDir:    resolve(cfg.Paths.DataDir),
		ReportsDir: resolve(cfg.Paths.ReportsDir),
		LogsDir:    resolve(cfg.Paths.LogsDir),
		InputFile:  resolve(cfg.Paths.InputFile),
	}, nil
}

// EnsureDirectories creates the output directories if they don't exist. The
// data directory is input only and is left alone.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns filename inside the reports directory. Absolute
// names are returned unchanged.
func (p *Paths) GetReportPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns filename inside the logs directory
func (p *Paths) GetLogPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.LogsDir, filename)
}

// GetProjectPath resolves a path given relative to the project directory
func (p *Paths) GetProjectPath(subpath string) string {
	if filepath.IsAbs(subpath) {
		return subpath
	}
	return filepath.Join(p.ProjectDir, subpath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("resolved paths",
		slog.String("project_dir", p.ProjectDir),
		slog.String("data_dir", p.DataDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("input_file", p.InputFile),
		slog.Bool("input_exists", FileExists(p.InputFile)),
	)
}
