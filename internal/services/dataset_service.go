package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fraudscope/internal/dataprocessing"
	"fraudscope/internal/report"
	"fraudscope/pkg/contracts/domain"
)

// TableLoader reads a dataset file into a table
type TableLoader interface {
	Load(ctx context.Context, path string) (*domain.Table, error)
}

// TableTransformer cleans a raw table
type TableTransformer interface {
	TransformWithStats(ctx context.Context, table *domain.Table, opts dataprocessing.TransformOptions) (*domain.Table, dataprocessing.TransformStats, error)
}

// RateAggregator computes per-group target rates
type RateAggregator interface {
	Rates(ctx context.Context, table *domain.Table, opts dataprocessing.AggregateOptions) ([]domain.GroupRate, error)
}

// TableProfiler computes column statistics
type TableProfiler interface {
	Profile(ctx context.Context, table *domain.Table) *report.Profile
}

// ReportWriter renders a profile to a file
type ReportWriter interface {
	WriteXLSX(ctx context.Context, profile *report.Profile, table *domain.Table, path string) error
}

// DatasetStatus describes what the service currently holds
type DatasetStatus struct {
	Source        string                         `json:"source,omitempty"`
	LoadedAt      time.Time                      `json:"loaded_at,omitempty"`
	Loaded        bool                           `json:"loaded"`
	Transformed   bool                           `json:"transformed"`
	Raw           *domain.DatasetSummary         `json:"raw,omitempty"`
	Clean         *domain.DatasetSummary         `json:"clean,omitempty"`
	TransformInfo *dataprocessing.TransformStats `json:"transform,omitempty"`
}

// DatasetService owns the raw and cleaned copies of one dataset. Tables are
// never modified after they are stored, so readers may share them.
type DatasetService struct {
	loader      TableLoader
	transformer TableTransformer
	aggregator  RateAggregator
	profiler    TableProfiler
	writer      ReportWriter
	logger      *slog.Logger

	mu          sync.RWMutex
	source      string
	loadedAt    time.Time
	raw         *domain.Table
	transformed *domain.Table
	stats       *dataprocessing.TransformStats
}

// NewDatasetService creates a dataset service. It performs no I/O.
func NewDatasetService(loader TableLoader, transformer TableTransformer, aggregator RateAggregator,
	profiler TableProfiler, writer ReportWriter, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		loader:      loader,
		transformer: transformer,
		aggregator:  aggregator,
		profiler:    profiler,
		writer:      writer,
		logger:      logger.With(slog.String("component", "dataset_service")),
	}
}

// Load reads path and replaces the raw table. Any previous cleaned table is
// discarded.
func (s *DatasetService) Load(ctx context.Context, path string) error {
	s.logger.InfoContext(ctx, "loading data", slog.String("path", path))

	table, err := s.loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	s.mu.Lock()
	s.source = path
	s.loadedAt = time.Now().UTC()
	s.raw = table
	s.transformed = nil
	s.stats = nil
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "data loaded",
		slog.String("path", path),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumColumns()))
	return nil
}

// Transform cleans the raw table and stores the result
func (s *DatasetService) Transform(ctx context.Context, opts dataprocessing.TransformOptions) (*domain.Table, error) {
	raw := s.Raw()
	if raw == nil {
		return nil, ErrDatasetNotLoaded
	}

	out, stats, err := s.transformer.TransformWithStats(ctx, raw, opts)
	if err != nil {
		return nil, fmt.Errorf("transform dataset: %w", err)
	}

	s.mu.Lock()
	// a concurrent Load replaced the table we cleaned
	if s.raw != raw {
		s.mu.Unlock()
		return nil, fmt.Errorf("transform dataset: dataset was reloaded during transform")
	}
	s.transformed = out
	s.stats = &stats
	s.mu.Unlock()

	return out, nil
}

// Raw returns the table as loaded, or nil
func (s *DatasetService) Raw() *domain.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw
}

// Transformed returns the cleaned table, or nil
func (s *DatasetService) Transformed() *domain.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transformed
}

// Current returns the cleaned table when there is one, else the raw table
func (s *DatasetService) Current() *domain.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.transformed != nil {
		return s.transformed
	}
	return s.raw
}

// Profile writes the profiling report of the cleaned table to out. It never
// fails: errors and panics are logged and swallowed. It reports whether a
// workbook was written.
func (s *DatasetService) Profile(ctx context.Context, out string) (written bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "error while profiling data",
				slog.Any("panic", r),
				slog.String("path", out))
			written = false
		}
	}()

	err := s.writeProfile(ctx, out)
	switch {
	case errors.Is(err, ErrNotTransformed):
		s.logger.ErrorContext(ctx, "data not transformed, no data for profiling",
			slog.String("error", err.Error()))
		return false
	case err != nil:
		s.logger.ErrorContext(ctx, "error while profiling data",
			slog.String("error", err.Error()),
			slog.String("path", out))
		return false
	}
	s.logger.InfoContext(ctx, "profiling report generated", slog.String("path", out))
	return true
}

// writeProfile profiles the cleaned table and writes the workbook to out
func (s *DatasetService) writeProfile(ctx context.Context, out string) error {
	table := s.Transformed()
	if table == nil {
		return ErrNotTransformed
	}
	s.logger.InfoContext(ctx, "profiling data", slog.String("path", out))
	profile := s.profiler.Profile(ctx, table)
	return s.writer.WriteXLSX(ctx, profile, table, out)
}

// ProfileSummary computes the profile of the current table without writing it
func (s *DatasetService) ProfileSummary(ctx context.Context) (*report.Profile, error) {
	table := s.Current()
	if table == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.profiler.Profile(ctx, table), nil
}

// Aggregate computes group rates over the cleaned table, or over the raw
// table when raw is set or nothing was cleaned yet
func (s *DatasetService) Aggregate(ctx context.Context, opts dataprocessing.AggregateOptions, raw bool) ([]domain.GroupRate, error) {
	table := s.Current()
	if raw {
		table = s.Raw()
	}
	if table == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.aggregator.Rates(ctx, table, opts)
}

// Summary reports what the service holds
func (s *DatasetService) Summary() DatasetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := DatasetStatus{
		Source:      s.source,
		LoadedAt:    s.loadedAt,
		Loaded:      s.raw != nil,
		Transformed: s.transformed != nil,
	}
	if s.raw != nil {
		sum := domain.Summarize(s.raw)
		status.Raw = &sum
	}
	if s.transformed != nil {
		sum := domain.Summarize(s.transformed)
		status.Clean = &sum
		status.TransformInfo = s.stats
	}
	return status
}
