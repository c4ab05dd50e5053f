package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fraudscope/internal/config"
	apperrors "fraudscope/internal/errors"
	"fraudscope/internal/infrastructure"
	"fraudscope/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths   *config.Paths
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewCSVWriter creates a new CSV writer instance. Relative paths are
// resolved into the reports directory of paths; a nil paths leaves them
// relative to the working directory.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		paths:   paths,
		logger:  logger.With(slog.String("component", "csv_writer")),
		metrics: metrics,
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel detects the encoding
	BOMPrefix bool
	// FloatPrecision is the number of decimals for floats; negative keeps
	// the shortest exact representation
	FloatPrecision int
}

// DefaultWriteOptions returns options that round-trip every value
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{BOMPrefix: true, FloatPrecision: -1}
}

// WriteTable writes table to filePath with a header row. Missing cells are
// written empty and datetimes as RFC 3339 (fractional seconds kept). It
// returns the resolved path.
func (w *CSVWriter) WriteTable(ctx context.Context, filePath string, table *domain.Table, opts WriteOptions) (path string, err error) {
	ctx, end := w.metrics.StartStage(ctx, infrastructure.StageExport)
	defer func() { end(err) }()

	if table == nil {
		return "", apperrors.NewAppValidationError("no table to export")
	}

	fullPath := w.resolvePath(filePath)
	stream, err := w.CreateStreamWriter(fullPath, table.ColumnNames(), opts.BOMPrefix)
	if err != nil {
		return "", err
	}

	record := make([]string, table.NumColumns())
	for i := 0; i < table.NumRows(); i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				stream.Close()
				return "", err
			}
		}
		for j, v := range table.Row(i) {
			record[j] = FormatCell(v, opts.FloatPrecision)
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return "", apperrors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err).
				WithContext("path", fullPath)
		}
	}
	if err := stream.Close(); err != nil {
		return "", apperrors.NewStorageError("failed to flush csv file", err).WithContext("path", fullPath)
	}

	w.logger.InfoContext(ctx, "table exported",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", table.NumRows()),
		slog.Int("column_count", table.NumColumns()))
	return fullPath, nil
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates fullPath, its directory included, and writes
// the optional BOM and headers
func (w *CSVWriter) CreateStreamWriter(fullPath string, headers []string, bom bool) (*StreamWriter, error) {
	w.logger.Debug("creating csv stream writer",
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create directory", err).
			WithContext("path", filepath.Dir(fullPath))
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create file", err).WithContext("path", fullPath)
	}

	if bom {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// resolvePath places relative paths in the reports directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}
