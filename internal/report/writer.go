package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "fraudscope/internal/errors"
	"fraudscope/internal/infrastructure"
	"fraudscope/pkg/contracts/domain"
)

// Sheet names of the generated workbook
const (
	SheetOverview  = "Overview"
	SheetVariables = "Variables"
	SheetTopValues = "Top Values"
	SheetSample    = "Sample"
)

// Excel rejects longer cell strings
const maxCellChars = 32767

// WriterConfig holds configuration options for the Writer
type WriterConfig struct {
	SampleRows int
}

// Writer renders a Profile as an xlsx workbook
type Writer struct {
	logger  *slog.Logger
	config  WriterConfig
	metrics *infrastructure.PipelineMetrics
}

// NewWriter creates a new report writer
func NewWriter(logger *slog.Logger, cfg WriterConfig, metrics *infrastructure.PipelineMetrics) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SampleRows < 0 {
		cfg.SampleRows = 0
	}
	return &Writer{
		logger:  logger.With(slog.String("component", "report_writer")),
		config:  cfg,
		metrics: metrics,
	}
}

// WriteXLSX writes profile and a sample of table to path, replacing any
// existing file. table may be nil, in which case the sample sheet only has
// a header.
func (w *Writer) WriteXLSX(ctx context.Context, profile *Profile, table *domain.Table, path string) (err error) {
	ctx, end := w.metrics.StartStage(ctx, infrastructure.StageReport)
	defer func() {
		if err != nil {
			w.metrics.IncReportFailures(ctx)
		}
		end(err)
	}()

	if profile == nil {
		return apperrors.NewReportError("no profile to write", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return apperrors.NewReportError("failed to create header style", err)
	}

	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return apperrors.NewReportError("failed to rename default sheet", err)
	}
	for _, name := range []string{SheetVariables, SheetTopValues, SheetSample} {
		if _, err := f.NewSheet(name); err != nil {
			return apperrors.NewReportError(fmt.Sprintf("failed to create sheet %s", name), err)
		}
	}

	steps := []struct {
		sheet string
		fill  func(*excelize.File) error
	}{
		{SheetOverview, func(f *excelize.File) error { return writeOverview(f, profile) }},
		{SheetVariables, func(f *excelize.File) error { return writeVariables(f, profile) }},
		{SheetTopValues, func(f *excelize.File) error { return writeTopValues(f, profile) }},
		{SheetSample, func(f *excelize.File) error { return w.writeSample(f, table) }},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.fill(f); err != nil {
			return apperrors.NewReportError(fmt.Sprintf("failed to write sheet %s", step.sheet), err)
		}
		if err := styleHeader(f, step.sheet, header); err != nil {
			return apperrors.NewReportError(fmt.Sprintf("failed to style sheet %s", step.sheet), err)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewReportError("failed to create report directory", err).
				WithContext("path", dir)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewReportError("failed to save report", err).WithContext("path", path)
	}

	w.logger.InfoContext(ctx, "profiling report written",
		slog.String("path", path),
		slog.Int("columns", len(profile.Columns)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func writeOverview(f *excelize.File, p *Profile) error {
	o := p.Overview
	rows := [][]interface{}{
		{"Statistic", "Value"},
		{"Title", o.Title},
		{"Generated at", o.GeneratedAt.Format(time.RFC3339)},
		{"Rows", o.Rows},
		{"Columns", o.Columns},
		{"Missing cells", o.MissingCells},
		{"Missing cells (%)", round2(o.MissingPercent)},
		{"Duplicate rows", o.DuplicateRows},
	}
	for _, kind := range sortedKeys(o.KindCounts) {
		rows = append(rows, []interface{}{"Columns of kind " + kind, o.KindCounts[kind]})
	}
	if err := setRows(f, SheetOverview, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetOverview, "A", "B", 32)
}

func writeVariables(f *excelize.File, p *Profile) error {
	rows := [][]interface{}{{
		"Column", "Kind", "Non-missing", "Missing", "Missing (%)", "Distinct", "Unique",
		"Min", "Max", "Mean", "Std", "Zeros", "True (%)", "Min length", "Max length",
	}}
	for _, c := range p.Columns {
		row := []interface{}{
			c.Name, c.Kind, c.NonMissing, c.Missing, round2(c.MissingPercent), c.Distinct, c.Unique,
			nil, nil, nil, nil, nil, nil, nil, nil,
		}
		switch {
		case c.Numeric != nil:
			row[7], row[8] = c.Numeric.Min, c.Numeric.Max
			row[9], row[10], row[11] = round2(c.Numeric.Mean), round2(c.Numeric.Std), c.Numeric.Zeros
		case c.Times != nil:
			row[7], row[8] = c.Times.Min.Format(time.RFC3339), c.Times.Max.Format(time.RFC3339)
		case c.Strings != nil:
			row[9] = round2(c.Strings.AvgLength)
			row[13], row[14] = c.Strings.MinLength, c.Strings.MaxLength
		}
		if c.TrueRate != nil {
			row[12] = round2(*c.TrueRate)
		}
		rows = append(rows, row)
	}
	if err := setRows(f, SheetVariables, rows); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetVariables, "A", "A", 28); err != nil {
		return err
	}
	return freezeHeader(f, SheetVariables)
}

func writeTopValues(f *excelize.File, p *Profile) error {
	rows := [][]interface{}{{"Column", "Rank", "Value", "Count", "Percent"}}
	for _, c := range p.Columns {
		for i, vc := range c.TopValues {
			rows = append(rows, []interface{}{c.Name, i + 1, truncateCell(vc.Value), vc.Count, round2(vc.Percent)})
		}
	}
	if err := setRows(f, SheetTopValues, rows); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetTopValues, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetTopValues, "C", "C", 36); err != nil {
		return err
	}
	return freezeHeader(f, SheetTopValues)
}

func (w *Writer) writeSample(f *excelize.File, table *domain.Table) error {
	if table == nil {
		return setRows(f, SheetSample, [][]interface{}{{"(no data)"}})
	}

	sample := table.Head(w.config.SampleRows)
	names := sample.ColumnNames()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	rows := [][]interface{}{header}
	for i := 0; i < sample.NumRows(); i++ {
		values := sample.Row(i)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = cellValue(v)
		}
		rows = append(rows, row)
	}
	if err := setRows(f, SheetSample, rows); err != nil {
		return err
	}
	return freezeHeader(f, SheetSample)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// styleHeader applies style to the used part of the first row
func styleHeader(f *excelize.File, sheet string, style int) error {
	cols, err := f.GetCols(sheet)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellValue converts a cell to what excelize writes natively. Missing cells
// stay empty and datetimes are written as RFC 3339 text so the sheet shows
// the zone.
func cellValue(v domain.Value) interface{} {
	switch v.Kind() {
	case domain.KindNull:
		return nil
	case domain.KindTime:
		return v.String()
	case domain.KindString:
		s, _ := v.Str()
		return truncateCell(s)
	default:
		return v.Interface()
	}
}

func truncateCell(s string) string {
	r := []rune(s)
	if len(r) <= maxCellChars {
		return s
	}
	return string(r[:maxCellChars])
}
