package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"

	apperrors "fraudscope/internal/errors"
	"fraudscope/internal/infrastructure"
	"fraudscope/pkg/contracts/domain"
)

// DefaultMaxLineBytes bounds a single JSON line
const DefaultMaxLineBytes = 16 << 20

// LoaderConfig holds configuration options for the Loader
type LoaderConfig struct {
	MaxLineBytes int
}

// Loader reads newline-delimited JSON records into a Table. Columns appear in
// the order their keys are first seen; keys absent from a record are missing.
type Loader struct {
	logger       *slog.Logger
	maxLineBytes int
	metrics      *infrastructure.PipelineMetrics
}

// NewLoader creates a new loader. metrics may be nil.
func NewLoader(logger *slog.Logger, cfg LoaderConfig, metrics *infrastructure.PipelineMetrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = DefaultMaxLineBytes
	}
	return &Loader{
		logger:       logger.With(slog.String("component", "loader")),
		maxLineBytes: cfg.MaxLineBytes,
		metrics:      metrics,
	}
}

// Load reads the file at path. A missing file yields a NOT_FOUND AppError
// that also matches fs.ErrNotExist.
func (l *Loader) Load(ctx context.Context, path string) (tbl *domain.Table, err error) {
	ctx, end := l.metrics.StartStage(ctx, infrastructure.StageLoad, attribute.String("path", path))
	defer func() { end(err) }()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.ErrorContext(ctx, "file not found", slog.String("path", path))
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("file at path %s", path), err).
				WithContext("path", path)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	l.logger.InfoContext(ctx, "file found, loading data as json lines", slog.String("path", path))

	tbl, err = l.Read(ctx, f)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}

	l.logger.InfoContext(ctx, "data loaded",
		slog.String("path", path),
		slog.Int("rows", tbl.NumRows()),
		slog.Int("columns", tbl.NumColumns()))

	return tbl, nil
}

// Read decodes JSON lines from r. Blank lines are skipped.
func (l *Loader) Read(ctx context.Context, r io.Reader) (*domain.Table, error) {
	scanner := bufio.NewScanner(r)
	initial := 64 * 1024
	if initial > l.maxLineBytes {
		initial = l.maxLineBytes
	}
	scanner.Buffer(make([]byte, 0, initial), l.maxLineBytes)

	b := newTableBuilder()
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		record, err := decodeRecord(line)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("invalid JSON record on line %d", lineNo), err).
				WithContext("line", lineNo)
		}
		b.addRow(record)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("line %d exceeds %d bytes", lineNo+1, l.maxLineBytes), err).
				WithContext("line", lineNo+1)
		}
		return nil, apperrors.NewStorageError("failed to read input", err)
	}

	tbl, err := b.build()
	if err != nil {
		return nil, err
	}
	l.metrics.AddRowsLoaded(ctx, tbl.NumRows())
	return tbl, nil
}

// field is one key/value pair of a record, kept in document order
type field struct {
	key   string
	value domain.Value
}

// decodeRecord parses one JSON object keeping its key order
func decodeRecord(line []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		value, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		fields = append(fields, field{key: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}

	return fields, nil
}

// decodeValue maps a raw JSON value onto a cell. Nested arrays and objects are
// kept as their compact JSON text.
func decodeValue(raw json.RawMessage) (domain.Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return domain.Null(), errors.New("empty value")
	}

	switch raw[0] {
	case 'n':
		return domain.Null(), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return domain.Null(), err
		}
		return domain.BoolValue(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return domain.Null(), err
		}
		return domain.StringValue(s), nil
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return domain.Null(), err
		}
		return domain.StringValue(buf.String()), nil
	default:
		n := json.Number(raw)
		if i, err := n.Int64(); err == nil {
			return domain.IntValue(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return domain.Null(), fmt.Errorf("invalid number %s: %w", raw, err)
		}
		return domain.FloatValue(f), nil
	}
}

// tableBuilder accumulates records column by column
type tableBuilder struct {
	order   []string
	columns map[string][]domain.Value
	rows    int
}

func newTableBuilder() *tableBuilder {
	return &tableBuilder{columns: make(map[string][]domain.Value)}
}

func (b *tableBuilder) addRow(record []field) {
	for _, f := range record {
		col, ok := b.columns[f.key]
		if !ok {
			col = make([]domain.Value, b.rows, b.rows+1)
			b.order = append(b.order, f.key)
		}
		if len(col) > b.rows {
			// repeated key in the same record: last one wins
			col[b.rows] = f.value
		} else {
			col = append(col, f.value)
		}
		b.columns[f.key] = col
	}
	b.rows++
	for _, name := range b.order {
		if col := b.columns[name]; len(col) < b.rows {
			b.columns[name] = append(col, domain.Null())
		}
	}
}

func (b *tableBuilder) build() (*domain.Table, error) {
	tbl := domain.NewTableWithRows(b.rows)
	for _, name := range b.order {
		if err := tbl.AddColumn(name, b.columns[name]); err != nil {
			return nil, fmt.Errorf("build table: %w", err)
		}
	}
	return tbl, nil
}
