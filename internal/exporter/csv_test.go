package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscope/internal/config"
	apperrors "fraudscope/internal/errors"
	"fraudscope/internal/shared/testutil"
	"fraudscope/pkg/contracts/domain"
)

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	tempDir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	writer := NewCSVWriter(&config.Paths{
		ProjectDir: tempDir,
		ReportsDir: filepath.Join(tempDir, "reports"),
	}, logger, nil)
	return writer, tempDir
}

func exportTable(t *testing.T) *domain.Table {
	t.Helper()
	when := time.Date(2016, 8, 13, 14, 27, 32, 0, time.UTC)
	return testutil.MustTable(t, map[string][]domain.Value{
		"merchantName":        testutil.Strings("Uber", "Lyft, Inc"),
		"transactionAmount":   {domain.FloatValue(98.5), domain.IntValue(74)},
		"transactionDateTime": {domain.TimeValue(when), domain.Null()},
		"isFraud":             {domain.BoolValue(false), domain.BoolValue(true)},
	}, "merchantName", "transactionAmount", "transactionDateTime", "isFraud")
}

func readCSV(t *testing.T, path string) ([]byte, [][]string) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return content, records
}

func TestCSVWriter_WriteTable(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		opts     WriteOptions
		wantPath string
		wantBOM  bool
		wantRows [][]string
	}{
		{
			name:     "relative path lands in reports dir",
			filePath: "clean.csv",
			opts:     DefaultWriteOptions(),
			wantPath: filepath.Join(tempDir, "reports", "clean.csv"),
			wantBOM:  true,
			wantRows: [][]string{
				{"merchantName", "transactionAmount", "transactionDateTime", "isFraud"},
				{"Uber", "98.5", "2016-08-13T14:27:32Z", "false"},
				{"Lyft, Inc", "74", "", "true"},
			},
		},
		{
			name:     "absolute path with fixed precision",
			filePath: filepath.Join(tempDir, "out", "fixed.csv"),
			opts:     WriteOptions{FloatPrecision: 2},
			wantPath: filepath.Join(tempDir, "out", "fixed.csv"),
			wantRows: [][]string{
				{"merchantName", "transactionAmount", "transactionDateTime", "isFraud"},
				{"Uber", "98.50", "2016-08-13T14:27:32Z", "false"},
				{"Lyft, Inc", "74", "", "true"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := writer.WriteTable(context.Background(), tt.filePath, exportTable(t), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)

			content, records := readCSV(t, path)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(content, utf8BOM))
			assert.Equal(t, tt.wantRows, records)
		})
	}
}

func TestCSVWriter_WriteTableErrors(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	t.Run("nil table", func(t *testing.T) {
		_, err := writer.WriteTable(context.Background(), "x.csv", nil, DefaultWriteOptions())
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := writer.WriteTable(ctx, "x.csv", exportTable(t), DefaultWriteOptions())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("directory blocked by file", func(t *testing.T) {
		blocker := filepath.Join(tempDir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
		_, err := writer.WriteTable(context.Background(), filepath.Join(blocker, "x.csv"), exportTable(t), DefaultWriteOptions())
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	writer, tempDir := setupTestEnv(t)
	path := filepath.Join(tempDir, "stream.csv")

	stream, err := writer.CreateStreamWriter(path, []string{"Name", "Value"}, false)
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"a", "1"}))
	require.NoError(t, stream.WriteRecord([]string{"b \"quoted\"", "2"}))
	require.NoError(t, stream.Close())

	content, records := readCSV(t, path)
	assert.False(t, bytes.HasPrefix(content, utf8BOM))
	assert.Equal(t, [][]string{{"Name", "Value"}, {"a", "1"}, {"b \"quoted\"", "2"}}, records)
}

func TestCSVWriter_NilPaths(t *testing.T) {
	writer := NewCSVWriter(nil, nil, nil)
	assert.Equal(t, "rel.csv", writer.resolvePath("rel.csv"))
}
