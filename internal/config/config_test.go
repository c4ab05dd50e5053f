package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fraudscope/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"transactionDateTime"}, cfg.Pipeline.DateColumns)
	assert.True(t, cfg.Pipeline.DropSparse)
	assert.Equal(t, 0.10, cfg.Pipeline.SparseThreshold)
	assert.Equal(t, CoercionStrict, cfg.Pipeline.CoercionPolicy)
	assert.Equal(t, DefaultInputFile, cfg.Paths.InputFile)
	assert.Equal(t, "transactions_profiling_report.xlsx", cfg.Report.OutputFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name: "no file uses defaults",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultPort, cfg.Server.Port)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "file overlays defaults",
			yaml: `
logging:
  level: debug
pipeline:
  sparse_threshold: 0.25
  coercion_policy: nullify
server:
  read_timeout: 5s
  request_timeout: 3s
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 0.25, cfg.Pipeline.SparseThreshold)
				assert.Equal(t, CoercionNullify, cfg.Pipeline.CoercionPolicy)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout)
				assert.True(t, cfg.Pipeline.DropSparse)
			},
		},
		{
			name: "env wins over file",
			yaml: "server:\n  port: 9000\n",
			env: map[string]string{
				"FRAUDSCOPE_SERVER_PORT":           "9100",
				"FRAUDSCOPE_PIPELINE_DATE_COLUMNS": "a,b",
				"FRAUDSCOPE_PIPELINE_DROP_SPARSE":  "false",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.Equal(t, []string{"a", "b"}, cfg.Pipeline.DateColumns)
				assert.False(t, cfg.Pipeline.DropSparse)
			},
		},
		{
			name:    "invalid threshold",
			yaml:    "pipeline:\n  sparse_threshold: 1.5\n",
			wantErr: true,
		},
		{
			name:    "unknown coercion policy",
			env:     map[string]string{"FRAUDSCOPE_PIPELINE_COERCION_POLICY": "ignore"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "logging: [unclosed",
			wantErr: true,
		},
		{
			name:    "bad env value",
			env:     map[string]string{"FRAUDSCOPE_SERVER_PORT": "eighty"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeConfigFile(t, tt.yaml)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad_ConfigFileEnv(t *testing.T) {
	path := writeConfigFile(t, "report:\n  top_values: 3\n")
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Report.TopValues)
}

func TestValidate_LogFileRequiredForFileOutput(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""
	assert.Error(t, cfg.Validate())

	cfg.Logging.Output = "console"
	assert.NoError(t, cfg.Validate())
}
