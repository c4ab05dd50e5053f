package config

import "time"

// Application constants
const (
	AppName = "fraudscope"

	// EnvPrefix namespaces every environment variable, e.g. FRAUDSCOPE_SERVER_PORT
	EnvPrefix = "FRAUDSCOPE"

	// ConfigFileEnv names an explicit YAML config file
	ConfigFileEnv = "FRAUDSCOPE_CONFIG"

	// File Paths (relative to the project directory)
	DefaultDataDir    = "data"
	DefaultRawDir     = "data/raw"
	DefaultReportsDir = "reports"
	DefaultLogsDir    = "logs"
	DefaultInputFile  = DefaultRawDir + "/transactions.txt"
	DefaultReportFile = "transactions_profiling_report.xlsx"
	DefaultLogFile    = "logs/fraudscope.log"

	// Pipeline
	DefaultDateColumn      = "transactionDateTime"
	DefaultSparseThreshold = 0.10
	DefaultHeadRows        = 5
	DefaultMaxLineBytes    = 16 << 20

	// Report
	DefaultTopValues  = 10
	DefaultSampleRows = 50

	// Coercion policies for unparseable datetime cells
	CoercionStrict  = "strict"
	CoercionNullify = "nullify"

	// Server
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimitRPS    = 50
	DefaultRateLimitBurst  = 20
)
