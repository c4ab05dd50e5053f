// Package config loads fraudscope configuration and resolves project paths.
//
// # Configuration Sources
//
// Configuration is built in layers, later layers winning:
//
//  1. Default() values
//  2. A YAML file: $FRAUDSCOPE_CONFIG, ./config.yaml or ./configs/config.yaml
//  3. Environment variables
//
// # Environment Variables
//
// Variables are prefixed with FRAUDSCOPE and follow the section nesting:
//
//	FRAUDSCOPE_LOGGING_LEVEL=debug
//	FRAUDSCOPE_PATHS_INPUT_FILE=data/raw/transactions.txt
//	FRAUDSCOPE_PIPELINE_DATE_COLUMNS=transactionDateTime,accountOpenDate
//	FRAUDSCOPE_PIPELINE_COERCION_POLICY=nullify
//	FRAUDSCOPE_SERVER_PORT=9090
//
// # Paths
//
// ResolvePaths turns the configured, usually relative, paths into absolute
// ones anchored at the project directory:
//
//	paths, err := config.ResolvePaths(cfg)
//	report := paths.GetReportPath(cfg.Report.OutputFile)
package config
