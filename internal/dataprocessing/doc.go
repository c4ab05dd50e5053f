// Package dataprocessing turns raw transaction files into analysis-ready tables.
//
// # Architecture
//
// The package is organized into three components that share the
// domain.Table model but do not depend on each other:
//
// 1. Loader: reads newline-delimited JSON into a Table
// 2. Transformer: coerces datetimes, turns blank strings into missing values
// and drops sparse columns
// 3. Aggregator: computes per-group target rates such as the fraud rate per
// merchant category
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger, dataprocessing.LoaderConfig{}, metrics)
//	raw, err := loader.Load(ctx, "data/raw/transactions.txt")
//
//	tr := dataprocessing.NewTransformer(logger, dataprocessing.DefaultTransformerConfig(), metrics)
//	clean, err := tr.Transform(ctx, raw, dataprocessing.TransformOptions{
//	    DateColumns: []string{"transactionDateTime"},
//	    DropSparse:  true,
//	})
//
//	agg := dataprocessing.NewAggregator(logger, metrics)
//	rates, err := agg.Aggregate(ctx, clean, dataprocessing.AggregateOptions{GroupColumn: "merchantCategoryCode"})
//
// # Data Flow
//
//	JSON lines → Loader → raw Table → Transformer → clean Table → Aggregator → rates Table
//
// # Error Handling
//
// Errors are *errors.AppError values: NOT_FOUND for a missing input file,
// PARSING with the failing line number, COLUMN_NOT_FOUND for unknown column
// references, TYPE_COERCION for unparseable datetimes under the strict policy
// and VALIDATION for bad options.
package dataprocessing
