// Package services holds the state shared by the command line and the HTTP
// API.
//
// DatasetService keeps the raw and cleaned versions of the transactions
// dataset behind a read/write lock and exposes loading, cleaning, profiling
// and group rate queries over them. Its collaborators are small interfaces
// satisfied by the dataprocessing and report packages, so tests can replace
// them with mocks.
//
// HealthService reports liveness and whether a dataset is available.
package services
