// Package http implements the HTTP handlers of the fraudscope API. Handlers
// only parse and validate requests, call the services package and render the
// result; failures are reported as RFC 7807 problem documents through the
// shared error handler.
//
// Routes:
//
//	GET /api/health             liveness and dataset state
//	GET /api/health/ready       503 until a dataset is loaded
//	GET /api/dataset            summary of the raw and cleaned tables
//	GET /api/dataset/head?n=    first n rows of the current table
//	GET /api/dataset/profile    column statistics of the current table
//	GET /api/group-rates?group= target rates per group
package http
