// Package app assembles fraudscope from its configuration: it resolves
// paths, builds the logger and telemetry providers, wires the processing
// components into the dataset service and runs the HTTP server with a
// graceful shutdown.
package app
