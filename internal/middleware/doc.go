// Package middleware provides the HTTP middleware of the API server: request
// IDs, rate limiting, request deadlines, security headers, OpenTelemetry
// instrumentation and request validation.
package middleware
