// Package exporter writes tables out of the process.
//
// CSVWriter exports a table as CSV, optionally prefixed with a UTF-8 BOM for
// Excel. Relative file names land in the configured reports directory.
// RenderTable prints the head of a table to a terminal.
package exporter
