// Package metrics collects Prometheus metrics about sync runs.
//
// The CLI is short-lived, so metrics are not scraped: they are written to a
// file in the text exposition format, ready for a textfile collector.
package metrics
