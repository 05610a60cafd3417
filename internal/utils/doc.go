// Package utils provides small helpers shared across the application:
// file existence checks, content type detection for HTTP dumps,
// secret redaction in logged URLs and order-preserving set unions.
package utils
