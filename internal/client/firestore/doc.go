// Package firestore provides a minimal client for the document store REST API.
// Documents are exchanged as plain Go values (map[string]any, []any, string, bool, nil
// and json.Number); the typed wire representation is handled by the value codec.
package firestore
