// Package localcache keeps the local replica of the progress document
// as JSON text under a fixed key of the local key-value storage.
package localcache
