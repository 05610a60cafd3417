// Package kvstore implements the local persistent key-value storage:
// a single JSON file mapping string keys to string values.
package kvstore
