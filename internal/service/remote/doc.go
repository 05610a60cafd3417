// Package remote reads and writes the per-user progress document in the remote store.
// The document id is the session's user id; writes replace the whole document.
package remote
