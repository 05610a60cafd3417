// Package progress defines the user progress document and the rules for reconciling
// a locally cached copy with the copy kept in the remote store.
//
// A Document keeps absent fields apart from present-but-empty ones, and carries
// every field it does not understand through unchanged.
package progress
