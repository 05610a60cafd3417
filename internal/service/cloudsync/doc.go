// Package cloudsync reconciles the local progress cache with the remote store.
//
// Service.Sync runs one reconciliation for a session. Queue runs reconciliations
// in the background on a single worker, so runs never overlap, and hands out
// tasks that can be awaited.
package cloudsync
