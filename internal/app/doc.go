// Package app wires the progress synchronization components together and
// implements the CLI commands on top of them.
//
// Every signed-in session transition schedules a sync run on a single-worker
// queue; the commands wait for the scheduled runs before they exit.
package app
