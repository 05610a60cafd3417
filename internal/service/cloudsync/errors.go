package cloudsync

import "errors"

var (
	// ErrNoSession is returned when a sync is requested without a session.
	ErrNoSession = errors.New("sync requires a signed-in session")
	// ErrQueueFull is returned when the queue cannot accept more tasks.
	ErrQueueFull = errors.New("sync queue is full")
	// ErrQueueClosed is returned when a task is submitted after shutdown.
	ErrQueueClosed = errors.New("sync queue is closed")
	// ErrTaskPanicked is returned by tasks whose sync run panicked.
	ErrTaskPanicked = errors.New("sync task panicked")
)
