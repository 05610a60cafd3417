package http

import "time"

const (
	// DefaultTimeout is the default timeout duration for HTTP requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxLogLength is the default maximum size (in bytes) of a logged request or response dump.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// ProductName identifies this client in the User-Agent header.
	ProductName = "progress-sync"
)
