package server

import (
	"errors"
)

var (
	// Configuration errors
	ErrInvalidConfig = errors.New("invalid server configuration")
	ErrNoTools       = errors.New("no tools registered")

	// Lifecycle errors
	ErrParentExited = errors.New("parent process exited")
)
