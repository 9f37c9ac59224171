package service

import "errors"

var (
	// ErrNoExecutionContext is returned by FromLocalRegistry when ctx is not
	// bound to an execution context.
	ErrNoExecutionContext = errors.New("service: no execution context bound")
)
