package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrNoRecipients = errors.New("event has no recipients")
	ErrStarted      = errors.New("pool already started")
	ErrStopped      = errors.New("pool stopped")
)
