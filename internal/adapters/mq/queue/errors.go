package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrClosed      = errors.New("queue closed")
	ErrNoConsumer  = errors.New("queue has no consumer side")
	ErrNoBrokers   = errors.New("kafka brokers must not be empty")
	ErrEncodeEvent = errors.New("encode submitted event")
)
