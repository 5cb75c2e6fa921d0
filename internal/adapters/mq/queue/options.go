package queue

import "github.com/impactwon/checkin/pkg/logger"

// DefaultTopic carries submitted assessment events.
const DefaultTopic = "assessment.submitted"

const (
	defaultBufferSize    = 256
	defaultConsumerGroup = "checkin-mailer"
)

type config struct {
	topic         string
	bufferSize    int64
	consumerGroup string
	logger        logger.Logger
}

// Option applies a configuration option to a queue.
type Option func(*config)

// WithTopic sets the topic events are published to and consumed from.
func WithTopic(topic string) Option {
	return func(c *config) {
		if topic != "" {
			c.topic = topic
		}
	}
}

// WithBufferSize sets the per subscriber buffer of the in-process transport.
func WithBufferSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.bufferSize = int64(size)
		}
	}
}

// WithConsumerGroup sets the kafka consumer group of the mail workers.
func WithConsumerGroup(group string) Option {
	return func(c *config) {
		if group != "" {
			c.consumerGroup = group
		}
	}
}

// WithLogger sets the logger handed to watermill.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
