// Package queue carries submitted assessment events from the service to the
// mail workers over watermill. An in-process go channel transport is used by
// default; kafka is available for multi-instance deployments.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/pkg/logger"
	"github.com/impactwon/checkin/pkg/metrics"
)

// Event is the payload flowing through the queue.
type Event = model.SubmittedEvent

// metadata key carrying the submission id
const metaSubmissionID = "submission_id"

// Delivery is one received event. Exactly one of Ack or Nack must be called.
type Delivery struct {
	Event Event
	msg   *message.Message
}

// Ack confirms the event was handled.
func (d Delivery) Ack() { d.msg.Ack() }

// Nack asks the transport to redeliver the event.
func (d Delivery) Nack() { d.msg.Nack() }

// Queue publishes and consumes submitted events.
type Queue interface {
	// Enqueue publishes an event. It does not wait for consumers.
	Enqueue(ctx context.Context, e Event) error

	// Dequeue subscribes to the topic. The channel closes when ctx is done or
	// the queue is closed.
	Dequeue(ctx context.Context) (<-chan Delivery, error)

	Close() error
	IsClosed() bool
}

// Watermill implements Queue on a watermill publisher and subscriber pair.
type Watermill struct {
	pub   message.Publisher
	sub   message.Subscriber
	topic string
	log   logger.Logger

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*Watermill)(nil)

func newConfig(opts []Option) config {
	c := config{
		topic:         DefaultTopic,
		bufferSize:    defaultBufferSize,
		consumerGroup: defaultConsumerGroup,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("queue")
	}
	return c
}

// NewGoChannel creates an in-process queue.
func NewGoChannel(opts ...Option) *Watermill {
	c := newConfig(opts)
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: c.bufferSize,
	}, logger.Watermill(c.logger))
	return &Watermill{pub: ch, sub: ch, topic: c.topic, log: c.logger}
}

// NewKafka creates a queue on kafka. Every instance joins the same consumer
// group so each event is mailed once.
func NewKafka(brokers []string, opts ...Option) (*Watermill, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	c := newConfig(opts)
	wlog := logger.Watermill(c.logger)

	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}
	sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		ConsumerGroup:         c.consumerGroup,
	}, wlog)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("kafka subscriber: %w", err)
	}
	return &Watermill{pub: pub, sub: sub, topic: c.topic, log: c.logger}, nil
}

// New wraps an existing publisher and subscriber. sub may be nil for a
// publish-only queue.
func New(pub message.Publisher, sub message.Subscriber, opts ...Option) *Watermill {
	c := newConfig(opts)
	return &Watermill{pub: pub, sub: sub, topic: c.topic, log: c.logger}
}

// Topic returns the topic in use.
func (q *Watermill) Topic() string { return q.topic }

// Enqueue publishes e as JSON.
func (q *Watermill) Enqueue(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: events are passed by value across the queue
	start := time.Now()
	defer func() {
		metrics.RecordPublishLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeEvent, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metaSubmissionID, e.SubmissionID)
	msg.SetContext(ctx)

	if err := q.pub.Publish(q.topic, msg); err != nil {
		metrics.RecordErrorByComponent("queue", "publish_failed")
		return fmt.Errorf("publish %s: %w", e.SubmissionID, err)
	}
	return nil
}

// Dequeue subscribes and decodes events. Undecodable messages are acked and
// dropped so they are not redelivered forever.
func (q *Watermill) Dequeue(ctx context.Context) (<-chan Delivery, error) {
	if q.sub == nil {
		return nil, ErrNoConsumer
	}
	if q.IsClosed() {
		return nil, ErrClosed
	}
	msgs, err := q.sub.Subscribe(ctx, q.topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", q.topic, err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for msg := range msgs {
			var e Event
			if err := json.Unmarshal(msg.Payload, &e); err != nil {
				metrics.RecordErrorByComponent("queue", "decode_failed")
				q.log.Error(ctx, "dropping undecodable event",
					logger.String("message_id", msg.UUID),
					logger.String(metaSubmissionID, msg.Metadata.Get(metaSubmissionID)),
					logger.Error(err),
				)
				msg.Ack()
				continue
			}
			select {
			case out <- Delivery{Event: e, msg: msg}:
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Close stops publishing and closes the transport.
func (q *Watermill) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true

	err := q.pub.Close()
	if q.sub != nil && any(q.sub) != any(q.pub) {
		if serr := q.sub.Close(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

// IsClosed returns true if the queue has been closed.
func (q *Watermill) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
