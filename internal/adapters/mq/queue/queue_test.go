package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/smartystreets/goconvey/convey"

	"github.com/impactwon/checkin/internal/adapters/mq/queue"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/internal/domain/session"
	"github.com/impactwon/checkin/pkg/logger"
)

func event(id string) queue.Event {
	return model.SubmittedEvent{
		SubmissionID: id,
		Recipients:   []string{"ada@example.com", "cc@example.com"},
		Saved:        true,
		Payload: model.Payload{
			SubmissionID: id,
			UserInfo:     session.UserInfo{FirstName: "Ada", Surname: "Lovelace", Email: "ada@example.com"},
		},
	}
}

func receive(ch <-chan queue.Delivery) (queue.Delivery, bool) {
	select {
	case d, ok := <-ch:
		return d, ok
	case <-time.After(2 * time.Second):
		return queue.Delivery{}, false
	}
}

func TestGoChannelQueue(t *testing.T) {
	convey.Convey("Given an in-process queue with a subscriber", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		q := queue.NewGoChannel(queue.WithTopic("test.submitted"), queue.WithBufferSize(4))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer q.Close()

		ch, err := q.Dequeue(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(q.Topic(), convey.ShouldEqual, "test.submitted")

		convey.Convey("When an event is enqueued", func() {
			convey.So(q.Enqueue(ctx, event("sub-1")), convey.ShouldBeNil)

			convey.Convey("Then the subscriber receives it decoded", func() {
				d, ok := receive(ch)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(d.Event.SubmissionID, convey.ShouldEqual, "sub-1")
				convey.So(d.Event.Recipients, convey.ShouldResemble, []string{"ada@example.com", "cc@example.com"})
				convey.So(d.Event.Payload.UserInfo.FirstName, convey.ShouldEqual, "Ada")
				d.Ack()
			})
		})

		convey.Convey("When the queue is closed", func() {
			convey.So(q.Close(), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then enqueue fails and the delivery channel closes", func() {
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(errors.Is(q.Enqueue(ctx, event("late")), queue.ErrClosed), convey.ShouldBeTrue)
				_, ok := receive(ch)
				convey.So(ok, convey.ShouldBeFalse)
				_, err := q.Dequeue(ctx)
				convey.So(errors.Is(err, queue.ErrClosed), convey.ShouldBeTrue)
			})
		})
	})
}

func TestQueueDropsUndecodableMessages(t *testing.T) {
	convey.Convey("Given a queue over a shared go channel", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		ch := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
		q := queue.New(ch, ch)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer q.Close()

		out, err := q.Dequeue(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When garbage and then a valid event are published", func() {
			convey.So(ch.Publish(queue.DefaultTopic, message.NewMessage(watermill.NewUUID(), []byte("{"))), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, event("good")), convey.ShouldBeNil)

			convey.Convey("Then only the valid event is delivered", func() {
				d, ok := receive(out)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(d.Event.SubmissionID, convey.ShouldEqual, "good")
				d.Ack()
			})
		})
	})
}

func TestPublishOnlyQueue(t *testing.T) {
	convey.Convey("Given a queue without a subscriber side", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		ch := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
		q := queue.New(ch, nil)
		defer q.Close()

		convey.Convey("Then dequeue reports no consumer", func() {
			_, err := q.Dequeue(context.Background())
			convey.So(errors.Is(err, queue.ErrNoConsumer), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given no kafka brokers", t, func() {
		_, err := queue.NewKafka(nil)
		convey.So(errors.Is(err, queue.ErrNoBrokers), convey.ShouldBeTrue)
	})
}
