package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/impactwon/checkin/internal/adapters/mq/queue"
	"github.com/impactwon/checkin/internal/adapters/repository"
	service "github.com/impactwon/checkin/internal/app"
	"github.com/impactwon/checkin/internal/domain/benchmark"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/internal/domain/session"
	"github.com/impactwon/checkin/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var ada = session.UserInfo{FirstName: "Ada", Surname: "Lovelace", Email: "ada@example.com"}

// recordingQueue captures published events.
type recordingQueue struct {
	mu     sync.Mutex
	events []model.SubmittedEvent
	err    error
	closed bool
}

func (q *recordingQueue) Enqueue(_ context.Context, e model.SubmittedEvent) error { //nolint:gocritic // hugeParam
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.events = append(q.events, e)
	return nil
}

func (q *recordingQueue) Dequeue(context.Context) (<-chan queue.Delivery, error) {
	return nil, queue.ErrNoConsumer
}

func (q *recordingQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}

func (q *recordingQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *recordingQueue) published() []model.SubmittedEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.SubmittedEvent(nil), q.events...)
}

// failingStore refuses every insert.
type failingStore struct {
	*repository.MemoryStore
}

func (failingStore) Insert(context.Context, model.Record) error {
	return errors.New("database unavailable")
}

// answerAll rates every question of the catalog with rate(q).
func answerAll(cat *catalog.Catalog, rate func(q catalog.Question) int) []scoring.Response {
	var out []scoring.Response
	for _, c := range cat.Competencies {
		for _, q := range c.Questions {
			out = append(out, scoring.Response{QuestionID: q.ID, Rating: rate(q)})
		}
	}
	return out
}

func top(q catalog.Question) int { return int(q.Scale) }

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Catalog().Validate(), ShouldBeNil)
			stats := svc.GetStats(context.Background())
			So(stats["started"], ShouldEqual, false)
			So(stats["competencies"], ShouldEqual, 7)
			So(stats["orphanPolicy"], ShouldEqual, "zero")
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithCCEmail("boss@example.com"),
			service.WithDedupeSize(10),
			service.WithWorkerCount(1),
			service.WithOrphanPolicy(scoring.OrphanExclude),
			service.WithRadarDefaults(service.RadarDefaults{Size: 500}),
			service.WithPublisher(nil),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats(context.Background())
			So(stats["orphanPolicy"], ShouldEqual, "exclude")
			So(stats["notify"], ShouldEqual, false)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service on the in-process queue", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it reports mail workers", func() {
				stats := svc.GetStats(ctx)
				So(stats["started"], ShouldEqual, true)
				So(stats["workerCount"], ShouldEqual, 1)
			})

			Convey("And a submission is mailed by the workers", func() {
				view, err := svc.StartSession(ctx, &ada)
				So(err, ShouldBeNil)
				_, err = svc.Answer(ctx, view.ID, answerAll(svc.Catalog(), top)...)
				So(err, ShouldBeNil)
				_, err = svc.SetExperience(ctx, view.ID, 5)
				So(err, ShouldBeNil)
				res, err := svc.Submit(ctx, view.ID, service.SubmitRequest{})
				So(err, ShouldBeNil)
				So(res.Success, ShouldBeTrue)

				sent := func() int64 {
					n, _ := svc.GetStats(ctx)["emailsSent"].(int64)
					return n
				}
				deadline := time.Now().Add(2 * time.Second)
				for sent() == 0 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(sent(), ShouldEqual, 1)
			})

			Convey("Then it stops cleanly", func() {
				So(svc.Stop(ctx), ShouldBeNil)
				So(svc.Stop(ctx), ShouldBeNil)
				So(svc.GetStats(ctx)["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Sessions(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithPublisher(&recordingQueue{}))

		Convey("When starting a session without user info", func() {
			view, err := svc.StartSession(ctx, nil)
			So(err, ShouldBeNil)

			Convey("Then it is empty and at the first step", func() {
				So(view.ID, ShouldNotBeEmpty)
				So(view.User, ShouldBeNil)
				So(view.Progress.NextStep, ShouldEqual, 0)
				So(view.Progress.Total, ShouldEqual, 35)
			})

			Convey("Then user info can be added later", func() {
				got, err := svc.SetUser(ctx, view.ID, ada)
				So(err, ShouldBeNil)
				So(got.User.Email, ShouldEqual, "ada@example.com")
			})
		})

		Convey("When user info is invalid", func() {
			_, err := svc.StartSession(ctx, &session.UserInfo{FirstName: "A", Surname: "B", Email: "not-an-email"})
			So(errors.Is(err, service.ErrInvalidUser), ShouldBeTrue)
		})

		Convey("When answering questions", func() {
			view, _ := svc.StartSession(ctx, &ada)

			_, err := svc.Answer(ctx, view.ID, scoring.Response{QuestionID: "BA1", Rating: 2})
			So(err, ShouldBeNil)
			got, err := svc.Answer(ctx, view.ID,
				scoring.Response{QuestionID: "BA1", Rating: 5},
				scoring.Response{QuestionID: "LE3", Rating: 3},
			)
			So(err, ShouldBeNil)

			Convey("Then later answers replace earlier ones", func() {
				So(got.Responses, ShouldResemble, []scoring.Response{
					{QuestionID: "BA1", Rating: 5},
					{QuestionID: "LE3", Rating: 3},
				})
				So(got.Progress.Answered, ShouldEqual, 2)
			})

			Convey("Then an invalid batch records nothing", func() {
				_, err := svc.Answer(ctx, view.ID,
					scoring.Response{QuestionID: "BA2", Rating: 4},
					scoring.Response{QuestionID: "LE4", Rating: 5},
				)
				So(errors.Is(err, service.ErrInvalidResponse), ShouldBeTrue)
				So(errors.Is(err, session.ErrRatingOutOfRange), ShouldBeTrue)

				again, _ := svc.GetSession(ctx, view.ID)
				So(len(again.Responses), ShouldEqual, 2)
			})

			Convey("Then unknown questions are rejected", func() {
				_, err := svc.Answer(ctx, view.ID, scoring.Response{QuestionID: "ZZ9", Rating: 1})
				So(errors.Is(err, session.ErrUnknownQuestion), ShouldBeTrue)
			})
		})

		Convey("When setting the experience rating", func() {
			view, _ := svc.StartSession(ctx, &ada)

			Convey("Then values inside 1..5 are kept", func() {
				got, err := svc.SetExperience(ctx, view.ID, 4)
				So(err, ShouldBeNil)
				So(*got.ExperienceRating, ShouldEqual, 4)
			})

			Convey("Then values outside 1..5 are rejected", func() {
				_, err := svc.SetExperience(ctx, view.ID, 6)
				So(errors.Is(err, service.ErrInvalidExperience), ShouldBeTrue)
			})
		})

		Convey("When the session is unknown", func() {
			_, err := svc.GetSession(ctx, "ghost")
			So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			_, err = svc.Answer(ctx, "ghost", scoring.Response{QuestionID: "BA1", Rating: 1})
			So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			So(errors.Is(svc.Abandon(ctx, "ghost"), service.ErrSessionNotFound), ShouldBeTrue)
		})

		Convey("When abandoning a session", func() {
			view, _ := svc.StartSession(ctx, &ada)
			So(svc.Abandon(ctx, view.ID), ShouldBeNil)

			Convey("Then it is gone", func() {
				_, err := svc.GetSession(ctx, view.ID)
				So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Results(t *testing.T) {
	Convey("Given a session with every question answered at the top of its scale", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithPublisher(nil))
		view, _ := svc.StartSession(ctx, &ada)
		_, err := svc.Answer(ctx, view.ID, answerAll(svc.Catalog(), top)...)
		So(err, ShouldBeNil)

		Convey("When computing results", func() {
			res, err := svc.Results(ctx, view.ID, service.RadarRequest{})
			So(err, ShouldBeNil)

			Convey("Then every competency averages 5 and is ahead", func() {
				for _, c := range svc.Catalog().Competencies {
					So(res.Averages[c.ID], ShouldEqual, 5)
				}
				for _, r := range res.Rows {
					So(r.Status, ShouldEqual, benchmark.StatusAhead)
				}
				So(res.Progress.NextStep, ShouldEqual, -1)
			})

			Convey("Then the radar uses the default size", func() {
				So(res.Radar.Size, ShouldEqual, 350)
				So(len(res.Radar.User), ShouldEqual, 7)
				So(len(res.Radar.Rings), ShouldEqual, 5)
				So(res.UserPolygon, ShouldNotBeEmpty)
			})
		})

		Convey("When overriding the radar size and levels", func() {
			res, err := svc.Results(ctx, view.ID, service.RadarRequest{Size: 500, Levels: 4})
			So(err, ShouldBeNil)
			So(res.Radar.Size, ShouldEqual, 500)
			So(len(res.Radar.Rings), ShouldEqual, 4)
		})

		Convey("When the radar size leaves no room", func() {
			_, err := svc.Results(ctx, view.ID, service.RadarRequest{Size: 100})
			So(errors.Is(err, service.ErrInvalidRadar), ShouldBeTrue)
		})

		Convey("When the radar size is not finite", func() {
			for _, size := range []float64{math.Inf(1), math.NaN()} {
				_, err := svc.Results(ctx, view.ID, service.RadarRequest{Size: size})
				So(errors.Is(err, service.ErrInvalidRadar), ShouldBeTrue)
			}
		})
	})

	Convey("Given a fresh session without answers", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithPublisher(nil))
		view, _ := svc.StartSession(ctx, nil)

		Convey("When computing results", func() {
			res, err := svc.Results(ctx, view.ID, service.RadarRequest{})
			So(err, ShouldBeNil)

			Convey("Then no competency is compared with its benchmark", func() {
				So(res.Rows, ShouldHaveLength, 7)
				for _, r := range res.Rows {
					So(r.Answered, ShouldBeFalse)
					So(r.Status, ShouldEqual, benchmark.StatusNotAnswered)
					So(r.Color, ShouldEqual, benchmark.ColorNotAnswered)
				}
			})
		})
	})

	Convey("Given stateless scoring", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithPublisher(nil))

		Convey("When a 3-point question is rated 3 and a 5-point one 1", func() {
			res, err := svc.Score(ctx, []scoring.Response{
				{QuestionID: "LE3", Rating: 3},
				{QuestionID: "BA1", Rating: 1},
				{QuestionID: "XX1", Rating: 9},
			}, service.RadarRequest{})

			Convey("Then ratings are normalized and unknown ids ignored", func() {
				So(err, ShouldBeNil)
				So(res.Averages[catalog.LeadershipEthics], ShouldEqual, 5)
				So(res.Averages[catalog.BrandAdvocate], ShouldEqual, 1)
				So(res.Averages[catalog.TeamPlayer], ShouldEqual, 0)
				So(res.Progress, ShouldBeNil)
			})
		})

		Convey("When a known question is rated off its scale", func() {
			_, err := svc.Score(ctx, []scoring.Response{{QuestionID: "LE3", Rating: 4}}, service.RadarRequest{})
			So(errors.Is(err, service.ErrInvalidResponse), ShouldBeTrue)
		})
	})
}
