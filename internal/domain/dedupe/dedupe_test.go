package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/impactwon/checkin/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

type outcome struct {
	Saved bool
}

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper[outcome]()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a submission id is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "sub-1")

			Convey("Then it is new and in flight", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
				_, ok := d.Lookup(ctx, "sub-1")
				So(ok, ShouldBeFalse)
			})

			Convey("Then a second attempt is seen", func() {
				So(d.SeenAndRecord(ctx, "sub-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("Then the completed outcome can be replayed", func() {
				d.Complete(ctx, "sub-1", outcome{Saved: true})
				v, ok := d.Lookup(ctx, "sub-1")
				So(ok, ShouldBeTrue)
				So(v.Saved, ShouldBeTrue)
			})
		})

		Convey("When an id is unrecorded", func() {
			d.SeenAndRecord(ctx, "sub-2")
			d.Unrecord(ctx, "sub-2")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "sub-2"), ShouldBeFalse)
			})
		})

		Convey("When completing an unknown id", func() {
			d.Complete(ctx, "ghost", outcome{Saved: true})

			Convey("Then nothing is stored", func() {
				So(d.Size(), ShouldEqual, 0)
				_, ok := d.Lookup(ctx, "ghost")
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestBoundedEviction(t *testing.T) {
	Convey("Given a deduper bounded to 3 ids", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper[outcome](dedupe.WithMaxSize(3))
		for _, id := range []string{"a", "b", "c"} {
			So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
		}

		Convey("When a fourth id arrives", func() {
			So(d.SeenAndRecord(ctx, "d"), ShouldBeFalse)

			Convey("Then the oldest id is forgotten", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper[outcome](dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			So(d.SeenAndRecord(ctx, fmt.Sprintf("sub-%d", i)), ShouldBeFalse)
		}
		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "sub-0"), ShouldBeTrue)
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given concurrent submits of the same id", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper[outcome]()

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, "same") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one wins", func() {
			So(fresh, ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
