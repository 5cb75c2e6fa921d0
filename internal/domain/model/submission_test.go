package model_test

import (
	"testing"
	"time"

	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/internal/domain/session"
	"github.com/smartystreets/goconvey/convey"
)

func TestRecordFrom(t *testing.T) {
	convey.Convey("Given a submission payload", t, func() {
		ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		p := model.Payload{
			SubmissionID: "sub-1",
			UserInfo:     session.UserInfo{FirstName: "Ada", Surname: "Lovelace", Email: "ada@example.com", Mobile: "07"},
			CompetencyAverages: scoring.Averages{
				catalog.BrandAdvocate:        4.2,
				catalog.LeadershipEthics:     3.8,
				catalog.SalesPlanningSelling: 5,
				"custom":                     2,
			},
			ExperienceRating: 4,
			Responses:        []scoring.Response{{QuestionID: "BA1", Rating: 4}},
			SubmittedAt:      ts,
		}

		convey.Convey("When flattening it into a row", func() {
			r := model.RecordFrom(p)

			convey.Convey("Then the columns carry the user and the built-in averages", func() {
				convey.So(r.ID, convey.ShouldEqual, "sub-1")
				convey.So(r.FirstName, convey.ShouldEqual, "Ada")
				convey.So(r.Mobile, convey.ShouldEqual, "07")
				convey.So(r.BrandAdvocate, convey.ShouldEqual, 4.2)
				convey.So(r.LeadershipEthics, convey.ShouldEqual, 3.8)
				convey.So(r.Investigator, convey.ShouldEqual, 0)
				convey.So(r.ExperienceRating, convey.ShouldEqual, 4)
				convey.So(r.CreatedAt, convey.ShouldEqual, ts)
			})

			convey.Convey("Then the row does not alias the payload responses", func() {
				p.Responses[0].Rating = 1
				convey.So(r.Responses[0].Rating, convey.ShouldEqual, 4)
			})

			convey.Convey("Then Averages gives back the seven columns", func() {
				a := r.Averages()
				convey.So(a, convey.ShouldHaveLength, 7)
				convey.So(a[catalog.SalesPlanningSelling], convey.ShouldEqual, 5)
				convey.So(a, convey.ShouldNotContainKey, "custom")
			})
		})
	})
}
