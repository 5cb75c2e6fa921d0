package benchmark_test

import (
	"encoding/json"
	"testing"

	"github.com/impactwon/checkin/internal/domain/benchmark"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given scores around a 4.0 benchmark", t, func() {
		Convey("Exactly +0.3 is ahead", func() {
			So(benchmark.Classify(4.3, 4.0), ShouldEqual, benchmark.StatusAhead)
			So(benchmark.Classify(4.3, 4.0).String(), ShouldEqual, "Ahead of benchmark")
		})

		Convey("Exactly -0.3 is a priority", func() {
			So(benchmark.Classify(3.7, 4.0), ShouldEqual, benchmark.StatusPriority)
			So(benchmark.Classify(3.7, 4.0).String(), ShouldEqual, "Priority development area")
		})

		Convey("Equal scores are in line", func() {
			So(benchmark.Classify(4.0, 4.0), ShouldEqual, benchmark.StatusInLine)
			So(benchmark.Classify(4.0, 4.0).String(), ShouldEqual, "In line with benchmark")
		})

		Convey("Just inside the band stays in line", func() {
			So(benchmark.Classify(4.29, 4.0), ShouldEqual, benchmark.StatusInLine)
			So(benchmark.Classify(3.71, 4.0), ShouldEqual, benchmark.StatusInLine)
		})

		Convey("The unanswered sentinel is not compared", func() {
			avg := scoring.Averages{catalog.TeamPlayer: 0, catalog.Investigator: 4.3}
			So(benchmark.StatusFor(avg, catalog.TeamPlayer, 4.0), ShouldEqual, benchmark.StatusNotAnswered)
			So(benchmark.StatusFor(avg, catalog.BrandAdvocate, 4.0), ShouldEqual, benchmark.StatusNotAnswered)
			So(benchmark.StatusFor(avg, catalog.Investigator, 4.0), ShouldEqual, benchmark.StatusAhead)
			So(benchmark.StatusNotAnswered.String(), ShouldEqual, "Not answered")
		})
	})
}

func TestColors(t *testing.T) {
	Convey("Given the status colour map", t, func() {
		So(benchmark.ColorFor(benchmark.StatusAhead), ShouldEqual, "#A6E0C5")
		So(benchmark.ColorFor(benchmark.StatusPriority), ShouldEqual, "#FF810C")
		So(benchmark.ColorFor(benchmark.StatusInLine), ShouldEqual, "#C1E6FF")
		So(benchmark.ColorFor(benchmark.StatusNotAnswered), ShouldEqual, benchmark.NeutralLevelColor)
		So(benchmark.ColorFor(benchmark.Status(42)), ShouldEqual, "#C1E6FF")

		Convey("Level colours are total over 1..5", func() {
			seen := map[string]bool{}
			for l := 1; l <= 5; l++ {
				c := benchmark.LevelColor(l)
				So(c, ShouldStartWith, "#")
				So(c, ShouldNotEqual, benchmark.NeutralLevelColor)
				seen[c] = true
			}
			So(seen, ShouldHaveLength, 5)
			So(benchmark.LevelColor(0), ShouldEqual, benchmark.NeutralLevelColor)
			So(benchmark.LevelColor(6), ShouldEqual, benchmark.NeutralLevelColor)
		})
	})
}

func TestStatusJSON(t *testing.T) {
	Convey("Given a status encoded as JSON", t, func() {
		b, err := json.Marshal(benchmark.StatusPriority)
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `"Priority development area"`)

		var s benchmark.Status
		So(json.Unmarshal(b, &s), ShouldBeNil)
		So(s, ShouldEqual, benchmark.StatusPriority)
		So(json.Unmarshal([]byte(`"sideways"`), &s), ShouldNotBeNil)

		So(json.Unmarshal([]byte(`"Not answered"`), &s), ShouldBeNil)
		So(s, ShouldEqual, benchmark.StatusNotAnswered)
	})
}

func TestCompare(t *testing.T) {
	Convey("Given the built-in catalog and partial averages", t, func() {
		cat := catalog.Default()
		rows := benchmark.Compare(cat, scoring.Averages{
			catalog.BrandAdvocate: 4.6,
			catalog.Investigator:  4.0,
		})

		So(rows, ShouldHaveLength, 7)
		So(rows[0].CompetencyID, ShouldEqual, catalog.BrandAdvocate)
		So(rows[0].Status, ShouldEqual, benchmark.StatusAhead)
		So(rows[0].Color, ShouldEqual, benchmark.ColorAhead)
		So(rows[1].Status, ShouldEqual, benchmark.StatusInLine)
		So(rows[2].Answered, ShouldBeFalse)
		So(rows[2].UserScore, ShouldEqual, 0)
		So(rows[2].BenchmarkScore, ShouldEqual, 4.0)

		Convey("Unanswered rows carry no comparison", func() {
			for _, r := range rows[2:] {
				So(r.Status, ShouldEqual, benchmark.StatusNotAnswered)
				So(r.Color, ShouldEqual, benchmark.ColorNotAnswered)
			}
		})
	})
}
