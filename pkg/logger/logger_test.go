package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("Init installs a text logger", func() {
			So(Init(), ShouldBeNil)
			So(Get(), ShouldNotBeNil)
			So(Sync(), ShouldBeNil)
		})

		Convey("InitWithFormat rejects unknown formats", func() {
			So(InitWithFormat("xml"), ShouldNotBeNil)
		})

		Convey("SetLevelString rejects unknown levels", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
			So(SetLevelString("warning"), ShouldBeNil)
			So(SetLevelString("info"), ShouldBeNil)
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		SetOutput(&buf)
		defer SetOutput(nil)
		So(InitWithFormat(FormatJSON), ShouldBeNil)
		So(SetLevelString("debug"), ShouldBeNil)
		defer func() { _ = SetLevelString("info") }()

		Convey("Named loggers tag the component and fields", func() {
			Named("scoring").With(String("session", "s1")).Info(context.Background(), "scored", Float64("avg", 4.5), Bool("saved", true))

			var rec map[string]any
			So(json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec), ShouldBeNil)
			So(rec["msg"], ShouldEqual, "scored")
			So(rec["component"], ShouldEqual, "scoring")
			So(rec["session"], ShouldEqual, "s1")
			So(rec["avg"], ShouldEqual, 4.5)
			So(rec["saved"], ShouldEqual, true)
			So(rec["source"], ShouldContainSubstring, "logger_test.go")
		})

		Convey("Records below the level are dropped", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}

func TestWatermillAdapter(t *testing.T) {
	Convey("Given a watermill adapter over the global logger", t, func() {
		var buf bytes.Buffer
		SetOutput(&buf)
		defer SetOutput(nil)
		So(Init(), ShouldBeNil)

		a := Watermill(Get()).With(watermill.LogFields{"topic": "assessment.submitted"})

		Convey("Errors carry the bound fields and the error", func() {
			a.Error("publish failed", errors.New("broker down"), watermill.LogFields{"attempt": 2})
			line := buf.String()
			So(line, ShouldContainSubstring, "publish failed")
			So(line, ShouldContainSubstring, "topic=assessment.submitted")
			So(line, ShouldContainSubstring, "attempt=2")
			So(strings.Contains(line, "broker down"), ShouldBeTrue)
		})
	})
}
