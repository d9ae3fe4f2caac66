package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	app "github.com/okian/plantcard/internal/app"
	"github.com/okian/plantcard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const cardsYAML = `
cards:
  - id: ficus
    title: Ficus
    min_moisture: 20
    show_last_changed: true
    entities:
      - type: moisture
        entity: sensor.ficus_moisture
      - type: temperature
        entity: sensor.ficus_temperature
  - id: cactus
    title: Cactus
    entities:
      - type: moisture
        entity: sensor.cactus_moisture
`

const statesYAML = `
states:
  - entity: sensor.ficus_moisture
    state: 12
    unit: "%"
    last_changed: "2024-06-01T09:00:00Z"
  - entity: sensor.ficus_temperature
    state: "21.5"
    unit: "°C"
`

func init() {
	_ = logger.Init(logger.WithOutput(io.Discard))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRun(t *testing.T) {
	convey.Convey("Given card and state files", t, func() {
		cards := writeFile(t, "cards.yaml", cardsYAML)
		states := writeFile(t, "states.yaml", statesYAML)
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

		convey.Convey("When a single card is rendered", func() {
			var out bytes.Buffer
			err := run(context.Background(), &out, cards, states, "ficus", now)
			text := ansi.Strip(out.String())

			convey.Convey("Then it shows the dry badge and readings", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(text, convey.ShouldContainSubstring, "Ficus")
				convey.So(text, convey.ShouldContainSubstring, "Dry")
				convey.So(text, convey.ShouldContainSubstring, "12 %")
				convey.So(text, convey.ShouldContainSubstring, "21.5°C")
				convey.So(text, convey.ShouldContainSubstring, "Updated 3h ago")
				convey.So(text, convey.ShouldNotContainSubstring, "Cactus")
			})
		})

		convey.Convey("When every card is rendered", func() {
			var out bytes.Buffer
			err := run(context.Background(), &out, cards, states, "", now)
			convey.So(err, convey.ShouldBeNil)
			convey.So(ansi.Strip(out.String()), convey.ShouldContainSubstring, "Cactus")
		})

		convey.Convey("When the card is unknown", func() {
			err := run(context.Background(), io.Discard, cards, states, "fern", now)
			convey.So(errors.Is(err, app.ErrUnknownCard), convey.ShouldBeTrue)
		})

		convey.Convey("When the states file is missing", func() {
			err := run(context.Background(), io.Discard, cards, filepath.Join(t.TempDir(), "none.yaml"), "", now)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestLoadStates(t *testing.T) {
	convey.Convey("Given a states file", t, func() {
		path := writeFile(t, "states.yaml", statesYAML)

		convey.Convey("Then states are keyed by entity", func() {
			states, err := loadStates(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(states, convey.ShouldHaveLength, 2)
			st, ok := states.State("sensor.ficus_moisture")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(st.Value, convey.ShouldEqual, "12")
			convey.So(st.Unit, convey.ShouldEqual, "%")
		})

		convey.Convey("Then an empty path yields no states", func() {
			states, err := loadStates("")
			convey.So(err, convey.ShouldBeNil)
			convey.So(states, convey.ShouldBeEmpty)
		})
	})
}
