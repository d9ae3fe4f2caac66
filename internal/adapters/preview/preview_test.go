package preview

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/okian/plantcard/internal/domain/gradient"
	"github.com/okian/plantcard/internal/domain/model"
	"github.com/okian/plantcard/internal/domain/reading"
	"github.com/okian/plantcard/internal/domain/thresholds"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseColor(t *testing.T) {
	Convey("Given CSS colour values", t, func() {
		Convey("Then plain hex parses", func() {
			c, ok := ParseColor("#ff0000")
			So(ok, ShouldBeTrue)
			So(c.Hex(), ShouldEqual, "#ff0000")
		})

		Convey("Then short hex parses", func() {
			c, ok := ParseColor("#bbb")
			So(ok, ShouldBeTrue)
			So(c.Hex(), ShouldEqual, "#bbbbbb")
		})

		Convey("Then theme variables use their fallback", func() {
			c, ok := ParseColor(thresholds.DefaultPalette.Below)
			So(ok, ShouldBeTrue)
			So(c.Hex(), ShouldEqual, "#d32f2f")
		})

		Convey("Then named colours resolve", func() {
			c, ok := ParseColor(" Orange ")
			So(ok, ShouldBeTrue)
			So(c.Hex(), ShouldEqual, "#ffa500")
		})

		Convey("Then variables without a fallback are neutral", func() {
			c, ok := ParseColor("var(--primary-color)")
			So(ok, ShouldBeFalse)
			So(c, ShouldResemble, neutral)
		})
	})
}

func TestRenderer(t *testing.T) {
	Convey("Given an evaluated card", t, func() {
		rng := thresholds.Range{Min: reading.Of(20), Max: reading.Of(60)}
		spec := gradient.Build(reading.Of(42), rng, thresholds.DefaultPalette)
		card := model.CardPresentation{
			ID:      "ficus",
			Title:   "Ficus",
			Image:   "/local/ficus.jpg",
			Dry:     true,
			DryIcon: "mdi:water-off",
			Items: []model.Presentation{
				{Name: "Moisture", Icon: "mdi:water", Display: "42 %", Gradient: &spec, LastUpdated: "Updated 5m ago"},
				{Name: "Temperature", Icon: "mdi:thermometer", Display: "21.5°C"},
			},
			Size: 2,
		}

		Convey("When rendered", func() {
			out := ansi.Strip(New(WithBarWidth(10)).Render(card))

			Convey("Then the header, rows and badge are present", func() {
				So(out, ShouldContainSubstring, "Ficus")
				So(out, ShouldContainSubstring, "Dry")
				So(out, ShouldContainSubstring, "/local/ficus.jpg")
				So(out, ShouldContainSubstring, "mdi:water")
				So(out, ShouldContainSubstring, "42 %")
				So(out, ShouldContainSubstring, "21.5°C")
				So(out, ShouldContainSubstring, "Updated 5m ago")
			})
		})

		Convey("When icons are hidden", func() {
			out := ansi.Strip(New(WithIcons(false)).Render(card))
			So(out, ShouldNotContainSubstring, "mdi:thermometer")
		})

		Convey("When a bar is drawn", func() {
			bar := ansi.Strip(New(WithBarWidth(10)).Bar(spec))

			Convey("Then cells up to the reading are solid", func() {
				So(strings.Count(bar, barFilled), ShouldEqual, 4)
				So(strings.Count(bar, barEmpty), ShouldEqual, 6)
			})
		})

		Convey("When the reading is unavailable", func() {
			disabled := gradient.Build(reading.Unavailable(), rng, thresholds.DefaultPalette)
			bar := ansi.Strip(New(WithBarWidth(10)).Bar(disabled))
			So(strings.Count(bar, barFilled), ShouldEqual, 0)
		})
	})
}
