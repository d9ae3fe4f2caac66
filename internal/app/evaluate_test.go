package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/okian/plantcard/internal/app"
	"github.com/okian/plantcard/internal/domain/icon"
	"github.com/okian/plantcard/internal/domain/model"
	"github.com/okian/plantcard/internal/domain/relative"
	"github.com/okian/plantcard/internal/domain/thresholds"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newEvaluator(strategy icon.Strategy) *service.Evaluator {
	return service.NewEvaluator(strategy, relative.New(), nil)
}

func plantCard(items ...model.ItemConfig) model.CardConfig {
	return model.CardConfig{
		ID:              "ficus",
		Title:           "Ficus",
		Image:           "ficus.jpg",
		MinMoisture:     "15",
		MaxMoisture:     "60",
		ShowLastChanged: true,
		Entities:        items,
	}
}

func TestEvaluator_Moisture(t *testing.T) {
	Convey("Given a moisture item inside the card range", t, func() {
		ev := newEvaluator(icon.NearestTen)
		card := plantCard(model.ItemConfig{Type: "moisture", Entity: "sensor.m"})
		states := service.StateMap{
			"sensor.m": {Entity: "sensor.m", Value: "42", Unit: "%", LastChanged: now.Add(-5 * time.Minute).Format(time.RFC3339)},
		}

		pres := ev.EvaluateCard(context.Background(), card, states, now)

		Convey("Then the card carries its layout fields", func() {
			So(pres.ID, ShouldEqual, "ficus")
			So(pres.Title, ShouldEqual, "Ficus")
			So(pres.Image, ShouldEqual, "/local/ficus.jpg")
			So(pres.Size, ShouldEqual, 1)
			So(pres.Dry, ShouldBeFalse)
			So(pres.DryIcon, ShouldBeEmpty)
		})

		Convey("Then the item is fully described", func() {
			So(pres.Items, ShouldHaveLength, 1)
			item := pres.Items[0]
			So(item.Name, ShouldEqual, "Moisture")
			So(item.Classification, ShouldEqual, thresholds.InRange)
			So(item.Display, ShouldEqual, "42 %")
			So(item.Title, ShouldEqual, "Moisture: 42 %")
			So(string(item.Icon), ShouldEqual, "mdi:water")
			So(item.LastUpdated, ShouldEqual, "Updated 5m ago")
			So(*item.Range.Min, ShouldEqual, 15.0)
			So(*item.Range.Max, ShouldEqual, 60.0)
			So(item.Gradient, ShouldNotBeNil)
			So(item.Gradient.Percent, ShouldEqual, 42)
			So(item.Gradient.LabelColor, ShouldEqual, thresholds.DefaultPalette.InRange)
		})

		Convey("Then evaluating again yields the same result", func() {
			again := ev.EvaluateCard(context.Background(), card, states, now)
			So(again, ShouldResemble, pres)
		})
	})

	Convey("Given a moisture item below its own minimum", t, func() {
		ev := newEvaluator(icon.NearestTen)
		card := plantCard(model.ItemConfig{Type: "moisture", Entity: "sensor.m", MinMoisture: "20"})
		states := service.StateMap{"sensor.m": {Entity: "sensor.m", Value: "18", Unit: "%"}}

		pres := ev.EvaluateCard(context.Background(), card, states, now)

		Convey("Then the item is below and the dry badge shows", func() {
			So(pres.Items[0].Classification, ShouldEqual, thresholds.Below)
			So(pres.Dry, ShouldBeTrue)
			So(pres.DryIcon, ShouldEqual, "mdi:water-off")
		})

		Convey("Then a custom dry icon wins", func() {
			card.CustomIcons = map[string]string{"dry": "mdi:cactus"}
			pres := ev.EvaluateCard(context.Background(), card, states, now)
			So(pres.DryIcon, ShouldEqual, "mdi:cactus")
		})
	})

	Convey("Given a moisture item below only the card minimum", t, func() {
		ev := newEvaluator(icon.NearestTen)
		card := plantCard(model.ItemConfig{Type: "moisture", Entity: "sensor.m"})
		states := service.StateMap{"sensor.m": {Entity: "sensor.m", Value: "10", Unit: "%"}}

		Convey("Then the effective minimum still raises the badge", func() {
			So(ev.EvaluateCard(context.Background(), card, states, now).Dry, ShouldBeTrue)
		})
	})

	Convey("Given a non-moisture item below range", t, func() {
		ev := newEvaluator(icon.NearestTen)
		card := plantCard(model.ItemConfig{Type: "humidity", Entity: "sensor.h"})
		states := service.StateMap{"sensor.h": {Entity: "sensor.h", Value: "5", Unit: "%"}}

		Convey("Then no dry badge is raised", func() {
			pres := ev.EvaluateCard(context.Background(), card, states, now)
			So(pres.Items[0].Classification, ShouldEqual, thresholds.Below)
			So(pres.Dry, ShouldBeFalse)
		})
	})
}

func TestEvaluator_Battery(t *testing.T) {
	Convey("Given battery items", t, func() {
		card := plantCard(
			model.ItemConfig{Type: "battery", Entity: "sensor.b1"},
			model.ItemConfig{Type: "battery", Entity: "sensor.b2"},
			model.ItemConfig{Type: "battery", Entity: "sensor.b3"},
		)
		states := service.StateMap{
			"sensor.b1": {Value: "47", Unit: "%"},
			"sensor.b2": {Value: "4", Unit: "%"},
		}

		Convey("When tiers round to the nearest ten", func() {
			pres := newEvaluator(icon.NearestTen).EvaluateCard(context.Background(), card, states, now)
			So(string(pres.Items[0].Icon), ShouldEqual, "mdi:battery-50")
			So(string(pres.Items[1].Icon), ShouldEqual, "mdi:battery-alert")
			So(string(pres.Items[2].Icon), ShouldEqual, "mdi:battery")
			So(pres.Size, ShouldEqual, 3)
		})

		Convey("When tiers use the floored offset", func() {
			pres := newEvaluator(icon.FlooredOffset).EvaluateCard(context.Background(), card, states, now)
			So(string(pres.Items[0].Icon), ShouldEqual, "mdi:battery-40")
		})

		Convey("When a custom battery icon is configured", func() {
			card.CustomIcons = map[string]string{"battery": "mdi:cellphone"}
			pres := newEvaluator(icon.NearestTen).EvaluateCard(context.Background(), card, states, now)
			So(string(pres.Items[0].Icon), ShouldEqual, "mdi:cellphone-50")
		})
	})
}

func TestEvaluator_Display(t *testing.T) {
	Convey("Given items with varied units and states", t, func() {
		ev := newEvaluator(icon.NearestTen)
		card := model.CardConfig{
			ID: "mixed",
			Entities: []model.ItemConfig{
				{Type: "temperature", Entity: "sensor.t", Name: "Air"},
				{Type: "conductivity", Entity: "sensor.c"},
				{Type: "ph", Entity: "sensor.ph"},
				{Entity: "sensor.none"},
				{Type: "illuminance", Entity: "sensor.l"},
			},
		}
		states := service.StateMap{
			"sensor.t":  {Value: "21.5", Unit: "°C"},
			"sensor.c":  {Value: "350"},
			"sensor.ph": {Value: "unknown"},
		}

		pres := ev.EvaluateCard(context.Background(), card, states, now)

		Convey("Then units are appended without a space", func() {
			So(pres.Items[0].Display, ShouldEqual, "21.5°C")
			So(pres.Items[0].Title, ShouldEqual, "Air: 21.5°C")
			So(pres.Items[0].Gradient, ShouldBeNil)
		})

		Convey("Then a bare number stays bare", func() {
			So(pres.Items[1].Display, ShouldEqual, "350")
			So(pres.Items[1].Name, ShouldEqual, "Conductivity")
			So(string(pres.Items[1].Icon), ShouldEqual, "mdi:emoticon-poop")
		})

		Convey("Then non-numeric text is shown as is with the fallback icon", func() {
			So(pres.Items[2].Display, ShouldEqual, "unknown")
			So(pres.Items[2].Name, ShouldEqual, "Ph")
			So(pres.Items[2].Classification, ShouldEqual, thresholds.Unavailable)
			So(string(pres.Items[2].Icon), ShouldEqual, icon.Fallback)
		})

		Convey("Then an untyped item is named Unknown", func() {
			So(pres.Items[3].Name, ShouldEqual, "Unknown")
		})

		Convey("Then a missing state reads unavailable", func() {
			So(pres.Items[4].Display, ShouldEqual, "unavailable")
			So(pres.Items[4].Classification, ShouldEqual, thresholds.Unavailable)
			So(pres.Items[4].Range.Min, ShouldBeNil)
		})

		Convey("Then a card without an image has no image path", func() {
			So(pres.Image, ShouldBeEmpty)
		})
	})

	Convey("Given an unavailable percentage item", t, func() {
		ev := newEvaluator(icon.NearestTen)
		card := plantCard(model.ItemConfig{Type: "moisture", Entity: "sensor.m"})

		pres := ev.EvaluateCard(context.Background(), card, service.StateMap{}, now)

		Convey("Then the gradient is disabled", func() {
			So(pres.Items[0].Gradient, ShouldNotBeNil)
			So(pres.Items[0].Gradient.Disabled, ShouldBeTrue)
			So(pres.Items[0].Gradient.Percent, ShouldEqual, 0)
			So(pres.Dry, ShouldBeFalse)
		})
	})
}

func TestEvaluator_Compact(t *testing.T) {
	Convey("Given a card with last-changed lines", t, func() {
		ev := newEvaluator(icon.NearestTen)
		states := service.StateMap{
			"sensor.m": {Value: "30", Unit: "%", LastChanged: now.Add(-3 * time.Hour).Format(time.RFC3339)},
		}

		Convey("When the item is compact", func() {
			card := plantCard(model.ItemConfig{Type: "moisture", Entity: "sensor.m", Compact: true})
			item := ev.EvaluateCard(context.Background(), card, states, now).Items[0]

			So(item.Compact, ShouldBeTrue)
			So(item.Display, ShouldBeEmpty)
			So(item.LastUpdated, ShouldBeEmpty)
			So(item.Title, ShouldEqual, "Moisture: 30 %")
		})

		Convey("When the whole card is compact", func() {
			card := plantCard(model.ItemConfig{Type: "moisture", Entity: "sensor.m"})
			card.Compact = true
			item := ev.EvaluateCard(context.Background(), card, states, now).Items[0]

			So(item.Compact, ShouldBeTrue)
			So(item.Display, ShouldBeEmpty)
		})

		Convey("When the item is not compact", func() {
			card := plantCard(model.ItemConfig{Type: "moisture", Entity: "sensor.m"})
			item := ev.EvaluateCard(context.Background(), card, states, now).Items[0]

			So(item.LastUpdated, ShouldEqual, "Updated 3h ago")
		})

		Convey("When last-changed lines are disabled", func() {
			card := plantCard(model.ItemConfig{Type: "moisture", Entity: "sensor.m"})
			card.ShowLastChanged = false
			item := ev.EvaluateCard(context.Background(), card, states, now).Items[0]

			So(item.LastUpdated, ShouldBeEmpty)
		})

		Convey("When the timestamp cannot be parsed", func() {
			card := plantCard(model.ItemConfig{Type: "moisture", Entity: "sensor.m"})
			bad := service.StateMap{"sensor.m": {Value: "30", Unit: "%", LastChanged: "yesterday"}}
			item := ev.EvaluateCard(context.Background(), card, bad, now).Items[0]

			So(item.LastUpdated, ShouldEqual, "Updated yesterday")
		})

		Convey("When the timestamp has no zone", func() {
			zoned := service.NewEvaluator(icon.NearestTen,
				relative.New(relative.WithLocation(time.FixedZone("CEST", 2*60*60))), nil)
			card := plantCard(model.ItemConfig{Type: "moisture", Entity: "sensor.m"})
			local := service.StateMap{"sensor.m": {Value: "30", Unit: "%", LastChanged: "2024-06-01 11:00:00"}}
			item := zoned.EvaluateCard(context.Background(), card, local, now).Items[0]

			So(item.LastUpdated, ShouldEqual, "Updated 3h ago")
		})
	})
}
