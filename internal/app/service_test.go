package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/plantcard/internal/adapters/repository"
	service "github.com/okian/plantcard/internal/app"
	"github.com/okian/plantcard/internal/domain/model"
	"github.com/okian/plantcard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func monstera() model.CardConfig {
	return model.CardConfig{
		ID:          "monstera",
		MinMoisture: "20",
		Entities: []model.ItemConfig{
			{Type: "moisture", Entity: "sensor.monstera_moisture"},
			{Type: "battery", Entity: "sensor.monstera_battery"},
		},
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc, err := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(err, ShouldBeNil)
			So(svc.Cards(), ShouldBeEmpty)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["iconStrategy"], ShouldEqual, "nearest_ten")
		})
	})

	Convey("Given a card with no entities", t, func() {
		_, err := service.New(service.WithCards(model.CardConfig{ID: "empty"}))

		Convey("Then registration fails", func() {
			So(errors.Is(err, model.ErrNoItems), ShouldBeTrue)
		})
	})

	Convey("Given two cards with the same id", t, func() {
		_, err := service.New(service.WithCards(monstera(), monstera()))

		Convey("Then registration fails", func() {
			So(errors.Is(err, model.ErrDuplicate), ShouldBeTrue)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service with one card", t, func() {
		clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		svc, err := service.New(
			service.WithCards(monstera()),
			service.WithWorkerCount(2),
			service.WithQueueSize(16),
			service.WithClock(func() time.Time { return clock }),
		)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When it is not started", func() {
			_, err := svc.RecordState(ctx, model.State{Entity: "sensor.x", Value: "1"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, err = svc.Evaluate(ctx, "monstera")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("When it is started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then an unknown card is reported", func() {
				_, err := svc.Evaluate(ctx, "cactus")
				So(errors.Is(err, service.ErrUnknownCard), ShouldBeTrue)
			})

			Convey("Then a state without an entity is rejected", func() {
				_, err := svc.RecordState(ctx, model.State{Value: "1"})
				So(errors.Is(err, service.ErrInvalidState), ShouldBeTrue)
			})

			Convey("Then unknown entities are not found", func() {
				_, err := svc.State(ctx, "sensor.none")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then a recorded state flows into the card", func() {
				id, err := svc.RecordState(ctx, model.State{Entity: "sensor.monstera_moisture", Value: "12", Unit: "%"})
				So(err, ShouldBeNil)
				So(id, ShouldNotBeEmpty)

				So(waitFor(func() bool {
					e, err := svc.State(ctx, "sensor.monstera_moisture")
					return err == nil && e.UpdateID == id
				}), ShouldBeTrue)

				pres, err := svc.Evaluate(ctx, "monstera")
				So(err, ShouldBeNil)
				So(pres.Items[0].Display, ShouldEqual, "12 %")
				So(pres.Items[1].Display, ShouldEqual, "unavailable")
				So(pres.Dry, ShouldBeTrue)

				So(waitFor(func() bool { return len(svc.DryCards()) == 1 }), ShouldBeTrue)
				So(svc.DryCards()[0], ShouldEqual, "monstera")

				stats := svc.GetStats()
				So(stats["entities"], ShouldEqual, 1)
			})
		})

		Convey("When it is stopped", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()
			svc.Stop()

			_, err := svc.RecordState(ctx, model.State{Entity: "sensor.x", Value: "1"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}
