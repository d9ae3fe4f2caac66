package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
			)

			Convey("Then its metrics register and record", func() {
				So(m, ShouldNotBeNil)
				m.RecordItemEvaluated("moisture", "below")
				m.RecordItemEvaluated("moisture", "below")
				m.RecordCardEvaluated("monstera", 0.2)
				m.RecordIconFallback("pressure")
				m.httpRequests.WithLabelValues("cards", "GET", "200").Inc()

				So(testutil.ToFloat64(m.itemsEvaluated.WithLabelValues("moisture", "below")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.cardsEvaluated.WithLabelValues("monstera")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.iconFallbacks.WithLabelValues("pressure")), ShouldEqual, 1)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_items_evaluated_total"], ShouldBeTrue)
				So(names["test_http_requests_total"], ShouldBeTrue)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then every helper records without panicking", func() {
			So(func() {
				RecordItemEvaluated("battery", "in_range")
				RecordCardEvaluated("card", 0.1)
				RecordIconFallback("unknown")
				RecordUnavailableReading("battery")
				RecordUnparsableTimestamp()
				UpdateDryCards(1)
				UpdateConfiguredCards(2)
				RecordStateUpdateApplied()
				RecordStateUpdateFailed()
				UpdateStoreEntities(3)
				UpdateQueueSize(0)
				UpdateQueueCapacity(10)
				RecordQueueEnqueue()
				RecordQueueRejected("full")
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(0.5)
				RecordHTTPRequest("cards", "GET", "200")
				RecordHTTPRequestDuration("cards", "GET", "200", 1.5)
			}, ShouldNotPanic)
		})

		Convey("Then the registry is shared", func() {
			UpdateConfiguredCards(5)
			So(GetRegistry(), ShouldEqual, customRegistry)
			So(testutil.ToFloat64(globalManager.configuredCards), ShouldEqual, 5)
		})
	})
}
