package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the package-level helpers", t, func() {
		Convey("When recording domain events", func() {
			RecordRoundSubmitted()
			RecordRoundDuplicate()
			RecordRoundRejected()
			RecordReplay()
			RecordReplayError()
			RecordReplayDuration(12.5)
			RecordUnratableRounds(2)
			RecordBoardUpdate()

			Convey("Then the registry gathers without errors", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When updating gauges", func() {
			UpdateBoardSize(3)
			UpdateQueueSize(5)
			UpdateQueueCapacity(100)
			UpdateQueueUtilization(0.05)
			UpdateWorkerCount(4)
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(10)

			Convey("Then the registry gathers without errors", func() {
				_, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
			})
		})

		Convey("When recording HTTP metrics", func() {
			RecordHTTPRequest("rounds", "POST", "202")
			RecordHTTPRequestDuration("rounds", "POST", 3.0)
			RecordErrorByComponent("http", "rounds")

			Convey("Then the registry gathers without errors", func() {
				_, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
			})
		})
	})
}
