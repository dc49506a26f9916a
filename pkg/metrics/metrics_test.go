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
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("testns"),
				WithSubsystem("testsub"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "testns")
				So(manager.subsystem, ShouldEqual, "testsub")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording gateway and HTTP metrics", func() {
			recordAll := func() {
				RecordLogin("success")
				RecordRefresh("failure")
				RecordFetch("success")
				RecordFetchRetry()
				RecordFetchLatency(12.5)
				AddRecordsFetched(10)
				AddRecordsDropped(1)
				RecordHTTPRequest("steps", "GET", "200")
				RecordHTTPRequestDuration("steps", "GET", "200", 3.2)
			}

			Convey("Then recording should not panic", func() {
				So(recordAll, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			registry := GetRegistry()

			Convey("Then it should gather without error", func() {
				So(registry, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
