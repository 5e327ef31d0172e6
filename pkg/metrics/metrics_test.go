package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "robonalysis")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sos"),
				WithHistogramBuckets([]float64{1, 2}),
				WithMetricsEnabled(false),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "sos")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2})
				So(manager.enabled, ShouldBeFalse)
				So(manager.customLabels["env"], ShouldEqual, "test")
			})

			Convey("And the collectors should carry the constant labels", func() {
				manager.ledgerSteps.Add(3)
				So(testutil.ToFloat64(manager.ledgerSteps), ShouldEqual, 3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_sos_ledger_steps_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty option values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "robonalysis")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording engine metrics", func() {
			before := testutil.ToFloat64(globalManager.ledgerSteps)
			RecordLedgerSteps(4, 1)
			RecordReplayLatency(0.3)
			RecordComputation(12)
			RecordDegradedEvent()

			Convey("Then counters should move", func() {
				So(testutil.ToFloat64(globalManager.ledgerSteps), ShouldEqual, before+4)
			})
		})

		Convey("When recording upstream and cache metrics", func() {
			So(func() {
				RecordUpstreamRequest("team_matches", "200", 35)
				RecordUpstreamPage("team_matches")
				RecordPaginationTruncated("event_matches")
				RecordCacheHit("memory")
				RecordCacheMiss("memory")
				RecordCacheError("redis", "get")
				RecordCachePurged(3)
				RecordCachePurged(0)
			}, ShouldNotPanic)

			Convey("Then the labelled series should be gathered", func() {
				So(testutil.ToFloat64(globalManager.cacheHits.WithLabelValues("memory")), ShouldBeGreaterThanOrEqualTo, 1)
				names, err := Gather()
				So(err, ShouldBeNil)
				So(names, ShouldContain, "robonalysis_upstream_requests_total")
				So(names, ShouldContain, "robonalysis_cache_hits_total")
			})
		})

		Convey("When recording operational metrics", func() {
			So(func() {
				UpdateQueueSize(2)
				UpdateQueueCapacity(64)
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(0.5)
				RecordHTTPRequest("/api/team/matches/context", "GET", "200")
				RecordHTTPRequestDuration("/api/team/matches/context", "GET", "200", 40)
				RecordErrorByComponent("upstream", "status_503")
				RecordErrorByType("server_error", "high")
				RecordErrorByEndpoint("/api/event/matches", "GET", "not_found")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
				RecordComputationError()
			}, ShouldNotPanic)
		})

		Convey("When reading the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		defer Configure()

		Convey("When it is reconfigured with a namespace and labels", func() {
			registry := Configure(
				WithNamespace("roboeval"),
				WithSubsystem("api"),
				WithHistogramBuckets([]float64{10, 100}),
				WithCustomLabels(map[string]string{"env": "staging"}),
				WithMetricsEnabled(false),
			)
			RecordCacheHit("memory")
			RecordUpstreamRequest("team", "200", 5)

			Convey("Then the served registry should carry the new names", func() {
				So(GetRegistry(), ShouldEqual, registry)
				names, err := Gather()
				So(err, ShouldBeNil)
				So(names, ShouldContain, "roboeval_api_cache_hits_total")
				So(names, ShouldNotContain, "robonalysis_cache_hits_total")
			})

			Convey("Then upstream recording should be switched off", func() {
				So(testutil.CollectAndCount(globalManager.upstreamRequests), ShouldEqual, 0)
			})
		})
	})
}
