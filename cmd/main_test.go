package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/robonalysis/internal/adapters/http/api"
	"github.com/okian/robonalysis/internal/adapters/http/swagger"
	app "github.com/okian/robonalysis/internal/app"
	"github.com/okian/robonalysis/internal/config"
	"github.com/okian/robonalysis/pkg/logger"
	"github.com/okian/robonalysis/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func setenv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		_ = os.Setenv(config.EnvPrefix+k, v)
	}
	t.Cleanup(func() {
		for k := range kv {
			_ = os.Unsetenv(config.EnvPrefix + k)
		}
	})
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			setenv(t, map[string]string{
				"ADDR":          ":8080",
				"QUEUE_SIZE":    "1000",
				"WORKER_COUNT":  "4",
				"CACHE_BACKEND": "none",
			})

			convey.Convey("Then the overrides should apply", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheBackendNone)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				convey.So(metrics.NewManager(), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the metrics updaters run until their context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			svc := app.New()

			convey.Convey("Then they should return without panicking", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
				convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updating metrics directly", func() {
			svc := app.New(app.WithWorkerCount(1))
			ctx := context.Background()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()

			convey.Convey("Then it should not panic", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a bootstrapped application", t, func() {
		setenv(t, map[string]string{
			"CACHE_BACKEND":     "memory",
			"WORKER_COUNT":      "2",
			"PASSCODE":          "letmein",
			"METRICS_NAMESPACE": "robo_it",
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)

		app.ConfigureMetrics(cfg)
		defer metrics.Configure()
		svc, store, err := app.Bootstrap(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = store.Close() }()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		convey.So(swagger.Register(ctx, mux), convey.ShouldBeNil)
		server := api.NewServer(svc, svc, api.WithPasscode(cfg.Passcode))
		server.Register(ctx, mux)
		handler := server.Handler(mux)

		get := func(path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			return rec
		}

		convey.Convey("Then the open routes should respond", func() {
			health := get("/healthz")
			convey.So(health.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(health.Body.String(), convey.ShouldContainSubstring, "robo_it_replay_queue_size")
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the API should be gated by the passcode", func() {
			rec := get("/api/team/matches/context?team_id=1")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusUnauthorized)
			convey.So(rec.Header().Get(api.RequestIDHeader), convey.ShouldNotBeEmpty)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := config.New(context.Background())
		cfg.Addr = "127.0.0.1:0"
		cfg.CacheBackend = config.CacheBackendNone
		cfg.WorkerCount = 1
		defer func() { _ = logger.Init() }()

		convey.Convey("When the root context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			convey.Convey("Then run should shut down cleanly", func() {
				convey.So(run(ctx, cfg), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"

			convey.Convey("Then run should fail before serving", func() {
				convey.So(run(context.Background(), cfg), convey.ShouldNotBeNil)
			})
		})
	})
}
