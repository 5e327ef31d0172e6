package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/robonalysis/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.PerPage, convey.ShouldEqual, 250)
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 900)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ROBONALYSIS_ADDR", ":8080")
			_ = os.Setenv("ROBONALYSIS_API_KEY", "secret-token")
			_ = os.Setenv("ROBONALYSIS_WORKER_COUNT", "16")
			_ = os.Setenv("ROBONALYSIS_CACHE_BACKEND", "REDIS")
			_ = os.Setenv("ROBONALYSIS_REDIS_URL", "redis://localhost:6379/0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should use environment values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.APIKey, convey.ShouldEqual, "secret-token")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheBackendRedis)
				convey.So(cfg.RedisURL, convey.ShouldEqual, "redis://localhost:6379/0")
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			yamlContent := `
addr: ":9090"
per_page: 100
max_pages: 5
cache_backend: sqlite
sqlite_path: /tmp/robonalysis-test.db
passcode: letmein
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ROBONALYSIS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should use file values and keep defaults elsewhere", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PerPage, convey.ShouldEqual, 100)
				convey.So(cfg.MaxPages, convey.ShouldEqual, 5)
				convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheBackendSQLite)
				convey.So(cfg.Passcode, convey.ShouldEqual, "letmein")
				convey.So(cfg.MaxEventsLimit, convey.ShouldEqual, 250)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nper_page: 100\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ROBONALYSIS_CONFIG", tmpFile)
			_ = os.Setenv("ROBONALYSIS_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.PerPage, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When the file and environment tune metrics", func() {
			tmpFile := createTempConfigFile(`
metrics_namespace: roboeval
metrics_subsystem: api
metrics_buckets_ms: [5, 50, 500]
metrics_labels:
  env: staging
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ROBONALYSIS_CONFIG", tmpFile)
			_ = os.Setenv("ROBONALYSIS_METRICS_ENABLED", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the metrics settings should be loaded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "roboeval")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "api")
				convey.So(cfg.MetricsBucketsMS, convey.ShouldResemble, []float64{5, 50, 500})
				convey.So(cfg.MetricsLabels["env"], convey.ShouldEqual, "staging")
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ROBONALYSIS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ROBONALYSIS_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file sets an empty addr", func() {
			tmpFile := createTempConfigFile("addr: \"\"\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ROBONALYSIS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"ROBONALYSIS_CONFIG",
		"ROBONALYSIS_ADDR",
		"ROBONALYSIS_API_KEY",
		"ROBONALYSIS_WORKER_COUNT",
		"ROBONALYSIS_CACHE_BACKEND",
		"ROBONALYSIS_REDIS_URL",
		"ROBONALYSIS_METRICS_ENABLED",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "robonalysis-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
