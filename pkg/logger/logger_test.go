package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := InitWithFormat("json"); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	if err := InitWithFormat("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerNamedAndWith(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("ledger")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.With(String("event", "E1")).Info(context.Background(), "replayed")
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	h, err := newHandler(&buf, "json")
	if err != nil {
		t.Fatalf("newHandler: %v", err)
	}
	SetLevel(slog.LevelInfo)
	l := (&slogLogger{logger: slog.New(h)}).Named("upstream")

	l.Debug(context.Background(), "hidden")
	l.Warn(context.Background(), "page failed", Int("status", 503), Error(errors.New("boom")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec["msg"] != "page failed" {
		t.Errorf("unexpected msg %v", rec["msg"])
	}
	if rec["component"] != "upstream" {
		t.Errorf("unexpected component %v", rec["component"])
	}
	if rec["status"] != float64(503) {
		t.Errorf("unexpected status %v", rec["status"])
	}
	if src, _ := rec["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source should point at the test file, got %q", src)
	}
}

func TestSetLevelString(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", "warn", "warning", "error", ""} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("SetLevelString(%q) returned %v", lvl, err)
		}
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	_ = SetLevelString("info")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error(context.Background(), "discarded")
	l.Named("x").With(Bool("ok", true)).Info(nil, "discarded") //nolint:staticcheck // nil ctx tolerated
}

func TestInitWithWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, "text"); err != nil {
		t.Fatalf("InitWithWriter: %v", err)
	}
	defer func() { _ = Init() }()

	Get().Info(context.Background(), "to the writer")
	if !strings.Contains(buf.String(), "to the writer") {
		t.Errorf("expected record in writer, got %q", buf.String())
	}
	if err := InitWithWriter(&buf, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
