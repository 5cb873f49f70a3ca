package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func reset(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		_ = SetFormat("text")
		_ = SetLevelString("info")
		_ = Init()
	})
	return buf
}

func TestLoggerInit(t *testing.T) {
	buf := reset(t)
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	Get().Info(context.Background(), "hello", String("k", "v"))
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("expected field in output, got %q", buf.String())
	}
}

func TestLoggerJSON(t *testing.T) {
	buf := reset(t)
	if err := SetFormat("json"); err != nil {
		t.Fatal(err)
	}
	_ = Init()

	Named("cache").Warn(context.Background(), "evicted",
		Int("n", 3), Bool("expired", true), Duration("age", time.Minute), Error(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["component"] != "cache" || rec["msg"] != "evicted" || rec["level"] != "WARN" {
		t.Errorf("unexpected record: %v", rec)
	}
	if src, _ := rec["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source should point at the caller, got %q", src)
	}
}

func TestSetLevelString(t *testing.T) {
	buf := reset(t)
	_ = Init()
	if err := SetLevelString("error"); err != nil {
		t.Fatal(err)
	}
	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at error level, got %q", buf.String())
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := SetFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
