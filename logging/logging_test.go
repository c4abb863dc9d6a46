package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestFrameLimiterSuppressesRepeats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := NewFrameLimiter(logger, 30)
	ctx := context.Background()

	for tick := uint64(1); tick <= 29; tick++ {
		l.Log(ctx, tick, "hotspot.press", slog.LevelDebug, "press")
	}
	if n := strings.Count(buf.String(), "msg=press"); n != 1 {
		t.Errorf("Expected 1 entry within 30 ticks, but got %d", n)
	}
	l.Log(ctx, 31, "hotspot.press", slog.LevelDebug, "press")
	if n := strings.Count(buf.String(), "msg=press"); n != 2 {
		t.Errorf("Expected a second entry once the window passed, but got %d", n)
	}

	l.Log(ctx, 40, "", slog.LevelDebug, "unkeyed")
	l.Log(ctx, 40, "", slog.LevelDebug, "unkeyed")
	if n := strings.Count(buf.String(), "msg=unkeyed"); n != 2 {
		t.Errorf("Expected unkeyed entries to bypass the limiter, but got %d", n)
	}
}

func TestFrameLimiterSkipsWhenDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
	l := NewFrameLimiter(logger, 10)

	l.Log(context.Background(), 1, "key", slog.LevelInfo, "msg")
	if len(l.last) != 0 {
		t.Errorf("Expected no entries when the level is disabled, but got %d", len(l.last))
	}
}

func TestFrameLimiterPrunesExpiredKeys(t *testing.T) {
	l := NewFrameLimiter(slog.New(slog.NewTextHandler(io.Discard, nil)), 10)
	l.maxKeys = 2
	ctx := context.Background()

	l.Log(ctx, 1, "a", slog.LevelInfo, "msg")
	l.Log(ctx, 15, "b", slog.LevelInfo, "msg")
	l.Log(ctx, 16, "c", slog.LevelInfo, "msg")

	if len(l.last) != 2 {
		t.Errorf("Expected 2 keys after pruning, but got %d", len(l.last))
	}
	if _, ok := l.last["a"]; ok {
		t.Errorf("Expected the expired key to be pruned")
	}
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg, err := Config{Level: strPtr(" DEBUG "), Sink: strPtr("None"), File: strPtr("  ")}.Normalize()
	if err != nil {
		t.Fatalf("Expected valid config, but got %v", err)
	}
	if *cfg.Level != "debug" || *cfg.Sink != "none" || cfg.File != nil {
		t.Errorf("Expected normalised fields, but got level=%q sink=%q file=%v", *cfg.Level, *cfg.Sink, cfg.File)
	}

	if _, err := (Config{Format: strPtr("xml")}).Normalize(); err == nil {
		t.Errorf("Expected an error for an unknown format")
	}
	if _, err := (Config{Sink: strPtr("syslog")}).Normalize(); err == nil {
		t.Errorf("Expected an error for an unknown sink")
	}
}

func TestWithEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogMaxSizeMB, "42")
	t.Setenv(EnvLogMaxBackups, "nope")

	cfg := DefaultConfig().WithEnv()
	if *cfg.Level != "warn" {
		t.Errorf("Expected level from the environment, but got %q", *cfg.Level)
	}
	if *cfg.MaxSizeMB != 42 {
		t.Errorf("Expected max size 42, but got %d", *cfg.MaxSizeMB)
	}
	if *cfg.MaxBackups != 3 {
		t.Errorf("Expected a malformed integer to be ignored, but got %d", *cfg.MaxBackups)
	}
}

func TestMergeKeepsBaseForUnsetFields(t *testing.T) {
	out := Merge(DefaultConfig(), Config{Format: strPtr("json")})
	if *out.Format != "json" {
		t.Errorf("Expected format json, but got %q", *out.Format)
	}
	if *out.Level != "info" {
		t.Errorf("Expected level info from the base, but got %q", *out.Level)
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dualscreen.log")
	cfg := Config{Sink: strPtr("file"), File: strPtr(path), Format: strPtr("json")}

	logger, closeFn, err := New(cfg, "test")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("hello", "tick", 7)
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) || !strings.Contains(string(data), `"version":"test"`) {
		t.Errorf("Expected JSON entry with version, but got %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel(nil) != slog.LevelInfo {
		t.Errorf("Expected nil level to map to info")
	}
	if ParseLevel(strPtr("warning")) != slog.LevelWarn {
		t.Errorf("Expected warning to map to warn")
	}
}
