package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if !cfg.DualScreenEnabled() {
		t.Errorf("Expected dual screen to default on")
	}
	if cfg.HoldFrames != 3 {
		t.Errorf("Expected hold frames to default to 3, but got %d", cfg.HoldFrames)
	}
	if len(cfg.Buttons) != 1 || cfg.Buttons[0] != "Swap" {
		t.Errorf("Expected only Swap enabled by default, but got %v", cfg.Buttons)
	}
	if cfg.Server.Addr != ":50051" || cfg.Server.Enabled {
		t.Errorf("Expected a disabled server on :50051, but got %+v", cfg.Server)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "config.toml"))
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Expected no error for a missing file, but got %v", err)
	}
	if cfg.HoldFrames != 3 || !cfg.DualScreenEnabled() {
		t.Errorf("Expected defaults for a missing file, but got %+v", cfg)
	}
}

func TestLoaderReadsAndCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
asset_dir = " /opt/system "
dual_screen = false
hold_frames = 5
buttons = ["Swap", "Screenshot"]
screenshot_dir = "/tmp/shots"

[server]
enabled = true
addr = "127.0.0.1:6000"

[log]
level = "DEBUG"
sink = "none"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(path)
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AssetDir != "/opt/system" {
		t.Errorf("Expected trimmed asset dir, but got %q", cfg.AssetDir)
	}
	if cfg.DualScreenEnabled() {
		t.Errorf("Expected dual screen off")
	}
	if cfg.HoldFrames != 5 {
		t.Errorf("Expected hold frames 5, but got %d", cfg.HoldFrames)
	}
	if len(cfg.Buttons) != 2 || cfg.Buttons[1] != "Screenshot" {
		t.Errorf("Expected [Swap Screenshot], but got %v", cfg.Buttons)
	}
	if !cfg.Server.Enabled || cfg.Server.Addr != "127.0.0.1:6000" {
		t.Errorf("Expected server on 127.0.0.1:6000, but got %+v", cfg.Server)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "DEBUG" {
		t.Errorf("Expected log level to be read, but got %v", cfg.Log.Level)
	}

	// Rewriting with a different size is picked up; an untouched file is not
	// re-read.
	if err := os.WriteFile(path, []byte("hold_frames = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	cfg, err = l.Load()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if cfg.HoldFrames != 8 || !cfg.DualScreenEnabled() {
		t.Errorf("Expected the rewritten file to be loaded, but got %+v", cfg)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	if _, err := Parse([]byte("hold_frames = [")); err == nil {
		t.Errorf("Expected a syntax error")
	}
	if _, err := Parse([]byte("[log]\nsink = \"syslog\"\n")); err == nil {
		t.Errorf("Expected an invalid log sink to be rejected")
	}
}

func TestParseFillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("hold_frames = 0\n[server]\naddr = \"\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HoldFrames != 3 || cfg.Server.Addr != ":50051" {
		t.Errorf("Expected defaults for zero values, but got %+v", cfg)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.AssetDir = "/srv/assets"
	data, err := Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse of marshalled config failed: %v\n%s", err, data)
	}
	if back.AssetDir != "/srv/assets" || back.HoldFrames != cfg.HoldFrames {
		t.Errorf("Expected the marshalled config to parse back, but got %+v", back)
	}
}

func TestEmptyLoaderPath(t *testing.T) {
	if _, err := NewLoader("  ").Load(); err == nil {
		t.Errorf("Expected an error for an empty path")
	}
}
