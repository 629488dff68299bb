package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.CacheTTLSec != 300 {
		t.Errorf("expected cache TTL 300, got %d", cfg.Server.CacheTTLSec)
	}
	if cfg.Checks.MaxJumpM != 1000 {
		t.Errorf("expected max jump 1000, got %v", cfg.Checks.MaxJumpM)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
feed:
  name: citybus
  source: testdata/feed.zip
realtime:
  vehiclePositionsURL: http://example.com/vehicle-positions.pb
checks:
  max_jump_m: 500
  turn_angle_deg: 90
logLevel: debug
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Feed.Name != "citybus" || cfg.Feed.Source != "testdata/feed.zip" {
		t.Errorf("unexpected feed config: %+v", cfg.Feed)
	}
	if cfg.Realtime.VehiclePositionsURL != "http://example.com/vehicle-positions.pb" {
		t.Errorf("unexpected realtime config: %+v", cfg.Realtime)
	}
	if cfg.Checks.MaxJumpM != 500 {
		t.Errorf("expected max jump 500, got %v", cfg.Checks.MaxJumpM)
	}
	if cfg.Checks.TurnAngleDeg != 90 {
		t.Errorf("expected turn angle 90, got %v", cfg.Checks.TurnAngleDeg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}

	// Settings the file does not mention keep their defaults.
	if cfg.Server.CacheTTLSec != 300 {
		t.Errorf("expected default cache TTL, got %d", cfg.Server.CacheTTLSec)
	}
	if cfg.Checks.IsolationM != 1000 {
		t.Errorf("expected default isolation threshold, got %v", cfg.Checks.IsolationM)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected an error for a missing explicit path")
	}
}

func TestLoadWithoutAnyFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected defaults, got port %d", cfg.Server.Port)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unparsable yaml", content: "server: [what"},
		{name: "negative port", content: "server:\n  port: -1\n"},
		{name: "zero threshold", content: "checks:\n  max_jump_m: 0\n"},
		{name: "unknown log level", content: "logLevel: loud\n"},
		{name: "bad realtime url", content: "realtime:\n  vehiclePositionsURL: not-a-url\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := config.Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
