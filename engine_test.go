package shapeaudit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/audit"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/config"
)

// writeFeedDir lays out a small clean feed: two shapes, five points, two
// trips. Shape A's segment lengths differ so the uniform-spacing check
// stays quiet.
func writeFeedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	shapes := "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\n" +
		"A,0.0,0.0,1\n" +
		"A,0.001,0.0,2\n" +
		"A,0.0025,0.0,3\n" +
		"B,1.0,1.0,1\n" +
		"B,1.001,1.0,2\n"
	if err := os.WriteFile(filepath.Join(dir, "shapes.txt"), []byte(shapes), 0o644); err != nil {
		t.Fatalf("writing shapes.txt: %v", err)
	}

	trips := "trip_id,shape_id\nt1,A\nt2,B\n"
	if err := os.WriteFile(filepath.Join(dir, "trips.txt"), []byte(trips), 0o644); err != nil {
		t.Fatalf("writing trips.txt: %v", err)
	}
	return dir
}

func testConfig(feedDir string) config.AppConfig {
	cfg := config.Default()
	cfg.Feed.Name = "testfeed"
	cfg.Feed.Source = feedDir
	return cfg
}

func TestEngineAudit(t *testing.T) {
	cfg := testConfig(writeFeedDir(t))
	engine := NewEngine(cfg, zerolog.Nop())

	report, err := engine.Audit()
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}

	if report.Feed != "testfeed" {
		t.Errorf("expected feed testfeed, got %s", report.Feed)
	}
	if report.Shapes != 2 {
		t.Errorf("expected 2 shapes, got %d", report.Shapes)
	}
	if report.Points != 5 {
		t.Errorf("expected 5 points, got %d", report.Points)
	}
	if want := len(audit.DefaultRegistry().Checks()); len(report.Checks) != want {
		t.Errorf("expected %d check results, got %d", want, len(report.Checks))
	}
	if report.Summary.Overall != audit.StatusSuccess {
		t.Errorf("expected a clean feed, got %s", report.Summary.Overall)
	}

	// No realtime URL configured, so conformance reports itself skipped.
	res, ok := report.ResultFor("realtime-conformance")
	if !ok {
		t.Fatal("missing realtime-conformance result")
	}
	if skipped, _ := res.Metrics["skipped"].(bool); !skipped {
		t.Errorf("expected conformance to be skipped, got %v", res.Metrics)
	}
}

func TestEngineAuditFeedLabelFallsBackToSource(t *testing.T) {
	dir := writeFeedDir(t)
	cfg := testConfig(dir)
	cfg.Feed.Name = ""

	report, err := NewEngine(cfg, zerolog.Nop()).Audit()
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if report.Feed != dir {
		t.Errorf("expected feed label %s, got %s", dir, report.Feed)
	}
}

func TestEngineAuditWithoutSource(t *testing.T) {
	cfg := config.Default()
	_, err := NewEngine(cfg, zerolog.Nop()).Audit()
	if !errors.Is(err, ErrNoFeedSource) {
		t.Errorf("expected ErrNoFeedSource, got %v", err)
	}
}

func TestEngineAuditMissingFeed(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "nope"))
	if _, err := NewEngine(cfg, zerolog.Nop()).Audit(); err == nil {
		t.Error("expected an error for a missing feed")
	}
}
