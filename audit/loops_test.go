package audit

import (
	"testing"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/geo"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

func squareLoop(id string, lat, lon float64) []gtfs.ShapePoint {
	return []gtfs.ShapePoint{
		pt(id, 1, lat, lon),
		pt(id, 2, lat+0.001, lon),
		pt(id, 3, lat+0.001, lon+0.001),
		pt(id, 4, lat, lon+0.001),
		pt(id, 5, lat, lon),
	}
}

func TestLoopsDetectsClosedShape(t *testing.T) {
	rows := append(squareLoop("LOOP", 0, 0), line("OPEN", 4, 1, 1, 0.001)...)

	res := observe(t, "closed-loops", buildStore(t, rows), DefaultConfig())

	if res.Status != StatusSuccess {
		t.Errorf("loops are informational, got %s", res.Status)
	}
	if len(res.Findings) != 0 {
		t.Errorf("expected no findings, got %v", res.Findings)
	}
	if got := metricInt(t, res, "closed_loops_count"); got != 1 {
		t.Fatalf("expected 1 loop, got %d", got)
	}
	loops := res.Metrics["loops"].([]loopDetail)
	if loops[0].ShapeID != "LOOP" || loops[0].ClosureM != 0 {
		t.Errorf("unexpected loop detail: %+v", loops[0])
	}
	inDelta(t, "loop length", loops[0].TotalM, 444.78, 0.02)
}

func TestLoopsClosureAtToleranceCounts(t *testing.T) {
	// End 0.00009 degrees short of the start and set the tolerance to
	// exactly that closure distance. At the boundary the shape still
	// counts as a loop.
	rows := squareLoop("NEAR", 0, 0)
	rows[4] = pt("NEAR", 5, 0.00009, 0)
	closure := geo.HaversineMeters(0, 0, 0.00009, 0)

	cfg := DefaultConfig()
	cfg.LoopToleranceM = closure
	res := observe(t, "closed-loops", buildStore(t, rows), cfg)

	if got := metricInt(t, res, "closed_loops_count"); got != 1 {
		t.Errorf("closure equal to tolerance should count, got %d loops", got)
	}

	cfg.LoopToleranceM = closure * 0.99
	res = observe(t, "closed-loops", buildStore(t, rows), cfg)
	if got := metricInt(t, res, "closed_loops_count"); got != 0 {
		t.Errorf("closure above tolerance should not count, got %d loops", got)
	}
}

func TestLoopsNeedThreeValidPoints(t *testing.T) {
	rows := []gtfs.ShapePoint{
		pt("AB", 1, 0, 0),
		pt("AB", 2, 0, 0),
	}

	res := observe(t, "closed-loops", buildStore(t, rows), DefaultConfig())

	if got := metricInt(t, res, "closed_loops_count"); got != 0 {
		t.Errorf("two points cannot form a loop, got %d", got)
	}
}

func TestLoopsAnalysis(t *testing.T) {
	rows := append(squareLoop("SMALL", 0, 0), []gtfs.ShapePoint{
		pt("BIG", 1, 1, 1),
		pt("BIG", 2, 1.01, 1),
		pt("BIG", 3, 1.01, 1.01),
		pt("BIG", 4, 1, 1.01),
		pt("BIG", 5, 1, 1),
	}...)

	res := observe(t, "closed-loops", buildStore(t, rows), DefaultConfig())

	if got := metricInt(t, res, "closed_loops_count"); got != 2 {
		t.Fatalf("expected 2 loops, got %d", got)
	}
	analysis := res.Metrics["analysis"].(map[string]any)
	longest := analysis["longest_loop"].(loopDetail)
	if longest.ShapeID != "BIG" {
		t.Errorf("expected BIG as longest loop, got %+v", longest)
	}
}
