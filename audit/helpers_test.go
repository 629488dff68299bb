package audit

import (
	"math"
	"testing"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

func pt(shapeID string, seq int, lat, lon float64) gtfs.ShapePoint {
	return gtfs.ShapePoint{
		ShapeID:  shapeID,
		Sequence: seq, HasSequence: true,
		Lat: lat, HasLat: true,
		Lon: lon, HasLon: true,
	}
}

// line builds a straight north-running shape of n points starting at
// (startLat, lon), stepDeg degrees of latitude apart. One degree of
// latitude is about 111195m, so a step of 0.001 gives ~111m segments.
func line(shapeID string, n int, startLat, lon, stepDeg float64) []gtfs.ShapePoint {
	rows := make([]gtfs.ShapePoint, n)
	for i := range rows {
		rows[i] = pt(shapeID, i+1, startLat+float64(i)*stepDeg, lon)
	}
	return rows
}

func buildStore(t *testing.T, rows []gtfs.ShapePoint) *gtfs.ShapeStore {
	t.Helper()
	store, err := gtfs.BuildShapeStore(rows)
	if err != nil {
		t.Fatalf("BuildShapeStore failed: %v", err)
	}
	return store
}

// observe runs one accumulator check over the whole store on the calling
// goroutine, the way a single-worker runner would.
func observe(t *testing.T, name string, store *gtfs.ShapeStore, cfg Config) CheckResult {
	t.Helper()
	c, ok := DefaultRegistry().Lookup(name)
	if !ok {
		t.Fatalf("check %q not registered", name)
	}
	if c.NewAccumulator == nil {
		t.Fatalf("check %q is not an accumulator check", name)
	}
	acc := c.NewAccumulator(cfg)
	for _, sh := range store.Shapes() {
		acc.Observe(sh, segmentLengths(sh))
	}
	return acc.Finalize(&Context{Store: store, Config: cfg})
}

func inDelta(t *testing.T, what string, got, want, delta float64) {
	t.Helper()
	if math.Abs(got-want) > delta {
		t.Errorf("%s: expected %v within %v, got %v", what, want, delta, got)
	}
}

func metricInt(t *testing.T, res CheckResult, key string) int {
	t.Helper()
	v, ok := res.Metrics[key]
	if !ok {
		t.Fatalf("metric %q missing", key)
	}
	n, ok := v.(int)
	if !ok {
		t.Fatalf("metric %q is %T, not int", key, v)
	}
	return n
}

func metricFloat(t *testing.T, res CheckResult, key string) float64 {
	t.Helper()
	v, ok := res.Metrics[key]
	if !ok {
		t.Fatalf("metric %q missing", key)
	}
	f, ok := v.(float64)
	if !ok {
		t.Fatalf("metric %q is %T, not float64", key, v)
	}
	return f
}

func findingByKind(res CheckResult, kind string) (Finding, bool) {
	for _, f := range res.Findings {
		if f.Kind == kind {
			return f, true
		}
	}
	return Finding{}, false
}
