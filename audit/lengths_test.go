package audit

import (
	"fmt"
	"testing"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

func TestLengthsStats(t *testing.T) {
	rows := append(line("A", 3, 0, 0, 0.001), line("B", 2, 1, 1, 0.01)...)

	res := observe(t, "shape-lengths", buildStore(t, rows), DefaultConfig())

	if res.Status != StatusSuccess {
		t.Fatalf("expected success, got %s", res.Status)
	}
	if got := metricInt(t, res, "analyzed"); got != 2 {
		t.Fatalf("expected 2 analyzed shapes, got %d", got)
	}

	stats := res.Metrics["stats"].(map[string]any)
	inDelta(t, "min_m", stats["min_m"].(float64), 222.39, 0.01)
	inDelta(t, "max_m", stats["max_m"].(float64), 1111.95, 0.01)
	inDelta(t, "avg_m", stats["avg_m"].(float64), 667.17, 0.01)
	inDelta(t, "median_m", stats["median_m"].(float64), 1111.95, 0.01)
	inDelta(t, "total_network_m", stats["total_network_m"].(float64), 1334.34, 0.01)

	dist := res.Metrics["distribution"].(lengthDistribution)
	if dist.VeryShort != 1 || dist.Short != 1 {
		t.Errorf("unexpected length distribution: %+v", dist)
	}
}

func TestLengthsNotAnalyzableShapes(t *testing.T) {
	tests := []struct {
		name       string
		analyzable int
		want       Status
	}{
		{name: "one of two unmeasured fails", analyzable: 1, want: StatusError},
		{name: "ten of eleven measured warns", analyzable: 10, want: StatusWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []gtfs.ShapePoint
			for i := 0; i < tt.analyzable; i++ {
				rows = append(rows, line(fmt.Sprintf("S%02d", i), 3, 0, 0, 0.001)...)
			}
			rows = append(rows, pt("LONE", 1, 0.5, 0.5))

			res := observe(t, "shape-lengths", buildStore(t, rows), DefaultConfig())

			if res.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, res.Status)
			}
			f, ok := findingByKind(res, "processing_error")
			if !ok {
				t.Fatal("processing_error finding missing")
			}
			if f.Count != 1 {
				t.Errorf("expected 1 unmeasured shape, got %d", f.Count)
			}
		})
	}
}

func TestLengthsNothingMeasurable(t *testing.T) {
	rows := []gtfs.ShapePoint{pt("A", 1, 0, 0), pt("B", 1, 1, 1)}

	res := observe(t, "shape-lengths", buildStore(t, rows), DefaultConfig())

	if res.Status != StatusError {
		t.Errorf("expected error, got %s", res.Status)
	}
	if _, ok := findingByKind(res, "calculation_error"); !ok {
		t.Error("calculation_error finding missing")
	}
}

func TestLengthsEmptyStore(t *testing.T) {
	res := observe(t, "shape-lengths", buildStore(t, nil), DefaultConfig())

	if res.Status != StatusSuccess {
		t.Errorf("empty dataset should pass, got %s", res.Status)
	}
	if got := metricInt(t, res, "total_shapes"); got != 0 {
		t.Errorf("expected 0 shapes, got %d", got)
	}
}

func TestLengthsNetworkExtremes(t *testing.T) {
	rows := append(line("SHORT", 2, 0, 0, 0.001), line("LONG", 2, 1, 1, 0.1)...)

	res := observe(t, "shape-lengths", buildStore(t, rows), DefaultConfig())

	network := res.Metrics["network"].(map[string]any)
	if network["longest_shape"].(lengthShapeDetail).ShapeID != "LONG" {
		t.Errorf("wrong longest shape: %+v", network["longest_shape"])
	}
	if network["shortest_shape"].(lengthShapeDetail).ShapeID != "SHORT" {
		t.Errorf("wrong shortest shape: %+v", network["shortest_shape"])
	}
}
