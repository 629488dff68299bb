package audit

import (
	"testing"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

// offsetPair builds two 2-point shapes parallel in latitude, offset
// degrees apart. Offsets that are powers of two keep the mean distance
// exact in floating point.
func offsetPair(offset float64) []gtfs.ShapePoint {
	return []gtfs.ShapePoint{
		pt("A", 1, 0, 0),
		pt("A", 2, 0.125, 0),
		pt("B", 1, offset, 0),
		pt("B", 2, 0.125+offset, 0),
	}
}

func similarityOf(t *testing.T, store *gtfs.ShapeStore, cfg Config) CheckResult {
	t.Helper()
	return runSimilarity(&Context{Store: store, Config: cfg})
}

func TestSimilarityLevels(t *testing.T) {
	tests := []struct {
		name       string
		offset     float64
		score      float64
		level      string
		wantStatus Status
	}{
		{
			// raw score 0.96875, stored rounded to 4 decimals
			name:       "near-identical pair warns",
			offset:     0.015625,
			score:      0.9688,
			level:      "very_high",
			wantStatus: StatusWarning,
		},
		{
			name:       "high similarity reported without warning",
			offset:     0.0625,
			score:      0.875,
			level:      "high",
			wantStatus: StatusSuccess,
		},
		{
			name:       "medium similarity reported without warning",
			offset:     0.25,
			score:      0.5,
			level:      "medium",
			wantStatus: StatusSuccess,
		},
	}

	cfg := DefaultConfig()
	cfg.SimilarityThresholdDeg = 0.5
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := similarityOf(t, buildStore(t, offsetPair(tt.offset)), cfg)

			if res.Status != tt.wantStatus {
				t.Errorf("expected %s, got %s", tt.wantStatus, res.Status)
			}
			pairs := res.Metrics["pairs"].([]similarPair)
			if len(pairs) != 1 {
				t.Fatalf("expected 1 pair, got %d", len(pairs))
			}
			p := pairs[0]
			if p.Level != tt.level {
				t.Errorf("expected level %s, got %s", tt.level, p.Level)
			}
			inDelta(t, "score", p.Score, tt.score, 1e-9)
			f, ok := findingByKind(res, "similar_shapes")
			if !ok {
				t.Fatal("similar_shapes finding missing")
			}
			if f.Count != 1 || len(f.AffectedIDs) != 2 {
				t.Errorf("unexpected finding: %+v", f)
			}
		})
	}
}

func TestSimilarityMeanAtThresholdExcluded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimilarityThresholdDeg = 0.5

	res := similarityOf(t, buildStore(t, offsetPair(0.5)), cfg)

	if res.Status != StatusSuccess {
		t.Errorf("expected success, got %s", res.Status)
	}
	if got := metricInt(t, res, "similar_count"); got != 0 {
		t.Errorf("mean equal to threshold is not similar, got %d pairs", got)
	}
	if got := metricInt(t, res, "evaluated"); got != 1 {
		t.Errorf("the pair should still be evaluated, got %d", got)
	}
}

func TestSimilarityDifferentPointCountsNeverCompared(t *testing.T) {
	rows := offsetPair(0.015625)
	rows = append(rows,
		pt("C", 1, 0, 0),
		pt("C", 2, 0.0625, 0),
		pt("C", 3, 0.125, 0),
	)

	cfg := DefaultConfig()
	cfg.SimilarityThresholdDeg = 0.5
	res := similarityOf(t, buildStore(t, rows), cfg)

	// All three shapes count toward the comparison denominator, but
	// only the equal-length A-B pair is actually evaluated.
	if got := metricInt(t, res, "total_comparisons"); got != 3 {
		t.Errorf("expected 3 potential comparisons, got %d", got)
	}
	if got := metricInt(t, res, "evaluated"); got != 1 {
		t.Errorf("expected 1 evaluated pair, got %d", got)
	}
	pairs := res.Metrics["pairs"].([]similarPair)
	for _, p := range pairs {
		if p.Shape1 == "C" || p.Shape2 == "C" {
			t.Errorf("shape C has a different point count: %+v", p)
		}
	}
}

func TestSimilarityIdenticalTriple(t *testing.T) {
	var rows []gtfs.ShapePoint
	for _, id := range []string{"A", "B", "C"} {
		rows = append(rows, pt(id, 1, 0, 0), pt(id, 2, 0.125, 0))
	}

	res := similarityOf(t, buildStore(t, rows), DefaultConfig())

	if got := metricInt(t, res, "similar_count"); got != 3 {
		t.Fatalf("three identical shapes form 3 pairs, got %d", got)
	}
	f, _ := findingByKind(res, "similar_shapes")
	if len(f.AffectedIDs) != 3 {
		t.Errorf("expected 3 affected shapes, got %v", f.AffectedIDs)
	}
	analysis := res.Metrics["analysis"].(map[string]any)
	if analysis["very_high_pairs"].(int) != 3 {
		t.Errorf("identical shapes are very high similarity: %v", analysis)
	}
	if res.Status != StatusWarning {
		t.Errorf("expected warning, got %s", res.Status)
	}
}

func TestSimilarityEmptyStore(t *testing.T) {
	res := similarityOf(t, buildStore(t, nil), DefaultConfig())

	if res.Status != StatusSuccess || len(res.Findings) != 0 {
		t.Errorf("expected clean result, got %s %v", res.Status, res.Findings)
	}
	if got := metricInt(t, res, "total_comparisons"); got != 0 {
		t.Errorf("expected 0 comparisons, got %d", got)
	}
}
