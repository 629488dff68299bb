package audit

import (
	"fmt"
	"math"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

type reversalEvent struct {
	ShapeID      string  `json:"shape_id" yaml:"shape_id"`
	Axis         string  `json:"axis" yaml:"axis"`
	SegmentIndex int     `json:"segment_index" yaml:"segment_index"`
	Delta1       float64 `json:"delta_1" yaml:"delta_1"`
	Delta2       float64 `json:"delta_2" yaml:"delta_2"`
	Magnitude    float64 `json:"magnitude" yaml:"magnitude"`
}

type backtrackShapeDetail struct {
	ShapeID         string  `json:"shape_id" yaml:"shape_id"`
	TotalPoints     int     `json:"total_points" yaml:"total_points"`
	LatReversals    int     `json:"lat_reversals" yaml:"lat_reversals"`
	LonReversals    int     `json:"lon_reversals" yaml:"lon_reversals"`
	TotalReversals  int     `json:"total_reversals" yaml:"total_reversals"`
	MaxLatMagnitude float64 `json:"max_lat_magnitude" yaml:"max_lat_magnitude"`
	MaxLonMagnitude float64 `json:"max_lon_magnitude" yaml:"max_lon_magnitude"`
	Severity        string  `json:"severity" yaml:"severity"`
}

// backtrackAcc detects sign flips in the per-axis coordinate deltas. A
// reversal needs both legs to move more than the threshold, which keeps GPS
// jitter below it out of the results.
type backtrackAcc struct {
	threshold   float64
	totalShapes int
	totalPoints int
	shapes      []backtrackShapeDetail
	events      []reversalEvent
	affected    []string
}

func newBacktrackAcc(cfg Config) Accumulator {
	return &backtrackAcc{threshold: cfg.ReversalDeg}
}

func (a *backtrackAcc) reverses(d1, d2 float64) bool {
	return d1*d2 < 0 && math.Abs(d1) > a.threshold && math.Abs(d2) > a.threshold
}

func (a *backtrackAcc) Observe(sh *gtfs.Shape, _ []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)

	pts := sh.ValidPoints()
	if len(pts) < 3 {
		return
	}

	var (
		latCount, lonCount int
		maxLat, maxLon     float64
	)
	for i := 0; i+2 < len(pts); i++ {
		lat1 := pts[i+1].Lat - pts[i].Lat
		lat2 := pts[i+2].Lat - pts[i+1].Lat
		if a.reverses(lat1, lat2) {
			mag := round(math.Abs(lat1)+math.Abs(lat2), 6)
			latCount++
			if mag > maxLat {
				maxLat = mag
			}
			a.events = append(a.events, reversalEvent{
				ShapeID:      sh.ID,
				Axis:         "latitude",
				SegmentIndex: i + 1,
				Delta1:       round(lat1, 6),
				Delta2:       round(lat2, 6),
				Magnitude:    mag,
			})
		}
		lon1 := pts[i+1].Lon - pts[i].Lon
		lon2 := pts[i+2].Lon - pts[i+1].Lon
		if a.reverses(lon1, lon2) {
			mag := round(math.Abs(lon1)+math.Abs(lon2), 6)
			lonCount++
			if mag > maxLon {
				maxLon = mag
			}
			a.events = append(a.events, reversalEvent{
				ShapeID:      sh.ID,
				Axis:         "longitude",
				SegmentIndex: i + 1,
				Delta1:       round(lon1, 6),
				Delta2:       round(lon2, 6),
				Magnitude:    mag,
			})
		}
	}

	if latCount+lonCount == 0 {
		return
	}
	maxRev := math.Max(maxLat, maxLon)
	severity := "low"
	switch {
	case maxRev > a.threshold*10:
		severity = "high"
	case maxRev > a.threshold*5:
		severity = "medium"
	}
	a.shapes = append(a.shapes, backtrackShapeDetail{
		ShapeID:         sh.ID,
		TotalPoints:     len(sh.Points),
		LatReversals:    latCount,
		LonReversals:    lonCount,
		TotalReversals:  latCount + lonCount,
		MaxLatMagnitude: maxLat,
		MaxLonMagnitude: maxLon,
		Severity:        severity,
	})
	a.affected = append(a.affected, sh.ID)
}

func (a *backtrackAcc) Merge(other Accumulator) {
	o := other.(*backtrackAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.shapes = append(a.shapes, o.shapes...)
	a.events = append(a.events, o.events...)
	a.affected = append(a.affected, o.affected...)
}

func (a *backtrackAcc) Finalize(*Context) CheckResult {
	severityCounts := map[string]int{"low": 0, "medium": 0, "high": 0}
	var highIDs []string
	for _, s := range a.shapes {
		severityCounts[s.Severity]++
		if s.Severity == "high" {
			highIDs = append(highIDs, s.ShapeID)
		}
	}

	var status Status
	switch {
	case severityCounts["high"] > 0:
		status = StatusError
	case len(a.shapes) > 0:
		status = StatusWarning
	default:
		status = StatusSuccess
	}

	var findings []Finding
	if len(a.shapes) > 0 {
		findings = append(findings, Finding{
			Kind:        "backtracking_detected",
			Field:       "shape_direction",
			Count:       len(a.events),
			AffectedIDs: capIDs(a.affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d direction reversals across %d shapes", len(a.events), len(a.shapes)),
		})
	}
	if len(highIDs) > 0 {
		findings = append(findings, Finding{
			Kind:        "severe_backtracking",
			Field:       "shape_direction",
			Count:       len(highIDs),
			AffectedIDs: capIDs(highIDs, 50),
			Message:     fmt.Sprintf("%d shapes with severe reversals (over %g degrees)", len(highIDs), a.threshold*10),
		})
	}

	metrics := map[string]any{
		"total_shapes":        a.totalShapes,
		"total_points":        a.totalPoints,
		"backtracking_shapes": append([]string(nil), a.affected...),
		"count":               len(a.shapes),
		"backtracking_rate":   pctOf(len(a.shapes), a.totalShapes),
		"threshold_deg":       a.threshold,
	}
	if len(a.shapes) > 0 {
		worst := a.shapes[0]
		var reversalSum int
		var maxMag, magSum float64
		latTotal, lonTotal := 0, 0
		for _, s := range a.shapes {
			reversalSum += s.TotalReversals
			latTotal += s.LatReversals
			lonTotal += s.LonReversals
			if s.TotalReversals > worst.TotalReversals {
				worst = s
			}
			if m := math.Max(s.MaxLatMagnitude, s.MaxLonMagnitude); m > maxMag {
				maxMag = m
			}
		}
		for _, e := range a.events {
			magSum += e.Magnitude
		}
		metrics["severity"] = map[string]any{
			"distribution":            severityCounts,
			"worst_shape":             worst,
			"avg_reversals_per_shape": round(float64(reversalSum)/float64(len(a.shapes)), 2),
			"max_magnitude":           maxMag,
		}
		topShapes := a.shapes
		if len(topShapes) > 20 {
			topShapes = topShapes[:20]
		}
		metrics["shapes"] = topShapes
		events := a.events
		if len(events) > 50 {
			events = events[:50]
		}
		metrics["reversals"] = events
		metrics["direction"] = map[string]any{
			"total_reversals": len(a.events),
			"lat_reversals":   latTotal,
			"lon_reversals":   lonTotal,
			"avg_magnitude":   round(magSum/float64(len(a.events)), 6),
		}
	}

	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
