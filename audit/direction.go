package audit

import (
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/geo"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

type turnEvent struct {
	ShapeID  string  `json:"shape_id" yaml:"shape_id"`
	Position int     `json:"position" yaml:"position"`
	TurnDeg  float64 `json:"turn_deg" yaml:"turn_deg"`
}

type turnShapeDetail struct {
	ShapeID     string  `json:"shape_id" yaml:"shape_id"`
	TurnCount   int     `json:"turn_count" yaml:"turn_count"`
	SharpestDeg float64 `json:"sharpest_deg" yaml:"sharpest_deg"`
}

// directionAcc flags abrupt direction changes: points where the bearing
// into and out of the point differ by more than the threshold. A turn needs
// a defined direction on both sides, so legs of zero length are skipped.
type directionAcc struct {
	threshold   float64
	totalShapes int
	totalPoints int
	events      []turnEvent
	shapes      []turnShapeDetail
	affected    []string
}

func newDirectionAcc(cfg Config) Accumulator {
	return &directionAcc{threshold: cfg.TurnAngleDeg}
}

func (a *directionAcc) Observe(sh *gtfs.Shape, _ []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)

	pts := sh.ValidPoints()
	if len(pts) < 3 {
		return
	}
	count := 0
	sharpest := 0.0
	for i := 1; i < len(pts)-1; i++ {
		p, q, r := pts[i-1], pts[i], pts[i+1]
		if (p.Lat == q.Lat && p.Lon == q.Lon) || (q.Lat == r.Lat && q.Lon == r.Lon) {
			continue
		}
		in := geo.BearingDegrees(p.Lat, p.Lon, q.Lat, q.Lon)
		out := geo.BearingDegrees(q.Lat, q.Lon, r.Lat, r.Lon)
		turn := geo.TurnAngleDegrees(in, out)
		if turn <= a.threshold {
			continue
		}
		count++
		if turn > sharpest {
			sharpest = turn
		}
		a.events = append(a.events, turnEvent{ShapeID: sh.ID, Position: i, TurnDeg: round(turn, 2)})
	}
	if count > 0 {
		a.shapes = append(a.shapes, turnShapeDetail{ShapeID: sh.ID, TurnCount: count, SharpestDeg: round(sharpest, 2)})
		a.affected = append(a.affected, sh.ID)
	}
}

func (a *directionAcc) Merge(other Accumulator) {
	o := other.(*directionAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.events = append(a.events, o.events...)
	a.shapes = append(a.shapes, o.shapes...)
	a.affected = append(a.affected, o.affected...)
}

func (a *directionAcc) Finalize(*Context) CheckResult {
	status := StatusSuccess
	var findings []Finding
	if len(a.events) > 0 {
		status = StatusWarning
		findings = append(findings, Finding{
			Kind:        "abrupt_turn",
			Field:       "shape_direction",
			Count:       len(a.events),
			AffectedIDs: capIDs(a.affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d turns sharper than %g degrees across %d shapes", len(a.events), a.threshold, len(a.shapes)),
		})
	}

	metrics := map[string]any{
		"total_shapes":  a.totalShapes,
		"total_points":  a.totalPoints,
		"total_turns":   len(a.events),
		"threshold_deg": a.threshold,
	}
	if len(a.shapes) > 0 {
		top := a.shapes
		if len(top) > 20 {
			top = top[:20]
		}
		metrics["shapes"] = top
		events := a.events
		if len(events) > 10 {
			events = events[:10]
		}
		metrics["turns"] = events
	}
	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
