package audit

import (
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

type jumpDetail struct {
	ShapeID      string  `json:"shape_id" yaml:"shape_id"`
	SegmentIndex int     `json:"segment_index" yaml:"segment_index"`
	FromLat      float64 `json:"from_lat" yaml:"from_lat"`
	FromLon      float64 `json:"from_lon" yaml:"from_lon"`
	ToLat        float64 `json:"to_lat" yaml:"to_lat"`
	ToLon        float64 `json:"to_lon" yaml:"to_lon"`
	DistanceM    float64 `json:"distance_m" yaml:"distance_m"`
	DistanceKM   float64 `json:"distance_km" yaml:"distance_km"`
}

type jumpShapeDetail struct {
	ShapeID     string  `json:"shape_id" yaml:"shape_id"`
	JumpCount   int     `json:"jump_count" yaml:"jump_count"`
	MaxJumpM    float64 `json:"max_jump_m" yaml:"max_jump_m"`
	MaxJumpKM   float64 `json:"max_jump_km" yaml:"max_jump_km"`
	TotalJumpM  float64 `json:"total_jump_m" yaml:"total_jump_m"`
	TotalShapeM float64 `json:"total_shape_m" yaml:"total_shape_m"`
	JumpRatio   float64 `json:"jump_ratio" yaml:"jump_ratio"`
}

// jumpsAcc flags segments longer than the threshold. A single oversized
// segment means a discontinuity in the polyline, so any hit fails the
// dataset.
type jumpsAcc struct {
	threshold   float64
	totalShapes int
	totalPoints int
	shapes      []jumpShapeDetail
	jumps       []jumpDetail
	affected    []string
}

func newJumpsAcc(cfg Config) Accumulator {
	return &jumpsAcc{threshold: cfg.MaxJumpM}
}

func (a *jumpsAcc) Observe(sh *gtfs.Shape, segments []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)
	if len(segments) == 0 {
		return
	}

	pts := sh.ValidPoints()
	var (
		count      int
		maxJump    float64
		totalJump  float64
		totalShape float64
	)
	for i, d := range segments {
		totalShape += d
		if d <= a.threshold {
			continue
		}
		count++
		totalJump += d
		if d > maxJump {
			maxJump = d
		}
		a.jumps = append(a.jumps, jumpDetail{
			ShapeID:      sh.ID,
			SegmentIndex: i + 1,
			FromLat:      pts[i].Lat,
			FromLon:      pts[i].Lon,
			ToLat:        pts[i+1].Lat,
			ToLon:        pts[i+1].Lon,
			DistanceM:    round(d, 2),
			DistanceKM:   round(d/1000, 3),
		})
	}
	if count > 0 {
		ratio := 0.0
		if totalShape > 0 {
			ratio = round(totalJump/totalShape, 4)
		}
		a.shapes = append(a.shapes, jumpShapeDetail{
			ShapeID:     sh.ID,
			JumpCount:   count,
			MaxJumpM:    round(maxJump, 2),
			MaxJumpKM:   round(maxJump/1000, 3),
			TotalJumpM:  round(totalJump, 2),
			TotalShapeM: round(totalShape, 2),
			JumpRatio:   ratio,
		})
		a.affected = append(a.affected, sh.ID)
	}
}

func (a *jumpsAcc) Merge(other Accumulator) {
	o := other.(*jumpsAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.shapes = append(a.shapes, o.shapes...)
	a.jumps = append(a.jumps, o.jumps...)
	a.affected = append(a.affected, o.affected...)
}

func (a *jumpsAcc) Finalize(*Context) CheckResult {
	status := StatusSuccess
	var findings []Finding
	if len(a.jumps) > 0 {
		status = StatusError
		findings = append(findings, Finding{
			Kind:        "large_distance_jump",
			Field:       "segment_continuity",
			Count:       len(a.jumps),
			AffectedIDs: capIDs(a.affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d segment jumps over %.0fm across %d shapes", len(a.jumps), a.threshold, len(a.shapes)),
		})
	}

	metrics := map[string]any{
		"total_shapes":      a.totalShapes,
		"total_points":      a.totalPoints,
		"shapes_with_jumps": len(a.shapes),
		"jump_rate":         pctOf(len(a.shapes), a.totalShapes),
		"threshold_m":       a.threshold,
	}
	if len(a.jumps) > 0 {
		var (
			moderate, large, extreme int
			sum                      float64
			minJump                  = a.jumps[0].DistanceM
			maxJump                  = a.jumps[0].DistanceM
		)
		for _, j := range a.jumps {
			sum += j.DistanceM
			if j.DistanceM < minJump {
				minJump = j.DistanceM
			}
			if j.DistanceM > maxJump {
				maxJump = j.DistanceM
			}
			switch {
			case j.DistanceM >= a.threshold*5:
				extreme++
			case j.DistanceM >= a.threshold*2:
				large++
			default:
				moderate++
			}
		}
		worst := a.shapes[0]
		for _, s := range a.shapes {
			if s.MaxJumpM > worst.MaxJumpM {
				worst = s
			}
		}
		metrics["analysis"] = map[string]any{
			"total_jumps": len(a.jumps),
			"avg_jump_m":  round(sum/float64(len(a.jumps)), 2),
			"min_jump_m":  minJump,
			"max_jump_m":  maxJump,
			"worst_shape": worst,
			"distribution": map[string]int{
				"moderate": moderate,
				"large":    large,
				"extreme":  extreme,
			},
		}
		topShapes := a.shapes
		if len(topShapes) > 20 {
			topShapes = topShapes[:20]
		}
		metrics["shapes"] = topShapes
		topJumps := a.jumps
		if len(topJumps) > 50 {
			topJumps = topJumps[:50]
		}
		metrics["jumps"] = topJumps
	}

	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
