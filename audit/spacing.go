package audit

import (
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

type shortSegment struct {
	ShapeID      string  `json:"shape_id" yaml:"shape_id"`
	SegmentIndex int     `json:"segment_index" yaml:"segment_index"`
	DistanceM    float64 `json:"distance_m" yaml:"distance_m"`
}

type spacingShapeDetail struct {
	ShapeID    string  `json:"shape_id" yaml:"shape_id"`
	ShortCount int     `json:"short_count" yaml:"short_count"`
	ShortestM  float64 `json:"shortest_m" yaml:"shortest_m"`
}

// minSpacingAcc flags segments shorter than the minimum spacing. Zero-length
// segments are consecutive duplicates and belong to that check, so only
// strictly positive distances count here.
type minSpacingAcc struct {
	threshold   float64
	totalShapes int
	totalPoints int
	events      []shortSegment
	shapes      []spacingShapeDetail
	affected    []string
}

func newMinSpacingAcc(cfg Config) Accumulator {
	return &minSpacingAcc{threshold: cfg.MinSpacingM}
}

func (a *minSpacingAcc) Observe(sh *gtfs.Shape, segments []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)

	count := 0
	shortest := 0.0
	for i, d := range segments {
		if d <= 0 || d >= a.threshold {
			continue
		}
		if count == 0 || d < shortest {
			shortest = d
		}
		count++
		a.events = append(a.events, shortSegment{ShapeID: sh.ID, SegmentIndex: i + 1, DistanceM: round(d, 2)})
	}
	if count > 0 {
		a.shapes = append(a.shapes, spacingShapeDetail{ShapeID: sh.ID, ShortCount: count, ShortestM: round(shortest, 2)})
		a.affected = append(a.affected, sh.ID)
	}
}

func (a *minSpacingAcc) Merge(other Accumulator) {
	o := other.(*minSpacingAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.events = append(a.events, o.events...)
	a.shapes = append(a.shapes, o.shapes...)
	a.affected = append(a.affected, o.affected...)
}

func (a *minSpacingAcc) Finalize(*Context) CheckResult {
	status := StatusSuccess
	var findings []Finding
	if len(a.events) > 0 {
		status = StatusWarning
		findings = append(findings, Finding{
			Kind:        "very_short_segment",
			Field:       "segment_spacing",
			Count:       len(a.events),
			AffectedIDs: capIDs(a.affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d segments shorter than %gm across %d shapes", len(a.events), a.threshold, len(a.shapes)),
		})
	}

	metrics := map[string]any{
		"total_shapes":    a.totalShapes,
		"total_points":    a.totalPoints,
		"short_segments":  len(a.events),
		"affected_shapes": len(a.shapes),
		"threshold_m":     a.threshold,
	}
	if len(a.shapes) > 0 {
		top := a.shapes
		if len(top) > 20 {
			top = top[:20]
		}
		metrics["shapes"] = top
		events := a.events
		if len(events) > 50 {
			events = events[:50]
		}
		metrics["segments"] = events
	}
	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}

type uniformShapeDetail struct {
	ShapeID string  `json:"shape_id" yaml:"shape_id"`
	StddevM float64 `json:"stddev_m" yaml:"stddev_m"`
	MeanM   float64 `json:"mean_m" yaml:"mean_m"`
}

// uniformSpacingAcc finds shapes whose segment lengths barely vary.
// Perfectly even spacing usually means generated or resampled geometry
// rather than a surveyed route.
type uniformSpacingAcc struct {
	tolerance   float64
	totalShapes int
	analyzed    int
	uniform     []uniformShapeDetail
	affected    []string

	uniformMeanSum   float64
	irregularMeanSum float64
	irregularCount   int
}

func newUniformSpacingAcc(cfg Config) Accumulator {
	return &uniformSpacingAcc{tolerance: cfg.SpacingStddevM}
}

func (a *uniformSpacingAcc) Observe(sh *gtfs.Shape, segments []float64) {
	a.totalShapes++
	if len(segments) < 2 {
		return
	}
	a.analyzed++

	var sum float64
	for _, d := range segments {
		sum += d
	}
	mean := sum / float64(len(segments))
	stddev := popStddev(segments)
	if stddev < a.tolerance {
		a.uniform = append(a.uniform, uniformShapeDetail{
			ShapeID: sh.ID,
			StddevM: round(stddev, 2),
			MeanM:   round(mean, 2),
		})
		a.affected = append(a.affected, sh.ID)
		a.uniformMeanSum += mean
	} else {
		a.irregularCount++
		a.irregularMeanSum += mean
	}
}

func (a *uniformSpacingAcc) Merge(other Accumulator) {
	o := other.(*uniformSpacingAcc)
	a.totalShapes += o.totalShapes
	a.analyzed += o.analyzed
	a.uniform = append(a.uniform, o.uniform...)
	a.affected = append(a.affected, o.affected...)
	a.uniformMeanSum += o.uniformMeanSum
	a.irregularMeanSum += o.irregularMeanSum
	a.irregularCount += o.irregularCount
}

func (a *uniformSpacingAcc) Finalize(*Context) CheckResult {
	status := StatusSuccess
	var findings []Finding
	if len(a.uniform) > 0 {
		status = StatusWarning
		findings = append(findings, Finding{
			Kind:        "uniform_spacing",
			Field:       "segment_spacing",
			Count:       len(a.uniform),
			AffectedIDs: capIDs(a.affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d shapes with near-constant point spacing (stddev under %gm)", len(a.uniform), a.tolerance),
		})
	}

	metrics := map[string]any{
		"total_shapes":    a.totalShapes,
		"analyzed":        a.analyzed,
		"uniform_count":   len(a.uniform),
		"irregular_count": a.irregularCount,
		"uniform_rate":    pctOf(len(a.uniform), a.analyzed),
		"stddev_m":        a.tolerance,
	}
	if len(a.uniform) > 0 {
		metrics["uniform_mean_spacing_m"] = round(a.uniformMeanSum/float64(len(a.uniform)), 2)
		top := a.uniform
		if len(top) > 50 {
			top = top[:50]
		}
		metrics["uniform_shapes"] = top
	}
	if a.irregularCount > 0 {
		metrics["irregular_mean_spacing_m"] = round(a.irregularMeanSum/float64(a.irregularCount), 2)
	}
	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
