package audit

import (
	"fmt"
	"sort"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

type lengthShapeDetail struct {
	ShapeID  string  `json:"shape_id" yaml:"shape_id"`
	TotalM   float64 `json:"total_m" yaml:"total_m"`
	TotalKM  float64 `json:"total_km" yaml:"total_km"`
	Points   int     `json:"points" yaml:"points"`
	Segments int     `json:"segments" yaml:"segments"`
	AvgSegM  float64 `json:"avg_segment_m" yaml:"avg_segment_m"`
	MinSegM  float64 `json:"min_segment_m" yaml:"min_segment_m"`
	MaxSegM  float64 `json:"max_segment_m" yaml:"max_segment_m"`
}

// lengthDistribution buckets shapes by total length: under 1km, 1-5km,
// 5-20km, 20-50km, and 50km up.
type lengthDistribution struct {
	VeryShort int `json:"very_short" yaml:"very_short"`
	Short     int `json:"short" yaml:"short"`
	Medium    int `json:"medium" yaml:"medium"`
	Long      int `json:"long" yaml:"long"`
	VeryLong  int `json:"very_long" yaml:"very_long"`
}

// lengthsAcc computes per-shape and network-wide travelled distance
// statistics. Shapes with fewer than two valid points cannot be measured
// and are reported as not analyzable rather than failing the run.
type lengthsAcc struct {
	totalShapes   int
	totalPoints   int
	notAnalyzable []string
	details       []lengthShapeDetail
}

func newLengthsAcc(Config) Accumulator { return &lengthsAcc{} }

func (a *lengthsAcc) Observe(sh *gtfs.Shape, segments []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)
	if len(segments) == 0 {
		a.notAnalyzable = append(a.notAnalyzable, sh.ID)
		return
	}

	total, minSeg, maxSeg := 0.0, segments[0], segments[0]
	for _, s := range segments {
		total += s
		if s < minSeg {
			minSeg = s
		}
		if s > maxSeg {
			maxSeg = s
		}
	}
	a.details = append(a.details, lengthShapeDetail{
		ShapeID:  sh.ID,
		TotalM:   round(total, 2),
		TotalKM:  round(total/1000, 3),
		Points:   len(segments) + 1,
		Segments: len(segments),
		AvgSegM:  round(total/float64(len(segments)), 2),
		MinSegM:  round(minSeg, 2),
		MaxSegM:  round(maxSeg, 2),
	})
}

func (a *lengthsAcc) Merge(other Accumulator) {
	o := other.(*lengthsAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.notAnalyzable = append(a.notAnalyzable, o.notAnalyzable...)
	a.details = append(a.details, o.details...)
}

func (a *lengthsAcc) Finalize(*Context) CheckResult {
	metrics := map[string]any{
		"total_shapes": a.totalShapes,
		"total_points": a.totalPoints,
		"analyzed":     len(a.details),
	}
	if a.totalShapes == 0 {
		return CheckResult{Status: StatusSuccess, Metrics: metrics}
	}

	if len(a.details) == 0 {
		metrics["not_analyzable"] = capIDs(a.notAnalyzable, 10)
		return CheckResult{
			Status: StatusError,
			Findings: []Finding{{
				Kind:    "calculation_error",
				Field:   "distance_computation",
				Count:   len(a.notAnalyzable),
				Message: fmt.Sprintf("no shape lengths computable, %d shapes lack two valid points", len(a.notAnalyzable)),
			}},
			Metrics: metrics,
		}
	}

	distances := make([]float64, len(a.details))
	var (
		totalNetwork float64
		points       int
		segments     int
		longest      = a.details[0]
		shortest     = a.details[0]
	)
	for i, d := range a.details {
		distances[i] = d.TotalM
		totalNetwork += d.TotalM
		points += d.Points
		segments += d.Segments
		if d.TotalM > longest.TotalM {
			longest = d
		}
		if d.TotalM < shortest.TotalM {
			shortest = d
		}
	}
	sorted := make([]float64, len(distances))
	copy(sorted, distances)
	sort.Float64s(sorted)

	var buckets lengthDistribution
	for _, d := range distances {
		switch {
		case d < 1000:
			buckets.VeryShort++
		case d < 5000:
			buckets.Short++
		case d < 20000:
			buckets.Medium++
		case d < 50000:
			buckets.Long++
		default:
			buckets.VeryLong++
		}
	}

	successRate := round(float64(len(a.details))/float64(a.totalShapes)*100, 2)
	var status Status
	switch {
	case len(a.notAnalyzable) > 0 && successRate < 90:
		status = StatusError
	case len(a.notAnalyzable) > 0:
		status = StatusWarning
	default:
		status = StatusSuccess
	}

	var findings []Finding
	if len(a.notAnalyzable) > 0 {
		findings = append(findings, Finding{
			Kind:    "processing_error",
			Field:   "distance_calculation",
			Count:   len(a.notAnalyzable),
			Message: fmt.Sprintf("%d shapes could not be measured", len(a.notAnalyzable)),
		})
		metrics["not_analyzable"] = capIDs(a.notAnalyzable, 10)
	}

	metrics["success_rate"] = successRate
	metrics["stats"] = map[string]any{
		"count":            len(distances),
		"min_m":            round(sorted[0], 2),
		"max_m":            round(sorted[len(sorted)-1], 2),
		"avg_m":            round(totalNetwork/float64(len(distances)), 2),
		"median_m":         round(sorted[len(sorted)/2], 2),
		"total_network_m":  round(totalNetwork, 2),
		"total_network_km": round(totalNetwork/1000, 2),
		"stddev_m":         round(sampleStddev(distances), 2),
	}
	metrics["distribution"] = buckets
	top := a.details
	if len(top) > 20 {
		top = top[:20]
	}
	metrics["shapes"] = top
	metrics["network"] = map[string]any{
		"longest_shape":        longest,
		"shortest_shape":       shortest,
		"avg_points_per_shape": round(float64(points)/float64(len(a.details)), 1),
		"total_segments":       segments,
	}

	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
