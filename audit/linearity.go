package audit

import (
	"fmt"
	"sort"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/geo"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

type linearityDetail struct {
	ShapeID      string  `json:"shape_id" yaml:"shape_id"`
	Ratio        float64 `json:"ratio" yaml:"ratio"`
	TotalM       float64 `json:"total_m" yaml:"total_m"`
	DirectM      float64 `json:"direct_m" yaml:"direct_m"`
	Points       int     `json:"points" yaml:"points"`
	Class        string  `json:"class" yaml:"class"`
	DetourFactor float64 `json:"detour_factor" yaml:"detour_factor"`
}

func linearityClass(r float64) string {
	switch {
	case r >= 0.9:
		return "very_linear"
	case r >= 0.7:
		return "linear"
	case r >= 0.5:
		return "moderate"
	case r >= 0.3:
		return "winding"
	default:
		return "very_winding"
	}
}

// linearityAcc measures how direct each route is: straight-line distance
// over travelled distance. A perfect loop has ratio 0; its detour factor is
// stored as 0 and excluded from the average instead of going infinite.
type linearityAcc struct {
	totalShapes int
	totalPoints int
	skipped     int
	details     []linearityDetail
}

func newLinearityAcc(Config) Accumulator { return &linearityAcc{} }

func (a *linearityAcc) Observe(sh *gtfs.Shape, segments []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)

	pts := sh.ValidPoints()
	if len(pts) < 2 {
		a.skipped++
		return
	}
	var total float64
	for _, s := range segments {
		total += s
	}
	if total == 0 {
		a.skipped++
		return
	}
	direct := geo.HaversineMeters(pts[0].Lat, pts[0].Lon, pts[len(pts)-1].Lat, pts[len(pts)-1].Lon)
	ratio := direct / total
	detour := 0.0
	if ratio > 0 {
		detour = round(1/ratio, 2)
	}
	a.details = append(a.details, linearityDetail{
		ShapeID:      sh.ID,
		Ratio:        round(ratio, 4),
		TotalM:       round(total, 2),
		DirectM:      round(direct, 2),
		Points:       len(pts),
		Class:        linearityClass(ratio),
		DetourFactor: detour,
	})
}

func (a *linearityAcc) Merge(other Accumulator) {
	o := other.(*linearityAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.skipped += o.skipped
	a.details = append(a.details, o.details...)
}

func (a *linearityAcc) Finalize(*Context) CheckResult {
	metrics := map[string]any{
		"total_shapes": a.totalShapes,
		"total_points": a.totalPoints,
		"analyzed":     len(a.details),
	}
	if a.totalShapes == 0 {
		return CheckResult{Status: StatusSuccess, Metrics: metrics}
	}
	if len(a.details) == 0 {
		return CheckResult{
			Status: StatusError,
			Findings: []Finding{{
				Kind:    "calculation_error",
				Field:   "linearity_computation",
				Count:   a.skipped,
				Message: fmt.Sprintf("no linearity ratios computable, %d shapes too short or stationary", a.skipped),
			}},
			Metrics: metrics,
		}
	}

	ratios := make([]float64, len(a.details))
	classCounts := map[string]int{
		"very_linear": 0, "linear": 0, "moderate": 0, "winding": 0, "very_winding": 0,
	}
	var (
		ratioSum    float64
		detourSum   float64
		detourCount int
		mostLinear  = a.details[0]
		mostWinding = a.details[0]
	)
	for i, d := range a.details {
		ratios[i] = d.Ratio
		ratioSum += d.Ratio
		classCounts[d.Class]++
		if d.DetourFactor > 0 {
			detourSum += d.DetourFactor
			detourCount++
		}
		if d.Ratio > mostLinear.Ratio {
			mostLinear = d
		}
		if d.Ratio < mostWinding.Ratio {
			mostWinding = d
		}
	}
	sorted := make([]float64, len(ratios))
	copy(sorted, ratios)
	sort.Float64s(sorted)
	avg := round(ratioSum/float64(len(ratios)), 4)

	var variance float64
	for _, r := range ratios {
		d := r - avg
		variance += d * d
	}
	variance = round(variance/float64(len(ratios)), 6)

	avgDetour := 0.0
	if detourCount > 0 {
		avgDetour = round(detourSum/float64(detourCount), 2)
	}

	metrics["success_rate"] = round(float64(len(a.details))/float64(a.totalShapes)*100, 2)
	metrics["stats"] = map[string]any{
		"count":        len(ratios),
		"min_ratio":    round(sorted[0], 4),
		"max_ratio":    round(sorted[len(sorted)-1], 4),
		"avg_ratio":    avg,
		"median_ratio": round(sorted[len(sorted)/2], 4),
	}
	metrics["distribution"] = classCounts
	metrics["quality"] = map[string]any{
		"most_linear":       mostLinear,
		"most_winding":      mostWinding,
		"avg_detour_factor": avgDetour,
		"network_linearity": avg,
	}
	metrics["network"] = map[string]any{
		"overall_linearity":  avg,
		"linearity_variance": variance,
		"efficient_routes":   classCounts["very_linear"] + classCounts["linear"],
		"inefficient_routes": classCounts["winding"] + classCounts["very_winding"],
	}
	top := a.details
	if len(top) > 10 {
		top = top[:10]
	}
	metrics["ratios"] = top

	return CheckResult{Status: StatusSuccess, Metrics: metrics}
}
