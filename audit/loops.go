package audit

import (
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/geo"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

type loopDetail struct {
	ShapeID      string  `json:"shape_id" yaml:"shape_id"`
	StartLat     float64 `json:"start_lat" yaml:"start_lat"`
	StartLon     float64 `json:"start_lon" yaml:"start_lon"`
	EndLat       float64 `json:"end_lat" yaml:"end_lat"`
	EndLon       float64 `json:"end_lon" yaml:"end_lon"`
	ClosureM     float64 `json:"closure_m" yaml:"closure_m"`
	TotalM       float64 `json:"total_m" yaml:"total_m"`
	TotalKM      float64 `json:"total_km" yaml:"total_km"`
	Points       int     `json:"points" yaml:"points"`
	ClosureRatio float64 `json:"closure_ratio" yaml:"closure_ratio"`
}

// loopsAcc identifies circular routes: shapes of at least three valid points
// whose last point lies within the tolerance of the first. Loops are
// informational, never a defect.
type loopsAcc struct {
	tolerance   float64
	totalShapes int
	totalPoints int
	loops       []loopDetail
}

func newLoopsAcc(cfg Config) Accumulator {
	return &loopsAcc{tolerance: cfg.LoopToleranceM}
}

func (a *loopsAcc) Observe(sh *gtfs.Shape, segments []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)

	pts := sh.ValidPoints()
	if len(pts) < 3 {
		return
	}
	first, last := pts[0], pts[len(pts)-1]
	closure := geo.HaversineMeters(first.Lat, first.Lon, last.Lat, last.Lon)
	if closure > a.tolerance {
		return
	}
	var total float64
	for _, s := range segments {
		total += s
	}
	ratio := 0.0
	if total > 0 {
		ratio = round(closure/total, 6)
	}
	a.loops = append(a.loops, loopDetail{
		ShapeID:      sh.ID,
		StartLat:     first.Lat,
		StartLon:     first.Lon,
		EndLat:       last.Lat,
		EndLon:       last.Lon,
		ClosureM:     round(closure, 2),
		TotalM:       round(total, 2),
		TotalKM:      round(total/1000, 3),
		Points:       len(pts),
		ClosureRatio: ratio,
	})
}

func (a *loopsAcc) Merge(other Accumulator) {
	o := other.(*loopsAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.loops = append(a.loops, o.loops...)
}

func (a *loopsAcc) Finalize(*Context) CheckResult {
	metrics := map[string]any{
		"total_shapes":       a.totalShapes,
		"total_points":       a.totalPoints,
		"closed_loops_count": len(a.loops),
		"loop_rate":          pctOf(len(a.loops), a.totalShapes),
		"tolerance_m":        a.tolerance,
		"loops":              a.loops,
	}
	if len(a.loops) > 0 {
		var closureSum, lengthSum float64
		longest, tightest := a.loops[0], a.loops[0]
		maxClosure := a.loops[0].ClosureM
		for _, l := range a.loops {
			closureSum += l.ClosureM
			lengthSum += l.TotalM
			if l.ClosureM > maxClosure {
				maxClosure = l.ClosureM
			}
			if l.TotalM > longest.TotalM {
				longest = l
			}
			if l.ClosureM < tightest.ClosureM {
				tightest = l
			}
		}
		metrics["analysis"] = map[string]any{
			"avg_closure_m":     round(closureSum/float64(len(a.loops)), 2),
			"max_closure_m":     maxClosure,
			"avg_loop_length_m": round(lengthSum/float64(len(a.loops)), 2),
			"longest_loop":      longest,
			"tightest_closure":  tightest,
		}
	}
	return CheckResult{Status: StatusSuccess, Metrics: metrics}
}
