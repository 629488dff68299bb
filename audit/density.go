package audit

import "github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"

type densityDetail struct {
	ShapeID     string  `json:"shape_id" yaml:"shape_id"`
	PointsPerKM float64 `json:"points_per_km" yaml:"points_per_km"`
}

// densityAcc reports how densely each shape is sampled, in points per
// kilometer. Pure statistics; very sparse or very dense shapes surface in
// the outlier fields for a human to judge.
type densityAcc struct {
	totalShapes int
	details     []densityDetail
	sum         float64
}

func newDensityAcc(Config) Accumulator { return &densityAcc{} }

func (a *densityAcc) Observe(sh *gtfs.Shape, segments []float64) {
	a.totalShapes++
	pts := sh.ValidPoints()
	if len(pts) < 2 {
		return
	}
	var total float64
	for _, s := range segments {
		total += s
	}
	km := total / 1000
	if km <= 0 {
		return
	}
	d := round(float64(len(pts))/km, 2)
	a.details = append(a.details, densityDetail{ShapeID: sh.ID, PointsPerKM: d})
	a.sum += d
}

func (a *densityAcc) Merge(other Accumulator) {
	o := other.(*densityAcc)
	a.totalShapes += o.totalShapes
	a.details = append(a.details, o.details...)
	a.sum += o.sum
}

func (a *densityAcc) Finalize(*Context) CheckResult {
	metrics := map[string]any{
		"total_shapes": a.totalShapes,
		"analyzed":     len(a.details),
	}
	if len(a.details) > 0 {
		sparsest, densest := a.details[0], a.details[0]
		for _, d := range a.details {
			if d.PointsPerKM < sparsest.PointsPerKM {
				sparsest = d
			}
			if d.PointsPerKM > densest.PointsPerKM {
				densest = d
			}
		}
		metrics["avg_points_per_km"] = round(a.sum/float64(len(a.details)), 2)
		metrics["min_points_per_km"] = sparsest.PointsPerKM
		metrics["max_points_per_km"] = densest.PointsPerKM
		metrics["sparsest_shape"] = sparsest
		metrics["densest_shape"] = densest
		examples := a.details
		if len(examples) > 5 {
			examples = examples[:5]
		}
		metrics["examples"] = examples
	}
	return CheckResult{Status: StatusSuccess, Metrics: metrics}
}
