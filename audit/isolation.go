package audit

import (
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

type isolatedPoint struct {
	ShapeID      string  `json:"shape_id" yaml:"shape_id"`
	PointIndex   int     `json:"point_index" yaml:"point_index"`
	Lat          float64 `json:"lat" yaml:"lat"`
	Lon          float64 `json:"lon" yaml:"lon"`
	PrevM        float64 `json:"distance_to_previous_m" yaml:"distance_to_previous_m"`
	NextM        float64 `json:"distance_to_next_m" yaml:"distance_to_next_m"`
	MinNeighborM float64 `json:"min_neighbor_m" yaml:"min_neighbor_m"`
	Severity     string  `json:"severity" yaml:"severity"`
}

// isolationAcc finds interior points far from both neighbors, the classic
// signature of a geocoding error. Endpoints are never isolated; a long lead
// segment alone is the jump detector's business.
type isolationAcc struct {
	threshold   float64
	totalShapes int
	totalPoints int
	points      []isolatedPoint
	affected    []string
}

func newIsolationAcc(cfg Config) Accumulator {
	return &isolationAcc{threshold: cfg.IsolationM}
}

func (a *isolationAcc) Observe(sh *gtfs.Shape, segments []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)

	pts := sh.ValidPoints()
	if len(pts) < 3 {
		return
	}
	found := false
	for i := 1; i < len(pts)-1; i++ {
		prev, next := segments[i-1], segments[i]
		if prev <= a.threshold || next <= a.threshold {
			continue
		}
		score := prev
		if next < score {
			score = next
		}
		severity := "moderate"
		switch {
		case score > a.threshold*5:
			severity = "extreme"
		case score > a.threshold*2:
			severity = "high"
		}
		a.points = append(a.points, isolatedPoint{
			ShapeID:      sh.ID,
			PointIndex:   i,
			Lat:          pts[i].Lat,
			Lon:          pts[i].Lon,
			PrevM:        round(prev, 2),
			NextM:        round(next, 2),
			MinNeighborM: round(score, 2),
			Severity:     severity,
		})
		found = true
	}
	if found {
		a.affected = append(a.affected, sh.ID)
	}
}

func (a *isolationAcc) Merge(other Accumulator) {
	o := other.(*isolationAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.points = append(a.points, o.points...)
	a.affected = append(a.affected, o.affected...)
}

func (a *isolationAcc) Finalize(*Context) CheckResult {
	severityCounts := map[string]int{"moderate": 0, "high": 0, "extreme": 0}
	var extremeIDs []string
	for _, p := range a.points {
		severityCounts[p.Severity]++
		if p.Severity == "extreme" {
			extremeIDs = append(extremeIDs, p.ShapeID)
		}
	}

	var status Status
	switch {
	case len(a.points) == 0:
		status = StatusSuccess
	case severityCounts["extreme"] > 0:
		status = StatusError
	default:
		status = StatusWarning
	}

	var findings []Finding
	if len(a.points) > 0 {
		findings = append(findings, Finding{
			Kind:        "isolated_points",
			Field:       "point_positioning",
			Count:       len(a.points),
			AffectedIDs: capIDs(a.affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d points over %.0fm from both neighbors", len(a.points), a.threshold),
		})
	}
	if len(extremeIDs) > 0 {
		findings = append(findings, Finding{
			Kind:        "extreme_isolation",
			Field:       "geocoding_errors",
			Count:       len(extremeIDs),
			AffectedIDs: capIDs(extremeIDs, 50),
			Message:     fmt.Sprintf("%d points over %.0fm from both neighbors, likely geocoding errors", len(extremeIDs), a.threshold*5),
		})
	}

	rate := 0.0
	if a.totalPoints > 0 {
		rate = round(float64(len(a.points))/float64(a.totalPoints)*100, 4)
	}
	metrics := map[string]any{
		"total_shapes":    a.totalShapes,
		"total_points":    a.totalPoints,
		"total_anomalies": len(a.points),
		"isolation_rate":  rate,
		"threshold_m":     a.threshold,
	}
	if len(a.points) > 0 {
		var sum, maxIso float64
		most := a.points[0]
		for _, p := range a.points {
			sum += p.MinNeighborM
			if p.MinNeighborM > maxIso {
				maxIso = p.MinNeighborM
			}
			if p.MinNeighborM > most.MinNeighborM {
				most = p
			}
		}
		top := a.points
		if len(top) > 10 {
			top = top[:10]
		}
		metrics["isolated"] = top
		metrics["analysis"] = map[string]any{
			"severity_distribution": severityCounts,
			"avg_isolation_m":       round(sum/float64(len(a.points)), 2),
			"max_isolation_m":       maxIso,
			"most_isolated":         most,
			"shapes_affected":       len(a.affected),
		}
	}

	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
