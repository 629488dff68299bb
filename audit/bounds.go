package audit

import (
	"fmt"
	"sort"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

// boundsShapeDetail summarizes one shape with invalid coordinates.
type boundsShapeDetail struct {
	ShapeID       string  `json:"shape_id" yaml:"shape_id"`
	InvalidPoints int     `json:"invalid_points" yaml:"invalid_points"`
	TotalPoints   int     `json:"total_points" yaml:"total_points"`
	InvalidPct    float64 `json:"invalid_pct" yaml:"invalid_pct"`
}

// conditionStat counts one failure condition and its share of all points.
type conditionStat struct {
	Count int     `json:"count" yaml:"count"`
	Pct   float64 `json:"pct" yaml:"pct"`
}

// boundsAcc validates latitude and longitude values. Six conditions are
// counted independently; a point failing several counts once toward the
// invalid total.
type boundsAcc struct {
	totalShapes int
	totalPoints int
	invalid     int

	latBelow, latAbove, latMissing int
	lonBelow, lonAbove, lonMissing int

	problematic []boundsShapeDetail
	affected    []string
}

func newBoundsAcc(Config) Accumulator { return &boundsAcc{} }

func (a *boundsAcc) Observe(sh *gtfs.Shape, _ []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)
	invalid := 0
	for _, p := range sh.Points {
		bad := false
		switch {
		case !p.HasLat:
			a.latMissing++
			bad = true
		case p.Lat < -90:
			a.latBelow++
			bad = true
		case p.Lat > 90:
			a.latAbove++
			bad = true
		}
		switch {
		case !p.HasLon:
			a.lonMissing++
			bad = true
		case p.Lon < -180:
			a.lonBelow++
			bad = true
		case p.Lon > 180:
			a.lonAbove++
			bad = true
		}
		if bad {
			invalid++
		}
	}
	if invalid > 0 {
		a.invalid += invalid
		pct := round(float64(invalid)/float64(len(sh.Points))*100, 2)
		a.problematic = append(a.problematic, boundsShapeDetail{
			ShapeID:       sh.ID,
			InvalidPoints: invalid,
			TotalPoints:   len(sh.Points),
			InvalidPct:    pct,
		})
		a.affected = append(a.affected, sh.ID)
	}
}

func (a *boundsAcc) Merge(other Accumulator) {
	o := other.(*boundsAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.invalid += o.invalid
	a.latBelow += o.latBelow
	a.latAbove += o.latAbove
	a.latMissing += o.latMissing
	a.lonBelow += o.lonBelow
	a.lonAbove += o.lonAbove
	a.lonMissing += o.lonMissing
	a.problematic = append(a.problematic, o.problematic...)
	a.affected = append(a.affected, o.affected...)
}

func (a *boundsAcc) Finalize(*Context) CheckResult {
	validityRate := 100.0
	if a.totalPoints > 0 {
		validityRate = round(float64(a.totalPoints-a.invalid)/float64(a.totalPoints)*100, 2)
	}

	var status Status
	switch {
	case a.invalid == 0:
		status = StatusSuccess
	case validityRate >= 99:
		status = StatusWarning
	default:
		status = StatusError
	}

	var findings []Finding
	if a.invalid > 0 {
		findings = append(findings, Finding{
			Kind:        "invalid_coordinates",
			Field:       "coordinates",
			Count:       a.invalid,
			AffectedIDs: capIDs(a.affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d coordinate values missing or out of bounds across %d shapes", a.invalid, len(a.affected)),
		})
	}

	sort.SliceStable(a.problematic, func(i, j int) bool {
		return a.problematic[i].InvalidPoints > a.problematic[j].InvalidPoints
	})

	metrics := map[string]any{
		"total_points":   a.totalPoints,
		"total_shapes":   a.totalShapes,
		"invalid_points": a.invalid,
		"valid_points":   a.totalPoints - a.invalid,
		"validity_rate":  validityRate,
		"breakdown": map[string]conditionStat{
			"lat_below_min": {a.latBelow, pctOf(a.latBelow, a.totalPoints)},
			"lat_above_max": {a.latAbove, pctOf(a.latAbove, a.totalPoints)},
			"lat_missing":   {a.latMissing, pctOf(a.latMissing, a.totalPoints)},
			"lon_below_min": {a.lonBelow, pctOf(a.lonBelow, a.totalPoints)},
			"lon_above_max": {a.lonAbove, pctOf(a.lonAbove, a.totalPoints)},
			"lon_missing":   {a.lonMissing, pctOf(a.lonMissing, a.totalPoints)},
		},
	}
	if len(a.problematic) > 0 {
		top := a.problematic
		if len(top) > 20 {
			top = top[:20]
		}
		metrics["problematic_shapes"] = top
		metrics["worst_shape"] = a.problematic[0]
	}

	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
