package audit

import (
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

// pointKey identifies a row inside one shape for exact-duplicate grouping.
// Missing values compare equal to each other, matching how rows with absent
// fields duplicate one another.
type pointKey struct {
	lat, lon       float64
	hasLat, hasLon bool
	seq            int
	hasSeq         bool
}

type coordKey struct {
	lat, lon       float64
	hasLat, hasLon bool
}

type dupShapeDetail struct {
	ShapeID         string `json:"shape_id" yaml:"shape_id"`
	DuplicatePoints int    `json:"duplicate_points" yaml:"duplicate_points"`
	DuplicateSets   int    `json:"duplicate_sets" yaml:"duplicate_sets"`
}

// duplicatesAcc finds rows repeated within a shape. Exact duplicates match
// on coordinates and sequence; coordinate duplicates match on coordinates
// only and are reported as the surplus over the exact count. Every member
// of a duplicated group counts, not just the copies.
type duplicatesAcc struct {
	totalShapes int
	totalPoints int
	exactRows   int
	coordRows   int
	sets        int
	redundant   int
	details     []dupShapeDetail
	affected    []string
}

func newDuplicatesAcc(Config) Accumulator { return &duplicatesAcc{} }

func (a *duplicatesAcc) Observe(sh *gtfs.Shape, _ []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)

	exact := make(map[pointKey]int, len(sh.Points))
	coord := make(map[coordKey]int, len(sh.Points))
	for _, p := range sh.Points {
		exact[pointKey{p.Lat, p.Lon, p.HasLat, p.HasLon, p.Sequence, p.HasSequence}]++
		coord[coordKey{p.Lat, p.Lon, p.HasLat, p.HasLon}]++
	}

	rows, sets := 0, 0
	for _, c := range exact {
		if c > 1 {
			rows += c
			sets++
			a.redundant += c - 1
		}
	}
	for _, c := range coord {
		if c > 1 {
			a.coordRows += c
		}
	}

	if sets > 0 {
		a.exactRows += rows
		a.sets += sets
		a.details = append(a.details, dupShapeDetail{ShapeID: sh.ID, DuplicatePoints: rows, DuplicateSets: sets})
		a.affected = append(a.affected, sh.ID)
	}
}

func (a *duplicatesAcc) Merge(other Accumulator) {
	o := other.(*duplicatesAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.exactRows += o.exactRows
	a.coordRows += o.coordRows
	a.sets += o.sets
	a.redundant += o.redundant
	a.details = append(a.details, o.details...)
	a.affected = append(a.affected, o.affected...)
}

func (a *duplicatesAcc) Finalize(*Context) CheckResult {
	rate := 0.0
	if a.totalPoints > 0 {
		rate = round(float64(a.exactRows)/float64(a.totalPoints)*100, 2)
	}

	var status Status
	switch {
	case a.exactRows == 0:
		status = StatusSuccess
	case rate <= 1:
		status = StatusWarning
	default:
		status = StatusError
	}

	var findings []Finding
	if a.exactRows > 0 {
		findings = append(findings, Finding{
			Kind:        "duplicate_data",
			Field:       "shape_points",
			Count:       a.exactRows,
			AffectedIDs: capIDs(a.affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d duplicated shape points across %d shapes", a.exactRows, len(a.affected)),
		})
	}
	if a.coordRows > a.exactRows {
		extra := a.coordRows - a.exactRows
		findings = append(findings, Finding{
			Kind:    "coordinate_duplicate",
			Field:   "shape_points",
			Count:   extra,
			Message: fmt.Sprintf("%d additional points repeat coordinates at different sequence values", extra),
		})
	}

	metrics := map[string]any{
		"total_shapes":          a.totalShapes,
		"total_points":          a.totalPoints,
		"duplicate_points":      a.exactRows,
		"duplication_rate":      rate,
		"duplicate_sets":        a.sets,
		"affected_shapes":       len(a.affected),
		"coordinate_duplicates": a.coordRows,
		"redundant_points":      a.redundant,
	}
	if len(a.details) > 0 {
		top := a.details
		if len(top) > 20 {
			top = top[:20]
		}
		metrics["shapes_with_duplicates"] = top
	}

	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}

type consecEvent struct {
	ShapeID  string  `json:"shape_id" yaml:"shape_id"`
	Position int     `json:"position" yaml:"position"`
	Lat      float64 `json:"lat" yaml:"lat"`
	Lon      float64 `json:"lon" yaml:"lon"`
}

type consecShapeDetail struct {
	ShapeID     string `json:"shape_id" yaml:"shape_id"`
	TotalPoints int    `json:"total_points" yaml:"total_points"`
	Duplicates  int    `json:"duplicates" yaml:"duplicates"`
	Positions   []int  `json:"positions" yaml:"positions"`
}

// consecutiveAcc finds points identical to their predecessor in canonical
// order. These are directly removable without changing the geometry. A row
// with missing coordinates never equals anything, so it breaks a run of
// duplicates.
type consecutiveAcc struct {
	totalShapes int
	totalPoints int
	total       int
	shapes      []consecShapeDetail
	events      []consecEvent
	affected    []string
}

func newConsecutiveAcc(Config) Accumulator { return &consecutiveAcc{} }

func (a *consecutiveAcc) Observe(sh *gtfs.Shape, _ []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)
	if len(sh.Points) < 2 {
		return
	}

	var positions []int
	for i := 1; i < len(sh.Points); i++ {
		p, q := sh.Points[i-1], sh.Points[i]
		if !p.CoordsValid() || !q.CoordsValid() {
			continue
		}
		if p.Lat == q.Lat && p.Lon == q.Lon {
			positions = append(positions, i)
			a.events = append(a.events, consecEvent{ShapeID: sh.ID, Position: i, Lat: q.Lat, Lon: q.Lon})
		}
	}
	if len(positions) > 0 {
		a.total += len(positions)
		a.shapes = append(a.shapes, consecShapeDetail{
			ShapeID:     sh.ID,
			TotalPoints: len(sh.Points),
			Duplicates:  len(positions),
			Positions:   positions,
		})
		a.affected = append(a.affected, sh.ID)
	}
}

func (a *consecutiveAcc) Merge(other Accumulator) {
	o := other.(*consecutiveAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.total += o.total
	a.shapes = append(a.shapes, o.shapes...)
	a.events = append(a.events, o.events...)
	a.affected = append(a.affected, o.affected...)
}

func (a *consecutiveAcc) Finalize(*Context) CheckResult {
	rate := 0.0
	if a.totalShapes > 0 {
		rate = round(float64(len(a.shapes))/float64(a.totalShapes)*100, 2)
	}

	var status Status
	switch {
	case a.total == 0:
		status = StatusSuccess
	case rate <= 5:
		status = StatusWarning
	default:
		status = StatusError
	}

	var findings []Finding
	if a.total > 0 {
		findings = append(findings, Finding{
			Kind:        "consecutive_duplicates",
			Field:       "shape_geometry",
			Count:       a.total,
			AffectedIDs: capIDs(a.affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d consecutive duplicate points across %d shapes", a.total, len(a.shapes)),
		})
	}

	metrics := map[string]any{
		"total_shapes":    a.totalShapes,
		"total_points":    a.totalPoints,
		"affected_shapes": len(a.shapes),
		"duplicate_rate":  rate,
	}
	if len(a.shapes) > 0 {
		worst := a.shapes[0]
		sum := 0
		for _, s := range a.shapes {
			sum += s.Duplicates
			if s.Duplicates > worst.Duplicates {
				worst = s
			}
		}
		gainPct := 0.0
		if a.totalPoints > 0 {
			gainPct = round(float64(sum)/float64(a.totalPoints)*100, 2)
		}
		metrics["analysis"] = map[string]any{
			"avg_duplicates_per_shape": round(float64(sum)/float64(len(a.shapes)), 2),
			"max_duplicates_in_shape":  worst.Duplicates,
			"total_removable_points":   sum,
			"worst_shape":              worst,
			"efficiency_gain_pct":      gainPct,
		}
		top := a.shapes
		if len(top) > 20 {
			top = top[:20]
		}
		metrics["shapes_with_duplicates"] = top
		events := a.events
		if len(events) > 50 {
			events = events[:50]
		}
		metrics["duplicates"] = events
		metrics["optimization"] = map[string]any{
			"removable_points": sum,
			"optimized_size":   a.totalPoints - sum,
		}
	}

	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
