package audit

import (
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

type sequenceShapeDetail struct {
	ShapeID    string `json:"shape_id" yaml:"shape_id"`
	Points     int    `json:"points" yaml:"points"`
	Duplicates int    `json:"duplicates" yaml:"duplicates"`
	FirstSeq   int    `json:"first_sequence" yaml:"first_sequence"`
	LastSeq    int    `json:"last_sequence" yaml:"last_sequence"`
}

// sequenceAcc checks shape_pt_sequence monotonicity in canonical order.
// After the stable ascending sort the only detectable defect is a duplicate
// sequence value, which shows up as an adjacent equal pair; true input
// disorder is unobservable post-sort. Points without a sequence value are
// not examined here.
type sequenceAcc struct {
	totalShapes int
	totalPoints int
	dupPairs    int
	problematic []sequenceShapeDetail
	affected    []string

	cleanShapes  int
	cleanPoints  int
	cleanStepSum float64
	cleanStepped int
	minSeq       int
	maxSeq       int
	seqSeen      bool
}

func newSequenceAcc(Config) Accumulator { return &sequenceAcc{} }

func (a *sequenceAcc) Observe(sh *gtfs.Shape, _ []float64) {
	a.totalShapes++
	a.totalPoints += len(sh.Points)

	var (
		dups, steps     int
		first, last     int
		prev            int
		stepSum         float64
		haveSeq, prevOK bool
	)
	for _, p := range sh.Points {
		if !p.HasSequence {
			continue
		}
		if !haveSeq {
			first = p.Sequence
			haveSeq = true
		}
		last = p.Sequence
		if prevOK {
			if p.Sequence == prev {
				dups++
			}
			stepSum += float64(p.Sequence - prev)
			steps++
		}
		prev = p.Sequence
		prevOK = true
	}

	if dups > 0 {
		a.dupPairs += dups
		a.problematic = append(a.problematic, sequenceShapeDetail{
			ShapeID:    sh.ID,
			Points:     len(sh.Points),
			Duplicates: dups,
			FirstSeq:   first,
			LastSeq:    last,
		})
		a.affected = append(a.affected, sh.ID)
		return
	}

	a.cleanShapes++
	a.cleanPoints += len(sh.Points)
	if steps > 0 {
		a.cleanStepSum += stepSum / float64(steps)
		a.cleanStepped++
	}
	if haveSeq {
		// Canonical order is ascending, so first and last bound the values.
		if !a.seqSeen {
			a.minSeq, a.maxSeq = first, last
			a.seqSeen = true
		} else {
			if first < a.minSeq {
				a.minSeq = first
			}
			if last > a.maxSeq {
				a.maxSeq = last
			}
		}
	}
}

func (a *sequenceAcc) Merge(other Accumulator) {
	o := other.(*sequenceAcc)
	a.totalShapes += o.totalShapes
	a.totalPoints += o.totalPoints
	a.dupPairs += o.dupPairs
	a.problematic = append(a.problematic, o.problematic...)
	a.affected = append(a.affected, o.affected...)
	a.cleanShapes += o.cleanShapes
	a.cleanPoints += o.cleanPoints
	a.cleanStepSum += o.cleanStepSum
	a.cleanStepped += o.cleanStepped
	if o.seqSeen {
		if !a.seqSeen {
			a.minSeq, a.maxSeq = o.minSeq, o.maxSeq
			a.seqSeen = true
		} else {
			if o.minSeq < a.minSeq {
				a.minSeq = o.minSeq
			}
			if o.maxSeq > a.maxSeq {
				a.maxSeq = o.maxSeq
			}
		}
	}
}

func (a *sequenceAcc) Finalize(*Context) CheckResult {
	validityRate := 100.0
	if a.totalShapes > 0 {
		validityRate = round(float64(a.cleanShapes)/float64(a.totalShapes)*100, 2)
	}

	var status Status
	switch {
	case len(a.problematic) == 0:
		status = StatusSuccess
	case validityRate >= 95:
		status = StatusWarning
	default:
		status = StatusError
	}

	var findings []Finding
	if len(a.problematic) > 0 {
		findings = append(findings, Finding{
			Kind:        "invalid_sequence",
			Field:       "shape_pt_sequence",
			Count:       len(a.problematic),
			AffectedIDs: capIDs(a.affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d shapes with non-increasing sequence values", len(a.problematic)),
		})
		findings = append(findings, Finding{
			Kind:        "duplicate_sequence",
			Field:       "shape_pt_sequence",
			Count:       a.dupPairs,
			AffectedIDs: capIDs(a.affected, 50),
			Message:     fmt.Sprintf("%d duplicate sequence values across %d shapes", a.dupPairs, len(a.problematic)),
		})
	}

	metrics := map[string]any{
		"total_shapes":       a.totalShapes,
		"total_points":       a.totalPoints,
		"problematic_shapes": len(a.problematic),
		"validity_rate":      validityRate,
	}
	if len(a.problematic) > 0 {
		detail := a.problematic
		if len(detail) > 50 {
			detail = detail[:50]
		}
		metrics["problematic"] = detail
	}
	if a.cleanShapes > 0 {
		stats := map[string]any{
			"avg_points_per_shape": round(float64(a.cleanPoints)/float64(a.cleanShapes), 1),
		}
		if a.cleanStepped > 0 {
			stats["avg_sequence_step"] = round(a.cleanStepSum/float64(a.cleanStepped), 2)
		}
		if a.seqSeen {
			stats["min_sequence"] = a.minSeq
			stats["max_sequence"] = a.maxSeq
		}
		metrics["valid_stats"] = stats
	}

	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
