package audit

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

type similarPair struct {
	Shape1      string  `json:"shape_1" yaml:"shape_1"`
	Shape2      string  `json:"shape_2" yaml:"shape_2"`
	MeanDistDeg float64 `json:"mean_distance_deg" yaml:"mean_distance_deg"`
	Score       float64 `json:"score" yaml:"score"`
	PointCount  int     `json:"point_count" yaml:"point_count"`
	Level       string  `json:"level" yaml:"level"`
}

func similarityLevel(score float64) string {
	switch {
	case score > 0.95:
		return "very_high"
	case score > 0.8:
		return "high"
	default:
		return "medium"
	}
}

// meanPointDistance is the mean per-index Euclidean distance between two
// equal-length point slices, in degree space.
func meanPointDistance(a, b []gtfs.ShapePoint) float64 {
	var sum float64
	for i := range a {
		dLat := a[i].Lat - b[i].Lat
		dLon := a[i].Lon - b[i].Lon
		sum += math.Sqrt(dLat*dLat + dLon*dLon)
	}
	return sum / float64(len(a))
}

// runSimilarity compares every pair of shapes with the same valid point
// count and reports pairs whose mean per-point distance falls under the
// threshold. Shapes with different point counts are never compared, so a
// resampled copy of a route will not match its original. Buckets of one
// point count are independent and are scored in parallel.
func runSimilarity(ctx *Context) CheckResult {
	threshold := ctx.Config.SimilarityThresholdDeg
	shapes := ctx.Store.Shapes()

	buckets := make(map[int][]*gtfs.Shape)
	withPoints := 0
	for _, sh := range shapes {
		n := len(sh.ValidPoints())
		if n == 0 {
			continue
		}
		withPoints++
		buckets[n] = append(buckets[n], sh)
	}
	totalComparisons := withPoints * (withPoints - 1) / 2

	sizes := make([]int, 0, len(buckets))
	for n, group := range buckets {
		if len(group) >= 2 {
			sizes = append(sizes, n)
		}
	}
	sort.Ints(sizes)

	workers := ctx.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	type bucketOut struct {
		pairs     []similarPair
		evaluated int
	}
	outs := make([]bucketOut, len(sizes))
	p := pool.New().WithMaxGoroutines(workers)
	for bi, n := range sizes {
		bi, n := bi, n
		group := buckets[n]
		p.Go(func() {
			var out bucketOut
			for i := 0; i < len(group); i++ {
				ci := group[i].ValidPoints()
				for j := i + 1; j < len(group); j++ {
					cj := group[j].ValidPoints()
					out.evaluated++
					mean := meanPointDistance(ci, cj)
					if mean >= threshold {
						continue
					}
					score := 1 - mean/threshold
					out.pairs = append(out.pairs, similarPair{
						Shape1:      group[i].ID,
						Shape2:      group[j].ID,
						MeanDistDeg: round(mean, 6),
						Score:       round(score, 4),
						PointCount:  n,
						Level:       similarityLevel(score),
					})
				}
			}
			outs[bi] = out
		})
	}
	p.Wait()

	var pairs []similarPair
	evaluated := 0
	for _, out := range outs {
		pairs = append(pairs, out.pairs...)
		evaluated += out.evaluated
	}

	levelCounts := map[string]int{"very_high": 0, "high": 0, "medium": 0}
	seen := make(map[string]bool)
	var affected []string
	for _, pr := range pairs {
		levelCounts[pr.Level]++
		for _, id := range []string{pr.Shape1, pr.Shape2} {
			if !seen[id] {
				seen[id] = true
				affected = append(affected, id)
			}
		}
	}

	status := StatusSuccess
	if levelCounts["very_high"] > 0 {
		status = StatusWarning
	}

	var findings []Finding
	if len(pairs) > 0 {
		findings = append(findings, Finding{
			Kind:        "similar_shapes",
			Field:       "shape_geometry",
			Count:       len(pairs),
			AffectedIDs: capIDs(affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d near-identical shape pairs (mean offset under %g degrees)", len(pairs), threshold),
		})
	}

	rate := 0.0
	if totalComparisons > 0 {
		rate = round(float64(len(pairs))/float64(totalComparisons)*100, 2)
	}
	metrics := map[string]any{
		"total_shapes":       ctx.Store.Len(),
		"shapes_with_points": withPoints,
		"total_comparisons":  totalComparisons,
		"evaluated":          evaluated,
		"similar_count":      len(pairs),
		"similarity_rate":    rate,
		"threshold_deg":      threshold,
		"pairs":              pairs,
	}
	if len(pairs) > 0 {
		most := pairs[0]
		var scoreSum float64
		for _, pr := range pairs {
			scoreSum += pr.Score
			if pr.MeanDistDeg < most.MeanDistDeg {
				most = pr
			}
		}
		metrics["analysis"] = map[string]any{
			"very_high_pairs":   levelCounts["very_high"],
			"high_pairs":        levelCounts["high"],
			"medium_pairs":      levelCounts["medium"],
			"most_similar_pair": most,
			"avg_score":         round(scoreSum/float64(len(pairs)), 4),
		}
	}

	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
