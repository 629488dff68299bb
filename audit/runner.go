package audit

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/geo"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

// Runner executes a registry of checks over one dataset and assembles the
// report.
type Runner struct {
	reg *Registry
	log zerolog.Logger
}

func NewRunner(reg *Registry, log zerolog.Logger) *Runner {
	return &Runner{reg: reg, log: log}
}

// Run executes every registered check. Accumulator checks share a single
// pass over the store: the shapes are split into contiguous chunks, each
// worker observes its chunk with worker-local accumulators, and the chunk
// results are merged in chunk order, so reported ordering does not depend on
// goroutine scheduling. Global checks run afterwards on the calling
// goroutine.
func (r *Runner) Run(feed string, ctx *Context) *Report {
	start := time.Now()
	checks := r.reg.Checks()
	results := make([]CheckResult, len(checks))

	var accChecks []int
	for i, c := range checks {
		if c.NewAccumulator != nil {
			accChecks = append(accChecks, i)
		}
	}

	shapes := ctx.Store.Shapes()
	workers := ctx.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	newSet := func() []Accumulator {
		accs := make([]Accumulator, len(accChecks))
		for j, i := range accChecks {
			accs[j] = checks[i].NewAccumulator(ctx.Config)
		}
		return accs
	}

	chunks := chunkShapes(shapes, workers)
	sets := make([][]Accumulator, len(chunks))
	p := pool.New().WithMaxGoroutines(workers)
	for ci, chunk := range chunks {
		ci, chunk := ci, chunk
		p.Go(func() {
			accs := newSet()
			for _, sh := range chunk {
				segs := segmentLengths(sh)
				for _, acc := range accs {
					acc.Observe(sh, segs)
				}
			}
			sets[ci] = accs
		})
	}
	p.Wait()

	merged := newSet()
	for _, accs := range sets {
		for j := range merged {
			merged[j].Merge(accs[j])
		}
	}
	for j, i := range accChecks {
		res := merged[j].Finalize(ctx)
		res.Check = checks[i].Name
		res.Category = checks[i].Category
		results[i] = res
		r.log.Debug().
			Str("check", res.Check).
			Str("status", string(res.Status)).
			Int("findings", len(res.Findings)).
			Msg("check finished")
	}

	for i, c := range checks {
		if c.Global == nil {
			continue
		}
		t := time.Now()
		res := c.Global(ctx)
		res.Check = c.Name
		res.Category = c.Category
		results[i] = res
		r.log.Debug().
			Str("check", res.Check).
			Str("status", string(res.Status)).
			Int("findings", len(res.Findings)).
			Dur("dur", time.Since(t)).
			Msg("check finished")
	}

	report := &Report{
		Feed:        feed,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Shapes:      ctx.Store.Len(),
		Points:      ctx.Store.TotalPoints(),
		Checks:      results,
		Summary:     Summarize(results),
	}
	r.log.Info().
		Str("feed", feed).
		Int("shapes", report.Shapes).
		Int("points", report.Points).
		Str("overall", string(report.Summary.Overall)).
		Dur("dur", time.Since(start)).
		Msg("audit complete")
	return report
}

// chunkShapes splits shapes into at most n contiguous chunks of near-equal
// size.
func chunkShapes(shapes []*gtfs.Shape, n int) [][]*gtfs.Shape {
	if len(shapes) == 0 || n < 1 {
		return nil
	}
	if n > len(shapes) {
		n = len(shapes)
	}
	size := (len(shapes) + n - 1) / n
	chunks := make([][]*gtfs.Shape, 0, n)
	for start := 0; start < len(shapes); start += size {
		end := min(start+size, len(shapes))
		chunks = append(chunks, shapes[start:end])
	}
	return chunks
}

// segmentLengths returns the haversine length in meters of each segment
// between consecutive valid points, or nil when the shape has fewer than two
// valid points.
func segmentLengths(sh *gtfs.Shape) []float64 {
	pts := sh.ValidPoints()
	if len(pts) < 2 {
		return nil
	}
	segs := make([]float64, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		segs[i-1] = geo.HaversineMeters(pts[i-1].Lat, pts[i-1].Lon, pts[i].Lat, pts[i].Lon)
	}
	return segs
}
