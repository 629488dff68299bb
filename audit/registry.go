package audit

import (
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

// Check categories, used for grouping in reports.
const (
	CategoryQuality    = "quality"
	CategoryGeometry   = "geometry"
	CategoryStatistics = "statistics"
	CategoryRealtime   = "realtime"
)

// Accumulator collects per-shape observations worker-locally. Observe is
// called once per shape together with the lengths, in meters, of the
// segments between the shape's consecutive valid points (nil when the shape
// has fewer than two). Merge folds another accumulator of the same check
// into the receiver; the runner merges in shape order, so appended
// observations stay ordered. Finalize builds the result once merging is
// done.
type Accumulator interface {
	Observe(shape *gtfs.Shape, segments []float64)
	Merge(other Accumulator)
	Finalize(ctx *Context) CheckResult
}

// Check describes one registered check. Exactly one of NewAccumulator and
// Global is set: accumulator checks observe each shape independently and are
// fanned out across the worker pool, Global checks run once over the whole
// dataset.
type Check struct {
	Name           string
	Category       string
	NewAccumulator func(cfg Config) Accumulator
	Global         func(ctx *Context) CheckResult
}

// Registry is an ordered table of checks. Checks run and report in
// registration order.
type Registry struct {
	names  []string
	byName map[string]Check
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Check)}
}

// Register adds a check to the table. It panics on an empty name, a
// duplicate name, or a descriptor that does not set exactly one of
// NewAccumulator and Global; all of these are programming errors.
func (r *Registry) Register(c Check) {
	if c.Name == "" {
		panic("audit: register check with empty name")
	}
	if _, ok := r.byName[c.Name]; ok {
		panic(fmt.Sprintf("audit: check %q already registered", c.Name))
	}
	if (c.NewAccumulator == nil) == (c.Global == nil) {
		panic(fmt.Sprintf("audit: check %q must set exactly one of NewAccumulator and Global", c.Name))
	}
	r.names = append(r.names, c.Name)
	r.byName[c.Name] = c
}

// Lookup returns the check registered under name.
func (r *Registry) Lookup(name string) (Check, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Checks returns the registered checks in registration order.
func (r *Registry) Checks() []Check {
	out := make([]Check, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.byName[name])
	}
	return out
}

func (r *Registry) Len() int { return len(r.names) }

// DefaultRegistry builds the full table of built-in checks.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Check{Name: "bounds", Category: CategoryQuality, NewAccumulator: newBoundsAcc})
	r.Register(Check{Name: "sequence", Category: CategoryQuality, NewAccumulator: newSequenceAcc})
	r.Register(Check{Name: "duplicate-points", Category: CategoryQuality, NewAccumulator: newDuplicatesAcc})
	r.Register(Check{Name: "shape-lengths", Category: CategoryStatistics, NewAccumulator: newLengthsAcc})
	r.Register(Check{Name: "closed-loops", Category: CategoryGeometry, NewAccumulator: newLoopsAcc})
	r.Register(Check{Name: "large-jumps", Category: CategoryGeometry, NewAccumulator: newJumpsAcc})
	r.Register(Check{Name: "backtracking", Category: CategoryGeometry, NewAccumulator: newBacktrackAcc})
	r.Register(Check{Name: "similarity", Category: CategoryGeometry, Global: runSimilarity})
	r.Register(Check{Name: "consecutive-duplicates", Category: CategoryQuality, NewAccumulator: newConsecutiveAcc})
	r.Register(Check{Name: "isolated-points", Category: CategoryGeometry, NewAccumulator: newIsolationAcc})
	r.Register(Check{Name: "linearity", Category: CategoryStatistics, NewAccumulator: newLinearityAcc})
	r.Register(Check{Name: "minimum-spacing", Category: CategoryGeometry, NewAccumulator: newMinSpacingAcc})
	r.Register(Check{Name: "uniform-spacing", Category: CategoryGeometry, NewAccumulator: newUniformSpacingAcc})
	r.Register(Check{Name: "direction-changes", Category: CategoryGeometry, NewAccumulator: newDirectionAcc})
	r.Register(Check{Name: "point-density", Category: CategoryStatistics, NewAccumulator: newDensityAcc})
	r.Register(Check{Name: "realtime-conformance", Category: CategoryRealtime, Global: runRealtimeConformance})
	return r
}
