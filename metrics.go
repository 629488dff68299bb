package shapeaudit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/audit"
)

var (
	auditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shapeaudit",
		Name:      "audits_total",
		Help:      "Total audit runs, by overall status",
	}, []string{"status"})

	auditDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shapeaudit",
		Name:      "audit_duration_seconds",
		Help:      "Wall time of a full audit run, loading included",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	shapesAudited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shapeaudit",
		Name:      "shapes_audited_total",
		Help:      "Total shapes processed across audit runs",
	})

	findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shapeaudit",
		Name:      "findings_total",
		Help:      "Findings reported, by check",
	}, []string{"check"})

	reportCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shapeaudit",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Audit requests served from the report cache",
	})

	reportCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shapeaudit",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Audit requests that triggered a fresh run",
	})
)

// observeAudit records the outcome of one audit run.
func observeAudit(r *audit.Report, dur time.Duration) {
	auditsTotal.WithLabelValues(string(r.Summary.Overall)).Inc()
	auditDuration.Observe(dur.Seconds())
	shapesAudited.Add(float64(r.Shapes))
	for _, c := range r.Checks {
		if n := len(c.Findings); n > 0 {
			findingsTotal.WithLabelValues(c.Check).Add(float64(n))
		}
	}
}
