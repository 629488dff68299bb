package shapeaudit

import (
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/audit"
)

// reportCache memoizes the audit report so repeated API calls do not
// re-audit an unchanged feed. A single flight at a time: concurrent
// requests during a run block and then share its result.
type reportCache struct {
	engine *Engine
	ttl    time.Duration

	mu        sync.Mutex
	report    *audit.Report
	refreshed time.Time
}

func newReportCache(engine *Engine, ttl time.Duration) *reportCache {
	return &reportCache{engine: engine, ttl: ttl}
}

// Get returns the cached report, re-auditing when the entry is stale or
// force is set.
func (rc *reportCache) Get(force bool) (*audit.Report, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if !force && rc.report != nil && time.Since(rc.refreshed) < rc.ttl {
		reportCacheHits.Inc()
		return rc.report, nil
	}

	reportCacheMisses.Inc()
	report, err := rc.engine.Audit()
	if err != nil {
		return nil, err
	}
	rc.report = report
	rc.refreshed = time.Now()
	return report, nil
}

// Peek returns the cached report without triggering an audit, or nil when
// nothing has been audited yet.
func (rc *reportCache) Peek() *audit.Report {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.report
}
