package shapeaudit

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/audit"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/config"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/realtime"
)

// ErrNoFeedSource is returned by Audit when neither the config file nor the
// CLI named a feed to load.
var ErrNoFeedSource = errors.New("no feed source configured")

// Engine wires the feed loader, the optional realtime client, and the check
// runner into one reusable pipeline. Each Audit call loads the feed fresh,
// so an engine can be shared by concurrent callers.
type Engine struct {
	cfg config.AppConfig
	reg *audit.Registry
	rt  *realtime.Client
	log zerolog.Logger
}

// NewEngine builds an engine over the default check registry.
func NewEngine(cfg config.AppConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		reg: audit.DefaultRegistry(),
		rt:  realtime.NewClient(),
		log: logger,
	}
}

// Audit loads the configured feed, gathers vehicle positions when a
// realtime URL is set, and runs every registered check. A realtime feed
// that cannot be fetched downgrades to a static-only audit instead of
// failing the run.
func (e *Engine) Audit() (*audit.Report, error) {
	if e.cfg.Feed.Source == "" {
		return nil, ErrNoFeedSource
	}
	start := time.Now()

	feed, err := gtfs.LoadFeed(e.cfg.Feed.Source)
	if err != nil {
		return nil, err
	}
	store, err := gtfs.BuildShapeStore(feed.Rows)
	if err != nil {
		return nil, err
	}

	ctx := &audit.Context{
		Store:      store,
		TripShapes: feed.TripShapes,
		Config:     e.cfg.Checks,
	}
	if url := e.cfg.Realtime.VehiclePositionsURL; url != "" {
		vehicles, err := e.rt.FetchVehiclePositions(url)
		if err != nil {
			e.log.Warn().Err(err).Msg("realtime feed unavailable, auditing static data only")
		} else {
			ctx.Vehicles = vehicles
			ctx.HasRealtime = true
		}
	}

	name := e.cfg.Feed.Name
	if name == "" {
		name = e.cfg.Feed.Source
	}
	report := audit.NewRunner(e.reg, e.log).Run(name, ctx)
	observeAudit(report, time.Since(start))
	return report, nil
}
