package audit

import (
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/realtime"
)

// Context carries the immutable inputs of one audit run. The store is shared
// across workers without locking; nothing here is mutated once the run
// starts.
type Context struct {
	Store      *gtfs.ShapeStore
	TripShapes map[string]string
	Config     Config

	// Vehicles holds realtime positions for the conformance check.
	// HasRealtime distinguishes an unconfigured realtime feed from a
	// configured feed that returned no vehicles.
	Vehicles    []realtime.VehiclePosition
	HasRealtime bool
}
