package realtime

import (
	"math"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/geo"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/gtfs"
)

// Deviation is one vehicle observation matched against its trip's shape:
// the distance from the reported position to the nearest point on the
// shape polyline.
type Deviation struct {
	VehicleID    string
	TripID       string
	ShapeID      string
	Lat          float64
	Lon          float64
	DeviationM   float64
	SegmentIndex int
}

// DistanceToShape returns the minimum distance in meters from a coordinate
// to a shape polyline, along with the index of the nearest segment. The
// nearest segment is found by projection in degree space; the reported
// distance is the haversine distance to the projected point. Returns false
// when the shape has fewer than two usable points.
func DistanceToShape(lat, lon float64, pts []gtfs.ShapePoint) (float64, int, bool) {
	if len(pts) < 2 {
		return 0, 0, false
	}

	minDist := math.MaxFloat64
	bestSegIdx := 0
	bestLat := 0.0
	bestLon := 0.0

	for i := 0; i < len(pts)-1; i++ {
		c1 := pts[i]
		c2 := pts[i+1]

		// Project vehicle onto segment between c1 and c2
		vx := c2.Lon - c1.Lon
		vy := c2.Lat - c1.Lat
		wx := lon - c1.Lon
		wy := lat - c1.Lat

		denom := vx*vx + vy*vy
		t := 0.0
		if denom > 0 {
			t = (wx*vx + wy*vy) / denom
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
		}

		px := c1.Lon + t*vx
		py := c1.Lat + t*vy

		dx := lon - px
		dy := lat - py
		dist := dx*dx + dy*dy

		if dist < minDist {
			minDist = dist
			bestSegIdx = i
			bestLat = py
			bestLon = px
		}
	}

	return geo.HaversineMeters(lat, lon, bestLat, bestLon), bestSegIdx, true
}

// MatchVehicles projects each vehicle onto the shape serving its trip and
// measures how far off the shape it is. Vehicles without a trip id,
// without a trip-to-shape mapping, or whose shape has too few usable
// points are returned as unmatched.
func MatchVehicles(vehicles []VehiclePosition, store *gtfs.ShapeStore, tripShapes map[string]string) ([]Deviation, []VehiclePosition) {
	var (
		matched   []Deviation
		unmatched []VehiclePosition
	)
	for _, v := range vehicles {
		shapeID, ok := tripShapes[v.TripID]
		if v.TripID == "" || !ok {
			unmatched = append(unmatched, v)
			continue
		}
		shape := store.Get(shapeID)
		if shape == nil {
			unmatched = append(unmatched, v)
			continue
		}
		distM, segIdx, ok := DistanceToShape(v.Lat, v.Lon, shape.ValidPoints())
		if !ok {
			unmatched = append(unmatched, v)
			continue
		}
		matched = append(matched, Deviation{
			VehicleID:    v.VehicleID,
			TripID:       v.TripID,
			ShapeID:      shapeID,
			Lat:          v.Lat,
			Lon:          v.Lon,
			DeviationM:   distM,
			SegmentIndex: segIdx,
		})
	}
	return matched, unmatched
}
