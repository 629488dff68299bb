package gtfs

// ShapePoint is one row of a shapes table. Lat/Lon/Sequence carry a
// presence flag because feeds routinely ship blank or unparsable cells;
// a missing value is a reportable condition, not a load failure.
type ShapePoint struct {
	ShapeID     string
	Sequence    int
	HasSequence bool
	Lat         float64
	Lon         float64
	HasLat      bool
	HasLon      bool
}

// LatInBounds reports whether the latitude is present and within [-90, 90].
func (p ShapePoint) LatInBounds() bool {
	return p.HasLat && p.Lat >= -90 && p.Lat <= 90
}

// LonInBounds reports whether the longitude is present and within [-180, 180].
func (p ShapePoint) LonInBounds() bool {
	return p.HasLon && p.Lon >= -180 && p.Lon <= 180
}

// CoordsValid reports whether both coordinates are present and in bounds.
// Only points passing this filter participate in geometry math.
func (p ShapePoint) CoordsValid() bool {
	return p.LatInBounds() && p.LonInBounds()
}

// Shape is one shape_id's ordered point sequence. Points holds every loaded
// row in canonical order: ascending sequence with input order preserved for
// ties and for points without a sequence value. The valid subsequence is
// precomputed once at build time.
type Shape struct {
	ID     string
	Points []ShapePoint

	valid []ShapePoint
}

// ValidPoints returns the points with usable coordinates, in canonical
// order. The slice is shared; callers must not modify it.
func (s *Shape) ValidPoints() []ShapePoint {
	return s.valid
}
