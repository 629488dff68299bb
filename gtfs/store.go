package gtfs

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingShapeID is returned when a shapes dataset carries no usable
// shape_id column. This is the only structural failure in the engine: a
// dataset that cannot identify its shapes cannot be audited at all.
var ErrMissingShapeID = errors.New("gtfs: shapes data has no shape_id")

// ShapeStore holds every shape of one dataset as ordered point sequences.
// It is built once per audit run and read-only afterwards, so it is safe
// to share across goroutines without locking. Stores are never persisted;
// each run rebuilds from the source rows.
type ShapeStore struct {
	shapes      map[string]*Shape
	ids         []string // ascending, for deterministic iteration
	totalPoints int
}

// BuildShapeStore groups rows by shape_id and sorts each group by ascending
// sequence. The sort is stable: rows with equal sequence values, and rows
// without a sequence value at all, keep their input order. Duplicate
// sequence values are exactly what the sequence check reports later, so
// they must survive the build untouched.
//
// Any row with an empty shape_id fails the whole build with
// ErrMissingShapeID.
func BuildShapeStore(rows []ShapePoint) (*ShapeStore, error) {
	grouped := map[string][]ShapePoint{}
	for i, row := range rows {
		if row.ShapeID == "" {
			return nil, fmt.Errorf("row %d: %w", i, ErrMissingShapeID)
		}
		grouped[row.ShapeID] = append(grouped[row.ShapeID], row)
	}

	store := &ShapeStore{
		shapes: make(map[string]*Shape, len(grouped)),
		ids:    make([]string, 0, len(grouped)),
	}
	for id, pts := range grouped {
		// Points without a sequence value sort after sequenced ones,
		// keeping their relative input order.
		sort.SliceStable(pts, func(i, j int) bool {
			if pts[i].HasSequence != pts[j].HasSequence {
				return pts[i].HasSequence
			}
			if !pts[i].HasSequence {
				return false
			}
			return pts[i].Sequence < pts[j].Sequence
		})
		shape := &Shape{ID: id, Points: pts}
		for _, p := range pts {
			if p.CoordsValid() {
				shape.valid = append(shape.valid, p)
			}
		}
		store.shapes[id] = shape
		store.ids = append(store.ids, id)
		store.totalPoints += len(pts)
	}
	sort.Strings(store.ids)
	return store, nil
}

// Get returns the shape for an id, or nil if unknown.
func (s *ShapeStore) Get(id string) *Shape {
	return s.shapes[id]
}

// IDs returns all shape ids in ascending order. The slice is shared;
// callers must not modify it.
func (s *ShapeStore) IDs() []string {
	return s.ids
}

// Shapes returns all shapes in ascending id order.
func (s *ShapeStore) Shapes() []*Shape {
	out := make([]*Shape, len(s.ids))
	for i, id := range s.ids {
		out[i] = s.shapes[id]
	}
	return out
}

// Len returns the number of distinct shapes.
func (s *ShapeStore) Len() int { return len(s.shapes) }

// TotalPoints returns the number of loaded points across all shapes,
// including points with missing or out-of-bounds coordinates.
func (s *ShapeStore) TotalPoints() int { return s.totalPoints }
