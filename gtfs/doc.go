/*
Package gtfs loads shape geometry from GTFS feeds and holds it in memory
for auditing.

The package separates ingestion from representation. LoadFeed reads
shapes.txt (and trips.txt for the trip-to-shape mapping) from a zip file,
an unzipped directory, or an HTTP URL, producing raw ShapePoint rows.
BuildShapeStore then groups the rows by shape_id and sorts each shape by
ascending point sequence. Callers with their own ingestion can skip
LoadFeed entirely and hand BuildShapeStore any row slice.

# Basic Usage

	feed, err := gtfs.LoadFeed("gtfs.zip")
	if err != nil {
	    log.Fatal().Err(err).Msg("load feed")
	}
	store, err := gtfs.BuildShapeStore(feed.Rows)
	if err != nil {
	    log.Fatal().Err(err).Msg("build store")
	}
	for _, shape := range store.Shapes() {
	    // shape.Points: every loaded row, canonical order
	    // shape.ValidPoints(): rows with usable coordinates
	}

# Data Quality Stance

Loading is deliberately tolerant. Blank or unparsable coordinates and
sequence values become points with the matching Has flag unset; the audit
checks count and report them. The only fatal condition is a dataset with
no shape_id at all (ErrMissingShapeID), because such data cannot be
grouped into shapes.

# Ordering

Within one shape, points sort by ascending shape_pt_sequence. The sort is
stable: equal sequence values keep their file order (the sequence check
reports them), and points with no sequence value at all sort after the
sequenced ones in file order.

The store is immutable after build and safe for concurrent readers. It
lives for one audit run; nothing is cached or persisted across runs.
*/
package gtfs
