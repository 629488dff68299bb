package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FeedData is the raw material an audit run consumes: shape point rows
// plus the trip-to-shape mapping the realtime conformance check needs.
type FeedData struct {
	Rows       []ShapePoint
	TripShapes map[string]string // trip_id -> shape_id
}

// LoadFeed reads shapes.txt (and trips.txt when present) from an HTTP(S)
// URL serving a GTFS zip, a local zip file, or an unzipped feed directory.
func LoadFeed(source string) (*FeedData, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return loadFromURL(source)
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("gtfs: stat %s: %w", source, err)
	}
	if info.IsDir() {
		return loadFromDir(source)
	}
	return loadFromZip(source)
}

func loadFromURL(url string) (*FeedData, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("gtfs: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gtfs: HTTP %d from %s", resp.StatusCode, url)
	}
	tmp, err := os.CreateTemp("", "gtfs-*.zip")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	return loadFromZip(tmp.Name())
}

func loadFromZip(path string) (*FeedData, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("gtfs: open %s: %w", path, err)
	}
	defer zr.Close()

	data := &FeedData{TripShapes: map[string]string{}}
	sawShapes := false
	for _, f := range zr.File {
		name := strings.ToLower(filepath.Base(f.Name))
		if name != "shapes.txt" && name != "trips.txt" {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, err
		}
		err = data.consumeCSV(name, r)
		_ = r.Close()
		if err != nil {
			return nil, err
		}
		if name == "shapes.txt" {
			sawShapes = true
		}
	}
	if !sawShapes {
		return nil, fmt.Errorf("gtfs: %s has no shapes.txt", path)
	}
	return data, nil
}

func loadFromDir(dir string) (*FeedData, error) {
	data := &FeedData{TripShapes: map[string]string{}}
	for _, name := range []string{"shapes.txt", "trips.txt"} {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) && name == "trips.txt" {
				continue
			}
			return nil, fmt.Errorf("gtfs: open %s: %w", name, err)
		}
		err = data.consumeCSV(name, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (d *FeedData) consumeCSV(name string, r io.Reader) error {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	rec, err := csvr.ReadAll()
	if err != nil {
		return fmt.Errorf("gtfs: read %s: %w", name, err)
	}
	if len(rec) == 0 {
		return nil
	}
	head := rec[0]
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	cell := func(row []string, i int) string {
		if i >= 0 && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	switch name {
	case "shapes.txt":
		sh := idx("shape_id")
		latIdx := idx("shape_pt_lat")
		lonIdx := idx("shape_pt_lon")
		seqIdx := idx("shape_pt_sequence")
		if sh < 0 {
			return ErrMissingShapeID
		}
		for _, row := range rec[1:] {
			p := ShapePoint{ShapeID: cell(row, sh)}
			if v := cell(row, latIdx); v != "" {
				if lat, err := strconv.ParseFloat(v, 64); err == nil {
					p.Lat, p.HasLat = lat, true
				}
			}
			if v := cell(row, lonIdx); v != "" {
				if lon, err := strconv.ParseFloat(v, 64); err == nil {
					p.Lon, p.HasLon = lon, true
				}
			}
			if v := cell(row, seqIdx); v != "" {
				if seq, err := strconv.Atoi(v); err == nil {
					p.Sequence, p.HasSequence = seq, true
				}
			}
			d.Rows = append(d.Rows, p)
		}
	case "trips.txt":
		tID := idx("trip_id")
		sh := idx("shape_id")
		if tID < 0 || sh < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			trip := cell(row, tID)
			shape := cell(row, sh)
			if trip != "" && shape != "" {
				d.TripShapes[trip] = shape
			}
		}
	}
	return nil
}
