package realtime

import (
	"fmt"
	"io"
	"net/http"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// VehiclePosition is one observed vehicle from a GTFS-RT vehicle
// positions feed, reduced to the fields conformance checking needs.
type VehiclePosition struct {
	VehicleID string
	TripID    string
	Lat       float64
	Lon       float64
	Timestamp int64
}

// Client fetches and decodes GTFS-RT feeds over HTTP.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new GTFS-RT HTTP client
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// Fetch fetches a GTFS-RT feed from a URL and returns the decoded message.
// Returns nil if url is empty (allows optional feeds).
func (c *Client) Fetch(url string) (*gtfsrtpb.FeedMessage, error) {
	if url == "" {
		return nil, nil
	}

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}

	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return &fm, nil
}

// FetchVehiclePositions fetches and decodes a vehicle positions feed.
// Entities without a position are skipped; a vehicle or trip id may be
// absent and is left empty.
func (c *Client) FetchVehiclePositions(url string) ([]VehiclePosition, error) {
	fm, err := c.Fetch(url)
	if err != nil {
		return nil, fmt.Errorf("vehicle positions: %w", err)
	}
	if fm == nil {
		return nil, nil
	}
	return ExtractVehiclePositions(fm), nil
}

// ExtractVehiclePositions pulls vehicle observations out of a decoded
// feed message.
func ExtractVehiclePositions(fm *gtfsrtpb.FeedMessage) []VehiclePosition {
	out := make([]VehiclePosition, 0, len(fm.Entity))
	for _, e := range fm.Entity {
		v := e.Vehicle
		if v == nil || v.Position == nil {
			continue
		}
		if v.Position.Latitude == nil || v.Position.Longitude == nil {
			continue
		}
		vp := VehiclePosition{
			Lat: float64(*v.Position.Latitude),
			Lon: float64(*v.Position.Longitude),
		}
		if v.Vehicle != nil && v.Vehicle.Id != nil {
			vp.VehicleID = *v.Vehicle.Id
		}
		if v.Trip != nil && v.Trip.TripId != nil {
			vp.TripID = *v.Trip.TripId
		}
		if v.Timestamp != nil {
			vp.Timestamp = int64(*v.Timestamp)
		}
		out = append(out, vp)
	}
	return out
}
