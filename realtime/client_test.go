package realtime_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/realtime"
)

func TestFetchEmptyURL(t *testing.T) {
	c := realtime.NewClient()

	fm, err := c.Fetch("")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fm != nil {
		t.Error("expected nil message for empty url")
	}

	vps, err := c.FetchVehiclePositions("")
	if err != nil {
		t.Fatalf("FetchVehiclePositions failed: %v", err)
	}
	if vps != nil {
		t.Error("expected nil positions for empty url")
	}
}

func TestFetchVehiclePositions(t *testing.T) {
	feed := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfsrtpb.FeedEntity{
			{
				Id: proto.String("1"),
				Vehicle: &gtfsrtpb.VehiclePosition{
					Trip:    &gtfsrtpb.TripDescriptor{TripId: proto.String("trip-1")},
					Vehicle: &gtfsrtpb.VehicleDescriptor{Id: proto.String("bus-1")},
					Position: &gtfsrtpb.Position{
						Latitude:  proto.Float32(59.91),
						Longitude: proto.Float32(10.75),
					},
					Timestamp: proto.Uint64(1724400000),
				},
			},
			{
				// No trip or vehicle descriptor; still a usable position.
				Id: proto.String("2"),
				Vehicle: &gtfsrtpb.VehiclePosition{
					Position: &gtfsrtpb.Position{
						Latitude:  proto.Float32(60.0),
						Longitude: proto.Float32(11.0),
					},
				},
			},
		},
	}
	payload, err := proto.Marshal(feed)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer ts.Close()

	vps, err := realtime.NewClient().FetchVehiclePositions(ts.URL)
	if err != nil {
		t.Fatalf("FetchVehiclePositions failed: %v", err)
	}
	if len(vps) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(vps))
	}

	first := vps[0]
	if first.VehicleID != "bus-1" || first.TripID != "trip-1" {
		t.Errorf("unexpected ids: %+v", first)
	}
	if first.Lat < 59.9 || first.Lat > 59.92 {
		t.Errorf("unexpected latitude %f", first.Lat)
	}
	if first.Timestamp != 1724400000 {
		t.Errorf("expected timestamp 1724400000, got %d", first.Timestamp)
	}

	second := vps[1]
	if second.VehicleID != "" || second.TripID != "" {
		t.Errorf("expected empty ids, got %+v", second)
	}
}

func TestFetchErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		_, err := realtime.NewClient().Fetch(ts.URL)
		if err == nil {
			t.Fatal("expected an error")
		}
		if !strings.Contains(err.Error(), "HTTP 500") {
			t.Errorf("expected HTTP 500 in error, got %v", err)
		}
	})

	t.Run("undecodable payload", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not a protobuf"))
		}))
		defer ts.Close()

		_, err := realtime.NewClient().Fetch(ts.URL)
		if err == nil {
			t.Fatal("expected an error")
		}
		if !strings.Contains(err.Error(), "failed to decode") {
			t.Errorf("expected decode error, got %v", err)
		}
	})
}

func TestExtractVehiclePositions(t *testing.T) {
	fm := &gtfsrtpb.FeedMessage{
		Entity: []*gtfsrtpb.FeedEntity{
			{Id: proto.String("no-vehicle")},
			{
				Id:      proto.String("no-position"),
				Vehicle: &gtfsrtpb.VehiclePosition{},
			},
			{
				Id: proto.String("no-longitude"),
				Vehicle: &gtfsrtpb.VehiclePosition{
					Position: &gtfsrtpb.Position{Latitude: proto.Float32(1)},
				},
			},
			{
				Id: proto.String("ok"),
				Vehicle: &gtfsrtpb.VehiclePosition{
					Position: &gtfsrtpb.Position{
						Latitude:  proto.Float32(1),
						Longitude: proto.Float32(2),
					},
				},
			},
		},
	}

	vps := realtime.ExtractVehiclePositions(fm)
	if len(vps) != 1 {
		t.Fatalf("expected 1 usable vehicle, got %d", len(vps))
	}
	if vps[0].Lat != 1 || vps[0].Lon != 2 {
		t.Errorf("unexpected coordinates: %+v", vps[0])
	}
}
