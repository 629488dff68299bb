package audit

import (
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/realtime"
)

type deviationDetail struct {
	VehicleID  string  `json:"vehicle_id" yaml:"vehicle_id"`
	TripID     string  `json:"trip_id" yaml:"trip_id"`
	ShapeID    string  `json:"shape_id" yaml:"shape_id"`
	Lat        float64 `json:"lat" yaml:"lat"`
	Lon        float64 `json:"lon" yaml:"lon"`
	DeviationM float64 `json:"deviation_m" yaml:"deviation_m"`
}

// runRealtimeConformance measures how far live vehicles sit from the shapes
// their trips are scheduled on. Without a vehicle positions feed the check
// is skipped rather than failed; a static-only audit is a normal mode.
func runRealtimeConformance(ctx *Context) CheckResult {
	if !ctx.HasRealtime {
		return CheckResult{
			Status: StatusSuccess,
			Metrics: map[string]any{
				"skipped": true,
				"reason":  "no vehicle positions feed configured",
			},
		}
	}

	matched, unmatched := realtime.MatchVehicles(ctx.Vehicles, ctx.Store, ctx.TripShapes)
	threshold := ctx.Config.MaxDeviationM

	var (
		offShape []deviationDetail
		affected []string
		sum      float64
		maxDev   float64
		worst    deviationDetail
	)
	for _, d := range matched {
		sum += d.DeviationM
		det := deviationDetail{
			VehicleID:  d.VehicleID,
			TripID:     d.TripID,
			ShapeID:    d.ShapeID,
			Lat:        d.Lat,
			Lon:        d.Lon,
			DeviationM: round(d.DeviationM, 2),
		}
		if d.DeviationM > maxDev {
			maxDev = d.DeviationM
			worst = det
		}
		if d.DeviationM <= threshold {
			continue
		}
		offShape = append(offShape, det)
		id := d.VehicleID
		if id == "" {
			id = d.TripID
		}
		affected = append(affected, id)
	}

	// GPS positions are noisy; off-shape vehicles warn rather than fail.
	status := StatusSuccess
	var findings []Finding
	if len(offShape) > 0 {
		status = StatusWarning
		findings = append(findings, Finding{
			Kind:        "shape_deviation",
			Field:       "vehicle_position",
			Count:       len(offShape),
			AffectedIDs: capIDs(affected, maxAffectedIDs),
			Message:     fmt.Sprintf("%d of %d matched vehicles more than %.0fm off their shape", len(offShape), len(matched), threshold),
		})
	}

	metrics := map[string]any{
		"vehicles":         len(ctx.Vehicles),
		"matched":          len(matched),
		"unmatched":        len(unmatched),
		"off_shape":        len(offShape),
		"conformance_rate": pctOf(len(matched)-len(offShape), len(matched)),
		"threshold_m":      threshold,
	}
	if len(matched) > 0 {
		metrics["avg_deviation_m"] = round(sum/float64(len(matched)), 2)
		metrics["max_deviation_m"] = round(maxDev, 2)
		metrics["worst_vehicle"] = worst
	}
	if len(offShape) > 0 {
		top := offShape
		if len(top) > 20 {
			top = top[:20]
		}
		metrics["deviations"] = top
	}

	return CheckResult{Status: status, Findings: findings, Metrics: metrics}
}
