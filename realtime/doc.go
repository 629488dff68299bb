// Package realtime fetches GTFS-Realtime vehicle positions and measures
// how far each vehicle sits from the shape its trip is scheduled on.
//
// The Client decodes a Vehicle Positions protobuf feed over HTTP;
// MatchVehicles joins the observations to shapes through the trip to shape
// mapping and projects each position onto the shape polyline. The engine
// treats the feed as optional: an empty URL disables fetching entirely.
package realtime
