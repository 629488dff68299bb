package config

import "github.com/theoremus-urban-solutions/gtfs-shape-audit/audit"

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
	// CacheTTLSec is how long a computed report is served before the
	// feed is re-audited.
	CacheTTLSec int `yaml:"cacheTTLSec" validate:"gte=0"`
}

// FeedConfig names the GTFS dataset to audit. Source accepts a local zip,
// an unzipped feed directory, or an HTTP(S) URL serving a zip.
type FeedConfig struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
}

// RealtimeConfig contains the optional GTFS-Realtime feed used by the
// realtime-conformance check. An empty URL skips the check.
type RealtimeConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Feed     FeedConfig     `yaml:"feed"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Checks   audit.Config   `yaml:"checks"`
	LogLevel string         `yaml:"logLevel" validate:"omitempty,oneof=trace debug info warn error"`
}
