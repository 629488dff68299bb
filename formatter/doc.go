// Package formatter serializes audit reports for the CLI and the HTTP API.
//
// This package is organized into:
// - wrapper.go: format dispatch and report filtering
// - json.go: JSON serialization
// - yaml.go: YAML serialization
package formatter
