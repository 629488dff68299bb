package formatter

import (
	"encoding/json"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/audit"
)

// JSON serializes a report as indented JSON.
func JSON(r *audit.Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
