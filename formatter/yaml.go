package formatter

import (
	"gopkg.in/yaml.v3"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/audit"
)

// YAML serializes a report as YAML.
func YAML(r *audit.Report) ([]byte, error) {
	return yaml.Marshal(r)
}
