package formatter

import (
	"fmt"
	"strings"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/audit"
)

// Render serializes a report in the requested format and returns the bytes
// together with the matching Content-Type. Format is case-insensitive;
// empty means json.
func Render(r *audit.Report, format string) ([]byte, string, error) {
	switch strings.TrimSpace(strings.ToLower(format)) {
	case "", "json":
		b, err := JSON(r)
		return b, "application/json", err
	case "yaml", "yml":
		b, err := YAML(r)
		return b, "application/yaml", err
	default:
		return nil, "", fmt.Errorf("unsupported format: %s", format)
	}
}

// FilterByCheck narrows a report to a single named check, recomputing the
// summary over the remaining result. Returns false when no check with that
// name is in the report.
func FilterByCheck(r *audit.Report, name string) (*audit.Report, bool) {
	name = strings.TrimSpace(strings.ToLower(name))
	for _, c := range r.Checks {
		if c.Check != name {
			continue
		}
		filtered := &audit.Report{
			Feed:        r.Feed,
			GeneratedAt: r.GeneratedAt,
			Shapes:      r.Shapes,
			Points:      r.Points,
			Checks:      []audit.CheckResult{c},
			Summary:     audit.Summarize([]audit.CheckResult{c}),
		}
		return filtered, true
	}
	return nil, false
}
