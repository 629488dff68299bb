package shapeaudit

import (
	"net/url"
	"strings"
)

type QueryError struct{ Msg string }

func (e *QueryError) Error() string { return e.Msg }

// auditQuery is the parsed query surface of GET /api/audit.
type auditQuery struct {
	Refresh bool
	Check   string
	Format  string
}

func parseAuditQuery(q url.Values) (auditQuery, error) {
	out := auditQuery{
		Check:  strings.TrimSpace(q.Get("check")),
		Format: strings.TrimSpace(strings.ToLower(q.Get("format"))),
	}

	switch strings.TrimSpace(strings.ToLower(q.Get("refresh"))) {
	case "", "0", "false":
	case "1", "true":
		out.Refresh = true
	default:
		return out, &QueryError{Msg: "refresh must be 0 or 1"}
	}

	switch out.Format {
	case "", "json", "yaml", "yml":
	default:
		return out, &QueryError{Msg: "unsupported format: " + out.Format}
	}
	return out, nil
}
