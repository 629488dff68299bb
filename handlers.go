package shapeaudit

import (
	"encoding/json"
	"net/http"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/formatter"
)

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	q, err := parseAuditQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.cache.Get(q.Refresh)
	if err != nil {
		s.log.Error().Err(err).Msg("audit failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if q.Check != "" {
		filtered, ok := formatter.FilterByCheck(report, q.Check)
		if !ok {
			writeError(w, http.StatusBadRequest, "no such check: "+q.Check)
			return
		}
		report = filtered
	}

	buf, contentType, err := formatter.Render(report, q.Format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(buf)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
