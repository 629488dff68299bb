package shapeaudit

import (
	"encoding/json"
	"net/http"
)

type healthResponse struct {
	Status      string `json:"status"`
	Feed        string `json:"feed"`
	Shapes      int    `json:"shapes,omitempty"`
	Points      int    `json:"points,omitempty"`
	LastAuditAt string `json:"last_audit_at,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{Status: "ok", Feed: s.cfg.Feed.Name}
	if resp.Feed == "" {
		resp.Feed = s.cfg.Feed.Source
	}
	if report := s.cache.Peek(); report != nil {
		resp.Shapes = report.Shapes
		resp.Points = report.Points
		resp.LastAuditAt = report.GeneratedAt
	}
	_ = json.NewEncoder(w).Encode(resp)
}
