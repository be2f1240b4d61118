package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lox/vicenergy/internal/layout"
	"github.com/lox/vicenergy/internal/session"
)

type IndexData struct {
	*layout.Page
	Selection session.Selection
	StartDate string
	EndDate   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	sel := s.session(w, r).Snapshot()

	data := IndexData{
		Page:      s.page,
		Selection: sel,
		StartDate: formatDate(sel.Start),
		EndDate:   formatDate(sel.End),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.log.Errorw("template error", "template", "index.html", "err", err)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

type HealthStatus struct {
	Status   string    `json:"status"`
	Records  int       `json:"records"`
	Stored   int       `json:"stored"`
	Source   string    `json:"source,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Sessions int       `json:"sessions"`
	Errors   []string  `json:"errors,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:   "ok",
		Records:  len(s.ds.Records),
		Sessions: s.sessions.Len(),
	}

	stored, err := s.store.CountRecords(r.Context())
	if err != nil {
		health.Errors = append(health.Errors, "count records: "+err.Error())
	}
	health.Stored = stored

	source, loadedAt, err := s.store.LastLoad(r.Context())
	if err != nil {
		health.Errors = append(health.Errors, "last load: "+err.Error())
	}
	health.Source = source
	health.LoadedAt = loadedAt

	if health.Records == 0 || health.Stored != health.Records {
		health.Status = "degraded"
	}
	if len(health.Errors) > 0 {
		health.Status = "error"
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.log.Warnw("health: write response", "err", err)
	}
}
