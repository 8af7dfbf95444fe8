package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gateconsole/internal/dashboard"
	"gateconsole/pkg/models"
)

type recordsPayload struct {
	Records []models.AnalysisRecord `json:"records"`
	Total   int                     `json:"total"`
	Matched int                     `json:"matched"`
}

func (s *Server) apiRecords(w http.ResponseWriter, r *http.Request) {
	resp, err := s.client.Records(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	filtered := dashboard.FilterRecords(resp.Records, r.URL.Query().Get("q"), r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, recordsPayload{Records: filtered, Total: len(resp.Records), Matched: len(filtered)})
}

type recordPayload struct {
	Record  *models.AnalysisRecord `json:"record"`
	Threats *models.ThreatAnalysis `json:"threats,omitempty"`
}

func (s *Server) apiRecord(w http.ResponseWriter, r *http.Request) {
	resp, err := s.client.Records(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	rec, ok := dashboard.FindRecord(resp.Records, chi.URLParam(r, "sha256"))
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	out := recordPayload{Record: rec}
	if threats, err := s.client.Threats(r.Context(), rec.SHA256); err == nil {
		out.Threats = &threats.Threats
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiEngineHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engineHealth(r.Context()))
}

func (s *Server) apiTaxonomyGraph(w http.ResponseWriter, r *http.Request) {
	families, tags, records, err := s.taxonomyData(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.mapper.Build(families, tags, records))
}
