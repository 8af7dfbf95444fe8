package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gateconsole/internal/settings"
	"gateconsole/pkg/models"
)

type settingsView struct {
	Current    models.EngineConfig
	Defaults   models.EngineConfig
	Host       string
	Port       string
	Error      string
	TestResult string
	TestOK     bool
}

func (s *Server) settingsView() settingsView {
	cur := s.settings.Current()
	return settingsView{
		Current:  cur,
		Defaults: s.settings.Defaults(),
		Host:     cur.Host,
		Port:     cur.Port,
	}
}

// candidate reads host and port from the form and validates them.
func candidate(r *http.Request) (models.EngineConfig, error) {
	if err := r.ParseForm(); err != nil {
		return models.EngineConfig{}, err
	}
	cfg := settings.Derive(strings.TrimSpace(r.PostFormValue("host")), strings.TrimSpace(r.PostFormValue("port")))
	return cfg, settings.Validate(cfg)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "settings", "Settings", s.settingsView(), nil)
}

func (s *Server) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	cfg, err := candidate(r)
	if err != nil {
		view := s.settingsView()
		view.Host, view.Port = cfg.Host, cfg.Port
		view.Error = err.Error()
		s.record(r, "settings.update", cfg.BaseURL, err)
		s.render(w, r, http.StatusBadRequest, "settings", "Settings", view, nil)
		return
	}

	saved, err := s.settings.Update(r.Context(), cfg)
	s.record(r, "settings.update", cfg.BaseURL, err)
	if err != nil {
		redirect(w, r, "/settings", "Failed to save settings: "+err.Error(), true)
		return
	}
	redirect(w, r, "/settings", "Engine set to "+saved.BaseURL, false)
}

func (s *Server) handleSettingsReset(w http.ResponseWriter, r *http.Request) {
	saved, err := s.settings.Reset(r.Context())
	s.record(r, "settings.reset", saved.BaseURL, err)
	if err != nil {
		redirect(w, r, "/settings", "Failed to reset settings: "+err.Error(), true)
		return
	}
	redirect(w, r, "/settings", "Settings reset to "+saved.BaseURL, false)
}

// handleSettingsTest probes the submitted address without saving it.
func (s *Server) handleSettingsTest(w http.ResponseWriter, r *http.Request) {
	view := s.settingsView()
	cfg, err := candidate(r)
	view.Host, view.Port = cfg.Host, cfg.Port
	if err != nil {
		view.Error = err.Error()
		s.render(w, r, http.StatusBadRequest, "settings", "Settings", view, nil)
		return
	}

	v, err := s.client.WithBaseURL(cfg.BaseURL).Version(r.Context())
	if err != nil {
		view.TestResult = "Could not reach " + cfg.BaseURL + ": " + s.engineErrorMessage(r, err)
	} else {
		view.TestOK = true
		view.TestResult = "Connected to " + cfg.BaseURL + " (engine " + v.Version + ")"
	}
	s.render(w, r, http.StatusOK, "settings", "Settings", view, nil)
}

func (s *Server) apiSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Current())
}

func (s *Server) apiSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var patch models.EngineConfig
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	saved, err := s.settings.Update(r.Context(), patch)
	s.record(r, "settings.update", saved.BaseURL, err)
	if err != nil {
		if errors.Is(err, settings.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
