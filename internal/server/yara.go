package server

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gateconsole/internal/dashboard"
	"gateconsole/internal/logger"
	"gateconsole/pkg/models"
)

type yaraView struct {
	Rules      []models.YaraRuleDetails
	Query      string
	Count      int
	Namespaces int
}

func (s *Server) handleYara(w http.ResponseWriter, r *http.Request) {
	view := yaraView{Query: r.URL.Query().Get("q")}
	resp, err := s.client.YaraRules(r.Context())
	if err == nil {
		view.Count = len(resp.Rules)
		view.Namespaces = dashboard.CountNamespaces(resp.Rules)
		view.Rules = dashboard.FilterYaraRules(resp.Rules, view.Query)
	}
	s.render(w, r, http.StatusOK, "yara", "YARA rules", view, err)
}

// ruleSource reads the rule text from the uploaded file, falling back to the
// text area.
func ruleSource(r *http.Request) (string, error) {
	file, _, err := r.FormFile("rule_file")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(string(data)) != "" {
			return string(data), nil
		}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return "", err
	}
	return r.FormValue("rule"), nil
}

func (s *Server) handleYaraLoad(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		redirect(w, r, "/yara", "Invalid rule submission", true)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	source, err := ruleSource(r)
	if err != nil {
		redirect(w, r, "/yara", "Failed to read rule file", true)
		return
	}
	namespace := strings.TrimSpace(r.FormValue("namespace"))
	if strings.TrimSpace(source) == "" || namespace == "" {
		redirect(w, r, "/yara", "Provide both rule content and a namespace", true)
		return
	}

	resp, err := s.client.LoadYaraRule(r.Context(), source, namespace)
	s.record(r, "yara.load", namespace, err)
	if err != nil {
		redirect(w, r, "/yara", s.engineErrorMessage(r, err), true)
		return
	}
	msg := resp.Message
	if msg == "" {
		msg = "Rules loaded into " + namespace
	}
	redirect(w, r, "/yara", msg, false)
}

func (s *Server) handleYaraCompiled(w http.ResponseWriter, r *http.Request) {
	blob, err := s.client.CompiledYaraRules(r.Context())
	if err != nil {
		redirect(w, r, "/yara", s.engineErrorMessage(r, err), true)
		return
	}
	name := dashboard.CompiledRulesFilename(s.now())
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(blob); err != nil {
		logger.Warnf("Failed to send compiled rules: %v", err)
	}
}

func ruleIdentifier(r *http.Request) string {
	raw := chi.URLParam(r, "identifier")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

type yaraRuleView struct {
	Identifier string
	Rule       *models.YaraRuleDetails
}

func (s *Server) handleYaraRule(w http.ResponseWriter, r *http.Request) {
	view := yaraRuleView{Identifier: ruleIdentifier(r)}
	resp, err := s.client.YaraRules(r.Context())
	if err != nil {
		s.render(w, r, http.StatusOK, "yara_rule", view.Identifier, view, err)
		return
	}
	rule, ok := dashboard.FindYaraRule(resp.Rules, view.Identifier)
	if !ok {
		s.render(w, r, http.StatusNotFound, "yara_rule", "Rule not found", view, nil)
		return
	}
	view.Rule = rule
	s.render(w, r, http.StatusOK, "yara_rule", rule.Identifier, view, nil)
}

func (s *Server) handleYaraEnable(w http.ResponseWriter, r *http.Request) {
	s.toggleYaraRule(w, r, true)
}

func (s *Server) handleYaraDisable(w http.ResponseWriter, r *http.Request) {
	s.toggleYaraRule(w, r, false)
}

func (s *Server) toggleYaraRule(w http.ResponseWriter, r *http.Request, enable bool) {
	id := ruleIdentifier(r)
	back := "/yara/rule/" + url.PathEscape(id)

	var (
		resp   *models.YaraActionResponse
		err    error
		action = "yara.disable"
		done   = "Rule disabled"
	)
	if enable {
		action, done = "yara.enable", "Rule enabled"
		resp, err = s.client.EnableYaraRule(r.Context(), id)
	} else {
		resp, err = s.client.DisableYaraRule(r.Context(), id)
	}
	s.record(r, action, id, err)
	if err != nil {
		redirect(w, r, back, s.engineErrorMessage(r, err), true)
		return
	}
	if resp.Message != "" {
		done = resp.Message
	}
	redirect(w, r, back, done, false)
}
