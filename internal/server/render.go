package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gateconsole/internal/dashboard"
	"gateconsole/internal/engine"
	"gateconsole/internal/logger"
	"gateconsole/internal/monitor"
	"gateconsole/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"dashboard",
	"records",
	"file",
	"scanner",
	"taxonomy",
	"graph",
	"yara",
	"yara_rule",
	"plugins",
	"status",
	"settings",
	"notfound",
}

var funcs = template.FuncMap{
	"fileSize":   dashboard.FormatFileSize,
	"scriptName": dashboard.ScriptName,
	"itoa":       strconv.Itoa,
	"pathEscape": url.PathEscape,
	"shortHash": func(s string) string {
		if len(s) <= 16 {
			return s
		}
		return s[:16] + "…"
	},
	"formatDate": func(raw string) string {
		if t, ok := dashboard.ParseTimestamp(raw); ok {
			return t.Format("2006-01-02 15:04")
		}
		if raw == "" {
			return "-"
		}
		return raw
	},
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Format("2006-01-02 15:04:05")
	},
	"entropy": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 3, 64)
	},
}

// pageData is the envelope handed to every page template.
type pageData struct {
	Title       string
	Active      string
	Engine      models.EngineConfig
	Health      *monitor.Snapshot
	Flash       string
	FlashError  string
	EngineError string
	RequestID   string
	Data        interface{}
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// render executes a page into a buffer first so template failures produce a
// clean 500 instead of a truncated page. engineErr, when set, is shown as the
// connection error banner.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data interface{}, engineErr error) {
	t, ok := s.pages[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}

	page := pageData{
		Title:      title,
		Active:     name,
		Engine:     s.settings.Current(),
		Flash:      r.URL.Query().Get("msg"),
		FlashError: r.URL.Query().Get("err"),
		RequestID:  engine.RequestID(r.Context()),
		Data:       data,
	}
	if s.monitor != nil {
		if snap := s.monitor.Last(); !snap.CheckedAt.IsZero() {
			page.Health = &snap
		}
	}
	if engineErr != nil {
		page.EngineError = s.engineErrorMessage(r, engineErr)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		logger.Errorf("Failed to render %s: %v", name, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// engineErrorMessage logs err and returns the generic banner text.
func (s *Server) engineErrorMessage(r *http.Request, err error) string {
	logger.Warnf("Engine call failed (id=%s): %v", engine.RequestID(r.Context()), err)
	if code := engine.StatusCode(err); code != 0 {
		return fmt.Sprintf("Engine connection error (status %d)", code)
	}
	return "Engine connection error"
}

// redirect sends a 303 to path carrying a one-shot flash message.
func redirect(w http.ResponseWriter, r *http.Request, path, msg string, failed bool) {
	if msg != "" {
		q := url.Values{}
		if failed {
			q.Set("err", msg)
		} else {
			q.Set("msg", msg)
		}
		path += "?" + q.Encode()
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("Failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps an engine failure to 502 for the JSON API.
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	body := map[string]interface{}{"error": s.engineErrorMessage(r, err)}
	if code := engine.StatusCode(err); code != 0 {
		body["status"] = code
	}
	writeJSON(w, http.StatusBadGateway, body)
}

// record appends an audit entry for a console mutation.
func (s *Server) record(r *http.Request, action, target string, err error) {
	entry := models.AuditEntry{
		Timestamp: s.now().UTC(),
		RequestID: engine.RequestID(r.Context()),
		Action:    action,
		Target:    target,
		OK:        err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if aerr := s.audit.Record(entry); aerr != nil {
		logger.Errorf("Failed to write audit entry: %v", aerr)
	}
}
