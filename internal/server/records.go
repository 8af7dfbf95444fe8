package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gateconsole/internal/dashboard"
	"gateconsole/internal/logger"
	"gateconsole/pkg/models"
)

type dashboardView struct {
	Summary     dashboard.Summary
	Recent      []models.AnalysisRecord
	Online      bool
	Version     string
	YaraCount   int
	PluginCount int
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := dashboardView{Summary: dashboard.Summarize(nil, s.now())}
	var firstErr error

	if records, err := s.client.Records(ctx); err != nil {
		firstErr = err
	} else {
		view.Summary = dashboard.Summarize(records.Records, s.now())
		view.Recent = dashboard.Recent(records.Records, recentLimit)
	}

	if v, err := s.client.Version(ctx); err == nil {
		view.Online = true
		view.Version = v.Version
	}

	if rules, err := s.client.YaraRules(ctx); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		view.YaraCount = len(rules.Rules)
	}

	if plugins, err := s.client.Plugins(ctx); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		view.PluginCount = len(plugins.Plugins.Lua.Scripts)
	}

	s.render(w, r, http.StatusOK, "dashboard", "Dashboard", view, firstErr)
}

type recordsView struct {
	Records  []models.AnalysisRecord
	Summary  dashboard.Summary
	Query    string
	Status   string
	Total    int
	Statuses []string
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	view := recordsView{
		Query:    r.URL.Query().Get("q"),
		Status:   dashboard.NormalizeStatus(r.URL.Query().Get("status")),
		Statuses: []string{dashboard.StatusAll, dashboard.StatusMalicious, dashboard.StatusClean},
		Summary:  dashboard.Summarize(nil, s.now()),
	}

	records, err := s.client.Records(r.Context())
	if err == nil {
		view.Total = len(records.Records)
		view.Summary = dashboard.Summarize(records.Records, s.now())
		view.Records = dashboard.FilterRecords(records.Records, view.Query, view.Status)
	}
	s.render(w, r, http.StatusOK, "records", "Analysis records", view, err)
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	sha := chi.URLParam(r, "sha256")
	_, err := s.client.Rescan(r.Context(), sha)
	s.record(r, "record.rescan", sha, err)
	if err != nil {
		redirect(w, r, "/records", s.engineErrorMessage(r, err), true)
		return
	}
	redirect(w, r, "/records", "Rescan queued for "+sha, false)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sha := chi.URLParam(r, "sha256")
	_, err := s.client.DeleteRecord(r.Context(), sha)
	s.record(r, "record.delete", sha, err)
	if err != nil {
		redirect(w, r, "/records", s.engineErrorMessage(r, err), true)
		return
	}
	redirect(w, r, "/records", "Record deleted", false)
}

type fileView struct {
	SHA256       string
	Record       *models.AnalysisRecord
	Threats      *models.ThreatAnalysis
	ThreatsError string
	Families     []models.Family
	Tags         []models.Tag
	Form         dashboard.RecordForm
	SelectedTags map[int]bool
	NoFamily     string
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sha := chi.URLParam(r, "sha256")
	view := fileView{SHA256: sha, NoFamily: dashboard.NoFamily, SelectedTags: map[int]bool{}}

	records, err := s.client.Records(ctx)
	if err != nil {
		s.render(w, r, http.StatusOK, "file", "File details", view, err)
		return
	}
	rec, ok := dashboard.FindRecord(records.Records, sha)
	if !ok {
		s.render(w, r, http.StatusNotFound, "file", "File not found", view, nil)
		return
	}
	view.Record = rec
	view.Form = dashboard.FormFromRecord(rec)
	for _, t := range rec.Tags {
		view.SelectedTags[t.ID] = true
	}

	if threats, err := s.client.Threats(ctx, rec.SHA256); err != nil {
		view.ThreatsError = s.engineErrorMessage(r, err)
	} else {
		view.Threats = &threats.Threats
	}

	view.Families, view.Tags = s.labels(r)
	s.render(w, r, http.StatusOK, "file", rec.FileName, view, nil)
}

func (s *Server) handleFileEdit(w http.ResponseWriter, r *http.Request) {
	sha := chi.URLParam(r, "sha256")
	back := "/file/" + sha
	if err := r.ParseForm(); err != nil {
		redirect(w, r, back, "Invalid form submission", true)
		return
	}

	form := dashboard.RecordForm{
		FileName:    r.PostFormValue("file_name"),
		Description: r.PostFormValue("description"),
		FamilyID:    r.PostFormValue("family_id"),
		TagIDs:      r.PostForm["tag_ids"],
	}
	if strings.TrimSpace(form.FileName) == "" {
		redirect(w, r, back, "File name is required", true)
		return
	}

	families, tags := s.labels(r)
	update := dashboard.BuildRecordUpdate(form, families, tags)
	_, err := s.client.UpdateRecord(r.Context(), sha, update)
	s.record(r, "record.update", sha, err)
	if err != nil {
		redirect(w, r, back, s.engineErrorMessage(r, err), true)
		return
	}
	redirect(w, r, back, "Record updated", false)
}

// labels fetches families and tags. Failures degrade to empty lists.
func (s *Server) labels(r *http.Request) ([]models.Family, []models.Tag) {
	families := []models.Family{}
	tags := []models.Tag{}
	if resp, err := s.client.Families(r.Context()); err != nil {
		logger.Warnf("Failed to load families: %v", err)
	} else {
		families = resp.Families
	}
	if resp, err := s.client.Tags(r.Context()); err != nil {
		logger.Warnf("Failed to load tags: %v", err)
	} else {
		tags = resp.Tags
	}
	return families, tags
}

const scannerRecentLimit = 5

type scannerView struct {
	MaxUpload string
	Error     string
	Summary   dashboard.Summary
	Recent    []models.AnalysisRecord
	Online    bool
	YaraCount int
	Panels    bool
}

// scannerView fills the side panels. Engine failures leave them empty; the
// upload form stays usable.
func (s *Server) scannerView(r *http.Request) scannerView {
	ctx := r.Context()
	view := scannerView{
		MaxUpload: dashboard.FormatFileSize(s.maxUploadBytes),
		Summary:   dashboard.Summarize(nil, s.now()),
		Online:    s.engineHealth(ctx).Online,
		Panels:    true,
	}
	if records, err := s.client.Records(ctx); err == nil {
		view.Summary = dashboard.Summarize(records.Records, s.now())
		view.Recent = dashboard.Recent(records.Records, scannerRecentLimit)
	}
	if rules, err := s.client.YaraRules(ctx); err == nil {
		view.YaraCount = len(rules.Rules)
	}
	return view
}

func (s *Server) handleScanner(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "scanner", "Scanner", s.scannerView(r), nil)
}

func (s *Server) handleScanUpload(w http.ResponseWriter, r *http.Request) {
	view := scannerView{MaxUpload: dashboard.FormatFileSize(s.maxUploadBytes)}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			view.Error = "File exceeds the " + view.MaxUpload + " upload limit"
			s.render(w, r, http.StatusRequestEntityTooLarge, "scanner", "Scanner", view, nil)
			return
		}
		view.Error = "Invalid upload"
		s.render(w, r, http.StatusBadRequest, "scanner", "Scanner", view, nil)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		view.Error = "Choose a file to scan"
		s.render(w, r, http.StatusBadRequest, "scanner", "Scanner", view, nil)
		return
	}
	defer file.Close()

	resp, err := s.client.Scan(r.Context(), file)
	if err == nil && resp.SHA256 == "" {
		err = errors.New("engine returned no sha256")
	}
	s.record(r, "sample.scan", header.Filename, err)
	if err != nil {
		s.render(w, r, http.StatusBadGateway, "scanner", "Scanner", view, err)
		return
	}
	logger.Infof("Submitted %s (%d bytes) -> %s", header.Filename, header.Size, resp.SHA256)
	http.Redirect(w, r, "/file/"+resp.SHA256, http.StatusSeeOther)
}
