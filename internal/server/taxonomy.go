package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gateconsole/internal/dashboard"
	"gateconsole/internal/taxonomy"
	"gateconsole/pkg/models"
)

const (
	graphWidth     = 1200
	graphRowHeight = 180
)

type familyRow struct {
	Family  models.Family
	Records []models.AnalysisRecord
}

type tagRow struct {
	Tag     models.Tag
	Records []models.AnalysisRecord
}

type taxonomyView struct {
	FamilyQuery string
	TagQuery    string
	Families    []familyRow
	Tags        []tagRow
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := taxonomyView{
		FamilyQuery: r.URL.Query().Get("family_q"),
		TagQuery:    r.URL.Query().Get("tag_q"),
	}

	families, tags, records, err := s.taxonomyData(ctx)
	for _, f := range dashboard.FilterFamilies(families, view.FamilyQuery) {
		view.Families = append(view.Families, familyRow{Family: f, Records: dashboard.RecordsForFamily(records, f.ID)})
	}
	for _, t := range dashboard.FilterTags(tags, view.TagQuery) {
		view.Tags = append(view.Tags, tagRow{Tag: t, Records: dashboard.RecordsForTag(records, t.ID)})
	}
	s.render(w, r, http.StatusOK, "taxonomy", "Threat taxonomy", view, err)
}

// taxonomyData fetches labels and records, returning whatever succeeded
// alongside the first failure.
func (s *Server) taxonomyData(ctx context.Context) ([]models.Family, []models.Tag, []models.AnalysisRecord, error) {
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	families := []models.Family{}
	if resp, err := s.client.Families(ctx); err != nil {
		keep(err)
	} else {
		families = resp.Families
	}
	tags := []models.Tag{}
	if resp, err := s.client.Tags(ctx); err != nil {
		keep(err)
	} else {
		tags = resp.Tags
	}
	records := []models.AnalysisRecord{}
	if resp, err := s.client.Records(ctx); err != nil {
		keep(err)
	} else {
		records = resp.Records
	}
	return families, tags, records, firstErr
}

func (s *Server) handleTaxonomyGraph(w http.ResponseWriter, r *http.Request) {
	families, tags, records, err := s.taxonomyData(r.Context())
	g := s.mapper.Build(families, tags, records)
	s.render(w, r, http.StatusOK, "graph", "Taxonomy graph", taxonomy.Place(g, graphWidth, graphRowHeight), err)
}

func labelForm(r *http.Request) (name, description string, ok bool) {
	if err := r.ParseForm(); err != nil {
		return "", "", false
	}
	name = strings.TrimSpace(r.PostFormValue("name"))
	description = strings.TrimSpace(r.PostFormValue("description"))
	return name, description, name != ""
}

func (s *Server) handleFamilyCreate(w http.ResponseWriter, r *http.Request) {
	name, desc, ok := labelForm(r)
	if !ok {
		redirect(w, r, "/taxonomy", "Family name is required", true)
		return
	}
	_, err := s.client.CreateFamily(r.Context(), name, desc)
	s.record(r, "family.create", name, err)
	if err != nil {
		redirect(w, r, "/taxonomy", s.engineErrorMessage(r, err), true)
		return
	}
	redirect(w, r, "/taxonomy", "Family created", false)
}

func (s *Server) handleFamilyUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		redirect(w, r, "/taxonomy", "Invalid family id", true)
		return
	}
	name, desc, ok := labelForm(r)
	if !ok {
		redirect(w, r, "/taxonomy", "Family name is required", true)
		return
	}
	_, err = s.client.UpdateFamily(r.Context(), id, name, desc)
	s.record(r, "family.update", strconv.Itoa(id), err)
	if err != nil {
		redirect(w, r, "/taxonomy", s.engineErrorMessage(r, err), true)
		return
	}
	redirect(w, r, "/taxonomy", "Family updated", false)
}

func (s *Server) handleTagCreate(w http.ResponseWriter, r *http.Request) {
	name, desc, ok := labelForm(r)
	if !ok {
		redirect(w, r, "/taxonomy", "Tag name is required", true)
		return
	}
	_, err := s.client.CreateTag(r.Context(), name, desc)
	s.record(r, "tag.create", name, err)
	if err != nil {
		redirect(w, r, "/taxonomy", s.engineErrorMessage(r, err), true)
		return
	}
	redirect(w, r, "/taxonomy", "Tag created", false)
}

func (s *Server) handleTagUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		redirect(w, r, "/taxonomy", "Invalid tag id", true)
		return
	}
	name, desc, ok := labelForm(r)
	if !ok {
		redirect(w, r, "/taxonomy", "Tag name is required", true)
		return
	}
	_, err = s.client.UpdateTag(r.Context(), id, name, desc)
	s.record(r, "tag.update", strconv.Itoa(id), err)
	if err != nil {
		redirect(w, r, "/taxonomy", s.engineErrorMessage(r, err), true)
		return
	}
	redirect(w, r, "/taxonomy", "Tag updated", false)
}
