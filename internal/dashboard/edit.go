package dashboard

import (
	"strconv"
	"strings"

	"gateconsole/pkg/models"
)

// NoFamily is the form value that leaves the record unclassified.
const NoFamily = "none"

// RecordForm is the submitted record edit form.
type RecordForm struct {
	FileName    string
	Description string
	FamilyID    string
	TagIDs      []string
}

// FormFromRecord prefills the edit form.
func FormFromRecord(r *models.AnalysisRecord) RecordForm {
	form := RecordForm{FamilyID: NoFamily}
	if r == nil {
		return form
	}
	form.FileName = r.FileName
	form.Description = r.Description
	if id := r.FamilyRef(); id != 0 {
		form.FamilyID = strconv.Itoa(id)
	}
	for _, t := range r.Tags {
		form.TagIDs = append(form.TagIDs, strconv.Itoa(t.ID))
	}
	return form
}

// BuildRecordUpdate resolves the selected family and tags against the known
// labels. Unknown ids are dropped.
func BuildRecordUpdate(form RecordForm, families []models.Family, tags []models.Tag) models.RecordUpdate {
	update := models.RecordUpdate{
		FileName:    strings.TrimSpace(form.FileName),
		Description: form.Description,
		Tags:        []models.Tag{},
	}

	if form.FamilyID != "" && form.FamilyID != NoFamily {
		for _, f := range families {
			if strconv.Itoa(f.ID) == form.FamilyID {
				fam := f
				id := f.ID
				update.Family = &fam
				update.FamilyID = &id
				break
			}
		}
	}

	selected := make(map[string]struct{}, len(form.TagIDs))
	for _, id := range form.TagIDs {
		selected[strings.TrimSpace(id)] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := selected[strconv.Itoa(t.ID)]; ok {
			update.Tags = append(update.Tags, t)
		}
	}
	return update
}
