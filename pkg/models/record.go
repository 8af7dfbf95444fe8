package models

// AnalysisRecord is one analyzed file, keyed by SHA256.
type AnalysisRecord struct {
	ID             int       `json:"id"`
	FileName       string    `json:"file_name"`
	FileType       string    `json:"file_type"`
	SHA256         string    `json:"sha256"`
	SHA1           string    `json:"sha1"`
	SHA512         string    `json:"sha512"`
	SHA224         string    `json:"sha224"`
	SHA384         string    `json:"sha384"`
	SHA3_256       string    `json:"sha3_256"`
	SHA3_512       string    `json:"sha3_512"`
	FileSize       int64     `json:"file_size"`
	FileEntropy    float64   `json:"file_entropy"`
	CreationDate   string    `json:"creation_date"`
	LastUpdateDate string    `json:"last_update_date"`
	FilePath       string    `json:"file_path"`
	IsMalicious    bool      `json:"is_malicious"`
	IsPacked       bool      `json:"is_packed"`
	FamilyID       int       `json:"family_id"`
	Description    string    `json:"description"`
	Owner          string    `json:"owner"`
	TLSH           string    `json:"tlsh"`
	Family         *Family   `json:"family,omitempty"`
	Tags           List[Tag] `json:"tags,omitempty"`
}

// HasTag reports whether the record carries the tag id.
func (r *AnalysisRecord) HasTag(id int) bool {
	for _, t := range r.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// FamilyRef returns the family id, preferring the embedded family.
func (r *AnalysisRecord) FamilyRef() int {
	if r.Family != nil && r.Family.ID != 0 {
		return r.Family.ID
	}
	return r.FamilyID
}

// RecordsResponse is returned by the records listing.
type RecordsResponse struct {
	Records List[AnalysisRecord] `json:"records"`
	Code    int                  `json:"code"`
	Status  string               `json:"status"`
}

// RecordUpdate is the editable subset of a record. It is merged with the
// sha256 key into the update request body.
type RecordUpdate struct {
	FileName    string  `json:"file_name,omitempty"`
	Description string  `json:"description"`
	FamilyID    *int    `json:"family_id,omitempty"`
	Family      *Family `json:"family,omitempty"`
	Tags        []Tag   `json:"tags"`
}

// ScanResponse is returned by scan and rescan.
type ScanResponse struct {
	SHA256 string `json:"sha256"`
	Code   int    `json:"code"`
	Status string `json:"status"`
}

// ClamAVThreat is the ClamAV verdict for a file.
type ClamAVThreat struct {
	Virname    string `json:"virname"`
	MathStatus int    `json:"math_status"`
}

// YaraMatch identifies a matched rule.
type YaraMatch struct {
	Identifier string `json:"identifier"`
	Namespace  string `json:"namespace"`
}

// YaraThreat lists the rules that matched a file.
type YaraThreat struct {
	Rules List[YaraMatch] `json:"rules"`
}

// ThreatAnalysis combines the per-engine detections of one file.
type ThreatAnalysis struct {
	ClamAV ClamAVThreat `json:"clamav"`
	Yara   YaraThreat   `json:"yara"`
}

// Detected reports whether any detector flagged the file.
func (t *ThreatAnalysis) Detected() bool {
	return t.ClamAV.Virname != "" || len(t.Yara.Rules) > 0
}

// ThreatsResponse is returned by the threats lookup.
type ThreatsResponse struct {
	Threats ThreatAnalysis `json:"threats"`
	Code    int            `json:"code"`
	Status  string         `json:"status"`
}
