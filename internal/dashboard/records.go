package dashboard

import (
	"fmt"
	"strings"
	"time"

	"gateconsole/pkg/models"
)

// Record status filters.
const (
	StatusAll       = "all"
	StatusMalicious = "malicious"
	StatusClean     = "clean"
)

// NormalizeStatus maps unknown filter values to StatusAll.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusMalicious:
		return StatusMalicious
	case StatusClean:
		return StatusClean
	default:
		return StatusAll
	}
}

// FilterRecords keeps records matching both the search text and the status.
// The search is a case-insensitive substring match on file name, sha256 or
// file type.
func FilterRecords(records []models.AnalysisRecord, query, status string) []models.AnalysisRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	status = NormalizeStatus(status)
	out := make([]models.AnalysisRecord, 0, len(records))
	for _, r := range records {
		if matchesQuery(r, q) && matchesStatus(r, status) {
			out = append(out, r)
		}
	}
	return out
}

func matchesQuery(r models.AnalysisRecord, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.FileName), q) ||
		strings.Contains(strings.ToLower(r.SHA256), q) ||
		strings.Contains(strings.ToLower(r.FileType), q)
}

func matchesStatus(r models.AnalysisRecord, status string) bool {
	switch status {
	case StatusMalicious:
		return r.IsMalicious
	case StatusClean:
		return !r.IsMalicious
	default:
		return true
	}
}

// Summary is the headline record statistics.
type Summary struct {
	Total         int
	Malicious     int
	Clean         int
	DetectionRate string
	Last24h       int
	Malicious24h  int
}

// Summarize computes record statistics relative to now.
func Summarize(records []models.AnalysisRecord, now time.Time) Summary {
	s := Summary{Total: len(records), DetectionRate: "0.0"}
	since := now.Add(-24 * time.Hour)
	for _, r := range records {
		if r.IsMalicious {
			s.Malicious++
		}
		if ts, ok := ParseTimestamp(r.LastUpdateDate); ok && !ts.Before(since) {
			s.Last24h++
			if r.IsMalicious {
				s.Malicious24h++
			}
		}
	}
	s.Clean = s.Total - s.Malicious
	if s.Total > 0 {
		s.DetectionRate = fmt.Sprintf("%.1f", float64(s.Malicious)/float64(s.Total)*100)
	}
	return s
}

// Recent returns at most n leading records in engine order.
func Recent(records []models.AnalysisRecord, n int) []models.AnalysisRecord {
	if n < 0 {
		n = 0
	}
	if len(records) <= n {
		return records
	}
	return records[:n]
}

// FindRecord looks a record up by sha256.
func FindRecord(records []models.AnalysisRecord, sha256 string) (*models.AnalysisRecord, bool) {
	for i := range records {
		if strings.EqualFold(records[i].SHA256, sha256) {
			return &records[i], true
		}
	}
	return nil, false
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses the engine's date strings.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
