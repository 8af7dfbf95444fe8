package audit

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gateconsole/pkg/models"
)

func TestWriterAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.jsonl")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	ts := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	if err := w.Record(models.AuditEntry{Timestamp: ts, RequestID: "r1", Action: "record.delete", Target: "abc", OK: true}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening must append, not truncate.
	w, err = NewWriter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := w.Record(models.AuditEntry{Action: "settings.update", Error: "invalid port"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	w.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var entries []models.AuditEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e models.AuditEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !entries[0].Timestamp.Equal(ts) || entries[0].Target != "abc" || !entries[0].OK {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Timestamp.IsZero() || entries[1].OK || entries[1].Error != "invalid port" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	if err := r.Record(models.AuditEntry{Action: "x"}); err != nil {
		t.Fatalf("nop record: %v", err)
	}
}

func TestHTTPWriterPostsEntry(t *testing.T) {
	var got models.AuditEntry
	var token string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	w, err := NewHTTPWriter(HTTPConfig{URL: srv.URL, Headers: map[string]string{"Authorization": "Bearer x"}})
	if err != nil {
		t.Fatalf("new http writer: %v", err)
	}
	if err := w.Record(models.AuditEntry{Action: "tag.create", Target: "loader", OK: true}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got.Action != "tag.create" || got.Timestamp.IsZero() || token != "Bearer x" {
		t.Fatalf("unexpected delivery: %+v (auth %q)", got, token)
	}
}

func TestHTTPWriterReportsFailures(t *testing.T) {
	if _, err := NewHTTPWriter(HTTPConfig{}); err == nil {
		t.Fatalf("expected error for empty URL")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	w, _ := NewHTTPWriter(HTTPConfig{URL: srv.URL})
	if err := w.Record(models.AuditEntry{Action: "x"}); err == nil {
		t.Fatalf("expected error on 500")
	}
}
