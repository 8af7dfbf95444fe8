package models

import "time"

// AuditEntry records one mutation submitted through the console.
type AuditEntry struct {
	Timestamp time.Time `json:"ts"`
	RequestID string    `json:"request_id,omitempty"`
	Action    string    `json:"action"`
	Target    string    `json:"target,omitempty"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
}
