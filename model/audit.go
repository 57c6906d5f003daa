package model

import "time"

// AuditEntry is one append-only compliance record in the audit_logs table.
// Exactly one entry is written per completed answer invocation, success or
// user-visible failure. Entries are never updated or deleted.
type AuditEntry struct {
	ID        int64     `json:"id"`
	OwnerID   int       `json:"user_id"`
	Query     string    `json:"user_query"`
	Response  string    `json:"ai_response"`
	LatencyMS float64   `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}
