package database

import (
	"context"
	"fmt"
	"time"

	"github.com/firstservice/askbank/helper"
	"github.com/firstservice/askbank/model"
	loadSql "github.com/firstservice/askbank/sql"
)

// AuditDBHandlerFunctions defines the interface for audit log operations.
// The log is append-only: there are no update or delete operations.
type AuditDBHandlerFunctions interface {
	InsertEntry(entry *model.AuditEntry) error
	SelectRecentEntries(limit int) ([]*model.AuditEntry, error)
	SelectEntriesSince(since time.Time) ([]*model.AuditEntry, error)
	CountEntries() (int64, error)
	AverageLatency() (float64, error)
}

// AuditDBHandler handles the audit_logs table.
type AuditDBHandler struct {
	db *helper.Database
}

// NewAuditDBHandler creates a new audit log handler.
// It loads the audit-related SQL functions and creates the audit_logs
// table if it does not exist yet. If force is true the SQL functions are
// reloaded even if they already exist.
func NewAuditDBHandler(db *helper.Database, force bool) (*AuditDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	auditDbHandler := &AuditDBHandler{
		db: db,
	}

	err := loadSql.LoadAuditSql(auditDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load audit sql", err)
	}

	err = auditDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized AuditDBHandler")

	return auditDbHandler, nil
}

// CreateTable creates the 'audit_logs' table in the database.
// If the table already exists, it does not create it again.
func (h *AuditDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_audit_logs();`)
	if err != nil {
		return helper.NewError("initialize audit_logs table", err)
	}

	h.db.Logger.Info("Checked/created table audit_logs")

	return nil
}

// InsertEntry appends one audit entry. The id and created_at fields are
// assigned by the database and written back into the entry.
func (h *AuditDBHandler) InsertEntry(entry *model.AuditEntry) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_audit_log($1, $2, $3, $4)`,
		entry.OwnerID,
		entry.Query,
		entry.Response,
		entry.LatencyMS,
	)

	err := row.Scan(
		&entry.ID,
		&entry.OwnerID,
		&entry.Query,
		&entry.Response,
		&entry.LatencyMS,
		&entry.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", fmt.Errorf("%w: %w", model.ErrAuditWrite, err))
	}

	return nil
}

// SelectRecentEntries retrieves the most recent entries, newest first.
func (h *AuditDBHandler) SelectRecentEntries(limit int) ([]*model.AuditEntry, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_recent_audit_logs($1)`,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entries []*model.AuditEntry
	for rows.Next() {
		entry := &model.AuditEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.OwnerID,
			&entry.Query,
			&entry.Response,
			&entry.LatencyMS,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entries = append(entries, entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entries, nil
}

// SelectEntriesSince retrieves all entries created at or after the given
// time, newest first.
func (h *AuditDBHandler) SelectEntriesSince(since time.Time) ([]*model.AuditEntry, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_audit_logs_since($1)`,
		since,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entries []*model.AuditEntry
	for rows.Next() {
		entry := &model.AuditEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.OwnerID,
			&entry.Query,
			&entry.Response,
			&entry.LatencyMS,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entries = append(entries, entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entries, nil
}

// CountEntries returns the total number of audit entries.
func (h *AuditDBHandler) CountEntries() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_audit_logs()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// AverageLatency returns the average latency_ms over all entries, 0 when
// the log is empty.
func (h *AuditDBHandler) AverageLatency() (float64, error) {
	var avg float64
	err := h.db.Instance.QueryRow(`SELECT avg_audit_latency()`).Scan(&avg)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return avg, nil
}
