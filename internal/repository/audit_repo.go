package repository

import (
	"fmt"
	"time"

	"creatorflow/internal/database"
	"creatorflow/internal/events"
	"creatorflow/internal/models"
)

// AuditRepository handles the append-only access transition audit trail
type AuditRepository struct {
	db  *database.DB
	bus *events.Bus
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *database.DB, bus *events.Bus) *AuditRepository {
	return &AuditRepository{db: db, bus: bus}
}

// Append records one access-level transition
func (r *AuditRepository) Append(e *models.AuditLogEntry) (int64, error) {
	query := `
		INSERT INTO audit_log (creator_id, action, role, performed_by, reason)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, e.CreatorID, e.Action, e.Role, e.PerformedBy, e.Reason)
	if err != nil {
		return 0, fmt.Errorf("failed to append audit entry: %w", err)
	}

	e.ID = id
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	r.bus.Publish(events.Event{Table: "audit_log", Kind: events.KindInsert})
	return id, nil
}

// ListByCreator retrieves all audit entries for a creator, newest first
func (r *AuditRepository) ListByCreator(creatorID int64) ([]models.AuditLogEntry, error) {
	query := `
		SELECT id, creator_id, action, role, performed_by, COALESCE(reason, ''), created_at
		FROM audit_log
		WHERE creator_id = ?
		ORDER BY id DESC
	`
	rows, err := r.db.Query(query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.CreatorID, &e.Action, &e.Role, &e.PerformedBy, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
