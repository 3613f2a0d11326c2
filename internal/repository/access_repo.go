package repository

import (
	"database/sql"
	"fmt"

	"creatorflow/internal/database"
	"creatorflow/internal/events"
	"creatorflow/internal/models"
)

// AccessRepository handles the single access-grant row per creator.
// All writes go through CompareAndSwap; there is deliberately no
// unconditional update so concurrent operators cannot clobber each other.
type AccessRepository struct {
	db  *database.DB
	bus *events.Bus
}

// NewAccessRepository creates a new access repository
func NewAccessRepository(db *database.DB, bus *events.Bus) *AccessRepository {
	return &AccessRepository{db: db, bus: bus}
}

// Get retrieves the access grant for a creator; returns nil when no row
// exists, which callers must treat as no_access
func (r *AccessRepository) Get(creatorID int64) (*models.AccessGrant, error) {
	query := `
		SELECT creator_id, level, granted_at, granted_by, grant_method
		FROM access_grants
		WHERE creator_id = ?
	`
	grant := &models.AccessGrant{}
	err := r.db.QueryRow(query, creatorID).Scan(
		&grant.CreatorID,
		&grant.Level,
		&grant.GrantedAt,
		&grant.GrantedBy,
		&grant.Method,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access grant: %w", err)
	}

	return grant, nil
}

// CompareAndSwap applies the grant only if the stored level still equals
// expected. When expected is no_access the row must not exist yet and an
// insert-if-absent is attempted instead. Returns false without error when
// the precondition no longer holds, so duplicate invocations are safe.
func (r *AccessRepository) CompareAndSwap(grant *models.AccessGrant, expected models.AccessLevel) (bool, error) {
	var result sql.Result
	var err error

	if expected == models.AccessNone {
		result, err = r.db.Exec(r.db.Dialect.InsertAccessGrantIfAbsent(),
			grant.CreatorID, grant.Level, grant.GrantedAt, grant.GrantedBy, grant.Method)
	} else {
		query := `
			UPDATE access_grants
			SET level = ?, granted_at = ?, granted_by = ?, grant_method = ?
			WHERE creator_id = ? AND level = ?
		`
		result, err = r.db.Exec(query,
			grant.Level, grant.GrantedAt, grant.GrantedBy, grant.Method,
			grant.CreatorID, expected)
	}
	if err != nil {
		return false, fmt.Errorf("failed to apply access transition: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read access transition result: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	r.bus.Publish(events.Event{Table: "access_grants", Kind: events.KindUpdate})
	return true, nil
}
