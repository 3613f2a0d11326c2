package repository

import (
	"database/sql"
	"fmt"
	"time"

	"creatorflow/internal/database"
	"creatorflow/internal/events"
	"creatorflow/internal/models"
)

// DeliveryRepository handles the append-only notification delivery log.
// Entries are inserted and read, never updated; the most recent entry for
// a creator and email type is the delivery state of record.
type DeliveryRepository struct {
	db  *database.DB
	bus *events.Bus
}

// NewDeliveryRepository creates a new delivery log repository
func NewDeliveryRepository(db *database.DB, bus *events.Bus) *DeliveryRepository {
	return &DeliveryRepository{db: db, bus: bus}
}

const deliveryColumns = `id, creator_id, email_type, recipient, status, retry_count, max_retries,
		sent_at, failed_at, last_retry_at, COALESCE(error_message, ''), created_at`

// Append records one notification attempt
func (r *DeliveryRepository) Append(e *models.DeliveryLogEntry) (int64, error) {
	query := `
		INSERT INTO delivery_log (creator_id, email_type, recipient, status, retry_count, max_retries,
			sent_at, failed_at, last_retry_at, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		e.CreatorID, e.EmailType, e.Recipient, e.Status, e.RetryCount, e.MaxRetries,
		e.SentAt, e.FailedAt, e.LastRetryAt, e.ErrorMessage)
	if err != nil {
		return 0, fmt.Errorf("failed to append delivery log entry: %w", err)
	}

	e.ID = id
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	r.bus.Publish(events.Event{Table: "delivery_log", Kind: events.KindInsert})
	return id, nil
}

// LatestByCreatorAndType retrieves the most recent entry for a creator and
// email type; returns nil when no attempt was ever recorded
func (r *DeliveryRepository) LatestByCreatorAndType(creatorID int64, emailType string) (*models.DeliveryLogEntry, error) {
	query := "SELECT " + deliveryColumns + ` FROM delivery_log
		WHERE creator_id = ? AND email_type = ?
		ORDER BY id DESC LIMIT 1`

	e := &models.DeliveryLogEntry{}
	err := r.db.QueryRow(query, creatorID, emailType).Scan(
		&e.ID, &e.CreatorID, &e.EmailType, &e.Recipient, &e.Status, &e.RetryCount, &e.MaxRetries,
		&e.SentAt, &e.FailedAt, &e.LastRetryAt, &e.ErrorMessage, &e.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest delivery entry: %w", err)
	}

	return e, nil
}

// ListByCreator retrieves all delivery entries for a creator, newest first
func (r *DeliveryRepository) ListByCreator(creatorID int64) ([]models.DeliveryLogEntry, error) {
	query := "SELECT " + deliveryColumns + " FROM delivery_log WHERE creator_id = ? ORDER BY id DESC"

	rows, err := r.db.Query(query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery log: %w", err)
	}
	defer rows.Close()

	return scanDeliveryRows(rows)
}

// ListFailed retrieves the most recent failed entries across all creators,
// for the dashboard's manual re-trigger view
func (r *DeliveryRepository) ListFailed(limit int) ([]models.DeliveryLogEntry, error) {
	query := "SELECT " + deliveryColumns + ` FROM delivery_log
		WHERE status = ?
		ORDER BY id DESC LIMIT ` + fmt.Sprintf("%d", limit)

	rows, err := r.db.Query(query, models.DeliveryFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed deliveries: %w", err)
	}
	defer rows.Close()

	return scanDeliveryRows(rows)
}

func scanDeliveryRows(rows *sql.Rows) ([]models.DeliveryLogEntry, error) {
	var entries []models.DeliveryLogEntry
	for rows.Next() {
		var e models.DeliveryLogEntry
		if err := rows.Scan(
			&e.ID, &e.CreatorID, &e.EmailType, &e.Recipient, &e.Status, &e.RetryCount, &e.MaxRetries,
			&e.SentAt, &e.FailedAt, &e.LastRetryAt, &e.ErrorMessage, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan delivery entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
