package repository

import (
	"database/sql"
	"fmt"
	"time"

	"creatorflow/internal/database"
	"creatorflow/internal/events"
	"creatorflow/internal/models"
)

// MeetingRepository handles database operations for onboarding meetings
type MeetingRepository struct {
	db  *database.DB
	bus *events.Bus
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *database.DB, bus *events.Bus) *MeetingRepository {
	return &MeetingRepository{db: db, bus: bus}
}

const meetingColumns = `id, creator_id, status, meeting_date, meeting_time, completed_at,
		reschedule_requested, reschedule_date, reschedule_time, reschedule_reason, reschedule_requested_at,
		created_at, updated_at`

// Create inserts a meeting record for a creator, initially not booked.
// Called when the first invitation is sent.
func (r *MeetingRepository) Create(creatorID int64) (*models.Meeting, error) {
	query := `
		INSERT INTO meetings (creator_id, status)
		VALUES (?, ?)
	`
	id, err := r.db.ExecReturningID(query, creatorID, models.MeetingNotBooked)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	r.bus.Publish(events.Event{Table: "meetings", Kind: events.KindInsert})

	return &models.Meeting{
		ID:        id,
		CreatorID: creatorID,
		Status:    models.MeetingNotBooked,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetByID retrieves a meeting by ID; returns nil when not found
func (r *MeetingRepository) GetByID(id int64) (*models.Meeting, error) {
	query := "SELECT " + meetingColumns + " FROM meetings WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByCreator retrieves the most recent meeting for a creator;
// returns nil when the creator has no meeting record
func (r *MeetingRepository) GetByCreator(creatorID int64) (*models.Meeting, error) {
	query := "SELECT " + meetingColumns + " FROM meetings WHERE creator_id = ? ORDER BY id DESC LIMIT 1"
	return r.scanOne(r.db.QueryRow(query, creatorID))
}

// Update persists the mutable fields of a meeting
func (r *MeetingRepository) Update(m *models.Meeting) error {
	query := `
		UPDATE meetings
		SET status = ?, meeting_date = ?, meeting_time = ?, completed_at = ?,
			reschedule_requested = ?, reschedule_date = ?, reschedule_time = ?,
			reschedule_reason = ?, reschedule_requested_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		m.Status, m.MeetingDate, m.MeetingTime, m.CompletedAt,
		m.RescheduleRequested, m.RescheduleDate, m.RescheduleTime,
		m.RescheduleReason, m.RescheduleAt,
		m.ID)
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}

	r.bus.Publish(events.Event{Table: "meetings", Kind: events.KindUpdate})
	return nil
}

func (r *MeetingRepository) scanOne(row *sql.Row) (*models.Meeting, error) {
	m := &models.Meeting{}
	err := row.Scan(
		&m.ID,
		&m.CreatorID,
		&m.Status,
		&m.MeetingDate,
		&m.MeetingTime,
		&m.CompletedAt,
		&m.RescheduleRequested,
		&m.RescheduleDate,
		&m.RescheduleTime,
		&m.RescheduleReason,
		&m.RescheduleAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	return m, nil
}
