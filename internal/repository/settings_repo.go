package repository

import (
	"database/sql"

	"creatorflow/internal/database"
)

// SettingsRepository stores small operational flags for the pipeline
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key; empty string when unset
func (r *SettingsRepository) GetSetting(key string) (string, error) {
	var value string
	query := `SELECT value FROM settings WHERE key = ?`
	err := r.db.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(key, value string) error {
	query := r.db.Dialect.UpsertSetting()
	_, err := r.db.Exec(query, key, value)
	return err
}

// NotificationsPaused checks whether outbound notifications are paused.
// Used as an operational kill switch during channel incidents.
func (r *SettingsRepository) NotificationsPaused() bool {
	value, err := r.GetSetting("notifications_paused")
	if err != nil {
		return false // Default to sending
	}
	return value == "true"
}

// SetNotificationsPaused pauses or resumes outbound notifications
func (r *SettingsRepository) SetNotificationsPaused(paused bool) error {
	value := "false"
	if paused {
		value = "true"
	}
	return r.SetSetting("notifications_paused", value)
}
