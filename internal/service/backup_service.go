package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"creatorflow/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string                  `json:"version"`
	ExportedAt   time.Time               `json:"exported_at"`
	DatabaseType string                  `json:"database_type"`
	Operators    []OperatorBackup        `json:"operators"`
	Creators     []CreatorBackup         `json:"creators"`
	AccessGrants []AccessGrantBackup     `json:"access_grants"`
	Meetings     []MeetingBackup         `json:"meetings"`
	Deliveries   []DeliveryLogBackup     `json:"delivery_log"`
	AuditEntries []AuditLogBackup        `json:"audit_log"`
	Settings     map[string]string       `json:"settings"`
}

// OperatorBackup represents an operator record for backup
type OperatorBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreatorBackup represents a creator record for backup
type CreatorBackup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ManagerID *int64    `json:"manager_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccessGrantBackup represents an access grant for backup
type AccessGrantBackup struct {
	CreatorID int64     `json:"creator_id"`
	Level     string    `json:"level"`
	GrantedAt time.Time `json:"granted_at"`
	GrantedBy int64     `json:"granted_by"`
	Method    string    `json:"grant_method"`
}

// MeetingBackup represents a meeting record for backup
type MeetingBackup struct {
	ID                    int64      `json:"id"`
	CreatorID             int64      `json:"creator_id"`
	Status                string     `json:"status"`
	MeetingDate           *time.Time `json:"meeting_date"`
	MeetingTime           string     `json:"meeting_time"`
	CompletedAt           *time.Time `json:"completed_at"`
	RescheduleRequested   bool       `json:"reschedule_requested"`
	RescheduleDate        *time.Time `json:"reschedule_date"`
	RescheduleTime        string     `json:"reschedule_time"`
	RescheduleReason      string     `json:"reschedule_reason"`
	RescheduleRequestedAt *time.Time `json:"reschedule_requested_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// DeliveryLogBackup represents a delivery log entry for backup
type DeliveryLogBackup struct {
	ID           int64      `json:"id"`
	CreatorID    int64      `json:"creator_id"`
	EmailType    string     `json:"email_type"`
	Recipient    string     `json:"recipient"`
	Status       string     `json:"status"`
	RetryCount   int        `json:"retry_count"`
	MaxRetries   int        `json:"max_retries"`
	SentAt       *time.Time `json:"sent_at"`
	FailedAt     *time.Time `json:"failed_at"`
	LastRetryAt  *time.Time `json:"last_retry_at"`
	ErrorMessage string     `json:"error_message"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AuditLogBackup represents an audit log entry for backup
type AuditLogBackup struct {
	ID          int64     `json:"id"`
	CreatorID   int64     `json:"creator_id"`
	Action      string    `json:"action"`
	Role        string    `json:"role"`
	PerformedBy int64     `json:"performed_by"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// GetDB returns the database connection for direct queries
func (s *BackupService) GetDB() *database.DB {
	return s.db
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer (useful for HTTP responses)
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		DatabaseType: "universal",
		Settings:     make(map[string]string),
	}

	if err := s.exportOperators(backup); err != nil {
		return fmt.Errorf("failed to export operators: %w", err)
	}
	if err := s.exportCreators(backup); err != nil {
		return fmt.Errorf("failed to export creators: %w", err)
	}
	if err := s.exportAccessGrants(backup); err != nil {
		return fmt.Errorf("failed to export access grants: %w", err)
	}
	if err := s.exportMeetings(backup); err != nil {
		return fmt.Errorf("failed to export meetings: %w", err)
	}
	if err := s.exportDeliveries(backup); err != nil {
		return fmt.Errorf("failed to export delivery log: %w", err)
	}
	if err := s.exportAuditEntries(backup); err != nil {
		return fmt.Errorf("failed to export audit log: %w", err)
	}
	if err := s.exportSettings(backup); err != nil {
		return fmt.Errorf("failed to export settings: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d operators, %d creators, %d grants, %d meetings, %d deliveries, %d audit entries",
		len(backup.Operators), len(backup.Creators), len(backup.AccessGrants),
		len(backup.Meetings), len(backup.Deliveries), len(backup.AuditEntries))

	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader (for file uploads)
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// A single transaction so a failed import leaves the database untouched
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	// Import in order of dependencies
	if err := s.importOperators(tx, backup.Operators); err != nil {
		return fmt.Errorf("failed to import operators: %w", err)
	}
	if err := s.importCreators(tx, backup.Creators); err != nil {
		return fmt.Errorf("failed to import creators: %w", err)
	}
	if err := s.importAccessGrants(tx, backup.AccessGrants); err != nil {
		return fmt.Errorf("failed to import access grants: %w", err)
	}
	if err := s.importMeetings(tx, backup.Meetings); err != nil {
		return fmt.Errorf("failed to import meetings: %w", err)
	}
	if err := s.importDeliveries(tx, backup.Deliveries); err != nil {
		return fmt.Errorf("failed to import delivery log: %w", err)
	}
	if err := s.importAuditEntries(tx, backup.AuditEntries); err != nil {
		return fmt.Errorf("failed to import audit log: %w", err)
	}
	if err := s.importSettings(tx, backup.Settings); err != nil {
		return fmt.Errorf("failed to import settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportOperators(backup *BackupData) error {
	query := "SELECT id, email, password_hash, name, role, oauth_provider, oauth_subject, created_at, updated_at FROM operators ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var o OperatorBackup
		if err := rows.Scan(&o.ID, &o.Email, &o.PasswordHash, &o.Name, &o.Role, &o.OAuthProvider, &o.OAuthSubject, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return err
		}
		backup.Operators = append(backup.Operators, o)
	}
	return rows.Err()
}

func (s *BackupService) exportCreators(backup *BackupData) error {
	query := "SELECT id, name, email, manager_id, created_at, updated_at FROM creators ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CreatorBackup
		var managerID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &managerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		if managerID.Valid {
			c.ManagerID = &managerID.Int64
		}
		backup.Creators = append(backup.Creators, c)
	}
	return rows.Err()
}

func (s *BackupService) exportAccessGrants(backup *BackupData) error {
	query := "SELECT creator_id, level, granted_at, granted_by, grant_method FROM access_grants ORDER BY creator_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g AccessGrantBackup
		if err := rows.Scan(&g.CreatorID, &g.Level, &g.GrantedAt, &g.GrantedBy, &g.Method); err != nil {
			return err
		}
		backup.AccessGrants = append(backup.AccessGrants, g)
	}
	return rows.Err()
}

func (s *BackupService) exportMeetings(backup *BackupData) error {
	query := "SELECT id, creator_id, status, meeting_date, meeting_time, completed_at, reschedule_requested, reschedule_date, reschedule_time, reschedule_reason, reschedule_requested_at, created_at, updated_at FROM meetings ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MeetingBackup
		var meetingDate, completedAt, rescheduleDate, rescheduleAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.CreatorID, &m.Status, &meetingDate, &m.MeetingTime, &completedAt,
			&m.RescheduleRequested, &rescheduleDate, &m.RescheduleTime, &m.RescheduleReason, &rescheduleAt,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return err
		}
		if meetingDate.Valid {
			m.MeetingDate = &meetingDate.Time
		}
		if completedAt.Valid {
			m.CompletedAt = &completedAt.Time
		}
		if rescheduleDate.Valid {
			m.RescheduleDate = &rescheduleDate.Time
		}
		if rescheduleAt.Valid {
			m.RescheduleRequestedAt = &rescheduleAt.Time
		}
		backup.Meetings = append(backup.Meetings, m)
	}
	return rows.Err()
}

func (s *BackupService) exportDeliveries(backup *BackupData) error {
	query := "SELECT id, creator_id, email_type, recipient, status, retry_count, max_retries, sent_at, failed_at, last_retry_at, error_message, created_at FROM delivery_log ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d DeliveryLogBackup
		var sentAt, failedAt, lastRetryAt sql.NullTime
		if err := rows.Scan(&d.ID, &d.CreatorID, &d.EmailType, &d.Recipient, &d.Status, &d.RetryCount, &d.MaxRetries,
			&sentAt, &failedAt, &lastRetryAt, &d.ErrorMessage, &d.CreatedAt); err != nil {
			return err
		}
		if sentAt.Valid {
			d.SentAt = &sentAt.Time
		}
		if failedAt.Valid {
			d.FailedAt = &failedAt.Time
		}
		if lastRetryAt.Valid {
			d.LastRetryAt = &lastRetryAt.Time
		}
		backup.Deliveries = append(backup.Deliveries, d)
	}
	return rows.Err()
}

func (s *BackupService) exportAuditEntries(backup *BackupData) error {
	query := "SELECT id, creator_id, action, role, performed_by, reason, created_at FROM audit_log ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AuditLogBackup
		if err := rows.Scan(&a.ID, &a.CreatorID, &a.Action, &a.Role, &a.PerformedBy, &a.Reason, &a.CreatedAt); err != nil {
			return err
		}
		backup.AuditEntries = append(backup.AuditEntries, a)
	}
	return rows.Err()
}

func (s *BackupService) exportSettings(backup *BackupData) error {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		backup.Settings[key] = value
	}
	return rows.Err()
}

func (s *BackupService) importOperators(tx database.DBTX, operators []OperatorBackup) error {
	log.Printf("Importing %d operators...", len(operators))
	for _, o := range operators {
		query := "INSERT INTO operators (id, email, password_hash, name, role, oauth_provider, oauth_subject, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, o.ID, o.Email, o.PasswordHash, o.Name, o.Role, o.OAuthProvider, o.OAuthSubject, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import operator %d: %w", o.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importCreators(tx database.DBTX, creators []CreatorBackup) error {
	log.Printf("Importing %d creators...", len(creators))
	for _, c := range creators {
		var managerID interface{} = nil
		if c.ManagerID != nil {
			managerID = *c.ManagerID
		}
		query := "INSERT INTO creators (id, name, email, manager_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, c.ID, c.Name, c.Email, managerID, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import creator %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importAccessGrants(tx database.DBTX, grants []AccessGrantBackup) error {
	log.Printf("Importing %d access grants...", len(grants))
	for _, g := range grants {
		query := "INSERT INTO access_grants (creator_id, level, granted_at, granted_by, grant_method) VALUES (?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, g.CreatorID, g.Level, g.GrantedAt, g.GrantedBy, g.Method)
		if err != nil {
			return fmt.Errorf("failed to import access grant for creator %d: %w", g.CreatorID, err)
		}
	}
	return nil
}

func (s *BackupService) importMeetings(tx database.DBTX, meetings []MeetingBackup) error {
	log.Printf("Importing %d meetings...", len(meetings))
	for _, m := range meetings {
		query := "INSERT INTO meetings (id, creator_id, status, meeting_date, meeting_time, completed_at, reschedule_requested, reschedule_date, reschedule_time, reschedule_reason, reschedule_requested_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, m.ID, m.CreatorID, m.Status, nullIfNilTime(m.MeetingDate), m.MeetingTime, nullIfNilTime(m.CompletedAt),
			m.RescheduleRequested, nullIfNilTime(m.RescheduleDate), m.RescheduleTime, m.RescheduleReason, nullIfNilTime(m.RescheduleRequestedAt),
			m.CreatedAt, m.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import meeting %d: %w", m.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importDeliveries(tx database.DBTX, deliveries []DeliveryLogBackup) error {
	log.Printf("Importing %d delivery log entries...", len(deliveries))
	for _, d := range deliveries {
		query := "INSERT INTO delivery_log (id, creator_id, email_type, recipient, status, retry_count, max_retries, sent_at, failed_at, last_retry_at, error_message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, d.ID, d.CreatorID, d.EmailType, d.Recipient, d.Status, d.RetryCount, d.MaxRetries,
			nullIfNilTime(d.SentAt), nullIfNilTime(d.FailedAt), nullIfNilTime(d.LastRetryAt), d.ErrorMessage, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import delivery log entry %d: %w", d.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importAuditEntries(tx database.DBTX, entries []AuditLogBackup) error {
	log.Printf("Importing %d audit log entries...", len(entries))
	for _, a := range entries {
		query := "INSERT INTO audit_log (id, creator_id, action, role, performed_by, reason, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, a.ID, a.CreatorID, a.Action, a.Role, a.PerformedBy, a.Reason, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import audit log entry %d: %w", a.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importSettings(tx database.DBTX, settings map[string]string) error {
	log.Printf("Importing %d settings...", len(settings))
	for key, value := range settings {
		if _, err := tx.Exec(tx.GetDialect().UpsertSetting(), key, value); err != nil {
			return fmt.Errorf("failed to import setting %s: %w", key, err)
		}
	}
	return nil
}

func nullIfNilTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
