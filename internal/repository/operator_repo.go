package repository

import (
	"database/sql"
	"fmt"
	"time"

	"creatorflow/internal/database"
	"creatorflow/internal/models"
)

// OperatorRepository handles database operations for operators and sessions
type OperatorRepository struct {
	db *database.DB
}

// NewOperatorRepository creates a new operator repository
func NewOperatorRepository(db *database.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

const operatorColumns = `id, email, password_hash, name, role,
		COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at`

// Create inserts a new operator. The first operator account becomes admin;
// everyone after that starts as a manager.
func (r *OperatorRepository) Create(email, passwordHash, name string) (*models.Operator, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM operators").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count operators: %w", err)
	}

	role := models.RoleManager
	if count == 0 {
		role = models.RoleAdmin
	}

	query := `
		INSERT INTO operators (email, password_hash, name, role)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, passwordHash, name, role)
	if err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	return &models.Operator{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

// GetByEmail retrieves an operator by email; returns nil when not found
func (r *OperatorRepository) GetByEmail(email string) (*models.Operator, error) {
	query := "SELECT " + operatorColumns + " FROM operators WHERE email = ?"
	return r.scanOne(r.db.QueryRow(query, email))
}

// GetByID retrieves an operator by ID; returns nil when not found
func (r *OperatorRepository) GetByID(id int64) (*models.Operator, error) {
	query := "SELECT " + operatorColumns + " FROM operators WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByOAuth retrieves an operator by OAuth provider and subject
func (r *OperatorRepository) GetByOAuth(provider, subject string) (*models.Operator, error) {
	query := "SELECT " + operatorColumns + " FROM operators WHERE oauth_provider = ? AND oauth_subject = ?"
	return r.scanOne(r.db.QueryRow(query, provider, subject))
}

// LinkOAuthProvider links an existing operator to an OAuth identity
func (r *OperatorRepository) LinkOAuthProvider(operatorID int64, provider, subject string) error {
	query := `
		UPDATE operators
		SET oauth_provider = ?, oauth_subject = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		AND (oauth_provider IS NULL OR oauth_provider = '')
	`
	result, err := r.db.Exec(query, provider, subject, operatorID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read link result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("oauth provider already linked")
	}

	return nil
}

// CreateSession creates a new session for an operator
func (r *OperatorRepository) CreateSession(sessionID string, operatorID int64, expiresAt time.Time) (*models.Session, error) {
	query := `
		INSERT INTO sessions (id, operator_id, expires_at)
		VALUES (?, ?, ?)
	`
	_, err := r.db.Exec(query, sessionID, operatorID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:         sessionID,
		OperatorID: operatorID,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now(),
	}, nil
}

// GetSession retrieves a session by ID; returns nil when not found
func (r *OperatorRepository) GetSession(sessionID string) (*models.Session, error) {
	query := `
		SELECT id, operator_id, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.OperatorID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// DeleteSession removes a session from the database
func (r *OperatorRepository) DeleteSession(sessionID string) error {
	query := "DELETE FROM sessions WHERE id = ?"
	_, err := r.db.Exec(query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions
func (r *OperatorRepository) DeleteExpiredSessions() error {
	query := "DELETE FROM sessions WHERE expires_at < ?"
	_, err := r.db.Exec(query, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}

func (r *OperatorRepository) scanOne(row *sql.Row) (*models.Operator, error) {
	op := &models.Operator{}
	err := row.Scan(
		&op.ID,
		&op.Email,
		&op.PasswordHash,
		&op.Name,
		&op.Role,
		&op.OAuthProvider,
		&op.OAuthSubject,
		&op.CreatedAt,
		&op.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	return op, nil
}
