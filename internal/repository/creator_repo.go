package repository

import (
	"database/sql"
	"fmt"
	"time"

	"creatorflow/internal/database"
	"creatorflow/internal/events"
	"creatorflow/internal/models"
)

// CreatorRepository handles database operations for creators
type CreatorRepository struct {
	db  *database.DB
	bus *events.Bus
}

// NewCreatorRepository creates a new creator repository
func NewCreatorRepository(db *database.DB, bus *events.Bus) *CreatorRepository {
	return &CreatorRepository{db: db, bus: bus}
}

const creatorColumns = "id, name, email, manager_id, created_at, updated_at"

// Create inserts a new creator at signup
func (r *CreatorRepository) Create(name, email string, managerID *int64) (*models.Creator, error) {
	query := `
		INSERT INTO creators (name, email, manager_id)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, name, email, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create creator: %w", err)
	}

	r.bus.Publish(events.Event{Table: "creators", Kind: events.KindInsert})

	return &models.Creator{
		ID:        id,
		Name:      name,
		Email:     email,
		ManagerID: managerID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetByID retrieves a creator by ID; returns nil when not found
func (r *CreatorRepository) GetByID(id int64) (*models.Creator, error) {
	query := "SELECT " + creatorColumns + " FROM creators WHERE id = ?"

	creator := &models.Creator{}
	err := r.db.QueryRow(query, id).Scan(
		&creator.ID,
		&creator.Name,
		&creator.Email,
		&creator.ManagerID,
		&creator.CreatedAt,
		&creator.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}

	return creator, nil
}

// GetByEmail retrieves a creator by email; returns nil when not found
func (r *CreatorRepository) GetByEmail(email string) (*models.Creator, error) {
	query := "SELECT " + creatorColumns + " FROM creators WHERE email = ?"

	creator := &models.Creator{}
	err := r.db.QueryRow(query, email).Scan(
		&creator.ID,
		&creator.Name,
		&creator.Email,
		&creator.ManagerID,
		&creator.CreatedAt,
		&creator.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator by email: %w", err)
	}

	return creator, nil
}

// List retrieves all creators, newest first
func (r *CreatorRepository) List() ([]models.Creator, error) {
	query := "SELECT " + creatorColumns + " FROM creators ORDER BY created_at DESC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query creators: %w", err)
	}
	defer rows.Close()

	var creators []models.Creator
	for rows.Next() {
		var creator models.Creator
		if err := rows.Scan(
			&creator.ID,
			&creator.Name,
			&creator.Email,
			&creator.ManagerID,
			&creator.CreatedAt,
			&creator.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan creator: %w", err)
		}
		creators = append(creators, creator)
	}

	return creators, nil
}

// UpdateProfile updates a creator's profile attributes
func (r *CreatorRepository) UpdateProfile(id int64, name, email string) error {
	query := `
		UPDATE creators
		SET name = ?, email = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, name, email, id)
	if err != nil {
		return fmt.Errorf("failed to update creator: %w", err)
	}

	r.bus.Publish(events.Event{Table: "creators", Kind: events.KindUpdate})
	return nil
}

// AssignManager sets or clears a creator's assigned manager
func (r *CreatorRepository) AssignManager(id int64, managerID *int64) error {
	query := `
		UPDATE creators
		SET manager_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, managerID, id)
	if err != nil {
		return fmt.Errorf("failed to assign manager: %w", err)
	}

	r.bus.Publish(events.Event{Table: "creators", Kind: events.KindUpdate})
	return nil
}
