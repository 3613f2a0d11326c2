package models

import "time"

// Creator represents a creator moving through the activation funnel
type Creator struct {
	ID        int64
	Name      string
	Email     string
	ManagerID *int64 // assigned manager (operator), optional
	CreatedAt time.Time
	UpdatedAt time.Time
}
