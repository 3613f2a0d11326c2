package models

import "time"

// AuditAction is the kind of access-level transition being recorded
type AuditAction string

const (
	AuditGranted AuditAction = "granted"
	AuditRevoked AuditAction = "revoked"
)

// AuditLogEntry is an append-only record of an access-level transition.
// The audit trail is advisory; the access grant itself is authoritative.
type AuditLogEntry struct {
	ID          int64
	CreatorID   int64
	Action      AuditAction
	Role        string // level granted or revoked
	PerformedBy int64
	Reason      string
	CreatedAt   time.Time
}
