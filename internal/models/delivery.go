package models

import "time"

// DeliveryStatus is the state of a single notification attempt
type DeliveryStatus string

const (
	DeliveryPending  DeliveryStatus = "pending"
	DeliverySent     DeliveryStatus = "sent"
	DeliveryFailed   DeliveryStatus = "failed"
	DeliveryRetrying DeliveryStatus = "retrying"
)

// Email types recorded in the delivery log
const (
	EmailTypeInvitation    = "invitation"
	EmailTypeAccessGranted = "access_granted"
)

// DeliveryLogEntry is an append-only record of one notification attempt.
// Entries are never mutated once written; readers wanting the delivery
// state of a creator must take the most recent entry for the email type.
type DeliveryLogEntry struct {
	ID           int64
	CreatorID    int64
	EmailType    string
	Recipient    string
	Status       DeliveryStatus
	RetryCount   int
	MaxRetries   int
	SentAt       *time.Time
	FailedAt     *time.Time
	LastRetryAt  *time.Time
	ErrorMessage string
	CreatedAt    time.Time
}

// IsTerminal reports whether the entry reached a final state
func (e *DeliveryLogEntry) IsTerminal() bool {
	return e.Status == DeliverySent || e.Status == DeliveryFailed
}

// Delivered reports whether this entry records a successful send
func (e *DeliveryLogEntry) Delivered() bool {
	return e.Status == DeliverySent && e.SentAt != nil
}
