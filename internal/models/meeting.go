package models

import (
	"errors"
	"time"
)

// MeetingStatus is the lifecycle status of an onboarding meeting
type MeetingStatus string

const (
	MeetingNotBooked MeetingStatus = "not_booked"
	MeetingPending   MeetingStatus = "pending"
	MeetingConfirmed MeetingStatus = "confirmed"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
)

// IsValid reports whether s is one of the known meeting statuses
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingNotBooked, MeetingPending, MeetingConfirmed, MeetingCompleted, MeetingCancelled:
		return true
	}
	return false
}

// Meeting represents a creator's onboarding meeting. Created when the first
// invitation is sent; cancellation is a status change, never a delete.
type Meeting struct {
	ID          int64
	CreatorID   int64
	Status      MeetingStatus
	MeetingDate *time.Time
	MeetingTime string
	CompletedAt *time.Time

	RescheduleRequested bool
	RescheduleDate      *time.Time
	RescheduleTime      string
	RescheduleReason    string
	RescheduleAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

var ErrRescheduleIncomplete = errors.New("reschedule request requires a new date and time")

// ValidateReschedule enforces that a pending reschedule request always
// carries the proposed new date and time
func (m *Meeting) ValidateReschedule() error {
	if m.RescheduleRequested && (m.RescheduleDate == nil || m.RescheduleTime == "") {
		return ErrRescheduleIncomplete
	}
	return nil
}

// IsBooked reports whether the meeting occupies a calendar slot
func (m *Meeting) IsBooked() bool {
	return (m.Status == MeetingPending || m.Status == MeetingConfirmed) && m.MeetingDate != nil
}
