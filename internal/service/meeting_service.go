package service

import (
	"fmt"
	"log"
	"time"

	"creatorflow/internal/models"
)

// MeetingStore reads and updates meeting records
type MeetingStore interface {
	GetByID(id int64) (*models.Meeting, error)
	GetByCreator(creatorID int64) (*models.Meeting, error)
	Update(m *models.Meeting) error
}

// AccessGranter applies the access transition that follows meeting completion
type AccessGranter interface {
	GrantAccess(performer *models.Operator, creatorID int64, newLevel models.AccessLevel, method models.GrantMethod, reason string) (*models.AccessGrant, error)
}

// MeetingService drives the meeting lifecycle: booking by the creator,
// confirmation, reschedule negotiation, cancellation, and completion.
// Completion is the pivot of the funnel; it grants the creator full access.
type MeetingService struct {
	meetings MeetingStore
	access   AccessGranter
}

// NewMeetingService creates a new meeting service
func NewMeetingService(meetings MeetingStore, access AccessGranter) *MeetingService {
	return &MeetingService{meetings: meetings, access: access}
}

// Book schedules a creator's meeting. Allowed from not_booked or cancelled;
// a booked meeting changes its slot through the reschedule flow instead.
func (s *MeetingService) Book(creatorID int64, date time.Time, timeSlot string) (*models.Meeting, error) {
	meeting, err := s.getByCreator(creatorID)
	if err != nil {
		return nil, err
	}

	if meeting.Status != models.MeetingNotBooked && meeting.Status != models.MeetingCancelled {
		return nil, fmt.Errorf("%w: cannot book a meeting in status %s", ErrInvalidTransition, meeting.Status)
	}

	meeting.Status = models.MeetingPending
	meeting.MeetingDate = &date
	meeting.MeetingTime = timeSlot

	if err := s.meetings.Update(meeting); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	return meeting, nil
}

// Confirm moves a pending meeting to confirmed
func (s *MeetingService) Confirm(meetingID int64) (*models.Meeting, error) {
	meeting, err := s.getByID(meetingID)
	if err != nil {
		return nil, err
	}

	if meeting.Status != models.MeetingPending {
		return nil, fmt.Errorf("%w: cannot confirm a meeting in status %s", ErrInvalidTransition, meeting.Status)
	}

	meeting.Status = models.MeetingConfirmed
	if err := s.meetings.Update(meeting); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	return meeting, nil
}

// RequestReschedule records the creator's proposed new slot. The proposal
// must carry both a date and a time; the existing slot stays in place until
// an operator approves.
func (s *MeetingService) RequestReschedule(meetingID int64, newDate time.Time, newTime, reason string) (*models.Meeting, error) {
	meeting, err := s.getByID(meetingID)
	if err != nil {
		return nil, err
	}

	if !meeting.IsBooked() {
		return nil, fmt.Errorf("%w: only a booked meeting can be rescheduled", ErrInvalidTransition)
	}

	now := time.Now()
	meeting.RescheduleRequested = true
	meeting.RescheduleDate = &newDate
	meeting.RescheduleTime = newTime
	meeting.RescheduleReason = reason
	meeting.RescheduleAt = &now

	if err := meeting.ValidateReschedule(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, err)
	}
	if err := s.meetings.Update(meeting); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	return meeting, nil
}

// ApproveReschedule adopts the proposed slot and clears the request. The
// meeting drops back to pending so the new slot gets confirmed in turn.
func (s *MeetingService) ApproveReschedule(meetingID int64) (*models.Meeting, error) {
	meeting, err := s.getByID(meetingID)
	if err != nil {
		return nil, err
	}

	if !meeting.RescheduleRequested {
		return nil, fmt.Errorf("%w: no reschedule request pending", ErrInvalidTransition)
	}
	if err := meeting.ValidateReschedule(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, err)
	}

	meeting.MeetingDate = meeting.RescheduleDate
	meeting.MeetingTime = meeting.RescheduleTime
	meeting.Status = models.MeetingPending
	s.clearReschedule(meeting)

	if err := s.meetings.Update(meeting); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	return meeting, nil
}

// DeclineReschedule rejects the proposed slot; the original slot stands
func (s *MeetingService) DeclineReschedule(meetingID int64) (*models.Meeting, error) {
	meeting, err := s.getByID(meetingID)
	if err != nil {
		return nil, err
	}

	if !meeting.RescheduleRequested {
		return nil, fmt.Errorf("%w: no reschedule request pending", ErrInvalidTransition)
	}

	s.clearReschedule(meeting)
	if err := s.meetings.Update(meeting); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	return meeting, nil
}

// Cancel marks the meeting cancelled. Never a delete; the record and its
// history stay queryable and the slot can be rebooked.
func (s *MeetingService) Cancel(meetingID int64) (*models.Meeting, error) {
	meeting, err := s.getByID(meetingID)
	if err != nil {
		return nil, err
	}

	if meeting.Status == models.MeetingCompleted {
		return nil, fmt.Errorf("%w: cannot cancel a completed meeting", ErrInvalidTransition)
	}

	meeting.Status = models.MeetingCancelled
	s.clearReschedule(meeting)

	if err := s.meetings.Update(meeting); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	return meeting, nil
}

// Complete marks the meeting completed and grants the creator full access.
// The completion is persisted before the grant; if the grant fails the
// error is returned but the completed status stands, since completing is
// a fact about the meeting, not about access.
func (s *MeetingService) Complete(performer *models.Operator, meetingID int64) (*models.Meeting, error) {
	meeting, err := s.getByID(meetingID)
	if err != nil {
		return nil, err
	}

	if meeting.Status != models.MeetingPending && meeting.Status != models.MeetingConfirmed {
		return nil, fmt.Errorf("%w: cannot complete a meeting in status %s", ErrInvalidTransition, meeting.Status)
	}

	now := time.Now()
	meeting.Status = models.MeetingCompleted
	meeting.CompletedAt = &now
	s.clearReschedule(meeting)

	if err := s.meetings.Update(meeting); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	if _, err := s.access.GrantAccess(performer, meeting.CreatorID, models.AccessFull, models.GrantMeetingCompletion, "onboarding meeting completed"); err != nil {
		log.Printf("Meeting %d completed but access grant failed for creator %d: %v", meeting.ID, meeting.CreatorID, err)
		return meeting, err
	}

	return meeting, nil
}

func (s *MeetingService) getByID(meetingID int64) (*models.Meeting, error) {
	meeting, err := s.meetings.GetByID(meetingID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if meeting == nil {
		return nil, ErrNotFound
	}
	return meeting, nil
}

func (s *MeetingService) getByCreator(creatorID int64) (*models.Meeting, error) {
	meeting, err := s.meetings.GetByCreator(creatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if meeting == nil {
		return nil, ErrNotFound
	}
	return meeting, nil
}

func (s *MeetingService) clearReschedule(meeting *models.Meeting) {
	meeting.RescheduleRequested = false
	meeting.RescheduleDate = nil
	meeting.RescheduleTime = ""
	meeting.RescheduleReason = ""
	meeting.RescheduleAt = nil
}
