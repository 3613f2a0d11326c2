package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"creatorflow/internal/models"
)

var ErrNotificationsPaused = errors.New("notifications are paused")

// MeetingEnsurer creates the meeting record that tracks a creator's
// onboarding from the moment they are invited
type MeetingEnsurer interface {
	GetByCreator(creatorID int64) (*models.Meeting, error)
	Create(creatorID int64) (*models.Meeting, error)
}

// PauseChecker reports whether outbound notifications are paused
type PauseChecker interface {
	NotificationsPaused() bool
}

// InviteService sends onboarding invitations. Sending an invitation also
// ensures the creator has a meeting record, so the funnel can track the
// booking that should follow. Re-inviting an already-invited creator is an
// explicit operator action and always produces a new delivery log entry.
type InviteService struct {
	creators   CreatorGetter
	meetings   MeetingEnsurer
	dispatcher *Dispatcher
	settings   PauseChecker
	appBaseURL string
}

// NewInviteService creates a new invite service
func NewInviteService(creators CreatorGetter, meetings MeetingEnsurer, dispatcher *Dispatcher, settings PauseChecker, appBaseURL string) *InviteService {
	return &InviteService{
		creators:   creators,
		meetings:   meetings,
		dispatcher: dispatcher,
		settings:   settings,
		appBaseURL: appBaseURL,
	}
}

// SendInvitation dispatches an onboarding invitation to the creator and
// returns the final delivery log entry. A transient delivery failure after
// retries is reported to the caller but does not undo the meeting record;
// the failed entry stays visible for manual re-triggering.
func (s *InviteService) SendInvitation(ctx context.Context, creatorID int64) (*models.DeliveryLogEntry, error) {
	if s.settings != nil && s.settings.NotificationsPaused() {
		return nil, ErrNotificationsPaused
	}

	creator, err := s.creators.GetByID(creatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if creator == nil {
		return nil, ErrNotFound
	}

	meeting, err := s.meetings.GetByCreator(creatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if meeting == nil {
		if _, err := s.meetings.Create(creatorID); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
		}
		log.Printf("Created meeting record for creator %d on first invitation", creatorID)
	}

	return s.dispatcher.Send(ctx, ComposeInvitation(creator, s.appBaseURL))
}
