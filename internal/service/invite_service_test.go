package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"creatorflow/internal/models"
)

type fakeMeetingEnsurer struct {
	meetings map[int64]*models.Meeting
	created  []int64
}

func (f *fakeMeetingEnsurer) GetByCreator(creatorID int64) (*models.Meeting, error) {
	return f.meetings[creatorID], nil
}

func (f *fakeMeetingEnsurer) Create(creatorID int64) (*models.Meeting, error) {
	m := &models.Meeting{ID: int64(len(f.created) + 1), CreatorID: creatorID, Status: models.MeetingNotBooked}
	if f.meetings == nil {
		f.meetings = make(map[int64]*models.Meeting)
	}
	f.meetings[creatorID] = m
	f.created = append(f.created, creatorID)
	return m, nil
}

type fakePause struct {
	paused bool
}

func (f *fakePause) NotificationsPaused() bool { return f.paused }

func inviteFixture(paused bool, mailerErrs []error) (*InviteService, *fakeMeetingEnsurer, *fakeDeliveryLog) {
	creators := &fakeCreators{creators: map[int64]*models.Creator{
		10: {ID: 10, Name: "Ada", Email: "ada@example.com"},
	}}
	meetings := &fakeMeetingEnsurer{meetings: map[int64]*models.Meeting{}}
	logStore := &fakeDeliveryLog{}
	dispatcher := NewDispatcher(&fakeMailer{errs: mailerErrs}, logStore, 3, time.Millisecond)
	dispatcher.sleep = func(time.Duration) {}
	svc := NewInviteService(creators, meetings, dispatcher, &fakePause{paused: paused}, "https://app.example.com")
	return svc, meetings, logStore
}

func TestSendInvitationCreatesMeetingRecord(t *testing.T) {
	svc, meetings, logStore := inviteFixture(false, nil)

	entry, err := svc.SendInvitation(context.Background(), 10)
	if err != nil {
		t.Fatalf("SendInvitation() error = %v", err)
	}
	if entry.Status != models.DeliverySent {
		t.Errorf("status = %s, want sent", entry.Status)
	}
	if entry.EmailType != models.EmailTypeInvitation {
		t.Errorf("email type = %s, want invitation", entry.EmailType)
	}
	if len(meetings.created) != 1 || meetings.created[0] != 10 {
		t.Errorf("expected a meeting record for creator 10, got %v", meetings.created)
	}
	if len(logStore.entries) != 1 {
		t.Errorf("expected 1 delivery entry, got %d", len(logStore.entries))
	}
}

func TestSendInvitationReinviteAppendsNewEntry(t *testing.T) {
	svc, meetings, logStore := inviteFixture(false, nil)

	if _, err := svc.SendInvitation(context.Background(), 10); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendInvitation(context.Background(), 10); err != nil {
		t.Fatal(err)
	}

	if len(logStore.entries) != 2 {
		t.Errorf("expected 2 delivery entries for a re-invite, got %d", len(logStore.entries))
	}
	if len(meetings.created) != 1 {
		t.Errorf("re-invite must not create a second meeting, got %d", len(meetings.created))
	}
}

func TestSendInvitationPaused(t *testing.T) {
	svc, _, logStore := inviteFixture(true, nil)

	if _, err := svc.SendInvitation(context.Background(), 10); !errors.Is(err, ErrNotificationsPaused) {
		t.Errorf("SendInvitation() error = %v, want ErrNotificationsPaused", err)
	}
	if len(logStore.entries) != 0 {
		t.Errorf("no delivery attempt expected while paused, got %d", len(logStore.entries))
	}
}

func TestSendInvitationUnknownCreator(t *testing.T) {
	svc, _, _ := inviteFixture(false, nil)

	if _, err := svc.SendInvitation(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("SendInvitation() error = %v, want ErrNotFound", err)
	}
}

func TestSendInvitationTransientFailureKeepsMeeting(t *testing.T) {
	transient := errors.New("timeout")
	svc, meetings, logStore := inviteFixture(false, []error{transient, transient, transient})

	entry, err := svc.SendInvitation(context.Background(), 10)
	if !errors.Is(err, ErrMailTransientFailure) {
		t.Fatalf("SendInvitation() error = %v, want ErrMailTransientFailure", err)
	}
	if entry == nil || entry.Status != models.DeliveryFailed {
		t.Error("final entry should be failed")
	}
	if len(meetings.created) != 1 {
		t.Error("meeting record should survive a failed delivery")
	}
	if len(logStore.entries) != 3 {
		t.Errorf("expected 3 attempt entries, got %d", len(logStore.entries))
	}
}
