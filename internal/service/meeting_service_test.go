package service

import (
	"errors"
	"testing"
	"time"

	"creatorflow/internal/models"
)

type fakeMeetingStore struct {
	byID      map[int64]*models.Meeting
	byCreator map[int64]*models.Meeting
	updates   int
}

func (f *fakeMeetingStore) GetByID(id int64) (*models.Meeting, error) {
	return f.byID[id], nil
}

func (f *fakeMeetingStore) GetByCreator(creatorID int64) (*models.Meeting, error) {
	return f.byCreator[creatorID], nil
}

func (f *fakeMeetingStore) Update(m *models.Meeting) error {
	f.updates++
	return nil
}

type fakeGranter struct {
	grants []models.AccessLevel
	err    error
}

func (f *fakeGranter) GrantAccess(performer *models.Operator, creatorID int64, newLevel models.AccessLevel, method models.GrantMethod, reason string) (*models.AccessGrant, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.grants = append(f.grants, newLevel)
	return &models.AccessGrant{CreatorID: creatorID, Level: newLevel, Method: method}, nil
}

func meetingFixture(status models.MeetingStatus) (*MeetingService, *fakeMeetingStore, *fakeGranter) {
	date := time.Now().Add(24 * time.Hour)
	m := &models.Meeting{ID: 1, CreatorID: 10, Status: status}
	if status == models.MeetingPending || status == models.MeetingConfirmed {
		m.MeetingDate = &date
		m.MeetingTime = "10:00"
	}
	store := &fakeMeetingStore{
		byID:      map[int64]*models.Meeting{1: m},
		byCreator: map[int64]*models.Meeting{10: m},
	}
	granter := &fakeGranter{}
	return NewMeetingService(store, granter), store, granter
}

func TestMeetingBook(t *testing.T) {
	svc, store, _ := meetingFixture(models.MeetingNotBooked)

	meeting, err := svc.Book(10, time.Now().Add(48*time.Hour), "14:30")
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if meeting.Status != models.MeetingPending {
		t.Errorf("status = %s, want pending", meeting.Status)
	}
	if meeting.MeetingDate == nil || meeting.MeetingTime != "14:30" {
		t.Error("booked slot not recorded")
	}
	if store.updates != 1 {
		t.Errorf("updates = %d, want 1", store.updates)
	}
}

func TestMeetingBookRejectsAlreadyBooked(t *testing.T) {
	svc, store, _ := meetingFixture(models.MeetingConfirmed)

	if _, err := svc.Book(10, time.Now(), "09:00"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Book() error = %v, want ErrInvalidTransition", err)
	}
	if store.updates != 0 {
		t.Errorf("updates = %d, want 0", store.updates)
	}
}

func TestMeetingConfirm(t *testing.T) {
	svc, _, _ := meetingFixture(models.MeetingPending)

	meeting, err := svc.Confirm(1)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if meeting.Status != models.MeetingConfirmed {
		t.Errorf("status = %s, want confirmed", meeting.Status)
	}
}

func TestMeetingRescheduleFlow(t *testing.T) {
	svc, _, _ := meetingFixture(models.MeetingConfirmed)
	newDate := time.Now().Add(96 * time.Hour)

	meeting, err := svc.RequestReschedule(1, newDate, "16:00", "conflict with a shoot")
	if err != nil {
		t.Fatalf("RequestReschedule() error = %v", err)
	}
	if !meeting.RescheduleRequested || meeting.RescheduleDate == nil {
		t.Fatal("reschedule request not recorded")
	}

	meeting, err = svc.ApproveReschedule(1)
	if err != nil {
		t.Fatalf("ApproveReschedule() error = %v", err)
	}
	if meeting.RescheduleRequested {
		t.Error("request should be cleared after approval")
	}
	if meeting.MeetingDate == nil || !meeting.MeetingDate.Equal(newDate) {
		t.Error("approved slot not adopted")
	}
	if meeting.MeetingTime != "16:00" {
		t.Errorf("MeetingTime = %q, want 16:00", meeting.MeetingTime)
	}
	if meeting.Status != models.MeetingPending {
		t.Errorf("status = %s, want pending after reschedule", meeting.Status)
	}
}

func TestMeetingDeclineRescheduleKeepsSlot(t *testing.T) {
	svc, _, _ := meetingFixture(models.MeetingConfirmed)
	originalDate := time.Now().Add(24 * time.Hour)

	if _, err := svc.RequestReschedule(1, time.Now().Add(96*time.Hour), "16:00", ""); err != nil {
		t.Fatalf("RequestReschedule() error = %v", err)
	}
	meeting, err := svc.DeclineReschedule(1)
	if err != nil {
		t.Fatalf("DeclineReschedule() error = %v", err)
	}
	if meeting.RescheduleRequested {
		t.Error("request should be cleared after decline")
	}
	if meeting.MeetingDate == nil {
		t.Fatal("original slot lost")
	}
	if meeting.MeetingDate.Before(originalDate.Add(-time.Minute)) || meeting.MeetingDate.After(originalDate.Add(time.Minute)) {
		t.Error("original slot should stand after decline")
	}
}

func TestMeetingRescheduleRequiresBookedMeeting(t *testing.T) {
	svc, _, _ := meetingFixture(models.MeetingNotBooked)

	if _, err := svc.RequestReschedule(1, time.Now(), "10:00", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("RequestReschedule() error = %v, want ErrInvalidTransition", err)
	}
}

func TestMeetingCancelIsStatusNotDelete(t *testing.T) {
	svc, store, _ := meetingFixture(models.MeetingConfirmed)

	meeting, err := svc.Cancel(1)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if meeting.Status != models.MeetingCancelled {
		t.Errorf("status = %s, want cancelled", meeting.Status)
	}
	if store.byID[1] == nil {
		t.Error("cancelled meeting must remain queryable")
	}
}

func TestMeetingCancelRejectsCompleted(t *testing.T) {
	svc, _, _ := meetingFixture(models.MeetingCompleted)

	if _, err := svc.Cancel(1); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Cancel() error = %v, want ErrInvalidTransition", err)
	}
}

func TestMeetingCompleteGrantsFullAccess(t *testing.T) {
	svc, _, granter := meetingFixture(models.MeetingConfirmed)

	meeting, err := svc.Complete(admin(), 1)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if meeting.Status != models.MeetingCompleted {
		t.Errorf("status = %s, want completed", meeting.Status)
	}
	if meeting.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
	if len(granter.grants) != 1 || granter.grants[0] != models.AccessFull {
		t.Errorf("expected one full_access grant, got %v", granter.grants)
	}
}

func TestMeetingCompleteRejectsUnbooked(t *testing.T) {
	svc, _, granter := meetingFixture(models.MeetingNotBooked)

	if _, err := svc.Complete(admin(), 1); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Complete() error = %v, want ErrInvalidTransition", err)
	}
	if len(granter.grants) != 0 {
		t.Errorf("no grant expected, got %v", granter.grants)
	}
}

func TestMeetingCompleteSurvivesGrantFailure(t *testing.T) {
	svc, store, granter := meetingFixture(models.MeetingConfirmed)
	granter.err = ErrUnauthorized

	meeting, err := svc.Complete(manager(99), 1)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Complete() error = %v, want ErrUnauthorized", err)
	}
	if meeting == nil || meeting.Status != models.MeetingCompleted {
		t.Error("completed status must stand even when the grant fails")
	}
	if store.updates != 1 {
		t.Errorf("updates = %d, want 1", store.updates)
	}
}

func TestMeetingUnknownID(t *testing.T) {
	svc, _, _ := meetingFixture(models.MeetingPending)

	if _, err := svc.Confirm(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Confirm() error = %v, want ErrNotFound", err)
	}
}
