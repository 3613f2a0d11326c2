package service

import (
	"testing"
	"time"

	"creatorflow/internal/events"
	"creatorflow/internal/funnel"
	"creatorflow/internal/models"
)

type fakeMeetings struct {
	meetings map[int64]*models.Meeting
	reads    int
}

func (f *fakeMeetings) GetByCreator(creatorID int64) (*models.Meeting, error) {
	f.reads++
	return f.meetings[creatorID], nil
}

type fakeDeliveries struct {
	latest map[int64]*models.DeliveryLogEntry
}

func (f *fakeDeliveries) LatestByCreatorAndType(creatorID int64, emailType string) (*models.DeliveryLogEntry, error) {
	return f.latest[creatorID], nil
}

func TestFunnelServiceStage(t *testing.T) {
	now := time.Now()
	future := now.Add(48 * time.Hour)

	meetings := &fakeMeetings{meetings: map[int64]*models.Meeting{
		2: {CreatorID: 2, Status: models.MeetingConfirmed, MeetingDate: &future},
		3: {CreatorID: 3, Status: models.MeetingCompleted},
	}}
	deliveries := &fakeDeliveries{latest: map[int64]*models.DeliveryLogEntry{
		1: {CreatorID: 1, Status: models.DeliverySent, SentAt: &now},
	}}
	svc := NewFunnelService(meetings, deliveries, nil)

	tests := []struct {
		creatorID int64
		want      funnel.Stage
	}{
		{1, funnel.StageInvitationSent},
		{2, funnel.StageMeetingBooked},
		{3, funnel.StageMeetingCompleted},
		{4, funnel.StageNoInvitation},
	}
	for _, tt := range tests {
		got, err := svc.Stage(tt.creatorID)
		if err != nil {
			t.Fatalf("Stage(%d) error = %v", tt.creatorID, err)
		}
		if got != tt.want {
			t.Errorf("Stage(%d) = %s, want %s", tt.creatorID, got, tt.want)
		}
	}
}

func TestFunnelServiceStageCaching(t *testing.T) {
	meetings := &fakeMeetings{meetings: map[int64]*models.Meeting{}}
	deliveries := &fakeDeliveries{latest: map[int64]*models.DeliveryLogEntry{}}
	bus := events.NewBus()
	svc := NewFunnelService(meetings, deliveries, bus)

	if _, err := svc.Stage(1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Stage(1); err != nil {
		t.Fatal(err)
	}
	if meetings.reads != 1 {
		t.Errorf("expected 1 store read with a warm cache, got %d", meetings.reads)
	}

	bus.Publish(events.Event{Table: "meetings", Kind: events.KindUpdate})

	if _, err := svc.Stage(1); err != nil {
		t.Fatal(err)
	}
	if meetings.reads != 2 {
		t.Errorf("expected a fresh read after invalidation, got %d reads", meetings.reads)
	}
}

func TestFunnelServiceUrgencyRankingOrder(t *testing.T) {
	now := time.Now()
	soon := now.Add(2 * time.Hour)
	staleSent := now.Add(-72 * time.Hour)
	recentSent := now.Add(-time.Hour)

	meetings := &fakeMeetings{meetings: map[int64]*models.Meeting{
		2: {CreatorID: 2, Status: models.MeetingConfirmed, MeetingDate: &soon},
		5: {CreatorID: 5, Status: models.MeetingCompleted},
	}}
	deliveries := &fakeDeliveries{latest: map[int64]*models.DeliveryLogEntry{
		3: {CreatorID: 3, Status: models.DeliverySent, SentAt: &staleSent},
		4: {CreatorID: 4, Status: models.DeliverySent, SentAt: &recentSent},
	}}
	svc := NewFunnelService(meetings, deliveries, nil)

	ranked, err := svc.UrgencyRanking([]int64{5, 4, 3, 2, 1})
	if err != nil {
		t.Fatalf("UrgencyRanking() error = %v", err)
	}

	// Uninvited first, then the imminent meeting, then invitations stale
	// before recent, then the completed meeting last.
	wantOrder := []int64{1, 2, 3, 4, 5}
	if len(ranked) != len(wantOrder) {
		t.Fatalf("ranked %d creators, want %d", len(ranked), len(wantOrder))
	}
	for i, want := range wantOrder {
		if ranked[i].CreatorID != want {
			t.Errorf("position %d = creator %d, want %d", i, ranked[i].CreatorID, want)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Score > ranked[i].Score {
			t.Errorf("scores not ascending at position %d: %f > %f", i, ranked[i-1].Score, ranked[i].Score)
		}
	}
}
