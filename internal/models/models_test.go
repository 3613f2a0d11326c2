package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:         "test-session",
				OperatorID: 1,
				ExpiresAt:  tt.expiresAt,
				CreatedAt:  time.Now().Add(-1 * time.Hour),
			}
			result := session.IsExpired()
			if result != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestAccessLevelRank(t *testing.T) {
	tests := []struct {
		level AccessLevel
		want  int
	}{
		{AccessNone, 0},
		{AccessMeetingOnly, 1},
		{AccessFull, 2},
		{AccessLevel("garbage"), 0},
	}

	for _, tt := range tests {
		if got := tt.level.Rank(); got != tt.want {
			t.Errorf("AccessLevel(%q).Rank() = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestMeetingValidateReschedule(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		meeting Meeting
		wantErr bool
	}{
		{
			name:    "no request pending",
			meeting: Meeting{Status: MeetingConfirmed},
			wantErr: false,
		},
		{
			name: "request with date and time",
			meeting: Meeting{
				Status:              MeetingConfirmed,
				RescheduleRequested: true,
				RescheduleDate:      &date,
				RescheduleTime:      "14:30",
			},
			wantErr: false,
		},
		{
			name: "request missing date",
			meeting: Meeting{
				Status:              MeetingConfirmed,
				RescheduleRequested: true,
				RescheduleTime:      "14:30",
			},
			wantErr: true,
		},
		{
			name: "request missing time",
			meeting: Meeting{
				Status:              MeetingConfirmed,
				RescheduleRequested: true,
				RescheduleDate:      &date,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meeting.ValidateReschedule()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateReschedule() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMeetingIsBooked(t *testing.T) {
	date := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name    string
		meeting Meeting
		want    bool
	}{
		{"pending with date", Meeting{Status: MeetingPending, MeetingDate: &date}, true},
		{"confirmed with date", Meeting{Status: MeetingConfirmed, MeetingDate: &date}, true},
		{"confirmed without date", Meeting{Status: MeetingConfirmed}, false},
		{"not booked", Meeting{Status: MeetingNotBooked}, false},
		{"completed", Meeting{Status: MeetingCompleted, MeetingDate: &date}, false},
		{"cancelled", Meeting{Status: MeetingCancelled, MeetingDate: &date}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meeting.IsBooked(); got != tt.want {
				t.Errorf("IsBooked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeliveryLogEntryIsTerminal(t *testing.T) {
	now := time.Now()

	tests := []struct {
		status DeliveryStatus
		sentAt *time.Time
		want   bool
	}{
		{DeliverySent, &now, true},
		{DeliveryFailed, nil, true},
		{DeliveryRetrying, nil, false},
		{DeliveryPending, nil, false},
	}

	for _, tt := range tests {
		entry := DeliveryLogEntry{Status: tt.status, SentAt: tt.sentAt}
		if got := entry.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}
