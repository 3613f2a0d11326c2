package service

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"creatorflow/internal/events"
	"creatorflow/internal/funnel"
	"creatorflow/internal/models"
)

// MeetingGetter reads the meeting record for a creator
type MeetingGetter interface {
	GetByCreator(creatorID int64) (*models.Meeting, error)
}

// DeliveryReader reads the latest delivery log entry for a creator
type DeliveryReader interface {
	LatestByCreatorAndType(creatorID int64, emailType string) (*models.DeliveryLogEntry, error)
}

// RankedCreator is one row of an urgency ranking, most urgent first
type RankedCreator struct {
	CreatorID int64        `json:"creator_id"`
	Stage     funnel.Stage `json:"stage"`
	Score     float64      `json:"score"`
}

// FunnelService computes derived funnel state on demand. Stages are cached
// per creator and dropped whenever the meeting or delivery tables change;
// the change signal is advisory, so a stale cache only delays a dashboard
// refresh, it never affects a write path.
type FunnelService struct {
	meetings   MeetingGetter
	deliveries DeliveryReader

	mu         sync.RWMutex
	stageCache map[int64]funnel.Stage
}

// NewFunnelService creates a funnel service subscribed to store changes.
// bus may be nil, in which case stages are computed fresh on every read.
func NewFunnelService(meetings MeetingGetter, deliveries DeliveryReader, bus *events.Bus) *FunnelService {
	s := &FunnelService{
		meetings:   meetings,
		deliveries: deliveries,
		stageCache: make(map[int64]funnel.Stage),
	}
	if bus != nil {
		invalidate := func(events.Event) { s.invalidateAll() }
		bus.Subscribe("meetings", invalidate)
		bus.Subscribe("delivery_log", invalidate)
	}
	return s
}

// Stage returns the creator's current funnel stage
func (s *FunnelService) Stage(creatorID int64) (funnel.Stage, error) {
	s.mu.RLock()
	stage, ok := s.stageCache[creatorID]
	s.mu.RUnlock()
	if ok {
		return stage, nil
	}

	stage, _, _, err := s.compute(creatorID)
	if err != nil {
		return "", err
	}
	return stage, nil
}

// UrgencyRanking scores the given creators and returns them most urgent
// first. Ranking always reads fresh signals since the score depends on the
// current time, not only on the cached stage.
func (s *FunnelService) UrgencyRanking(creatorIDs []int64) ([]RankedCreator, error) {
	now := time.Now()
	ranked := make([]RankedCreator, 0, len(creatorIDs))

	for _, id := range creatorIDs {
		stage, meeting, invitation, err := s.compute(id)
		if err != nil {
			return nil, err
		}

		var meetingDate, sentAt *time.Time
		if meeting != nil {
			meetingDate = meeting.MeetingDate
		}
		if invitation != nil {
			sentAt = invitation.SentAt
		}

		ranked = append(ranked, RankedCreator{
			CreatorID: id,
			Stage:     stage,
			Score:     funnel.UrgencyScore(stage, meetingDate, sentAt, now),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score < ranked[j].Score
		}
		return ranked[i].CreatorID < ranked[j].CreatorID
	})

	return ranked, nil
}

func (s *FunnelService) compute(creatorID int64) (funnel.Stage, *models.Meeting, *models.DeliveryLogEntry, error) {
	meeting, err := s.meetings.GetByCreator(creatorID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	invitation, err := s.deliveries.LatestByCreatorAndType(creatorID, models.EmailTypeInvitation)
	if err != nil {
		return "", nil, nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	stage := funnel.InferStage(meeting, invitation)

	s.mu.Lock()
	s.stageCache[creatorID] = stage
	s.mu.Unlock()

	return stage, meeting, invitation, nil
}

func (s *FunnelService) invalidateAll() {
	s.mu.Lock()
	s.stageCache = make(map[int64]funnel.Stage)
	s.mu.Unlock()
}
