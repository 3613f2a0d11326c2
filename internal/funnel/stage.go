package funnel

import (
	"time"

	"creatorflow/internal/models"
)

// Stage is a creator's derived position in the activation funnel.
// It is never persisted; it is recomputed from the meeting record and the
// latest invitation delivery entry on every read.
type Stage string

const (
	StageNoInvitation     Stage = "no_invitation"
	StageInvitationSent   Stage = "invitation_sent"
	StageMeetingBooked    Stage = "meeting_booked"
	StageMeetingCompleted Stage = "meeting_completed"
)

// InferStage derives the funnel stage from the raw signals. The rules are
// evaluated in order: a completed meeting wins over everything, a booked
// meeting wins over a sent invitation, and a sent invitation wins over
// nothing at all. Deterministic for identical inputs; both the dashboard
// and batch jobs rely on that.
func InferStage(meeting *models.Meeting, latestInvitation *models.DeliveryLogEntry) Stage {
	if meeting != nil {
		if meeting.Status == models.MeetingCompleted {
			return StageMeetingCompleted
		}
		if (meeting.Status == models.MeetingPending || meeting.Status == models.MeetingConfirmed) && meeting.MeetingDate != nil {
			return StageMeetingBooked
		}
	}

	if latestInvitation != nil && latestInvitation.SentAt != nil {
		return StageInvitationSent
	}

	return StageNoInvitation
}

// Urgency score bands. Lower scores rank as more urgent. The bands overlap
// on purpose for past-due meetings; the score is only used for ranking
// operator attention, never for correctness.
const (
	scoreMostUrgent  = -1e9 // creators nobody has invited yet
	scoreLeastUrgent = 1e9  // completed meetings, awaiting final action only
	scoreNeutral     = 5e5  // fallback when a date the band needs is missing
	invitationBand   = 1e6  // ceiling for the invitation-sent band
)

// UrgencyScore ranks a creator for operator attention; lower is more
// urgent. Within the invitation band, staler invitations score lower so
// they surface first. Within the booked band the score is the hours until
// the meeting, so imminent and already-past meetings surface first.
func UrgencyScore(stage Stage, meetingDate, invitationSentAt *time.Time, now time.Time) float64 {
	switch stage {
	case StageNoInvitation:
		return scoreMostUrgent
	case StageMeetingCompleted:
		return scoreLeastUrgent
	case StageMeetingBooked:
		if meetingDate == nil {
			return scoreNeutral
		}
		return meetingDate.Sub(now).Hours()
	case StageInvitationSent:
		if invitationSentAt == nil {
			return scoreNeutral
		}
		return invitationBand - now.Sub(*invitationSentAt).Hours()
	default:
		return scoreNeutral
	}
}
