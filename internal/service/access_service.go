package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"creatorflow/internal/models"
)

var (
	ErrNotFound          = errors.New("creator not found")
	ErrInvalidTransition = errors.New("invalid access transition")
	ErrUnauthorized      = errors.New("operator lacks the required role")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// CreatorGetter looks up creators by id
type CreatorGetter interface {
	GetByID(id int64) (*models.Creator, error)
}

// AccessStore reads and conditionally writes access grants
type AccessStore interface {
	Get(creatorID int64) (*models.AccessGrant, error)
	CompareAndSwap(grant *models.AccessGrant, expected models.AccessLevel) (bool, error)
}

// AuditAppender records access transitions
type AuditAppender interface {
	Append(e *models.AuditLogEntry) (int64, error)
}

// AccessNotifier enqueues a notification after a successful grant.
// Implementations must not block the transition on delivery.
type AccessNotifier interface {
	NotifyAccessGranted(creator *models.Creator, level models.AccessLevel)
}

// AccessService applies access-level transitions for creators. Transitions
// are linearized per creator by the store's conditional write: a grant or
// revoke takes effect only if the stored level still equals the level the
// caller observed, so duplicate invocations collapse into one effective
// transition.
type AccessService struct {
	creators CreatorGetter
	access   AccessStore
	audit    AuditAppender
	notifier AccessNotifier
}

// NewAccessService creates a new access service. notifier may be nil.
func NewAccessService(creators CreatorGetter, access AccessStore, audit AuditAppender, notifier AccessNotifier) *AccessService {
	return &AccessService{
		creators: creators,
		access:   access,
		audit:    audit,
		notifier: notifier,
	}
}

// GrantAccess raises a creator's access level. Only forward transitions are
// permitted (no_access to meeting_only to full_access, skipping levels is
// allowed). Granting the level the creator already holds is a no-op that
// returns the current grant. Admins may grant at any time; a creator's
// assigned manager may grant on meeting completion only.
func (s *AccessService) GrantAccess(performer *models.Operator, creatorID int64, newLevel models.AccessLevel, method models.GrantMethod, reason string) (*models.AccessGrant, error) {
	if !newLevel.IsValid() || newLevel == models.AccessNone {
		return nil, fmt.Errorf("%w: cannot grant level %q", ErrInvalidTransition, newLevel)
	}
	if method != models.GrantManualEarly && method != models.GrantMeetingCompletion {
		return nil, fmt.Errorf("%w: %q is not a grant method", ErrInvalidTransition, method)
	}

	creator, err := s.creators.GetByID(creatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if creator == nil {
		return nil, ErrNotFound
	}

	if err := s.authorizeGrant(performer, creator, method); err != nil {
		return nil, err
	}

	currentLevel, err := s.currentLevel(creatorID)
	if err != nil {
		return nil, err
	}

	if newLevel == currentLevel {
		// Duplicate invocation; the requested state already holds.
		return s.currentGrant(creatorID)
	}
	if newLevel.Rank() < currentLevel.Rank() {
		return nil, fmt.Errorf("%w: %s to %s is not a forward transition", ErrInvalidTransition, currentLevel, newLevel)
	}

	grant := &models.AccessGrant{
		CreatorID: creatorID,
		Level:     newLevel,
		GrantedAt: time.Now(),
		GrantedBy: performer.ID,
		Method:    method,
	}

	applied, err := s.access.CompareAndSwap(grant, currentLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if !applied {
		// Lost the race to a concurrent transition. The requested change
		// was already made (or superseded); report the committed state.
		return s.currentGrant(creatorID)
	}

	s.appendAudit(&models.AuditLogEntry{
		CreatorID:   creatorID,
		Action:      models.AuditGranted,
		Role:        string(newLevel),
		PerformedBy: performer.ID,
		Reason:      reason,
	})

	if s.notifier != nil {
		s.notifier.NotifyAccessGranted(creator, newLevel)
	}

	return grant, nil
}

// RevokeAccess lowers a creator from full_access to meeting_only. No other
// downward transition exists. Admin only.
func (s *AccessService) RevokeAccess(performer *models.Operator, creatorID int64, reason string) (*models.AccessGrant, error) {
	if performer == nil || !performer.IsAdmin() {
		return nil, ErrUnauthorized
	}

	creator, err := s.creators.GetByID(creatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if creator == nil {
		return nil, ErrNotFound
	}

	currentLevel, err := s.currentLevel(creatorID)
	if err != nil {
		return nil, err
	}

	if currentLevel != models.AccessFull {
		return nil, fmt.Errorf("%w: cannot revoke from %s", ErrInvalidTransition, currentLevel)
	}

	grant := &models.AccessGrant{
		CreatorID: creatorID,
		Level:     models.AccessMeetingOnly,
		GrantedAt: time.Now(),
		GrantedBy: performer.ID,
		Method:    models.GrantManualRevoke,
	}

	applied, err := s.access.CompareAndSwap(grant, models.AccessFull)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if !applied {
		return s.currentGrant(creatorID)
	}

	s.appendAudit(&models.AuditLogEntry{
		CreatorID:   creatorID,
		Action:      models.AuditRevoked,
		Role:        string(models.AccessMeetingOnly),
		PerformedBy: performer.ID,
		Reason:      reason,
	})

	return grant, nil
}

func (s *AccessService) authorizeGrant(performer *models.Operator, creator *models.Creator, method models.GrantMethod) error {
	if performer == nil {
		return ErrUnauthorized
	}
	if performer.IsAdmin() {
		return nil
	}
	if method == models.GrantMeetingCompletion && creator.ManagerID != nil && *creator.ManagerID == performer.ID {
		return nil
	}
	return ErrUnauthorized
}

func (s *AccessService) currentLevel(creatorID int64) (models.AccessLevel, error) {
	grant, err := s.access.Get(creatorID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if grant == nil {
		return models.AccessNone, nil
	}
	return grant.Level, nil
}

func (s *AccessService) currentGrant(creatorID int64) (*models.AccessGrant, error) {
	grant, err := s.access.Get(creatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if grant == nil {
		return &models.AccessGrant{CreatorID: creatorID, Level: models.AccessNone}, nil
	}
	return grant, nil
}

// appendAudit records a transition. The audit trail is advisory; a write
// failure is reported loudly but never rolls back the level change, since
// re-granting is safe and the grant record is the authoritative state.
func (s *AccessService) appendAudit(entry *models.AuditLogEntry) {
	if _, err := s.audit.Append(entry); err != nil {
		log.Printf("WARNING: audit log write failed for creator %d (%s %s): %v",
			entry.CreatorID, entry.Action, entry.Role, err)
	}
}
