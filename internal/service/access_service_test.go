package service

import (
	"errors"
	"testing"

	"creatorflow/internal/models"
)

type fakeCreators struct {
	creators map[int64]*models.Creator
	err      error
}

func (f *fakeCreators) GetByID(id int64) (*models.Creator, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.creators[id], nil
}

type fakeAccessStore struct {
	grants     map[int64]*models.AccessGrant
	writes     int
	swapErr    error
	forceStale bool
}

func (f *fakeAccessStore) Get(creatorID int64) (*models.AccessGrant, error) {
	return f.grants[creatorID], nil
}

func (f *fakeAccessStore) CompareAndSwap(grant *models.AccessGrant, expected models.AccessLevel) (bool, error) {
	if f.swapErr != nil {
		return false, f.swapErr
	}
	if f.forceStale {
		return false, nil
	}
	current := models.AccessNone
	if existing, ok := f.grants[grant.CreatorID]; ok {
		current = existing.Level
	}
	if current != expected {
		return false, nil
	}
	if f.grants == nil {
		f.grants = make(map[int64]*models.AccessGrant)
	}
	f.grants[grant.CreatorID] = grant
	f.writes++
	return true, nil
}

type fakeAudit struct {
	entries []models.AuditLogEntry
	err     error
}

func (f *fakeAudit) Append(e *models.AuditLogEntry) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.entries = append(f.entries, *e)
	return int64(len(f.entries)), nil
}

type fakeNotifier struct {
	notified []models.AccessLevel
}

func (f *fakeNotifier) NotifyAccessGranted(creator *models.Creator, level models.AccessLevel) {
	f.notified = append(f.notified, level)
}

func admin() *models.Operator {
	return &models.Operator{ID: 1, Role: models.RoleAdmin}
}

func manager(id int64) *models.Operator {
	return &models.Operator{ID: id, Role: models.RoleManager}
}

func newAccessFixture(level models.AccessLevel) (*AccessService, *fakeAccessStore, *fakeAudit, *fakeNotifier) {
	managerID := int64(2)
	creators := &fakeCreators{creators: map[int64]*models.Creator{
		10: {ID: 10, Name: "Ada", Email: "ada@example.com", ManagerID: &managerID},
	}}
	store := &fakeAccessStore{grants: map[int64]*models.AccessGrant{}}
	if level != models.AccessNone {
		store.grants[10] = &models.AccessGrant{CreatorID: 10, Level: level}
	}
	audit := &fakeAudit{}
	notifier := &fakeNotifier{}
	return NewAccessService(creators, store, audit, notifier), store, audit, notifier
}

func TestGrantAccessForwardTransition(t *testing.T) {
	svc, store, audit, notifier := newAccessFixture(models.AccessNone)

	grant, err := svc.GrantAccess(admin(), 10, models.AccessMeetingOnly, models.GrantManualEarly, "early access")
	if err != nil {
		t.Fatalf("GrantAccess() error = %v", err)
	}
	if grant.Level != models.AccessMeetingOnly {
		t.Errorf("level = %s, want meeting_only", grant.Level)
	}
	if store.writes != 1 {
		t.Errorf("store writes = %d, want 1", store.writes)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(audit.entries))
	}
	if audit.entries[0].Action != models.AuditGranted {
		t.Errorf("audit action = %s, want granted", audit.entries[0].Action)
	}
	if audit.entries[0].Role != string(models.AccessMeetingOnly) {
		t.Errorf("audit role = %s", audit.entries[0].Role)
	}
	if len(notifier.notified) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifier.notified))
	}
}

func TestGrantAccessDuplicateIsNoOp(t *testing.T) {
	svc, store, audit, notifier := newAccessFixture(models.AccessMeetingOnly)

	first, err := svc.GrantAccess(admin(), 10, models.AccessFull, models.GrantMeetingCompletion, "")
	if err != nil {
		t.Fatalf("first GrantAccess() error = %v", err)
	}
	second, err := svc.GrantAccess(admin(), 10, models.AccessFull, models.GrantMeetingCompletion, "")
	if err != nil {
		t.Fatalf("duplicate GrantAccess() error = %v, want success-no-op", err)
	}

	if store.writes != 1 {
		t.Errorf("store writes = %d, want exactly 1", store.writes)
	}
	if len(audit.entries) != 1 {
		t.Errorf("audit entries = %d, want exactly 1", len(audit.entries))
	}
	if len(notifier.notified) != 1 {
		t.Errorf("notifications = %d, want exactly 1", len(notifier.notified))
	}
	if first.Level != second.Level {
		t.Errorf("duplicate call returned level %s, want %s", second.Level, first.Level)
	}
}

func TestGrantAccessStalePreconditionReturnsCurrentState(t *testing.T) {
	svc, store, audit, _ := newAccessFixture(models.AccessMeetingOnly)
	store.forceStale = true
	store.grants[10] = &models.AccessGrant{CreatorID: 10, Level: models.AccessFull}

	grant, err := svc.GrantAccess(admin(), 10, models.AccessFull, models.GrantMeetingCompletion, "")
	if err != nil {
		t.Fatalf("GrantAccess() error = %v, want success-no-op", err)
	}
	if grant.Level != models.AccessFull {
		t.Errorf("level = %s, want the committed state full_access", grant.Level)
	}
	if len(audit.entries) != 0 {
		t.Errorf("audit entries = %d, want 0 for a lost race", len(audit.entries))
	}
}

func TestGrantAccessRejectsBackwardTransition(t *testing.T) {
	svc, store, audit, _ := newAccessFixture(models.AccessFull)

	_, err := svc.GrantAccess(admin(), 10, models.AccessMeetingOnly, models.GrantManualEarly, "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("GrantAccess() error = %v, want ErrInvalidTransition", err)
	}
	if store.writes != 0 {
		t.Errorf("store writes = %d, want 0", store.writes)
	}
	if len(audit.entries) != 0 {
		t.Errorf("audit entries = %d, want 0", len(audit.entries))
	}
}

func TestGrantAccessUnknownCreator(t *testing.T) {
	svc, _, _, _ := newAccessFixture(models.AccessNone)

	if _, err := svc.GrantAccess(admin(), 99, models.AccessMeetingOnly, models.GrantManualEarly, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("GrantAccess() error = %v, want ErrNotFound", err)
	}
}

func TestGrantAccessAuthorization(t *testing.T) {
	tests := []struct {
		name      string
		performer *models.Operator
		method    models.GrantMethod
		wantErr   error
	}{
		{"admin may grant early", admin(), models.GrantManualEarly, nil},
		{"assigned manager may grant on completion", manager(2), models.GrantMeetingCompletion, nil},
		{"assigned manager may not grant early", manager(2), models.GrantManualEarly, ErrUnauthorized},
		{"other manager may not grant", manager(3), models.GrantMeetingCompletion, ErrUnauthorized},
		{"nil performer rejected", nil, models.GrantManualEarly, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newAccessFixture(models.AccessNone)
			_, err := svc.GrantAccess(tt.performer, 10, models.AccessMeetingOnly, tt.method, "")
			if tt.wantErr == nil && err != nil {
				t.Errorf("GrantAccess() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("GrantAccess() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGrantAccessAuditFailureDoesNotFailGrant(t *testing.T) {
	svc, store, audit, _ := newAccessFixture(models.AccessNone)
	audit.err = errors.New("audit table unavailable")

	grant, err := svc.GrantAccess(admin(), 10, models.AccessMeetingOnly, models.GrantManualEarly, "")
	if err != nil {
		t.Fatalf("GrantAccess() error = %v, level change must not roll back", err)
	}
	if grant.Level != models.AccessMeetingOnly {
		t.Errorf("level = %s, want meeting_only", grant.Level)
	}
	if store.writes != 1 {
		t.Errorf("store writes = %d, want 1", store.writes)
	}
}

func TestGrantAccessStoreError(t *testing.T) {
	svc, store, _, _ := newAccessFixture(models.AccessNone)
	store.swapErr = errors.New("connection refused")

	if _, err := svc.GrantAccess(admin(), 10, models.AccessMeetingOnly, models.GrantManualEarly, ""); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("GrantAccess() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestRevokeAccess(t *testing.T) {
	svc, store, audit, _ := newAccessFixture(models.AccessFull)

	grant, err := svc.RevokeAccess(admin(), 10, "policy violation")
	if err != nil {
		t.Fatalf("RevokeAccess() error = %v", err)
	}
	if grant.Level != models.AccessMeetingOnly {
		t.Errorf("level = %s, want meeting_only", grant.Level)
	}
	if grant.Method != models.GrantManualRevoke {
		t.Errorf("method = %s, want manual_revoke", grant.Method)
	}
	if store.writes != 1 {
		t.Errorf("store writes = %d, want 1", store.writes)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != models.AuditRevoked {
		t.Errorf("expected one revoked audit entry, got %+v", audit.entries)
	}
	if audit.entries[0].Reason != "policy violation" {
		t.Errorf("audit reason = %q", audit.entries[0].Reason)
	}
}

func TestRevokeAccessInvalidFromLowerLevels(t *testing.T) {
	for _, level := range []models.AccessLevel{models.AccessNone, models.AccessMeetingOnly} {
		svc, store, audit, _ := newAccessFixture(level)

		_, err := svc.RevokeAccess(admin(), 10, "reason")
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("RevokeAccess() from %s error = %v, want ErrInvalidTransition", level, err)
		}
		if store.writes != 0 {
			t.Errorf("store writes = %d, want 0", store.writes)
		}
		if len(audit.entries) != 0 {
			t.Errorf("audit entries = %d, want 0", len(audit.entries))
		}
	}
}

func TestRevokeAccessLostRaceReturnsCurrentState(t *testing.T) {
	svc, store, audit, _ := newAccessFixture(models.AccessFull)
	store.forceStale = true

	grant, err := svc.RevokeAccess(admin(), 10, "reason")
	if err != nil {
		t.Fatalf("RevokeAccess() error = %v, want success-no-op", err)
	}
	if grant.Level != models.AccessFull {
		t.Errorf("level = %s, want the committed state full_access", grant.Level)
	}
	if len(audit.entries) != 0 {
		t.Errorf("audit entries = %d, want 0 for a lost race", len(audit.entries))
	}
}

func TestRevokeAccessRequiresAdmin(t *testing.T) {
	svc, _, _, _ := newAccessFixture(models.AccessFull)

	if _, err := svc.RevokeAccess(manager(2), 10, "reason"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("RevokeAccess() error = %v, want ErrUnauthorized", err)
	}
}
