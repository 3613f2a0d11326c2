package models

import "time"

// AccessLevel is the level of platform access granted to a creator
type AccessLevel string

const (
	AccessNone        AccessLevel = "no_access"
	AccessMeetingOnly AccessLevel = "meeting_only"
	AccessFull        AccessLevel = "full_access"
)

// Rank orders access levels so that forward transitions can be validated.
// A grant is only valid when the new level ranks above the current one.
func (l AccessLevel) Rank() int {
	switch l {
	case AccessMeetingOnly:
		return 1
	case AccessFull:
		return 2
	default:
		return 0
	}
}

// IsValid reports whether l is one of the known access levels
func (l AccessLevel) IsValid() bool {
	switch l {
	case AccessNone, AccessMeetingOnly, AccessFull:
		return true
	}
	return false
}

// GrantMethod records how an access level change came about
type GrantMethod string

const (
	GrantManualEarly       GrantMethod = "manual_early_grant"
	GrantMeetingCompletion GrantMethod = "meeting_completion"
	GrantManualRevoke      GrantMethod = "manual_revoke"
)

// AccessGrant is the single access-level record for a creator.
// Absence of a record is treated as AccessNone.
type AccessGrant struct {
	CreatorID int64
	Level     AccessLevel
	GrantedAt time.Time
	GrantedBy int64 // operator who performed the transition
	Method    GrantMethod
}
