// Package domain provides validated value types shared across memscope
// modules. Construct values via the Parse* functions at trust boundaries;
// direct casting bypasses validation.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "memscope/pkg/domain-errors"
)

// MemoryID identifies a single stored memory.
type MemoryID uuid.UUID

// GrantID identifies a read grant in the ledger.
type GrantID uuid.UUID

// EventID identifies an audit event.
type EventID uuid.UUID

// NewMemoryID returns a fresh random MemoryID.
func NewMemoryID() MemoryID { return MemoryID(uuid.New()) }

// NewGrantID returns a fresh random GrantID.
func NewGrantID() GrantID { return GrantID(uuid.New()) }

// NewEventID returns a fresh random EventID.
func NewEventID() EventID { return EventID(uuid.New()) }

func (id MemoryID) String() string { return uuid.UUID(id).String() }
func (id GrantID) String() string  { return uuid.UUID(id).String() }
func (id EventID) String() string  { return uuid.UUID(id).String() }

func (id MemoryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id GrantID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// ParseMemoryID validates and returns a MemoryID from external input.
func ParseMemoryID(s string) (MemoryID, error) {
	u, err := parseUUID(s, "memory id")
	return MemoryID(u), err
}

// ParseGrantID validates and returns a GrantID from external input.
func ParseGrantID(s string) (GrantID, error) {
	u, err := parseUUID(s, "grant id")
	return GrantID(u), err
}

// ParseEventID validates and returns an EventID from external input.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event id")
	return EventID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s cannot be empty", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "invalid %s", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s cannot be nil", what)
	}
	return u, nil
}

// UserID is an opaque external user identifier. Unlike the UUID-backed IDs it
// is caller-assigned, so validation only bounds length and character set.
type UserID string

const maxUserIDLen = 128

// ParseUserID validates a caller-supplied user identifier.
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "user_id cannot be empty")
	}
	if len(s) > maxUserIDLen {
		return "", dErrors.Newf(dErrors.CodeValidation, "user_id must be at most %d characters", maxUserIDLen)
	}
	return UserID(s), nil
}

func (u UserID) String() string { return string(u) }
