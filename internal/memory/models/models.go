// Package models defines the memory record shared by stores, the merge
// engine, and the service layer.
package models

import (
	"time"

	"memscope/pkg/domain"
)

// Memory is one fact contributed for a user in one scope/domain. Records are
// never updated in place; corrections are new memories. Expired records stay
// in storage for audit history and are excluded from queries passively.
type Memory struct {
	ID      domain.MemoryID
	UserID  domain.UserID
	Scope   domain.Scope
	Domain  string // optional sub-category, empty means unscoped
	Source  domain.Source
	Shape   domain.ValueShape
	Value   any // normalized value, JSON-generic types only
	TTLDays int // 0 means no expiry

	CreatedAt time.Time
	ExpiresAt *time.Time // nil when TTLDays == 0; immutable once computed
}

// Expired reports whether the record is invisible to reads at now.
func (m Memory) Expired(now time.Time) bool {
	if m.ExpiresAt == nil {
		return false
	}
	return !now.Before(*m.ExpiresAt)
}
