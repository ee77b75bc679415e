// Package store persists memory records. Implementations are interface-
// driven so the engine can run against in-memory storage in tests and
// PostgreSQL in production without rewiring.
package store

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks

import (
	"context"
	"time"

	"memscope/internal/memory/models"
	"memscope/pkg/domain"
)

// Query selects the memory set feeding one merge. AsOf supplies the clock
// reading used for both expiry exclusion and the age cutoff.
type Query struct {
	UserID domain.UserID
	Scope  domain.Scope
	// Domain filters to one sub-category. Empty selects records written
	// without a domain; it does not mean "any domain".
	Domain string
	AsOf   time.Time
	// MaxAgeDays additionally excludes records created before
	// AsOf - MaxAgeDays. Zero disables the cutoff.
	MaxAgeDays int
	// Limit caps the result set. Zero means no cap.
	Limit int
}

// cutoff returns the oldest admissible creation time, or zero when the age
// filter is disabled.
func (q Query) cutoff() time.Time {
	if q.MaxAgeDays <= 0 {
		return time.Time{}
	}
	return q.AsOf.Add(-time.Duration(q.MaxAgeDays) * 24 * time.Hour)
}

// Store is the durable memory relation. Records are insert-only; expiry is
// passive query exclusion, never deletion.
type Store interface {
	Insert(ctx context.Context, memory models.Memory) error

	// Query returns non-expired matching records ordered by
	// (created_at, id) ascending. The merge engine relies on this fixed
	// order for determinism; implementations must never fall back to
	// physical insertion order.
	Query(ctx context.Context, q Query) ([]models.Memory, error)
}
