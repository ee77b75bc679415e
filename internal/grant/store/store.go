// Package store persists read grants. Implementations must make
// RevokeIfActive atomic: when callers race to revoke the same grant,
// exactly one observes the transition.
package store

import (
	"context"
	"time"

	"memscope/internal/grant/models"
)

// Store is the read grant persistence contract.
//
// FindByDigest returns sentinel.ErrNotFound for unknown digests.
// RevokeIfActive reports whether this call performed the transition;
// it returns false without error when the grant was already revoked.
type Store interface {
	Insert(ctx context.Context, grant models.ReadGrant) error
	FindByDigest(ctx context.Context, digest models.TokenDigest) (models.ReadGrant, error)
	RevokeIfActive(ctx context.Context, digest models.TokenDigest, at time.Time, reason string) (bool, error)
	TouchLastUsed(ctx context.Context, digest models.TokenDigest, at time.Time) error
}
