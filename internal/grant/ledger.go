// Package grant issues, resolves, and revokes read grants. A grant
// freezes the parameters of one approved read; its opaque token is the
// only handle a caller ever holds.
package grant

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"memscope/internal/grant/models"
	"memscope/pkg/domain"
	dErrors "memscope/pkg/domain-errors"
	"memscope/pkg/platform/sentinel"
)

// DefaultTTL bounds a grant's lifetime when no override is configured.
const DefaultTTL = 24 * time.Hour

// Store is the persistence contract the ledger needs. Satisfied by
// both the in-memory and Postgres stores.
type Store interface {
	Insert(ctx context.Context, grant models.ReadGrant) error
	FindByDigest(ctx context.Context, digest models.TokenDigest) (models.ReadGrant, error)
	RevokeIfActive(ctx context.Context, digest models.TokenDigest, at time.Time, reason string) (bool, error)
	TouchLastUsed(ctx context.Context, digest models.TokenDigest, at time.Time) error
}

// RevokedCache is an optional fast path for revocation checks. A hit
// is authoritative; a miss falls through to the store.
type RevokedCache interface {
	MarkRevoked(ctx context.Context, digest models.TokenDigest, ttl time.Duration) error
	IsRevoked(ctx context.Context, digest models.TokenDigest) (bool, error)
}

// Clock abstracts time.Now for testing.
type Clock func() time.Time

// Ledger coordinates the grant lifecycle against a store and an
// optional revoked-digest cache.
type Ledger struct {
	store  Store
	cache  RevokedCache
	ttl    time.Duration
	clock  Clock
	logger *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithTTL overrides the grant lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(l *Ledger) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithRevokedCache attaches a revoked-digest cache.
func WithRevokedCache(cache RevokedCache) Option {
	return func(l *Ledger) {
		l.cache = cache
	}
}

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

func NewLedger(store Store, logger *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		ttl:    DefaultTTL,
		clock:  time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// IssueSpec carries the query parameters a new grant freezes.
type IssueSpec struct {
	UserID       domain.UserID
	Scope        domain.Scope
	Domain       string
	Purpose      string
	PurposeClass domain.PurposeClass
	MaxAgeDays   int
}

// Issue mints a grant and returns the raw token exactly once. Only the
// digest is persisted.
func (l *Ledger) Issue(ctx context.Context, spec IssueSpec) (string, models.ReadGrant, error) {
	token, err := NewToken()
	if err != nil {
		return "", models.ReadGrant{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue grant")
	}

	now := l.clock()
	g := models.ReadGrant{
		ID:           domain.NewGrantID(),
		TokenDigest:  models.DigestToken(token),
		UserID:       spec.UserID,
		Scope:        spec.Scope,
		Domain:       spec.Domain,
		Purpose:      spec.Purpose,
		PurposeClass: spec.PurposeClass,
		MaxAgeDays:   spec.MaxAgeDays,
		CreatedAt:    now,
		ExpiresAt:    now.Add(l.ttl),
	}
	if err := l.store.Insert(ctx, g); err != nil {
		return "", models.ReadGrant{}, dErrors.Wrap(err, dErrors.CodeInfrastructure, "failed to persist grant")
	}
	return token, g, nil
}

// Resolve looks up an active grant by its raw token. It returns
// sentinel.ErrNotFound for unknown tokens, sentinel.ErrRevoked for
// revoked grants, and sentinel.ErrExpired for expired ones; callers
// decide how much of that distinction to expose.
func (l *Ledger) Resolve(ctx context.Context, token string) (models.ReadGrant, error) {
	digest := models.DigestToken(token)

	if l.cache != nil {
		revoked, err := l.cache.IsRevoked(ctx, digest)
		if err != nil {
			l.logger.WarnContext(ctx, "revoked cache check failed", "error", err)
		} else if revoked {
			return models.ReadGrant{}, sentinel.ErrRevoked
		}
	}

	g, err := l.store.FindByDigest(ctx, digest)
	if err != nil {
		return models.ReadGrant{}, err
	}

	switch g.StatusAt(l.clock()) {
	case models.StatusRevoked:
		return g, sentinel.ErrRevoked
	case models.StatusExpired:
		return g, sentinel.ErrExpired
	}
	return g, nil
}

// Touch records grant usage. Best effort; failures are logged, never
// surfaced, so a read cannot fail on bookkeeping.
func (l *Ledger) Touch(ctx context.Context, g models.ReadGrant) {
	if err := l.store.TouchLastUsed(ctx, g.TokenDigest, l.clock()); err != nil {
		l.logger.WarnContext(ctx, "failed to record grant usage",
			"error", err, "grant_id", g.ID.String())
	}
}

// Revoke marks the grant revoked. Revoking an already revoked token
// succeeds without effect; an unknown token surfaces
// sentinel.ErrNotFound so callers can fold it into their uniform
// denial. transitioned reports whether this call performed the state
// change.
func (l *Ledger) Revoke(ctx context.Context, token, reason string) (models.ReadGrant, bool, error) {
	digest := models.DigestToken(token)
	now := l.clock()

	transitioned, err := l.store.RevokeIfActive(ctx, digest, now, reason)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ReadGrant{}, false, err
		}
		return models.ReadGrant{}, false, dErrors.Wrap(err, dErrors.CodeInfrastructure, "failed to revoke grant")
	}

	g, err := l.store.FindByDigest(ctx, digest)
	if err != nil {
		return models.ReadGrant{}, transitioned, dErrors.Wrap(err, dErrors.CodeInfrastructure, "failed to load revoked grant")
	}

	if transitioned && l.cache != nil {
		if ttl := g.ExpiresAt.Sub(now); ttl > 0 {
			if err := l.cache.MarkRevoked(ctx, digest, ttl); err != nil {
				l.logger.WarnContext(ctx, "failed to cache revoked digest",
					"error", err, "grant_id", g.ID.String())
			}
		}
	}
	return g, transitioned, nil
}
