// Package models defines the read grant record and its token digest.
package models

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"memscope/pkg/domain"
)

// TokenDigest is the SHA-256 digest of a grant token. Only digests are
// persisted; the token itself is returned to the caller once and never
// stored.
type TokenDigest [sha256.Size]byte

// DigestToken computes the stored digest for a raw token.
func DigestToken(token string) TokenDigest {
	return sha256.Sum256([]byte(token))
}

// Equal compares two digests in constant time.
func (d TokenDigest) Equal(other TokenDigest) bool {
	return subtle.ConstantTimeCompare(d[:], other[:]) == 1
}

// Hex returns the digest as a lowercase hex string, for cache keys and logs.
func (d TokenDigest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Status is the derived lifecycle state of a grant. Expiry is never
// written back; it is computed from ExpiresAt at lookup time.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusRevoked Status = "REVOKED"
	StatusExpired Status = "EXPIRED"
)

// ReadGrant records one approved read: the frozen query parameters and
// the lifecycle timestamps. The grant replays the same query shape on
// every continuation until it is revoked or expires.
type ReadGrant struct {
	ID           domain.GrantID
	TokenDigest  TokenDigest
	UserID       domain.UserID
	Scope        domain.Scope
	Domain       string // empty means records without a domain
	Purpose      string // raw purpose text as supplied at issue time
	PurposeClass domain.PurposeClass
	MaxAgeDays   int // 0 means no freshness bound

	CreatedAt    time.Time
	ExpiresAt    time.Time
	RevokedAt    *time.Time
	RevokeReason string
	LastUsedAt   *time.Time
}

// StatusAt derives the lifecycle state at now. Revocation wins over
// expiry so a revoked grant never reads as merely expired.
func (g ReadGrant) StatusAt(now time.Time) Status {
	if g.RevokedAt != nil {
		return StatusRevoked
	}
	if !now.Before(g.ExpiresAt) {
		return StatusExpired
	}
	return StatusActive
}
