package store

import (
	"context"
	"sync"
	"time"

	"memscope/internal/grant/models"
	"memscope/pkg/platform/sentinel"
)

// InMemoryStore keeps grants in a map keyed by token digest. Used in
// unit tests and single-process deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[models.TokenDigest]models.ReadGrant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[models.TokenDigest]models.ReadGrant)}
}

func (s *InMemoryStore) Insert(_ context.Context, grant models.ReadGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.grants[grant.TokenDigest]; exists {
		return sentinel.ErrConflict
	}
	s.grants[grant.TokenDigest] = grant
	return nil
}

func (s *InMemoryStore) FindByDigest(_ context.Context, digest models.TokenDigest) (models.ReadGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, ok := s.grants[digest]
	if !ok {
		return models.ReadGrant{}, sentinel.ErrNotFound
	}
	return grant, nil
}

func (s *InMemoryStore) RevokeIfActive(_ context.Context, digest models.TokenDigest, at time.Time, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[digest]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if grant.RevokedAt != nil {
		return false, nil
	}
	revokedAt := at
	grant.RevokedAt = &revokedAt
	grant.RevokeReason = reason
	s.grants[digest] = grant
	return true, nil
}

func (s *InMemoryStore) TouchLastUsed(_ context.Context, digest models.TokenDigest, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[digest]
	if !ok {
		return sentinel.ErrNotFound
	}
	usedAt := at
	grant.LastUsedAt = &usedAt
	s.grants[digest] = grant
	return nil
}
