package store

import (
	"context"
	"sort"
	"sync"

	"memscope/internal/memory/models"
)

// InMemoryStore keeps memory records in process. It mirrors the SQL store's
// query contract exactly so unit tests exercise the same ordering and
// filtering semantics production sees.
type InMemoryStore struct {
	mu       sync.RWMutex
	memories []models.Memory
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Insert(_ context.Context, memory models.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = append(s.memories, memory)
	return nil
}

func (s *InMemoryStore) Query(_ context.Context, q Query) ([]models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := q.cutoff()

	var out []models.Memory
	for _, m := range s.memories {
		if m.UserID != q.UserID || m.Scope != q.Scope || m.Domain != q.Domain {
			continue
		}
		if m.Expired(q.AsOf) {
			continue
		}
		if !cutoff.IsZero() && m.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
