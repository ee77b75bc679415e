package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"memscope/internal/memory/models"
	"memscope/pkg/domain"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) insert(m models.Memory) models.Memory {
	s.Require().NoError(s.store.Insert(context.Background(), m))
	return m
}

func (s *MemoryStoreSuite) record(createdAt time.Time, ttlDays int) models.Memory {
	m := models.Memory{
		ID:        domain.NewMemoryID(),
		UserID:    "user123",
		Scope:     domain.ScopePreferences,
		Source:    domain.SourceExplicitUserInput,
		Shape:     domain.ShapeKVMap,
		Value:     map[string]any{"theme": "dark"},
		TTLDays:   ttlDays,
		CreatedAt: createdAt,
	}
	if ttlDays > 0 {
		expires := createdAt.Add(time.Duration(ttlDays) * 24 * time.Hour)
		m.ExpiresAt = &expires
	}
	return m
}

func (s *MemoryStoreSuite) TestExpiryExclusion() {
	created := s.now
	s.insert(s.record(created, 1))

	s.Run("included before expiry", func() {
		got, err := s.store.Query(context.Background(), Query{
			UserID: "user123",
			Scope:  domain.ScopePreferences,
			AsOf:   created.Add(23 * time.Hour),
		})
		s.Require().NoError(err)
		s.Len(got, 1)
	})

	s.Run("excluded after expiry", func() {
		got, err := s.store.Query(context.Background(), Query{
			UserID: "user123",
			Scope:  domain.ScopePreferences,
			AsOf:   created.Add(25 * time.Hour),
		})
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("zero ttl never expires", func() {
		forever := s.insert(s.record(created, 0))
		got, err := s.store.Query(context.Background(), Query{
			UserID: "user123",
			Scope:  domain.ScopePreferences,
			AsOf:   created.Add(10 * 365 * 24 * time.Hour),
		})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(forever.ID, got[0].ID)
	})
}

func (s *MemoryStoreSuite) TestDomainFilter() {
	noDomain := s.insert(s.record(s.now, 0))
	withDomain := s.record(s.now, 0)
	withDomain.Domain = "food"
	s.insert(withDomain)

	s.Run("empty domain selects undomained records only", func() {
		got, err := s.store.Query(context.Background(), Query{
			UserID: "user123", Scope: domain.ScopePreferences, AsOf: s.now.Add(time.Minute),
		})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(noDomain.ID, got[0].ID)
	})

	s.Run("named domain selects that domain only", func() {
		got, err := s.store.Query(context.Background(), Query{
			UserID: "user123", Scope: domain.ScopePreferences, Domain: "food", AsOf: s.now.Add(time.Minute),
		})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(withDomain.ID, got[0].ID)
	})
}

func (s *MemoryStoreSuite) TestOrderContract() {
	// Insert out of chronological order; the query must sort by
	// (created_at, id) ascending regardless.
	third := s.insert(s.record(s.now.Add(2*time.Hour), 0))
	first := s.insert(s.record(s.now, 0))
	second := s.insert(s.record(s.now.Add(time.Hour), 0))

	got, err := s.store.Query(context.Background(), Query{
		UserID: "user123", Scope: domain.ScopePreferences, AsOf: s.now.Add(3 * time.Hour),
	})
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(first.ID, got[0].ID)
	s.Equal(second.ID, got[1].ID)
	s.Equal(third.ID, got[2].ID)
}

func (s *MemoryStoreSuite) TestMaxAgeCutoff() {
	old := s.record(s.now.Add(-40*24*time.Hour), 0)
	recent := s.record(s.now.Add(-5*24*time.Hour), 0)
	s.insert(old)
	s.insert(recent)

	got, err := s.store.Query(context.Background(), Query{
		UserID: "user123", Scope: domain.ScopePreferences, AsOf: s.now, MaxAgeDays: 30,
	})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(recent.ID, got[0].ID)
}

func (s *MemoryStoreSuite) TestLimit() {
	for i := 0; i < 5; i++ {
		s.insert(s.record(s.now.Add(time.Duration(i)*time.Minute), 0))
	}

	got, err := s.store.Query(context.Background(), Query{
		UserID: "user123", Scope: domain.ScopePreferences, AsOf: s.now.Add(time.Hour), Limit: 3,
	})
	s.Require().NoError(err)
	s.Len(got, 3)
}
