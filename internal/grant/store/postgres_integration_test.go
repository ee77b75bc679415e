//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"memscope/internal/grant/models"
	"memscope/internal/grant/store"
	"memscope/pkg/domain"
	"memscope/pkg/platform/sentinel"
	"memscope/pkg/testutil/containers"
)

type GrantPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	now      time.Time
}

func TestGrantPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(GrantPostgresSuite))
}

func (s *GrantPostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgresStore(s.postgres.DB)
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func (s *GrantPostgresSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "read_grants")
	s.Require().NoError(err)
}

func (s *GrantPostgresSuite) grant() models.ReadGrant {
	return models.ReadGrant{
		ID:           domain.NewGrantID(),
		TokenDigest:  models.DigestToken("token-" + uuid.NewString()),
		UserID:       "user123",
		Scope:        domain.ScopeConstraints,
		Domain:       "diet",
		Purpose:      "plan meals around allergies",
		PurposeClass: domain.PurposeScheduling,
		MaxAgeDays:   14,
		CreatedAt:    s.now,
		ExpiresAt:    s.now.Add(24 * time.Hour),
	}
}

func (s *GrantPostgresSuite) TestInsertAndFindRoundTrip() {
	ctx := context.Background()
	g := s.grant()
	s.Require().NoError(s.store.Insert(ctx, g))

	found, err := s.store.FindByDigest(ctx, g.TokenDigest)
	s.Require().NoError(err)
	s.Equal(g.ID, found.ID)
	s.Equal(g.UserID, found.UserID)
	s.Equal(g.Scope, found.Scope)
	s.Equal(g.Domain, found.Domain)
	s.Equal(g.Purpose, found.Purpose)
	s.Equal(g.PurposeClass, found.PurposeClass)
	s.Equal(g.MaxAgeDays, found.MaxAgeDays)
	s.True(found.ExpiresAt.Equal(g.ExpiresAt))
	s.Nil(found.RevokedAt)
	s.Nil(found.LastUsedAt)
}

func (s *GrantPostgresSuite) TestFindUnknownDigest() {
	_, err := s.store.FindByDigest(context.Background(), models.DigestToken("never-issued"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *GrantPostgresSuite) TestConcurrentRevocation() {
	ctx := context.Background()
	g := s.grant()
	s.Require().NoError(s.store.Insert(ctx, g))

	const goroutines = 50
	var wg sync.WaitGroup
	var transitions atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			transitioned, err := s.store.RevokeIfActive(ctx, g.TokenDigest, s.now.Add(time.Hour), "race")
			if err == nil && transitioned {
				transitions.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), transitions.Load(), "exactly one revocation should transition")

	found, err := s.store.FindByDigest(ctx, g.TokenDigest)
	s.Require().NoError(err)
	s.Require().NotNil(found.RevokedAt)
	s.Equal("race", found.RevokeReason)
}

func (s *GrantPostgresSuite) TestRevokePreservesFirstReason() {
	ctx := context.Background()
	g := s.grant()
	s.Require().NoError(s.store.Insert(ctx, g))

	transitioned, err := s.store.RevokeIfActive(ctx, g.TokenDigest, s.now.Add(time.Hour), "user_request")
	s.Require().NoError(err)
	s.True(transitioned)

	transitioned, err = s.store.RevokeIfActive(ctx, g.TokenDigest, s.now.Add(2*time.Hour), "second_try")
	s.Require().NoError(err)
	s.False(transitioned)

	found, err := s.store.FindByDigest(ctx, g.TokenDigest)
	s.Require().NoError(err)
	s.Equal("user_request", found.RevokeReason)
	s.True(found.RevokedAt.Equal(s.now.Add(time.Hour)))
}

func (s *GrantPostgresSuite) TestRevokeUnknownDigest() {
	_, err := s.store.RevokeIfActive(context.Background(), models.DigestToken("never-issued"), s.now, "x")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *GrantPostgresSuite) TestTouchLastUsed() {
	ctx := context.Background()
	g := s.grant()
	s.Require().NoError(s.store.Insert(ctx, g))

	usedAt := s.now.Add(30 * time.Minute)
	s.Require().NoError(s.store.TouchLastUsed(ctx, g.TokenDigest, usedAt))

	found, err := s.store.FindByDigest(ctx, g.TokenDigest)
	s.Require().NoError(err)
	s.Require().NotNil(found.LastUsedAt)
	s.True(found.LastUsedAt.Equal(usedAt))
}
