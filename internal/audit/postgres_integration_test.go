//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"memscope/internal/audit"
	"memscope/pkg/domain"
	"memscope/pkg/testutil/containers"
)

type AuditPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
	now      time.Time
}

func TestAuditPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditPostgresSuite))
}

func (s *AuditPostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func (s *AuditPostgresSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "audit_events")
	s.Require().NoError(err)
}

func (s *AuditPostgresSuite) TestAppendAndReplayRoundTrip() {
	ctx := context.Background()

	memoryIDs := []domain.MemoryID{domain.NewMemoryID(), domain.NewMemoryID()}
	grantID := domain.NewGrantID()

	e := audit.Event{
		Kind:         audit.EventRead,
		UserID:       "user123",
		Scope:        domain.ScopeCommunication,
		Domain:       "email",
		Purpose:      "draft a reply",
		PurposeClass: domain.PurposeContentGeneration,
		MemoryIDs:    memoryIDs,
		GrantID:      grantID,
		Outcome:      audit.OutcomeOK,
		OccurredAt:   s.now,
	}
	s.Require().NoError(s.store.Append(ctx, e))

	events, err := s.store.ListByUser(ctx, "user123", 0)
	s.Require().NoError(err)
	s.Require().Len(events, 1)

	got := events[0]
	s.False(got.ID.IsNil())
	s.Positive(got.Seq)
	s.Equal(audit.EventRead, got.Kind)
	s.Equal("email", got.Domain)
	s.Equal(memoryIDs, got.MemoryIDs)
	s.Equal(grantID, got.GrantID)
	s.Equal(audit.OutcomeOK, got.Outcome)
	s.Empty(got.ReasonCode)
	s.True(got.OccurredAt.Equal(s.now))
}

func (s *AuditPostgresSuite) TestDeniedEventKeepsReason() {
	ctx := context.Background()

	e := audit.Event{
		Kind:         audit.EventReadDenied,
		UserID:       "user123",
		Scope:        domain.ScopeSchedule,
		Purpose:      "render the calendar",
		PurposeClass: domain.PurposeUIRendering,
		Outcome:      audit.OutcomeDenied,
		ReasonCode:   audit.ReasonPolicyDenied,
		OccurredAt:   s.now,
	}
	s.Require().NoError(s.store.Append(ctx, e))

	events, err := s.store.ListByUser(ctx, "user123", 0)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ReasonPolicyDenied, events[0].ReasonCode)
	s.True(events[0].GrantID.IsNil())
	s.Empty(events[0].MemoryIDs)
}

func (s *AuditPostgresSuite) TestReplayOrderOnTimestampTie() {
	ctx := context.Background()

	kinds := []audit.EventKind{audit.EventWrite, audit.EventRead, audit.EventRevoke}
	for _, kind := range kinds {
		s.Require().NoError(s.store.Append(ctx, audit.Event{
			Kind:       kind,
			UserID:     "user123",
			Scope:      domain.ScopePreferences,
			Outcome:    audit.OutcomeOK,
			OccurredAt: s.now,
		}))
	}

	events, err := s.store.ListByUser(ctx, "user123", 0)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	for i, kind := range kinds {
		s.Equal(kind, events[i].Kind)
	}
	s.Less(events[0].Seq, events[1].Seq)
	s.Less(events[1].Seq, events[2].Seq)
}
