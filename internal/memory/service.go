// Package memory is the engine façade: write a memory, read a scope
// through the policy gate, continue a granted read, revoke a grant.
// Handlers stay thin; every rule lives here or below.
package memory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"memscope/internal/audit"
	"memscope/internal/grant"
	grantmodels "memscope/internal/grant/models"
	"memscope/internal/memory/metrics"
	"memscope/internal/memory/models"
	"memscope/internal/memory/store"
	"memscope/internal/merge"
	"memscope/internal/normalize"
	"memscope/internal/policy"
	"memscope/pkg/domain"
	dErrors "memscope/pkg/domain-errors"
	"memscope/pkg/platform/sentinel"
	"memscope/pkg/requestcontext"
)

// maxQueryLimit caps how many memories feed one merge.
const maxQueryLimit = 50

// RevokeReasonUserRequested is recorded on caller-initiated revocations.
const RevokeReasonUserRequested = "user_requested"

// Service wires the stores, the policy matrix, the grant ledger, and
// the audit trail into the four engine operations.
type Service struct {
	memories store.Store
	matrix   policy.Matrix
	ledger   *grant.Ledger
	trail    audit.Trail
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMetrics attaches engine metrics.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(memories store.Store, matrix policy.Matrix, ledger *grant.Ledger, trail audit.Trail, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		memories: memories,
		matrix:   matrix,
		ledger:   ledger,
		trail:    trail,
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// WriteInput carries one memory contribution. Shape is optional; when
// empty the shape is inferred from the value.
type WriteInput struct {
	UserID  domain.UserID
	Scope   domain.Scope
	Domain  string
	Source  domain.Source
	Shape   domain.ValueShape
	TTLDays int
	Value   any
}

// Write validates, normalizes, and persists one memory. Returns the
// new memory ID.
func (s *Service) Write(ctx context.Context, in WriteInput) (domain.MemoryID, error) {
	if in.UserID == "" {
		return domain.MemoryID{}, dErrors.New(dErrors.CodeValidation, "user ID required")
	}
	if !in.Scope.IsValid() {
		return domain.MemoryID{}, dErrors.New(dErrors.CodeValidation, "unknown scope")
	}
	if !in.Source.IsValid() {
		return domain.MemoryID{}, dErrors.New(dErrors.CodeValidation, "unknown source")
	}
	if in.TTLDays < 0 {
		return domain.MemoryID{}, dErrors.New(dErrors.CodeValidation, "ttl_days must not be negative")
	}

	shape := in.Shape
	if shape == "" {
		detected, ok := domain.DetectShape(in.Value)
		if !ok {
			return domain.MemoryID{}, dErrors.New(dErrors.CodeValidation, "unable to infer value shape")
		}
		shape = detected
	} else if !shape.IsValid() {
		return domain.MemoryID{}, dErrors.New(dErrors.CodeValidation, "unknown value shape")
	}

	value, err := normalize.Value(shape, in.Value)
	if err != nil {
		return domain.MemoryID{}, err
	}

	now := requestcontext.Now(ctx)
	memory := models.Memory{
		ID:        domain.NewMemoryID(),
		UserID:    in.UserID,
		Scope:     in.Scope,
		Domain:    strings.TrimSpace(in.Domain),
		Source:    in.Source,
		Shape:     shape,
		Value:     value,
		TTLDays:   in.TTLDays,
		CreatedAt: now,
	}
	if in.TTLDays > 0 {
		expires := now.Add(time.Duration(in.TTLDays) * 24 * time.Hour)
		memory.ExpiresAt = &expires
	}

	if err := s.memories.Insert(ctx, memory); err != nil {
		s.logger.ErrorContext(ctx, "memory insert failed",
			"error", err, "scope", string(in.Scope))
		return domain.MemoryID{}, dErrors.Wrap(err, dErrors.CodeInfrastructure, "failed to persist memory")
	}

	s.metrics.IncrementWrite(string(in.Scope))
	s.trail.Record(ctx, audit.Event{
		Kind:       audit.EventWrite,
		UserID:     in.UserID,
		Scope:      in.Scope,
		Domain:     memory.Domain,
		MemoryIDs:  []domain.MemoryID{memory.ID},
		Outcome:    audit.OutcomeOK,
		OccurredAt: now,
	})
	return memory.ID, nil
}

// ReadInput carries one purpose-gated read request.
type ReadInput struct {
	UserID     domain.UserID
	Scope      domain.Scope
	Domain     string
	Purpose    string
	MaxAgeDays int
}

// ReadResult is the granted read: the merged summary plus the opaque
// token the caller uses to continue or revoke.
type ReadResult struct {
	GrantID      domain.GrantID
	Token        string
	ExpiresAt    time.Time
	PurposeClass domain.PurposeClass
	Summary      merge.Summary
	MemoryCount  int
}

// Read gates the request on the policy matrix, derives the summary,
// and issues a grant freezing the query parameters.
func (s *Service) Read(ctx context.Context, in ReadInput) (*ReadResult, error) {
	if in.UserID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user ID required")
	}
	if !in.Scope.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown scope")
	}
	purpose := strings.TrimSpace(in.Purpose)
	if purpose == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "purpose required")
	}
	if in.MaxAgeDays < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "max_age_days must not be negative")
	}

	now := requestcontext.Now(ctx)
	class := domain.NormalizePurpose(purpose)
	dom := strings.TrimSpace(in.Domain)

	if !s.matrix.Allowed(in.Scope, class) {
		s.metrics.IncrementRead("read", "denied")
		s.trail.Record(ctx, audit.Event{
			Kind:         audit.EventReadDenied,
			UserID:       in.UserID,
			Scope:        in.Scope,
			Domain:       dom,
			Purpose:      purpose,
			PurposeClass: class,
			Outcome:      audit.OutcomeDenied,
			ReasonCode:   audit.ReasonPolicyDenied,
			OccurredAt:   now,
		})
		return nil, dErrors.New(dErrors.CodePolicyDenied, "purpose not permitted for scope")
	}

	memories, summary, err := s.deriveSummary(ctx, in.UserID, in.Scope, dom, in.MaxAgeDays, now)
	if err != nil {
		s.auditFailure(ctx, audit.EventRead, in.UserID, in.Scope, dom, purpose, class, domain.GrantID{}, now)
		return nil, err
	}

	token, g, err := s.ledger.Issue(ctx, grant.IssueSpec{
		UserID:       in.UserID,
		Scope:        in.Scope,
		Domain:       dom,
		Purpose:      purpose,
		PurposeClass: class,
		MaxAgeDays:   in.MaxAgeDays,
	})
	if err != nil {
		s.auditFailure(ctx, audit.EventRead, in.UserID, in.Scope, dom, purpose, class, domain.GrantID{}, now)
		return nil, err
	}

	s.metrics.IncrementRead("read", "ok")
	s.trail.Record(ctx, audit.Event{
		Kind:         audit.EventRead,
		UserID:       in.UserID,
		Scope:        in.Scope,
		Domain:       dom,
		Purpose:      purpose,
		PurposeClass: class,
		MemoryIDs:    memoryIDs(memories),
		GrantID:      g.ID,
		Outcome:      audit.OutcomeOK,
		OccurredAt:   now,
	})

	return &ReadResult{
		GrantID:      g.ID,
		Token:        token,
		ExpiresAt:    g.ExpiresAt,
		PurposeClass: class,
		Summary:      summary,
		MemoryCount:  len(memories),
	}, nil
}

// ContinueResult is a re-derived summary under an existing grant.
type ContinueResult struct {
	GrantID      domain.GrantID
	ExpiresAt    time.Time
	PurposeClass domain.PurposeClass
	Summary      merge.Summary
	MemoryCount  int
}

// ContinueRead re-derives the summary under an active grant. The grant
// supplies the frozen query parameters; maxAgeDays > 0 narrows the
// freshness bound for this call only and can never widen the grant's
// frozen bound. The data is always re-read, so the summary reflects
// memories written or expired since the grant was issued.
func (s *Service) ContinueRead(ctx context.Context, token string, maxAgeDays int) (*ContinueResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "token required")
	}
	if maxAgeDays < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "max_age_days must not be negative")
	}

	now := requestcontext.Now(ctx)

	g, err := s.ledger.Resolve(ctx, token)
	if err != nil {
		return nil, s.denyContinue(ctx, g, err, now)
	}

	effectiveMaxAge := g.MaxAgeDays
	if maxAgeDays > 0 && (effectiveMaxAge == 0 || maxAgeDays < effectiveMaxAge) {
		effectiveMaxAge = maxAgeDays
	}

	memories, summary, err := s.deriveSummary(ctx, g.UserID, g.Scope, g.Domain, effectiveMaxAge, now)
	if err != nil {
		s.auditFailure(ctx, audit.EventContinue, g.UserID, g.Scope, g.Domain, g.Purpose, g.PurposeClass, g.ID, now)
		return nil, err
	}

	s.ledger.Touch(ctx, g)
	s.metrics.IncrementRead("continue", "ok")
	s.trail.Record(ctx, audit.Event{
		Kind:         audit.EventContinue,
		UserID:       g.UserID,
		Scope:        g.Scope,
		Domain:       g.Domain,
		Purpose:      g.Purpose,
		PurposeClass: g.PurposeClass,
		MemoryIDs:    memoryIDs(memories),
		GrantID:      g.ID,
		Outcome:      audit.OutcomeOK,
		OccurredAt:   now,
	})

	return &ContinueResult{
		GrantID:      g.ID,
		ExpiresAt:    g.ExpiresAt,
		PurposeClass: g.PurposeClass,
		Summary:      summary,
		MemoryCount:  len(memories),
	}, nil
}

// auditFailure records a read the policy matrix allowed but
// infrastructure failed, so the trail still shows the allow decision.
func (s *Service) auditFailure(ctx context.Context, kind audit.EventKind, userID domain.UserID, scope domain.Scope, dom, purpose string, class domain.PurposeClass, grantID domain.GrantID, now time.Time) {
	s.trail.Record(ctx, audit.Event{
		Kind:         kind,
		UserID:       userID,
		Scope:        scope,
		Domain:       dom,
		Purpose:      purpose,
		PurposeClass: class,
		GrantID:      grantID,
		Outcome:      audit.OutcomeError,
		ReasonCode:   audit.ReasonInfrastructureFailure,
		OccurredAt:   now,
	})
}

// denyContinue audits the precise denial reason and returns the
// uniform error. Callers cannot tell an unknown token from a revoked
// or expired one. An unknown token resolves to no grant, so its event
// is recorded unattributed.
func (s *Service) denyContinue(ctx context.Context, g grantmodels.ReadGrant, cause error, now time.Time) error {
	reason := audit.ReasonGrantNotFound
	switch {
	case errors.Is(cause, sentinel.ErrRevoked):
		reason = audit.ReasonGrantRevoked
	case errors.Is(cause, sentinel.ErrExpired):
		reason = audit.ReasonGrantExpired
	case errors.Is(cause, sentinel.ErrNotFound):
	default:
		return dErrors.Wrap(cause, dErrors.CodeInfrastructure, "failed to resolve grant")
	}

	s.metrics.IncrementRead("continue", "denied")
	s.trail.Record(ctx, audit.Event{
		Kind:         audit.EventContinueDenied,
		UserID:       g.UserID,
		Scope:        g.Scope,
		Domain:       g.Domain,
		Purpose:      g.Purpose,
		PurposeClass: g.PurposeClass,
		GrantID:      g.ID,
		Outcome:      audit.OutcomeDenied,
		ReasonCode:   reason,
		OccurredAt:   now,
	})

	return dErrors.New(dErrors.CodeAccessDenied, "access denied")
}

// Revoke marks the grant revoked. Revoking an already revoked token
// succeeds without effect; a token that was never issued is denied
// with the same uniform error ContinueRead uses.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return dErrors.New(dErrors.CodeValidation, "token required")
	}

	now := requestcontext.Now(ctx)
	g, transitioned, err := s.ledger.Revoke(ctx, token, RevokeReasonUserRequested)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeAccessDenied, "access denied")
		}
		return err
	}
	if !transitioned {
		return nil
	}

	s.metrics.IncrementRevocation()
	s.trail.Record(ctx, audit.Event{
		Kind:         audit.EventRevoke,
		UserID:       g.UserID,
		Scope:        g.Scope,
		Domain:       g.Domain,
		Purpose:      g.Purpose,
		PurposeClass: g.PurposeClass,
		GrantID:      g.ID,
		Outcome:      audit.OutcomeOK,
		OccurredAt:   now,
	})
	return nil
}

// deriveSummary queries live memories and merges them. Shared by Read
// and ContinueRead so both derive from the same query shape.
func (s *Service) deriveSummary(ctx context.Context, userID domain.UserID, scope domain.Scope, dom string, maxAgeDays int, now time.Time) ([]models.Memory, merge.Summary, error) {
	memories, err := s.memories.Query(ctx, store.Query{
		UserID:     userID,
		Scope:      scope,
		Domain:     dom,
		AsOf:       now,
		MaxAgeDays: maxAgeDays,
		Limit:      maxQueryLimit,
	})
	if err != nil {
		return nil, merge.Summary{}, dErrors.Wrap(err, dErrors.CodeInfrastructure, "failed to query memories")
	}

	start := time.Now()
	summary := merge.Merge(scope, memories)
	s.metrics.ObserveMergeLatency(string(scope), time.Since(start))

	return memories, summary, nil
}

func memoryIDs(memories []models.Memory) []domain.MemoryID {
	ids := make([]domain.MemoryID, 0, len(memories))
	for _, m := range memories {
		ids = append(ids, m.ID)
	}
	return ids
}
