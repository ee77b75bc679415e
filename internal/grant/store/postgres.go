package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"memscope/internal/grant/models"
	"memscope/pkg/domain"
	"memscope/pkg/platform/sentinel"
)

// PostgresStore persists grants in the read_grants table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, grant models.ReadGrant) error {
	query := `
		INSERT INTO read_grants (
			id, token_digest, user_id, scope, domain, purpose, purpose_class,
			max_age_days, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	var dom sql.NullString
	if grant.Domain != "" {
		dom = sql.NullString{String: grant.Domain, Valid: true}
	}
	var maxAge sql.NullInt32
	if grant.MaxAgeDays > 0 {
		maxAge = sql.NullInt32{Int32: int32(grant.MaxAgeDays), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		grant.ID.String(), grant.TokenDigest[:], string(grant.UserID),
		string(grant.Scope), dom, grant.Purpose, string(grant.PurposeClass),
		maxAge, grant.CreatedAt, grant.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert read grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByDigest(ctx context.Context, digest models.TokenDigest) (models.ReadGrant, error) {
	query := `
		SELECT id, user_id, scope, domain, purpose, purpose_class, max_age_days,
		       created_at, expires_at, revoked_at, revoke_reason, last_used_at
		FROM read_grants
		WHERE token_digest = $1
	`
	row := s.db.QueryRowContext(ctx, query, digest[:])

	var (
		rawID        string
		rawUser      string
		rawScope     string
		dom          sql.NullString
		rawPurpClass string
		maxAge       sql.NullInt32
		revokedAt    sql.NullTime
		reason       sql.NullString
		lastUsedAt   sql.NullTime
	)
	grant := models.ReadGrant{TokenDigest: digest}
	err := row.Scan(&rawID, &rawUser, &rawScope, &dom, &grant.Purpose, &rawPurpClass,
		&maxAge, &grant.CreatedAt, &grant.ExpiresAt, &revokedAt, &reason, &lastUsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ReadGrant{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.ReadGrant{}, fmt.Errorf("find read grant: %w", err)
	}

	grant.ID, err = domain.ParseGrantID(rawID)
	if err != nil {
		return models.ReadGrant{}, fmt.Errorf("find read grant: %w", err)
	}
	grant.UserID = domain.UserID(rawUser)
	grant.Scope = domain.Scope(rawScope)
	grant.PurposeClass = domain.PurposeClass(rawPurpClass)
	if dom.Valid {
		grant.Domain = dom.String
	}
	if maxAge.Valid {
		grant.MaxAgeDays = int(maxAge.Int32)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		grant.RevokedAt = &t
	}
	if reason.Valid {
		grant.RevokeReason = reason.String
	}
	if lastUsedAt.Valid {
		t := lastUsedAt.Time
		grant.LastUsedAt = &t
	}
	return grant, nil
}

// RevokeIfActive performs a conditional update so concurrent revocations
// of the same grant resolve to exactly one transition.
func (s *PostgresStore) RevokeIfActive(ctx context.Context, digest models.TokenDigest, at time.Time, reason string) (bool, error) {
	query := `
		UPDATE read_grants
		SET revoked_at = $1, revoke_reason = $2
		WHERE token_digest = $3 AND revoked_at IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, at, reason, digest[:])
	if err != nil {
		return false, fmt.Errorf("revoke read grant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke read grant: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	// No transition: distinguish already-revoked from unknown.
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM read_grants WHERE token_digest = $1)`, digest[:],
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("revoke read grant: %w", err)
	}
	if !exists {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}

func (s *PostgresStore) TouchLastUsed(ctx context.Context, digest models.TokenDigest, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE read_grants SET last_used_at = $1 WHERE token_digest = $2`, at, digest[:])
	if err != nil {
		return fmt.Errorf("touch read grant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch read grant: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
