package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"memscope/pkg/domain"
	txcontext "memscope/pkg/platform/tx"
)

// PostgresStore persists the trail in the audit_events table. The seq
// column is BIGSERIAL so insertion order survives timestamp ties.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execer joins a caller transaction when one is in the context.
func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	if event.ID.IsNil() {
		event.ID = domain.NewEventID()
	}

	ids := make([]string, 0, len(event.MemoryIDs))
	for _, id := range event.MemoryIDs {
		ids = append(ids, id.String())
	}

	var grantID sql.NullString
	if !event.GrantID.IsNil() {
		grantID = sql.NullString{String: event.GrantID.String(), Valid: true}
	}
	var dom sql.NullString
	if event.Domain != "" {
		dom = sql.NullString{String: event.Domain, Valid: true}
	}
	var reason sql.NullString
	if event.ReasonCode != "" {
		reason = sql.NullString{String: event.ReasonCode, Valid: true}
	}

	query := `
		INSERT INTO audit_events (
			id, event_type, user_id, scope, domain, purpose, purpose_class,
			memory_ids, grant_id, outcome, reason_code, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		event.ID.String(), string(event.Kind), string(event.UserID),
		string(event.Scope), dom, event.Purpose, string(event.PurposeClass),
		pq.Array(ids), grantID, string(event.Outcome), reason, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID domain.UserID, limit int) ([]Event, error) {
	query := `
		SELECT id, seq, event_type, user_id, scope, domain, purpose,
		       purpose_class, memory_ids, grant_id, outcome, reason_code,
		       occurred_at
		FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at ASC, seq ASC
	`
	args := []any{string(userID)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			rawID        string
			rawKind      string
			rawUser      string
			rawScope     string
			dom          sql.NullString
			rawPurpClass string
			rawMemoryIDs pq.StringArray
			rawGrantID   sql.NullString
			rawOutcome   string
			reason       sql.NullString
			event        Event
		)
		err := rows.Scan(&rawID, &event.Seq, &rawKind, &rawUser, &rawScope, &dom,
			&event.Purpose, &rawPurpClass, &rawMemoryIDs, &rawGrantID,
			&rawOutcome, &reason, &event.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.ID, err = domain.ParseEventID(rawID)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Kind = EventKind(rawKind)
		event.UserID = domain.UserID(rawUser)
		event.Scope = domain.Scope(rawScope)
		event.PurposeClass = domain.PurposeClass(rawPurpClass)
		event.Outcome = Outcome(rawOutcome)
		if dom.Valid {
			event.Domain = dom.String
		}
		if reason.Valid {
			event.ReasonCode = reason.String
		}
		if rawGrantID.Valid {
			event.GrantID, err = domain.ParseGrantID(rawGrantID.String)
			if err != nil {
				return nil, fmt.Errorf("scan audit event: %w", err)
			}
		}
		for _, raw := range rawMemoryIDs {
			memoryID, err := domain.ParseMemoryID(raw)
			if err != nil {
				return nil, fmt.Errorf("scan audit event: %w", err)
			}
			event.MemoryIDs = append(event.MemoryIDs, memoryID)
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
