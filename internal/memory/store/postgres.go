package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"memscope/internal/memory/models"
	"memscope/pkg/domain"
	txcontext "memscope/pkg/platform/tx"
)

// PostgresStore persists memory records in the memories relation.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed memory store.
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

func (s *PostgresStore) Insert(ctx context.Context, memory models.Memory) error {
	valueJSON, err := json.Marshal(memory.Value)
	if err != nil {
		return fmt.Errorf("marshal memory value: %w", err)
	}

	var domainCol sql.NullString
	if memory.Domain != "" {
		domainCol = sql.NullString{String: memory.Domain, Valid: true}
	}
	var expiresCol sql.NullTime
	if memory.ExpiresAt != nil {
		expiresCol = sql.NullTime{Time: *memory.ExpiresAt, Valid: true}
	}

	query := `
		INSERT INTO memories (id, user_id, scope, domain, source, value_shape, value_json, ttl_days, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(memory.ID),
		string(memory.UserID),
		string(memory.Scope),
		domainCol,
		string(memory.Source),
		string(memory.Shape),
		valueJSON,
		memory.TTLDays,
		memory.CreatedAt,
		expiresCol,
	)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, q Query) ([]models.Memory, error) {
	query := `
		SELECT id, user_id, scope, domain, source, value_shape, value_json, ttl_days, created_at, expires_at
		FROM memories
		WHERE user_id = $1
		  AND scope = $2
		  AND (expires_at IS NULL OR expires_at > $3)
	`
	args := []any{string(q.UserID), string(q.Scope), q.AsOf}

	if q.Domain != "" {
		args = append(args, q.Domain)
		query += fmt.Sprintf(" AND domain = $%d", len(args))
	} else {
		query += " AND domain IS NULL"
	}

	if cutoff := q.cutoff(); !cutoff.IsZero() {
		args = append(args, cutoff)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}

	query += " ORDER BY created_at ASC, id ASC"

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var out []models.Memory
	for rows.Next() {
		var (
			id         uuid.UUID
			userID     string
			scope      string
			domainCol  sql.NullString
			source     string
			shape      string
			valueJSON  []byte
			ttlDays    int
			createdAt  sql.NullTime
			expiresCol sql.NullTime
		)
		if err := rows.Scan(&id, &userID, &scope, &domainCol, &source, &shape, &valueJSON, &ttlDays, &createdAt, &expiresCol); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}

		var value any
		if err := json.Unmarshal(valueJSON, &value); err != nil {
			return nil, fmt.Errorf("unmarshal memory value: %w", err)
		}

		m := models.Memory{
			ID:        domain.MemoryID(id),
			UserID:    domain.UserID(userID),
			Scope:     domain.Scope(scope),
			Source:    domain.Source(source),
			Shape:     domain.ValueShape(shape),
			Value:     value,
			TTLDays:   ttlDays,
			CreatedAt: createdAt.Time,
		}
		if domainCol.Valid {
			m.Domain = domainCol.String
		}
		if expiresCol.Valid {
			expires := expiresCol.Time
			m.ExpiresAt = &expires
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memories: %w", err)
	}
	return out, nil
}
