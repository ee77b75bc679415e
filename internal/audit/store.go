package audit

import (
	"context"

	"memscope/pkg/domain"
)

// Store persists audit events. Append assigns the insertion sequence;
// ListByUser replays a user's trail ordered by (occurred_at, seq)
// ascending so interleaved events keep a stable total order.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID domain.UserID, limit int) ([]Event, error)
}
