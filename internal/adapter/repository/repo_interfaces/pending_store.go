package repo_interfaces

import (
	"context"

	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

// PendingStore keeps at most one staged operation per interaction token.
type PendingStore interface {
	Stage(ctx context.Context, token string, op domain.PendingOperation) error
	// Take pops the staged operation: a second Take for the same token
	// reports absence, so a replayed confirmation cannot reuse a payload.
	Take(ctx context.Context, token string) (domain.PendingOperation, bool, error)
	Clear(ctx context.Context, token string) error
}
