package inventory

import (
	"context"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
)

// Repository opens ledger transactions.
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a unit of ledger work. Products returned by LockProducts stay locked until
// Commit or Rollback.
type Tx interface {
	LockProducts(ctx context.Context, ids []string) ([]*catalog.Product, error)
	SaveProduct(ctx context.Context, p *catalog.Product) error
	// AdjustLots lowers inventory collection stock by delta per lot id; negative deltas add stock back.
	AdjustLots(ctx context.Context, deltas map[string]int) error
	// SaveHistory stores h on the order. It fails with Conflict when the order already has one.
	SaveHistory(ctx context.Context, orderID string, h History) error
	// ClaimHistory marks the order's history restored and returns it. ok is false when the
	// order has no history or it was already restored.
	ClaimHistory(ctx context.Context, orderID string) (h History, ok bool, err error)
	Commit() error
	Rollback() error
}
