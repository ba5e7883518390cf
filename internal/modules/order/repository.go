package order

import "context"

// PromoClaim reserves one use of a promo for a user when an order is saved.
type PromoClaim struct {
	PromoID string
	UserID  string
	// PerUserCap, when positive, limits how many live orders the user may hold with the
	// promo. Otherwise the promo's global max usage applies.
	PerUserCap int
}

// Repository defines data access for orders.
type Repository interface {
	// Create persists o in one transaction: it reserves the promo claim (if any), mints an
	// order number for every pickup from the restaurant's counter and inserts the order.
	// A claim over its cap fails with PromoUsageExceeded and nothing is written.
	Create(ctx context.Context, o *Order, claim *PromoClaim) error

	GetByID(ctx context.Context, id string) (*Order, error)

	// ListByUser returns a user's non-deleted orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Order, error)

	// UpdateStatus moves an order from one status to another. It fails with Conflict if
	// the order is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}
