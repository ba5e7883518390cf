package order

import (
	"context"
	"time"
)

// Routing keys on the orders exchange.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventInventoryReconcile = "inventory.reconcile"
)

// Publisher sends order events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

type placedEvent struct {
	OrderID  string    `json:"order_id"`
	UserID   string    `json:"user_id"`
	HubID    string    `json:"hub"`
	Status   Status    `json:"status"`
	Total    int64     `json:"total"`
	Pickups  []string  `json:"order_numbers"`
	PlacedAt time.Time `json:"placed_at"`
}

func newPlacedEvent(o *Order) placedEvent {
	numbers := make([]string, len(o.Pickups))
	for i, p := range o.Pickups {
		numbers[i] = p.OrderNumber
	}
	return placedEvent{
		OrderID:  o.ID,
		UserID:   o.UserID,
		HubID:    o.HubID,
		Status:   o.Status,
		Total:    o.Charge.Total,
		Pickups:  numbers,
		PlacedAt: o.CreatedAt,
	}
}

type statusEvent struct {
	OrderID   string    `json:"order_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

// reconcileEvent asks an operator or worker to re-run the inventory update of an order
// whose post-persist decrement failed.
type reconcileEvent struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}
