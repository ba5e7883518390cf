package catalog

import "context"

// Repository defines the interface for product data storage.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	// FindByIDs returns the products that exist among ids; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*Product, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*Product, error)
	UpdateAvailability(ctx context.Context, id string, availability Availability) error
	AddLot(ctx context.Context, productID string, lot Lot) (*Product, error)
}
