package restaurant

import "context"

type Repository interface {
	Create(ctx context.Context, r *Restaurant) error
	GetByID(ctx context.Context, id string) (*Restaurant, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Restaurant, error)
	UpdateAvailability(ctx context.Context, id string, available bool) error
}
