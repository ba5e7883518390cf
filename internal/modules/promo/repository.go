package promo

import "context"

type Repository interface {
	Create(ctx context.Context, p *Promo) error
	// FindByCode returns a PromoNotFound error when no promo has code.
	FindByCode(ctx context.Context, code string) (*Promo, error)
	SetActive(ctx context.Context, code string, active bool) error
}
