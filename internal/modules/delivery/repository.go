package delivery

import "context"

type Repository interface {
	// FindCharge returns the delivery charge for area within hub, and false when the pair is unknown.
	FindCharge(ctx context.Context, hubID, area string) (int64, bool, error)
	Upsert(ctx context.Context, a *HubArea) error
	ListByHub(ctx context.Context, hubID string) ([]*HubArea, error)
}
