package delivery

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/hours"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/money"
)

const minEstimatedMinutes = 30

var minutesPerCharge = decimal.RequireFromString("0.67")

// Options is the delivery policy: late-night area cutoffs and express delivery.
type Options struct {
	LateNightAreas     []string
	LateNightHours     hours.Window
	ExpressRestaurants []string
	ExpressAreas       []string
	ExpressMinutes     int
	Location           *time.Location
}

type Service interface {
	// Charge returns the delivery charge from hub to area. Areas without coverage, or
	// inside their late-night cutoff, fail with AreaNotServiced.
	Charge(ctx context.Context, hubID, area string) (int64, error)
	// EstimatedTime returns the delivery estimate in minutes for an order from
	// restaurantIDs to area with the given charge.
	EstimatedTime(restaurantIDs []string, area string, charge int64) int
	SetCharge(ctx context.Context, a HubArea) (*HubArea, error)
	ListAreas(ctx context.Context, hubID string) ([]*HubArea, error)
}

type service struct {
	repo Repository
	opts Options
	now  func() time.Time
}

func NewService(repo Repository, opts Options) Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &service{repo: repo, opts: opts, now: time.Now}
}

func normalizeArea(area string) string { return strings.ToLower(strings.TrimSpace(area)) }

func (s *service) Charge(ctx context.Context, hubID, area string) (int64, error) {
	area = normalizeArea(area)
	if slices.Contains(s.opts.LateNightAreas, area) && s.opts.LateNightHours.Contains(s.now().In(s.opts.Location)) {
		return 0, apperror.AreaNotServiced("Sorry, kindly place your order before %d PM for %s!",
			s.opts.LateNightHours[0]%12, area)
	}

	charge, ok, err := s.repo.FindCharge(ctx, hubID, area)
	if err != nil {
		return 0, fmt.Errorf("find delivery charge: %w", err)
	}
	if !ok || charge == 0 {
		return 0, apperror.AreaNotServiced(
			"Your selected restaurant is not accepting orders from %s area! Try another restaurant.", area)
	}
	return charge, nil
}

func (s *service) EstimatedTime(restaurantIDs []string, area string, charge int64) int {
	if len(restaurantIDs) == 1 &&
		slices.Contains(s.opts.ExpressRestaurants, restaurantIDs[0]) &&
		slices.Contains(s.opts.ExpressAreas, normalizeArea(area)) {
		return s.opts.ExpressMinutes
	}
	return int(max(money.Rate(charge, minutesPerCharge), minEstimatedMinutes))
}

func (s *service) SetCharge(ctx context.Context, a HubArea) (*HubArea, error) {
	a.Area = normalizeArea(a.Area)
	if a.HubID == "" || a.Area == "" {
		return nil, apperror.Validation("hub and area are required")
	}
	if a.DeliveryCharge < 0 {
		return nil, apperror.Validation("delivery_charge must not be negative")
	}
	if err := s.repo.Upsert(ctx, &a); err != nil {
		return nil, fmt.Errorf("upsert hub area: %w", err)
	}
	return &a, nil
}

func (s *service) ListAreas(ctx context.Context, hubID string) ([]*HubArea, error) {
	return s.repo.ListByHub(ctx, hubID)
}
