package promo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

// OrderCounter reports a user's order history. Deleted orders are not counted.
type OrderCounter interface {
	CountUserOrders(ctx context.Context, userID string) (int, error)
	CountUserPromoOrders(ctx context.Context, userID, promoID string) (int, error)
}

// Subject is who is redeeming a promo and from where.
type Subject struct {
	UserID   string
	Platform string
}

// Evaluator decides whether a promo may be redeemed by a subject right now.
type Evaluator struct {
	orders OrderCounter
	loc    *time.Location
	// referenceHour is the hour of day absolute start and end dates are pinned to.
	referenceHour int
	now           func() time.Time
}

func NewEvaluator(orders OrderCounter, loc *time.Location, referenceHour int) *Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	return &Evaluator{orders: orders, loc: loc, referenceHour: referenceHour, now: time.Now}
}

// Evaluate runs the eligibility rules in order and returns the first violation.
func (e *Evaluator) Evaluate(ctx context.Context, p *Promo, s Subject) error {
	if !p.IsActive {
		return apperror.PromoInactive("Promo code %s is not active!", p.Code)
	}

	if p.MinOrder != nil || p.MaxOrder != nil {
		n, err := e.orders.CountUserOrders(ctx, s.UserID)
		if err != nil {
			return fmt.Errorf("count user orders: %w", err)
		}
		if (p.MinOrder != nil && *p.MinOrder > n) || (p.MaxOrder != nil && n > *p.MaxOrder) {
			return apperror.PromoNotApplicableToUser("Sorry, this promo code is not applicable for you!")
		}
	}

	if len(p.EligibleUsers) > 0 && !slices.Contains(p.EligibleUsers, s.UserID) {
		return apperror.PromoNotApplicableToUser("Sorry, this promo code is not applicable for you!")
	}

	if !e.withinWindow(p, e.now().In(e.loc)) {
		return apperror.PromoExpired("Promo code %s has expired!", p.Code)
	}

	if p.ApplicableFrom != "" && p.ApplicableFrom != PlatformBoth && p.ApplicableFrom != s.Platform {
		return apperror.PromoPlatformMismatch("Promo code %s is only available on %s.", p.Code, p.ApplicableFrom)
	}

	switch {
	case p.MaxUsagePerUser > 0:
		n, err := e.orders.CountUserPromoOrders(ctx, s.UserID, p.ID)
		if err != nil {
			return fmt.Errorf("count user promo orders: %w", err)
		}
		if n >= p.MaxUsagePerUser {
			return apperror.PromoUsageExceeded("You have already used promo code %s the maximum number of times.", p.Code)
		}
	case p.MaxUsage > 0:
		if p.TotalUsage >= p.MaxUsage {
			return apperror.PromoUsageExceeded("Promo code %s has reached its usage limit.", p.Code)
		}
	}
	return nil
}

// withinWindow checks the daily active-time ranges when the promo has any, else the
// absolute start and end dates. A missing date leaves that side open.
func (e *Evaluator) withinWindow(p *Promo, now time.Time) bool {
	if len(p.ActiveTime) > 0 {
		for _, r := range p.ActiveTime {
			start, ok1 := clockOn(now, r.StartTime)
			end, ok2 := clockOn(now, r.EndTime)
			if !ok1 || !ok2 {
				continue
			}
			if end.Before(start) {
				end = end.AddDate(0, 0, 1)
			}
			if now.After(start) && now.Before(end) {
				return true
			}
		}
		return false
	}

	if p.StartDate != nil && now.Before(e.pin(*p.StartDate)) {
		return false
	}
	if p.EndDate != nil && now.After(e.pin(*p.EndDate).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// pin moves d to the reference hour of its calendar date.
func (e *Evaluator) pin(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, e.referenceHour, 0, 0, 0, e.loc)
}

// clockOn places an "HH:MM" or "HH:MM:SS" time of day on day's date.
func clockOn(day time.Time, clock string) (time.Time, bool) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, clock); err == nil {
			y, m, d := day.Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, day.Location()), true
		}
	}
	return time.Time{}, false
}
