package promo

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/money"
)

type Type string

const (
	TypeFixed      Type = "Fixed"
	TypePercentage Type = "Percentage"
)

// Target is what a promo discounts.
type Target string

const (
	ApplyOnProduct        Target = "product"
	ApplyOnCategories     Target = "categories"
	ApplyOnDeliveryCharge Target = "delivery_charge"
)

// PlatformBoth is the applicable_from value that accepts every platform.
const PlatformBoth = "both"

// ActiveTime is a daily "HH:MM" range; an end before the start runs past midnight.
type ActiveTime struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Promo is a promotional code and the rules that govern it.
type Promo struct {
	ID                 string          `json:"id"`
	Code               string          `json:"promo_code"`
	AuthHash           string          `json:"-"`
	Title              string          `json:"title,omitempty"`
	SubTitle           string          `json:"subTitle,omitempty"`
	Type               Type            `json:"promo_type"`
	Amount             decimal.Decimal `json:"promo_amount"`
	ApplyOn            Target          `json:"apply_on"`
	ApplicableFrom     string          `json:"applicable_from"`
	RestaurantID       string          `json:"restaurant,omitempty"`
	ApplyOnRestaurants []string        `json:"apply_on_restaurants,omitempty"`
	Categories         []string        `json:"categories,omitempty"`
	IncludeStores      bool            `json:"include_stores"`
	MinOrderAmount     int64           `json:"min_order_amount"`
	MaxDiscountAmount  int64           `json:"max_discount_amount"`
	MinOrder           *int            `json:"min_order,omitempty"`
	MaxOrder           *int            `json:"max_order,omitempty"`
	MaxUsage           int             `json:"max_usage"`
	MaxUsagePerUser    int             `json:"max_usage_user"`
	TotalUsage         int             `json:"totalUsage"`
	StartDate          *time.Time      `json:"start_date,omitempty"`
	EndDate            *time.Time      `json:"end_date,omitempty"`
	ActiveTime         []ActiveTime    `json:"activeTime,omitempty"`
	EligibleUsers      []string        `json:"eligible_users,omitempty"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Scope describes a line item for applicability checks.
type Scope struct {
	RestaurantID string
	Store        bool
	CategoryID   string
}

// AppliesTo reports whether an item in scope qualifies for the promo.
func (p *Promo) AppliesTo(s Scope) bool {
	whitelisted := slices.Contains(p.ApplyOnRestaurants, s.RestaurantID)
	switch {
	case s.Store && !p.IncludeStores && !whitelisted:
		return false
	case p.RestaurantID != "" && s.RestaurantID != p.RestaurantID:
		return false
	case p.ApplyOn == ApplyOnCategories && len(p.Categories) > 0 && !slices.Contains(p.Categories, s.CategoryID):
		return false
	case p.RestaurantID == "" && len(p.ApplyOnRestaurants) > 0 && !whitelisted:
		return false
	}
	return true
}

// Discount is the uncapped promo amount against base: a fixed amount never exceeds base,
// a percentage is rounded to the unit.
func (p *Promo) Discount(base int64) int64 {
	if p.Type == TypeFixed {
		return min(money.Round(p.Amount), base)
	}
	return money.Percent(base, p.Amount)
}

// Capped limits raw by the promo's max discount (when set) and by limit.
func (p *Promo) Capped(raw, limit int64) int64 {
	if p.MaxDiscountAmount > 0 {
		raw = min(raw, p.MaxDiscountAmount)
	}
	return max(min(raw, limit), 0)
}

// Snapshot is the copy of a promo stored on an order.
type Snapshot struct {
	ID                string          `json:"objectId"`
	Code              string          `json:"promo_code"`
	Type              Type            `json:"promo_type"`
	Amount            decimal.Decimal `json:"promo_amount"`
	ApplyOn           Target          `json:"apply_on"`
	MaxDiscountAmount int64           `json:"max_discount_amount"`
	MinOrderAmount    int64           `json:"min_order_amount"`
}

func (p *Promo) Snapshot() *Snapshot {
	return &Snapshot{
		ID:                p.ID,
		Code:              p.Code,
		Type:              p.Type,
		Amount:            p.Amount,
		ApplyOn:           p.ApplyOn,
		MaxDiscountAmount: p.MaxDiscountAmount,
		MinOrderAmount:    p.MinOrderAmount,
	}
}
