package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Availability is the sellable state of a product.
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
	StockOut    Availability = "stock out"
)

// PriceType selects whether a product is sold at a flat price or through variant groups.
type PriceType string

const (
	PriceFlat    PriceType = "flat"
	PriceVariant PriceType = "variant"
)

// DiscountType is how a product-level discount amount is interpreted.
type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// Discount is a product's own, optionally time-bounded, markdown.
type Discount struct {
	Type     DiscountType    `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Validity *time.Time      `json:"validity,omitempty"`
}

// Active reports whether the discount applies at now: a positive amount and, if a
// validity is set, one that has not yet passed.
func (d *Discount) Active(now time.Time) bool {
	if d == nil || !d.Amount.IsPositive() {
		return false
	}
	return d.Validity == nil || d.Validity.After(now)
}

// VariantItem is one selectable option inside a variant group.
type VariantItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Available *bool  `json:"availability,omitempty"`
}

// Unavailable is true only when the item is explicitly switched off.
func (v VariantItem) Unavailable() bool { return v.Available != nil && !*v.Available }

// VariantGroup is a set of options such as size or crust.
type VariantGroup struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Min   int           `json:"min"`
	Max   int           `json:"max"`
	Items []VariantItem `json:"items"`
}

func (g VariantGroup) Item(id string) (VariantItem, bool) {
	for _, it := range g.Items {
		if it.ID == id {
			return it, true
		}
	}
	return VariantItem{}, false
}

// Price is a product's price record.
type Price struct {
	Amount   int64          `json:"amount"`
	Type     PriceType      `json:"type"`
	Discount *Discount      `json:"discount,omitempty"`
	Variants []VariantGroup `json:"variants,omitempty"`
}

func (p Price) Variant(id string) (VariantGroup, bool) {
	for _, g := range p.Variants {
		if g.ID == id {
			return g, true
		}
	}
	return VariantGroup{}, false
}

// Addon is an optional extra sold with a product.
type Addon struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type AddonGroup struct {
	Title string  `json:"title"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Items []Addon `json:"items"`
}

func (g *AddonGroup) Addon(id string) (Addon, bool) {
	if g == nil {
		return Addon{}, false
	}
	for _, a := range g.Items {
		if a.ID == id {
			return a, true
		}
	}
	return Addon{}, false
}

// Lot is a batch of stock with its own cost basis. A product's lots are kept oldest first.
type Lot struct {
	ID           string          `json:"id"`
	Stock        int             `json:"stock"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	SellingPrice int64           `json:"selling_price"`
	CreatedAt    time.Time       `json:"createdAt"`
	StockOutAt   *time.Time      `json:"stockOutAt,omitempty"`
}

// Product is a sellable catalog entry owned by one restaurant.
type Product struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Images       []string     `json:"images,omitempty"`
	Availability Availability `json:"availability"`
	Price        Price        `json:"price"`
	Addons       *AddonGroup  `json:"addons,omitempty"`
	Inventoried  bool         `json:"is_inv"`
	Stock        int          `json:"stock"`
	Lots         []Lot        `json:"inventory,omitempty"`
	RestaurantID string       `json:"restaurant_id"`
	CategoryID   string       `json:"category_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Image returns the product's first image or "".
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// LotStock sums remaining stock across lots.
func (p *Product) LotStock() int {
	n := 0
	for _, l := range p.Lots {
		n += l.Stock
	}
	return n
}
