package order

import (
	"time"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/inventory"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/promo"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/restaurant"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusDelivered Status = "delivered"
)

// PaymentMethod indicates how the customer pays.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
	PaymentBkash  PaymentMethod = "bkash"
)

// initialStatus is pending for prepaid orders, which wait on payment, and created otherwise.
func (m PaymentMethod) initialStatus() Status {
	if m == PaymentOnline || m == PaymentBkash {
		return StatusPending
	}
	return StatusCreated
}

// RestaurantSnapshot is the copy of a restaurant carried on each order item.
type RestaurantSnapshot struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Image   string              `json:"image,omitempty"`
	Type    restaurant.Type     `json:"type"`
	Prefix  string              `json:"prefix"`
	Counter int64               `json:"counter"`
	Address *restaurant.Address `json:"address,omitempty"`
}

func snapshotOf(r *restaurant.Restaurant) *RestaurantSnapshot {
	return &RestaurantSnapshot{
		ID:      r.ID,
		Name:    r.Name,
		Image:   r.BannerImage,
		Type:    r.Type,
		Prefix:  r.Prefix,
		Counter: r.Counter,
		Address: r.Address,
	}
}

func (s *RestaurantSnapshot) isStore() bool {
	return s.Type == restaurant.TypeStore || s.Type == restaurant.TypeSubStore
}

// SelectedVariant is a resolved variant group selection.
type SelectedVariant struct {
	VariantID string                `json:"variantId"`
	Items     []catalog.VariantItem `json:"items"`
}

// Item is a priced order line.
type Item struct {
	ProductID       string              `json:"id"`
	Name            string              `json:"name"`
	Image           string              `json:"image"`
	SaleUnit        int64               `json:"sale_unit"`
	Quantity        int                 `json:"quantity"`
	Discount        int64               `json:"discount"`
	PromoDiscount   int64               `json:"promoDiscount"`
	Total           int64               `json:"total"`
	Restaurant      *RestaurantSnapshot `json:"restaurant,omitempty"`
	Category        string              `json:"category,omitempty"`
	Variants        []SelectedVariant   `json:"variant,omitempty"`
	Addons          []catalog.Addon     `json:"addons,omitempty"`
	PromoApplicable bool                `json:"isPromoApplicable"`
}

// net is the item's total after its own product discount.
func (it *Item) net() int64 { return it.Total - it.Discount }

// Charge is an order's money breakdown. Discount includes the promo discount.
type Charge struct {
	DeliveryCharge int64 `json:"delivery_charge"`
	Discount       int64 `json:"discount"`
	ItemsTotal     int64 `json:"items_total"`
	PromoDiscount  int64 `json:"promo_discount"`
	ServiceCharge  int64 `json:"vat"`
	Total          int64 `json:"total"`
}

// Pickup is the part of an order one restaurant prepares, with its own order number.
type Pickup struct {
	RestaurantID string              `json:"id"`
	OrderNumber  string              `json:"order_number"`
	Name         string              `json:"name"`
	Image        string              `json:"image,omitempty"`
	Type         restaurant.Type     `json:"type"`
	Prefix       string              `json:"prefix"`
	Counter      int64               `json:"counter"`
	Address      *restaurant.Address `json:"address,omitempty"`
	Items        []Item              `json:"items"`
	Confirmed    bool                `json:"confirmed"`
	Ready        bool                `json:"ready"`
	Picked       bool                `json:"picked"`
}

// Order is a placed customer order.
type Order struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	CustomerAddress string            `json:"customer_address"`
	CustomerArea    string            `json:"customer_area"`
	Platform        string            `json:"platform"`
	PaymentMethod   PaymentMethod     `json:"payment_method"`
	Note            string            `json:"note,omitempty"`
	HubID           string            `json:"hub"`
	Status          Status            `json:"status"`
	Items           []*Item           `json:"order_items"`
	Charge          Charge            `json:"charge"`
	Pickups         []*Pickup         `json:"pickups"`
	Promo           *promo.Snapshot   `json:"promo,omitempty"`
	Inventory       inventory.History `json:"inventory,omitempty"`
	DeliveryTime    int               `json:"delivery_time"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// VariantRequest selects items from one variant group.
type VariantRequest struct {
	VariantID string `json:"variantId"`
	Items     []struct {
		ID string `json:"id"`
	} `json:"items"`
}

// AddonRequest selects one addon.
type AddonRequest struct {
	ID string `json:"id"`
}

// RequestItem is one line as submitted by the client.
type RequestItem struct {
	ProductID string           `json:"id"`
	Quantity  int              `json:"quantity"`
	Variants  []VariantRequest `json:"variant,omitempty"`
	Addons    []AddonRequest   `json:"addons,omitempty"`
}

// QuoteRequest is the pricing input shared by quotes, promo previews and new orders.
type QuoteRequest struct {
	UserID       string        `json:"-"`
	Items        []RequestItem `json:"order_items"`
	CustomerArea string        `json:"customer_area"`
	Platform     string        `json:"platform,omitempty"`
	PromoCode    string        `json:"promo,omitempty"`
	PromoAuth    string        `json:"promoAuth,omitempty"`
}

// PlaceOrderRequest is the payload for creating a new order.
type PlaceOrderRequest struct {
	QuoteRequest
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	CustomerAddress string        `json:"customer_address"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Note            string        `json:"note,omitempty"`
}

// AvailPromoRequest previews a promo code against a cart.
type AvailPromoRequest struct {
	UserID       string        `json:"-"`
	PromoCode    string        `json:"promo_code"`
	Items        []RequestItem `json:"order_items"`
	CustomerArea string        `json:"customer_area"`
	Platform     string        `json:"platform,omitempty"`
}

// Quote is a fully priced cart that has not been persisted.
type Quote struct {
	Items        []*Item   `json:"items"`
	Charge       Charge    `json:"charge"`
	Pickups      []*Pickup `json:"pickups"`
	HubID        string    `json:"hub"`
	DeliveryTime int       `json:"delivery_time"`

	promo *promo.Promo
}

// PromoPreview summarizes a promo and what it would take off a cart.
type PromoPreview struct {
	Code              string       `json:"promoCode"`
	Type              promo.Type   `json:"promoType"`
	Amount            string       `json:"promoAmount"`
	MaxDiscountAmount int64        `json:"maximumDiscountAmount"`
	MaxUsage          int          `json:"maximumUsage"`
	ApplyOn           promo.Target `json:"apply_on"`
	PromoDiscount     int64        `json:"promoDiscount"`
	Charge            Charge       `json:"charge"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
