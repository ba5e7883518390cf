package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/money"
)

// Assembler composes the final charge breakdown of a priced cart.
type Assembler struct {
	ServiceChargeRate decimal.Decimal
	// MaxOrderValue caps total minus delivery charge; zero disables the check.
	MaxOrderValue int64
}

func (a *Assembler) Charge(priced *Priced, promoDiscount, deliveryCharge int64) (Charge, error) {
	service := max(money.Rate(priced.Total, a.ServiceChargeRate), 0)
	discount := priced.Discount + promoDiscount
	c := Charge{
		DeliveryCharge: deliveryCharge,
		Discount:       discount,
		ItemsTotal:     priced.Total,
		PromoDiscount:  promoDiscount,
		ServiceCharge:  service,
		Total:          deliveryCharge + priced.Total - discount + service,
	}
	if a.MaxOrderValue > 0 && c.Total-deliveryCharge > a.MaxOrderValue {
		return c, apperror.OrderValueExceeded("Order amount cannot exceed %d", a.MaxOrderValue)
	}
	return c, nil
}

// buildPickups groups items by restaurant in first-seen order. Order numbers are a preview
// from the restaurant snapshot; the persisted number is minted when the order is saved.
func buildPickups(items []*Item) []*Pickup {
	var pickups []*Pickup
	byRestaurant := map[string]*Pickup{}
	for _, it := range items {
		r := it.Restaurant
		p, ok := byRestaurant[r.ID]
		if !ok {
			p = &Pickup{
				RestaurantID: r.ID,
				OrderNumber:  orderNumber(r.Prefix, r.Counter+1),
				Name:         r.Name,
				Image:        r.Image,
				Type:         r.Type,
				Prefix:       r.Prefix,
				Counter:      r.Counter,
				Address:      r.Address,
			}
			byRestaurant[r.ID] = p
			pickups = append(pickups, p)
		}
		line := *it
		line.Restaurant = nil
		p.Items = append(p.Items, line)
	}
	return pickups
}

func orderNumber(prefix string, counter int64) string {
	return fmt.Sprintf("%s-%d", prefix, counter)
}

// restaurantIDs lists the distinct restaurants of items in first-seen order.
func restaurantIDs(items []*Item) []string {
	var ids []string
	seen := map[string]bool{}
	for _, it := range items {
		if !seen[it.Restaurant.ID] {
			seen[it.Restaurant.ID] = true
			ids = append(ids, it.Restaurant.ID)
		}
	}
	return ids
}
