package order

import (
	"time"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/promo"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/restaurant"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/money"
)

// Priced is the pricer's output: annotated items plus their summed totals and product
// discounts, before any promo.
type Priced struct {
	Items    []*Item
	Total    int64
	Discount int64
}

// Pricer turns requested lines into priced order items.
type Pricer struct {
	Now func() time.Time
}

func NewPricer() *Pricer { return &Pricer{Now: time.Now} }

// Price resolves every requested line against products and restaurants (both keyed by id).
// When p is set and does not target the delivery charge, each item is tagged with whether
// the promo may apply to it.
func (pr *Pricer) Price(reqs []RequestItem, products map[string]*catalog.Product,
	restaurants map[string]*restaurant.Restaurant, p *promo.Promo) (*Priced, error) {
	now := pr.Now()
	out := &Priced{Items: make([]*Item, 0, len(reqs))}

	for _, req := range reqs {
		product, ok := products[req.ProductID]
		if !ok {
			return nil, apperror.ProductNotFound("Order item not found!")
		}
		if product.Availability != catalog.Available {
			return nil, apperror.ProductUnavailable("Product %s is not available!", product.Name)
		}
		rest, ok := restaurants[product.RestaurantID]
		if !ok {
			return nil, apperror.ProductUnavailable("%s is not available!", product.Name)
		}

		item, err := priceLine(req, product)
		if err != nil {
			return nil, err
		}
		item.Restaurant = snapshotOf(rest)

		if d := product.Price.Discount; d.Active(now) {
			switch d.Type {
			case catalog.DiscountFixed:
				item.Discount = money.Times(d.Amount, req.Quantity)
			case catalog.DiscountPercentage:
				item.Discount = money.Percent(item.Total, d.Amount)
			}
		}

		if p != nil && p.ApplyOn != promo.ApplyOnDeliveryCharge {
			item.PromoApplicable = p.AppliesTo(promo.Scope{
				RestaurantID: rest.ID,
				Store:        rest.IsStore(),
				CategoryID:   item.Category,
			})
		}

		out.Total += item.Total
		out.Discount += item.Discount
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// priceLine computes the line total: base price plus every selected variant item and
// addon, each counted once per unit.
func priceLine(req RequestItem, product *catalog.Product) (*Item, error) {
	qty := int64(req.Quantity)
	item := &Item{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.Image(),
		SaleUnit:  product.Price.Amount,
		Quantity:  req.Quantity,
		Category:  product.CategoryID,
		Total:     qty * product.Price.Amount,
	}

	if product.Price.Type == catalog.PriceVariant {
		for _, sel := range req.Variants {
			group, ok := product.Price.Variant(sel.VariantID)
			if !ok {
				return nil, apperror.VariantOrAddonUnavailable("%s variant not available!", product.Name)
			}
			chosen := SelectedVariant{VariantID: group.ID, Items: make([]catalog.VariantItem, 0, len(sel.Items))}
			for _, s := range sel.Items {
				v, ok := group.Item(s.ID)
				if !ok || v.Unavailable() {
					return nil, apperror.VariantOrAddonUnavailable("%s variant not available!", product.Name)
				}
				item.Total += qty * v.Price
				chosen.Items = append(chosen.Items, v)
			}
			item.Variants = append(item.Variants, chosen)
		}
	}

	for _, sel := range req.Addons {
		a, ok := product.Addons.Addon(sel.ID)
		if !ok {
			return nil, apperror.VariantOrAddonUnavailable("%s addon not available!", product.Name)
		}
		item.Total += qty * a.Price
		item.Addons = append(item.Addons, a)
	}
	return item, nil
}

// checkStock fails when a requested product is missing or when an inventory-tracked
// product has less stock than the quantity requested across all lines.
func checkStock(reqs []RequestItem, products map[string]*catalog.Product) error {
	wanted := map[string]int{}
	var order []string
	for _, r := range reqs {
		if _, ok := products[r.ProductID]; !ok {
			return apperror.ProductNotFound("Order item not found!")
		}
		if _, seen := wanted[r.ProductID]; !seen {
			order = append(order, r.ProductID)
		}
		wanted[r.ProductID] += r.Quantity
	}

	for _, id := range order {
		p := products[id]
		if !p.Inventoried || p.Stock >= wanted[id] {
			continue
		}
		if p.Stock <= 0 {
			return apperror.ProductUnavailable("%s is out of stock!", p.Name)
		}
		return apperror.ProductUnavailable("%s only %d piece available in stock!", p.Name, p.Stock)
	}
	return nil
}
