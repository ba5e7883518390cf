package order

import (
	"slices"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/promo"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/money"
)

// applyPromo computes the discount p grants on a priced cart and, for item-targeted promos,
// records each applicable item's share in Item.PromoDiscount. itemsTotal and discount are
// the pricer's sums; deliveryCharge is the charge for the cart's hub and area.
func applyPromo(items []*Item, p *promo.Promo, itemsTotal, discount, deliveryCharge int64) (int64, error) {
	if p.ApplyOn == promo.ApplyOnDeliveryCharge {
		return deliveryPromo(items, p, itemsTotal-discount, deliveryCharge)
	}
	return itemPromo(items, p, itemsTotal)
}

func itemPromo(items []*Item, p *promo.Promo, itemsTotal int64) (int64, error) {
	var net int64
	applicable := 0
	for _, it := range items {
		if it.PromoApplicable {
			applicable++
			net += it.net()
		}
	}
	if applicable == 0 {
		return 0, apperror.PromoNotApplicableToItems("Promo code %s is not applicable to any of the selected items!", p.Code)
	}

	raw := p.Discount(net)
	if net < p.MinOrderAmount {
		return 0, apperror.PromoMinimumOrderNotMet("Minimum order amount is %d to apply this promo!", p.MinOrderAmount)
	}
	final := p.Capped(raw, itemsTotal)
	if net <= 0 {
		return final, nil
	}

	// excess is how far the uncapped percentage overshot the cap; each item gives back
	// its proportional part of it.
	var excess int64
	if p.MaxDiscountAmount > 0 {
		excess = raw - p.MaxDiscountAmount
	}
	for _, it := range items {
		if !it.PromoApplicable {
			continue
		}
		switch {
		case p.Type == promo.TypeFixed:
			it.PromoDiscount = money.Share(it.net(), net, p.Amount)
		case excess <= 0:
			it.PromoDiscount = money.Percent(it.net(), p.Amount)
		default:
			it.PromoDiscount = money.CappedPercent(it.net(), p.Amount, excess, net)
		}
	}
	return final, nil
}

// deliveryPromo discounts the delivery charge. cartNet is the whole cart's net of product
// discounts; only qualifying items count towards the minimum order amount.
func deliveryPromo(items []*Item, p *promo.Promo, cartNet, deliveryCharge int64) (int64, error) {
	qualifying := cartNet
	switch {
	case len(p.ApplyOnRestaurants) > 0:
		qualifying = 0
		for _, it := range items {
			if slices.Contains(p.ApplyOnRestaurants, it.Restaurant.ID) || (it.Restaurant.isStore() && p.IncludeStores) {
				qualifying += it.net()
			}
		}
	case !p.IncludeStores:
		for _, it := range items {
			if it.Restaurant.isStore() {
				qualifying -= it.net()
			}
		}
	}

	if qualifying < p.MinOrderAmount {
		return 0, apperror.PromoMinimumOrderNotMet(
			"Minimum order amount is %d to apply this promo from selected restaurants!", p.MinOrderAmount)
	}
	return p.Capped(p.Discount(deliveryCharge), deliveryCharge), nil
}
