package promo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAppliesTo(t *testing.T) {
	tests := []struct {
		name  string
		promo Promo
		scope Scope
		want  bool
	}{
		{"unscoped restaurant item", Promo{ApplyOn: ApplyOnProduct}, Scope{RestaurantID: "R1"}, true},
		{"store item excluded", Promo{ApplyOn: ApplyOnProduct}, Scope{RestaurantID: "S1", Store: true}, false},
		{"store item included", Promo{ApplyOn: ApplyOnProduct, IncludeStores: true}, Scope{RestaurantID: "S1", Store: true}, true},
		{"store item whitelisted", Promo{ApplyOn: ApplyOnProduct, ApplyOnRestaurants: []string{"S1"}}, Scope{RestaurantID: "S1", Store: true}, true},
		{"scoped to other restaurant", Promo{ApplyOn: ApplyOnProduct, RestaurantID: "R2"}, Scope{RestaurantID: "R1"}, false},
		{"scoped to same restaurant", Promo{ApplyOn: ApplyOnProduct, RestaurantID: "R1"}, Scope{RestaurantID: "R1"}, true},
		{"category listed", Promo{ApplyOn: ApplyOnCategories, Categories: []string{"pizza"}}, Scope{RestaurantID: "R1", CategoryID: "pizza"}, true},
		{"category not listed", Promo{ApplyOn: ApplyOnCategories, Categories: []string{"pizza"}}, Scope{RestaurantID: "R1", CategoryID: "burger"}, false},
		{"category promo without a list", Promo{ApplyOn: ApplyOnCategories}, Scope{RestaurantID: "R1", CategoryID: "burger"}, true},
		{"categories ignored for product promos", Promo{ApplyOn: ApplyOnProduct, Categories: []string{"pizza"}}, Scope{RestaurantID: "R1", CategoryID: "burger"}, true},
		{"whitelist excludes restaurant", Promo{ApplyOn: ApplyOnProduct, ApplyOnRestaurants: []string{"R2"}}, Scope{RestaurantID: "R1"}, false},
		{"whitelist includes restaurant", Promo{ApplyOn: ApplyOnProduct, ApplyOnRestaurants: []string{"R1"}}, Scope{RestaurantID: "R1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.promo.AppliesTo(tt.scope))
		})
	}
}

func TestDiscountAndCap(t *testing.T) {
	pct := &Promo{Type: TypePercentage, Amount: decimal.NewFromInt(10), MaxDiscountAmount: 50}
	assert.Equal(t, int64(20), pct.Discount(200))
	assert.Equal(t, int64(20), pct.Capped(20, 200))
	assert.Equal(t, int64(50), pct.Capped(pct.Discount(900), 900))

	fixed := &Promo{Type: TypeFixed, Amount: decimal.NewFromInt(500), MaxDiscountAmount: 100}
	assert.Equal(t, int64(300), fixed.Discount(300))
	assert.Equal(t, int64(100), fixed.Capped(300, 300))

	uncapped := &Promo{Type: TypeFixed, Amount: decimal.NewFromInt(500)}
	assert.Equal(t, int64(120), uncapped.Capped(uncapped.Discount(300), 120))
	assert.Equal(t, int64(0), uncapped.Capped(10, -5))
}

func TestSnapshot(t *testing.T) {
	p := &Promo{ID: "p1", Code: "SAVE10", Type: TypePercentage, Amount: decimal.NewFromInt(10), ApplyOn: ApplyOnProduct, MaxDiscountAmount: 50}
	s := p.Snapshot()
	assert.Equal(t, "p1", s.ID)
	assert.Equal(t, "SAVE10", s.Code)
	assert.Equal(t, int64(50), s.MaxDiscountAmount)
}

func TestAuthenticate(t *testing.T) {
	hash, err := HashAuth("s3cret")
	assert.NoError(t, err)

	p := &Promo{AuthHash: hash}
	assert.NoError(t, p.Authenticate("s3cret"))
	assert.ErrorIs(t, p.Authenticate("guess"), errInvalidAuth)

	assert.NoError(t, (&Promo{}).Authenticate("anything"))
}
