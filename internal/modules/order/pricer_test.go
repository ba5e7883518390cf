package order

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/promo"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/restaurant"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

func pizza() *catalog.Product {
	off := false
	p := product("pizza", "R1", 100)
	p.Price.Type = catalog.PriceVariant
	p.Price.Variants = []catalog.VariantGroup{{
		ID:    "size",
		Title: "Size",
		Items: []catalog.VariantItem{
			{ID: "M", Name: "Medium", Price: 0},
			{ID: "L", Name: "Large", Price: 30},
			{ID: "XL", Name: "Extra large", Price: 60, Available: &off},
		},
	}}
	p.Addons = &catalog.AddonGroup{Items: []catalog.Addon{{ID: "cheese", Name: "Cheese", Price: 20}}}
	return p
}

func variant(group string, ids ...string) VariantRequest {
	v := VariantRequest{VariantID: group}
	for _, id := range ids {
		v.Items = append(v.Items, struct {
			ID string `json:"id"`
		}{ID: id})
	}
	return v
}

func priceOne(t *testing.T, p *catalog.Product, req RequestItem, pr *promo.Promo) (*Priced, error) {
	t.Helper()
	r1 := rest("R1", restaurant.TypeRestaurant)
	return testPricer().Price([]RequestItem{req},
		map[string]*catalog.Product{p.ID: p},
		map[string]*restaurant.Restaurant{r1.ID: r1}, pr)
}

func TestPriceVariantsAndAddonsPerUnit(t *testing.T) {
	req := RequestItem{
		ProductID: "pizza",
		Quantity:  2,
		Variants:  []VariantRequest{variant("size", "L")},
		Addons:    []AddonRequest{{ID: "cheese"}},
	}
	out, err := priceOne(t, pizza(), req, nil)
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	it := out.Items[0]
	assert.Equal(t, int64(300), it.Total)
	assert.Equal(t, int64(100), it.SaleUnit)
	assert.Equal(t, int64(300), out.Total)
	require.Len(t, it.Variants, 1)
	assert.Equal(t, "L", it.Variants[0].Items[0].ID)
	require.Len(t, it.Addons, 1)
	assert.Equal(t, "R1", it.Restaurant.ID)
	assert.False(t, it.PromoApplicable)
}

func TestPriceRejectsUnresolvableSelections(t *testing.T) {
	cases := map[string]RequestItem{
		"unknown group":     {ProductID: "pizza", Quantity: 1, Variants: []VariantRequest{variant("crust", "thin")}},
		"unknown item":      {ProductID: "pizza", Quantity: 1, Variants: []VariantRequest{variant("size", "S")}},
		"switched off item": {ProductID: "pizza", Quantity: 1, Variants: []VariantRequest{variant("size", "XL")}},
		"unknown addon":     {ProductID: "pizza", Quantity: 1, Addons: []AddonRequest{{ID: "olives"}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := priceOne(t, pizza(), req, nil)
			assert.True(t, apperror.HasCode(err, apperror.CodeVariantOrAddonUnavailable), "got %v", err)
		})
	}
}

func TestPriceProductDiscounts(t *testing.T) {
	future := testNow.Add(time.Hour)
	past := testNow.Add(-time.Hour)

	cases := []struct {
		name     string
		discount *catalog.Discount
		want     int64
	}{
		{"fixed per unit", &catalog.Discount{Type: catalog.DiscountFixed, Amount: decimal.NewFromInt(15)}, 30},
		{"percentage of line", &catalog.Discount{Type: catalog.DiscountPercentage, Amount: decimal.RequireFromString("12.5")}, 25},
		{"valid until later", &catalog.Discount{Type: catalog.DiscountFixed, Amount: decimal.NewFromInt(5), Validity: &future}, 10},
		{"expired", &catalog.Discount{Type: catalog.DiscountFixed, Amount: decimal.NewFromInt(5), Validity: &past}, 0},
		{"zero amount", &catalog.Discount{Type: catalog.DiscountPercentage, Amount: decimal.Zero}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := product("P", "R1", 100)
			p.Price.Discount = tc.discount
			out, err := priceOne(t, p, line("P", 2), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Items[0].Discount)
			assert.Equal(t, tc.want, out.Discount)
		})
	}
}

func TestPriceRejectsUnavailableProduct(t *testing.T) {
	p := product("P", "R1", 100)
	p.Availability = catalog.StockOut
	_, err := priceOne(t, p, line("P", 1), nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeProductUnavailable))
}

func TestPriceTagsPromoApplicability(t *testing.T) {
	store := rest("S1", restaurant.TypeStore)
	r1 := rest("R1", restaurant.TypeRestaurant)
	products := map[string]*catalog.Product{
		"A": product("A", "R1", 100),
		"B": product("B", "S1", 100),
	}
	rests := map[string]*restaurant.Restaurant{"R1": r1, "S1": store}

	p := percentPromo("SAVE10", 10, 50)
	p.IncludeStores = false
	out, err := testPricer().Price([]RequestItem{line("A", 1), line("B", 1)}, products, rests, p)
	require.NoError(t, err)
	assert.True(t, out.Items[0].PromoApplicable)
	assert.False(t, out.Items[1].PromoApplicable)

	p.ApplyOn = promo.ApplyOnDeliveryCharge
	out, err = testPricer().Price([]RequestItem{line("A", 1)}, products, rests, p)
	require.NoError(t, err)
	assert.False(t, out.Items[0].PromoApplicable, "delivery promos do not tag items")
}

func TestCheckStock(t *testing.T) {
	tracked := product("T", "R1", 50)
	tracked.Inventoried = true
	tracked.Stock = 3
	empty := product("E", "R1", 50)
	empty.Inventoried = true
	products := map[string]*catalog.Product{"T": tracked, "E": empty, "U": product("U", "R1", 10)}

	assert.NoError(t, checkStock([]RequestItem{line("T", 2), line("U", 99), line("T", 1)}, products))

	err := checkStock([]RequestItem{line("T", 2), line("T", 2)}, products)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only 3 piece available in stock!")

	err = checkStock([]RequestItem{line("E", 1)}, products)
	assert.Contains(t, err.Error(), "is out of stock!")

	err = checkStock([]RequestItem{line("missing", 1)}, products)
	status, payload := apperror.Translate(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperror.CodeProductUnavailable, payload.Code)
}
