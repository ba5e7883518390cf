package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/inventory"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/promo"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/restaurant"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/hours"
)

// 21:00 UTC: inside the [20, 6] platform and default restaurant windows.
var testNow = time.Date(2024, 5, 10, 21, 0, 0, 0, time.UTC)

type memRepo struct {
	orders   map[string]*Order
	counters map[string]int64
	claims   []PromoClaim
	err      error
}

func newMemRepo() *memRepo {
	return &memRepo{orders: map[string]*Order{}, counters: map[string]int64{}}
}

func (r *memRepo) Create(_ context.Context, o *Order, claim *PromoClaim) error {
	if r.err != nil {
		return r.err
	}
	if claim != nil {
		r.claims = append(r.claims, *claim)
	}
	for _, p := range o.Pickups {
		r.counters[p.RestaurantID]++
		p.Counter = r.counters[p.RestaurantID] - 1
		p.OrderNumber = orderNumber(p.Prefix, r.counters[p.RestaurantID])
	}
	r.orders[o.ID] = o
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, apperror.NotFound("order %s not found", id)
	}
	c := *o
	return &c, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID string) ([]*Order, error) {
	var out []*Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id string, from, to Status) error {
	o, ok := r.orders[id]
	if !ok {
		return apperror.NotFound("order %s not found", id)
	}
	if o.Status != from {
		return apperror.Conflict("order %s is no longer %s", id, from)
	}
	o.Status = to
	return nil
}

type fakeCatalog map[string]*catalog.Product

func (f fakeCatalog) FindProducts(_ context.Context, ids []string) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeRestaurants map[string]*restaurant.Restaurant

func (f fakeRestaurants) FindRestaurants(_ context.Context, ids []string) ([]*restaurant.Restaurant, error) {
	var out []*restaurant.Restaurant
	for _, id := range ids {
		if r, ok := f[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeDelivery struct {
	charge int64
	err    error
}

func (f fakeDelivery) Charge(context.Context, string, string) (int64, error) { return f.charge, f.err }

func (f fakeDelivery) EstimatedTime(_ []string, _ string, charge int64) int {
	return max(int(charge), 30)
}

type fakePromos struct {
	promos  map[string]*promo.Promo
	evalErr error
}

func (f *fakePromos) GetPromo(_ context.Context, code string) (*promo.Promo, error) {
	p, ok := f.promos[code]
	if !ok {
		return nil, apperror.PromoNotFound("Promo code %s not found!", code)
	}
	return p, nil
}

func (f *fakePromos) Redeemable(ctx context.Context, code, _ string) (*promo.Promo, error) {
	return f.GetPromo(ctx, code)
}

func (f *fakePromos) Evaluate(context.Context, *promo.Promo, promo.Subject) error { return f.evalErr }

type fakeInventory struct {
	applyErr error
	applied  map[string][]inventory.Line
	restored map[string]bool
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{applied: map[string][]inventory.Line{}, restored: map[string]bool{}}
}

func (f *fakeInventory) Apply(_ context.Context, orderID string, lines []inventory.Line) (inventory.History, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	if _, ok := f.applied[orderID]; ok {
		return nil, apperror.Conflict("inventory for order %s was already applied", orderID)
	}
	f.applied[orderID] = lines
	h := inventory.History{}
	for _, l := range lines {
		h = append(h, inventory.Record{ProductID: l.ProductID, Quantity: l.Quantity, Ordered: l.Quantity})
	}
	return h, nil
}

func (f *fakeInventory) Restore(_ context.Context, orderID string) (bool, error) {
	if _, ok := f.applied[orderID]; !ok || f.restored[orderID] {
		return false, nil
	}
	f.restored[orderID] = true
	return true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, key)
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func product(id, restaurantID string, price int64) *catalog.Product {
	return &catalog.Product{
		ID:           id,
		Name:         "Product " + id,
		Availability: catalog.Available,
		Price:        catalog.Price{Amount: price, Type: catalog.PriceFlat},
		RestaurantID: restaurantID,
		CategoryID:   "cat-1",
	}
}

func rest(id string, typ restaurant.Type, group ...string) *restaurant.Restaurant {
	return &restaurant.Restaurant{
		ID:           id,
		Name:         "Restaurant " + id,
		Type:         typ,
		Availability: true,
		Group:        group,
		HubID:        "hub-1",
		Prefix:       id,
	}
}

func percentPromo(code string, pct, maxDiscount int64) *promo.Promo {
	return &promo.Promo{
		ID:                "promo-" + code,
		Code:              code,
		Type:              promo.TypePercentage,
		Amount:            decimal.NewFromInt(pct),
		ApplyOn:           promo.ApplyOnProduct,
		ApplicableFrom:    promo.PlatformBoth,
		IncludeStores:     true,
		MaxDiscountAmount: maxDiscount,
		IsActive:          true,
	}
}

func fixedPromo(code string, amount, maxDiscount int64) *promo.Promo {
	p := percentPromo(code, amount, maxDiscount)
	p.Type = promo.TypeFixed
	return p
}

func testPricer() *Pricer { return &Pricer{Now: func() time.Time { return testNow }} }

func testValidator() *restaurant.Validator {
	v := restaurant.NewValidator(hours.Window{20, 6}, hours.Window{20, 6}, time.UTC)
	v.Now = func() time.Time { return testNow }
	return v
}

type harness struct {
	svc       Service
	repo      *memRepo
	catalog   fakeCatalog
	rests     fakeRestaurants
	promos    *fakePromos
	inventory *fakeInventory
	events    *recordingPublisher
}

func newHarness(products []*catalog.Product, rests []*restaurant.Restaurant, promos ...*promo.Promo) *harness {
	h := &harness{
		repo:      newMemRepo(),
		catalog:   fakeCatalog{},
		rests:     fakeRestaurants{},
		promos:    &fakePromos{promos: map[string]*promo.Promo{}},
		inventory: newFakeInventory(),
		events:    &recordingPublisher{},
	}
	for _, p := range products {
		h.catalog[p.ID] = p
	}
	for _, r := range rests {
		h.rests[r.ID] = r
	}
	for _, p := range promos {
		h.promos.promos[p.Code] = p
	}
	svc := NewService(Dependencies{
		Repo:        h.repo,
		Catalog:     h.catalog,
		Restaurants: h.rests,
		Validator:   testValidator(),
		Delivery:    fakeDelivery{charge: 60},
		Promos:      h.promos,
		Inventory:   h.inventory,
		Pricer:      testPricer(),
		Assembler:   &Assembler{ServiceChargeRate: decimal.RequireFromString("0.05"), MaxOrderValue: 5000},
		Events:      h.events,
	}).(*service)
	svc.now = func() time.Time { return testNow }
	h.svc = svc
	return h
}

func line(id string, qty int) RequestItem { return RequestItem{ProductID: id, Quantity: qty} }

func placeRequest(items ...RequestItem) PlaceOrderRequest {
	return PlaceOrderRequest{
		QuoteRequest: QuoteRequest{
			UserID:       "user-1",
			Items:        items,
			CustomerArea: "Gulshan",
			Platform:     "app",
		},
		CustomerName:    "Rahim",
		CustomerPhone:   "01700000000",
		CustomerAddress: "Road 11",
		PaymentMethod:   PaymentCOD,
	}
}

func withPromo(req PlaceOrderRequest, code string) PlaceOrderRequest {
	req.PromoCode = code
	req.PromoAuth = fmt.Sprintf("auth-%s", code)
	return req
}
