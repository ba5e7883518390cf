package order

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/inventory"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/promo"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/restaurant"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/broker"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/logger"
)

// Service defines the order pricing and lifecycle business logic.
type Service interface {
	// Quote prices a cart without persisting anything.
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)

	// PlaceOrder prices the cart, persists the order and then consumes inventory for it.
	// An inventory failure after the order is saved does not fail the call; it is logged
	// and published for reconciliation.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error)

	// AvailPromo previews what a promo code takes off a cart.
	AvailPromo(ctx context.Context, req AvailPromoRequest) (*PromoPreview, error)

	GetOrder(ctx context.Context, id string) (*Order, error)

	// ListCustomerOrders returns all orders placed by a customer.
	ListCustomerOrders(ctx context.Context, userID string) ([]*Order, error)

	// UpdateStatus advances an order to a new lifecycle status. Cancelling or rejecting an
	// order returns its consumed inventory.
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error)

	// ReconcileInventory re-runs the inventory step of an order: apply for live orders,
	// restore for cancelled or rejected ones. Both are no-ops once done.
	ReconcileInventory(ctx context.Context, id string) (*Order, error)
}

// Catalog resolves products.
type Catalog interface {
	FindProducts(ctx context.Context, ids []string) ([]*catalog.Product, error)
}

// Restaurants resolves restaurants.
type Restaurants interface {
	FindRestaurants(ctx context.Context, ids []string) ([]*restaurant.Restaurant, error)
}

// Delivery prices delivery from a hub to a customer area.
type Delivery interface {
	Charge(ctx context.Context, hubID, area string) (int64, error)
	EstimatedTime(restaurantIDs []string, area string, charge int64) int
}

// Promos looks up and evaluates promo codes.
type Promos interface {
	GetPromo(ctx context.Context, code string) (*promo.Promo, error)
	Redeemable(ctx context.Context, code, auth string) (*promo.Promo, error)
	Evaluate(ctx context.Context, p *promo.Promo, s promo.Subject) error
}

// Inventory consumes and returns stock for orders.
type Inventory interface {
	Apply(ctx context.Context, orderID string, lines []inventory.Line) (inventory.History, error)
	Restore(ctx context.Context, orderID string) (bool, error)
}

// Dependencies are the collaborators of the order service.
type Dependencies struct {
	Repo        Repository
	Catalog     Catalog
	Restaurants Restaurants
	Validator   *restaurant.Validator
	Delivery    Delivery
	Promos      Promos
	Inventory   Inventory
	Pricer      *Pricer
	Assembler   *Assembler
	Events      Publisher
	Log         *logger.Logger
}

type service struct {
	Dependencies
	now func() time.Time
}

// NewService creates a new order service.
func NewService(deps Dependencies) Service {
	if deps.Pricer == nil {
		deps.Pricer = NewPricer()
	}
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	if deps.Events == nil {
		deps.Events = broker.Discard{}
	}
	return &service{Dependencies: deps, now: time.Now}
}

// validTransitions defines the allowed status state machine.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusCreated, StatusCancelled},
	StatusCreated:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusDelivered},
	StatusDelivered: {},
	StatusRejected:  {},
	StatusCancelled: {},
}

var platforms = []string{"app", "web", "social_media", "custom"}

func (r *QuoteRequest) validate() error {
	if len(r.Items) == 0 {
		return apperror.Validation("order_items must contain at least one item")
	}
	for _, it := range r.Items {
		if it.ProductID == "" {
			return apperror.Validation("order_items: id is required")
		}
		if it.Quantity < 1 {
			return apperror.Validation("order_items: quantity must be at least 1")
		}
	}
	if strings.TrimSpace(r.CustomerArea) == "" {
		return apperror.Validation("customer_area is required")
	}
	if r.Platform != "" && !slices.Contains(platforms, r.Platform) {
		return apperror.Validation("unknown platform %q", r.Platform)
	}
	if r.PromoCode != "" && r.PromoAuth == "" {
		return apperror.Validation("promoAuth is required with promo")
	}
	return nil
}

func (r *PlaceOrderRequest) validate() error {
	if err := r.QuoteRequest.validate(); err != nil {
		return err
	}
	if r.UserID == "" {
		return apperror.Validation("X-User-ID header is required")
	}
	if r.CustomerName == "" || r.CustomerPhone == "" || r.CustomerAddress == "" {
		return apperror.Validation("customer_name, customer_phone and customer_address are required")
	}
	switch r.PaymentMethod {
	case PaymentCOD, PaymentOnline, PaymentBkash:
	default:
		return apperror.Validation("paymentMethod must be one of cod, online, bkash")
	}
	return nil
}

type promoLookup func(ctx context.Context) (*promo.Promo, error)

// redeemable looks the request's promo up by code and auth. A code that does not resolve
// is dropped and the cart is priced without a promo.
func (s *service) redeemable(req QuoteRequest) promoLookup {
	if req.PromoCode == "" {
		return nil
	}
	return func(ctx context.Context) (*promo.Promo, error) {
		p, err := s.Promos.Redeemable(ctx, req.PromoCode, req.PromoAuth)
		if apperror.HasCode(err, apperror.CodePromoNotFound) {
			return nil, nil
		}
		return p, err
	}
}

func (s *service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	return s.price(ctx, req, s.redeemable(req))
}

// price runs the pricing pipeline: catalog and promo lookups, stock check, restaurant
// validation, delivery charge, promo eligibility, item pricing, promo charge and totals.
func (s *service) price(ctx context.Context, req QuoteRequest, findPromo promoLookup) (*Quote, error) {
	var (
		products []*catalog.Product
		p        *promo.Promo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.Catalog.FindProducts(gctx, productIDs(req.Items))
		return err
	})
	if findPromo != nil {
		g.Go(func() error {
			var err error
			p, err = findPromo(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]*catalog.Product, len(products))
	for _, pr := range products {
		byID[pr.ID] = pr
	}
	if err := checkStock(req.Items, byID); err != nil {
		return nil, err
	}

	rests, err := s.restaurantsFor(ctx, req.Items, byID)
	if err != nil {
		return nil, err
	}
	if err := s.Validator.Validate(rests); err != nil {
		return nil, err
	}
	hubID := rests[0].HubID

	deliveryCharge, err := s.Delivery.Charge(ctx, hubID, req.CustomerArea)
	if err != nil {
		return nil, err
	}

	if p != nil {
		if err := s.Promos.Evaluate(ctx, p, promo.Subject{UserID: req.UserID, Platform: req.Platform}); err != nil {
			return nil, err
		}
	}

	restByID := make(map[string]*restaurant.Restaurant, len(rests))
	for _, r := range rests {
		restByID[r.ID] = r
	}
	priced, err := s.Pricer.Price(req.Items, byID, restByID, p)
	if err != nil {
		return nil, err
	}

	var promoDiscount int64
	if p != nil {
		if promoDiscount, err = applyPromo(priced.Items, p, priced.Total, priced.Discount, deliveryCharge); err != nil {
			return nil, err
		}
	}

	charge, err := s.Assembler.Charge(priced, promoDiscount, deliveryCharge)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Items:        priced.Items,
		Charge:       charge,
		Pickups:      buildPickups(priced.Items),
		HubID:        hubID,
		DeliveryTime: s.Delivery.EstimatedTime(restaurantIDs(priced.Items), req.CustomerArea, deliveryCharge),
		promo:        p,
	}, nil
}

// restaurantsFor loads the distinct restaurants owning the requested products, in the
// order they first appear in the cart.
func (s *service) restaurantsFor(ctx context.Context, items []RequestItem, products map[string]*catalog.Product) ([]*restaurant.Restaurant, error) {
	var ids []string
	for _, it := range items {
		if id := products[it.ProductID].RestaurantID; !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	found, err := s.Restaurants.FindRestaurants(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*restaurant.Restaurant, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}

	rests := make([]*restaurant.Restaurant, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, apperror.RestaurantUnavailable("Restaurant %s isn't available at this moment.", id)
		}
		rests = append(rests, r)
	}
	return rests, nil
}

func (s *service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	q, err := s.price(ctx, req.QuoteRequest, s.redeemable(req.QuoteRequest))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := &Order{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		CustomerArea:    req.CustomerArea,
		Platform:        req.Platform,
		PaymentMethod:   req.PaymentMethod,
		Note:            req.Note,
		HubID:           q.HubID,
		Status:          req.PaymentMethod.initialStatus(),
		Items:           q.Items,
		Charge:          q.Charge,
		Pickups:         q.Pickups,
		DeliveryTime:    q.DeliveryTime,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var claim *PromoClaim
	if q.promo != nil {
		o.Promo = q.promo.Snapshot()
		claim = &PromoClaim{PromoID: q.promo.ID, UserID: req.UserID, PerUserCap: q.promo.MaxUsagePerUser}
	}
	if err := s.Repo.Create(ctx, o, claim); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	log := s.Log.Action("place_order").Request(ctx)
	history, err := s.Inventory.Apply(ctx, o.ID, inventoryLines(o.Items))
	if err != nil {
		s.requestReconcile(ctx, log, o.ID, err)
	} else {
		o.Inventory = history
	}

	if err := s.Events.Publish(ctx, EventOrderPlaced, newPlacedEvent(o)); err != nil {
		log.Warn("failed to publish order event", "order_id", o.ID, "error", err)
	}
	log.Info("order placed", "order_id", o.ID, "hub", o.HubID, "total", o.Charge.Total, "status", o.Status)
	return o, nil
}

func (s *service) requestReconcile(ctx context.Context, log *logger.Logger, orderID string, cause error) {
	log.Error("inventory update failed; order needs reconciliation", "order_id", orderID, "error", cause)
	if err := s.Events.Publish(ctx, EventInventoryReconcile, reconcileEvent{OrderID: orderID, Reason: cause.Error()}); err != nil {
		log.Error("failed to publish reconcile event", "order_id", orderID, "error", err)
	}
}

func inventoryLines(items []*Item) []inventory.Line {
	lines := make([]inventory.Line, len(items))
	for i, it := range items {
		lines[i] = inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity, SaleUnit: it.SaleUnit}
	}
	return lines
}

func (s *service) AvailPromo(ctx context.Context, req AvailPromoRequest) (*PromoPreview, error) {
	if strings.TrimSpace(req.PromoCode) == "" {
		return nil, apperror.Validation("promo_code is required")
	}
	qr := QuoteRequest{UserID: req.UserID, Items: req.Items, CustomerArea: req.CustomerArea, Platform: req.Platform}
	if err := qr.validate(); err != nil {
		return nil, err
	}

	q, err := s.price(ctx, qr, func(ctx context.Context) (*promo.Promo, error) {
		return s.Promos.GetPromo(ctx, req.PromoCode)
	})
	if err != nil {
		return nil, err
	}
	p := q.promo
	return &PromoPreview{
		Code:              p.Code,
		Type:              p.Type,
		Amount:            p.Amount.String(),
		MaxDiscountAmount: p.MaxDiscountAmount,
		MaxUsage:          p.MaxUsage,
		ApplyOn:           p.ApplyOn,
		PromoDiscount:     q.Charge.PromoDiscount,
		Charge:            q.Charge,
	}, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *service) ListCustomerOrders(ctx context.Context, userID string) ([]*Order, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error) {
	o, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newStatus := Status(strings.ToLower(req.Status))
	if !slices.Contains(validTransitions[o.Status], newStatus) {
		return nil, apperror.Validation("cannot transition order from %s to %s", o.Status, newStatus)
	}
	if err := s.Repo.UpdateStatus(ctx, id, o.Status, newStatus); err != nil {
		return nil, err
	}
	old := o.Status
	o.Status = newStatus
	o.UpdatedAt = s.now().UTC()

	log := s.Log.Action("update_status").Request(ctx)
	if newStatus == StatusCancelled || newStatus == StatusRejected {
		restored, err := s.Inventory.Restore(ctx, id)
		if err != nil {
			s.requestReconcile(ctx, log, id, err)
		} else if restored {
			log.Info("inventory restored", "order_id", id)
		}
	}

	ev := statusEvent{OrderID: id, OldStatus: old, NewStatus: newStatus, ChangedAt: o.UpdatedAt}
	if err := s.Events.Publish(ctx, EventOrderStatusChanged, ev); err != nil {
		log.Warn("failed to publish status event", "order_id", id, "error", err)
	}
	return o, nil
}

func (s *service) ReconcileInventory(ctx context.Context, id string) (*Order, error) {
	o, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log := s.Log.Action("reconcile_inventory").Request(ctx)
	if o.Status == StatusCancelled || o.Status == StatusRejected {
		restored, err := s.Inventory.Restore(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("restore inventory: %w", err)
		}
		log.Info("inventory reconciled", "order_id", id, "restored", restored)
		return s.Repo.GetByID(ctx, id)
	}

	_, err = s.Inventory.Apply(ctx, id, inventoryLines(o.Items))
	switch {
	case apperror.HasCode(err, apperror.CodeConflict):
		log.Info("inventory already applied", "order_id", id)
	case err != nil:
		return nil, err
	default:
		log.Info("inventory reconciled", "order_id", id)
	}
	return s.Repo.GetByID(ctx, id)
}

func productIDs(items []RequestItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if !slices.Contains(ids, it.ProductID) {
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}
