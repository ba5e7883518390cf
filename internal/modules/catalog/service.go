package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

// Service defines catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, restaurantID string) ([]*Product, error)
	FindProducts(ctx context.Context, ids []string) ([]*Product, error)
	SetAvailability(ctx context.Context, id string, availability Availability) (*Product, error)
	AddLot(ctx context.Context, productID string, req AddLotRequest) (*Product, error)
}

// CreateProductRequest holds the data for creating a product.
type CreateProductRequest struct {
	Name         string      `json:"name"`
	Images       []string    `json:"images"`
	Price        Price       `json:"price"`
	Addons       *AddonGroup `json:"addons"`
	RestaurantID string      `json:"restaurant_id"`
	CategoryID   string      `json:"category_id"`
}

// AddLotRequest describes a new inventory batch.
type AddLotRequest struct {
	Stock        int             `json:"stock"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	SellingPrice int64           `json:"selling_price"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service { return &service{repo: repo, now: time.Now} }

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if req.Name == "" || req.RestaurantID == "" {
		return nil, apperror.Validation("name and restaurant_id are required")
	}
	if req.Price.Type == "" {
		req.Price.Type = PriceFlat
	}
	if req.Price.Type != PriceFlat && req.Price.Type != PriceVariant {
		return nil, apperror.Validation("unknown price type %q", req.Price.Type)
	}
	if req.Price.Amount < 0 {
		return nil, apperror.Validation("price amount must not be negative")
	}
	if d := req.Price.Discount; d != nil && d.Type != DiscountFixed && d.Type != DiscountPercentage {
		return nil, apperror.Validation("unknown discount type %q", d.Type)
	}

	p := &Product{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Images:       req.Images,
		Availability: Available,
		Price:        req.Price,
		Addons:       req.Addons,
		RestaurantID: req.RestaurantID,
		CategoryID:   req.CategoryID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, restaurantID string) ([]*Product, error) {
	if restaurantID == "" {
		return nil, apperror.Validation("restaurant_id is required")
	}
	return s.repo.ListByRestaurant(ctx, restaurantID)
}

func (s *service) FindProducts(ctx context.Context, ids []string) ([]*Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	products, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return products, nil
}

func (s *service) SetAvailability(ctx context.Context, id string, availability Availability) (*Product, error) {
	switch availability {
	case Available, Unavailable, StockOut:
	default:
		return nil, apperror.Validation("unknown availability %q", availability)
	}
	if err := s.repo.UpdateAvailability(ctx, id, availability); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) AddLot(ctx context.Context, productID string, req AddLotRequest) (*Product, error) {
	if req.Stock <= 0 {
		return nil, apperror.Validation("stock must be positive")
	}
	if req.UnitPrice.IsNegative() || req.SellingPrice < 0 {
		return nil, apperror.Validation("prices must not be negative")
	}
	lot := Lot{
		ID:           uuid.NewString(),
		Stock:        req.Stock,
		Quantity:     req.Stock,
		UnitPrice:    req.UnitPrice,
		SellingPrice: req.SellingPrice,
		CreatedAt:    s.now().UTC(),
	}
	return s.repo.AddLot(ctx, productID, lot)
}
