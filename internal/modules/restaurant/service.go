package restaurant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

type Service interface {
	CreateRestaurant(ctx context.Context, req CreateRestaurantRequest) (*Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*Restaurant, error)
	FindRestaurants(ctx context.Context, ids []string) ([]*Restaurant, error)
	SetAvailability(ctx context.Context, id string, available bool) (*Restaurant, error)
}

type CreateRestaurantRequest struct {
	Name           string   `json:"name"`
	BannerImage    string   `json:"banner_image"`
	Type           Type     `json:"type"`
	OperatingHours []int    `json:"operating_hours"`
	Group          []string `json:"group"`
	HubID          string   `json:"hub"`
	Prefix         string   `json:"prefix"`
	Address        *Address `json:"address"`
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateRestaurant(ctx context.Context, req CreateRestaurantRequest) (*Restaurant, error) {
	if req.Name == "" || req.HubID == "" || req.Prefix == "" {
		return nil, apperror.Validation("name, hub and prefix are required")
	}
	if req.Type == "" {
		req.Type = TypeRestaurant
	}
	switch req.Type {
	case TypeRestaurant, TypeStore, TypeSubStore:
	default:
		return nil, apperror.Validation("unknown restaurant type %q", req.Type)
	}
	if n := len(req.OperatingHours); n != 0 && n != 2 {
		return nil, apperror.Validation("operating_hours must be [start, end]")
	}
	for _, h := range req.OperatingHours {
		if h < 0 || h > 24 {
			return nil, apperror.Validation("operating hours must be within 0-24")
		}
	}

	r := &Restaurant{
		ID:             uuid.NewString(),
		Name:           req.Name,
		BannerImage:    req.BannerImage,
		Type:           req.Type,
		Availability:   true,
		OperatingHours: req.OperatingHours,
		Group:          req.Group,
		HubID:          req.HubID,
		Prefix:         strings.ToUpper(req.Prefix),
		Address:        req.Address,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create restaurant: %w", err)
	}
	return r, nil
}

func (s *service) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindRestaurants(ctx context.Context, ids []string) ([]*Restaurant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	restaurants, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find restaurants: %w", err)
	}
	return restaurants, nil
}

func (s *service) SetAvailability(ctx context.Context, id string, available bool) (*Restaurant, error) {
	if err := s.repo.UpdateAvailability(ctx, id, available); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
