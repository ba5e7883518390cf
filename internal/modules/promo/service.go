package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

// Service defines promo business logic.
type Service interface {
	CreatePromo(ctx context.Context, req CreatePromoRequest) (*Promo, error)
	GetPromo(ctx context.Context, code string) (*Promo, error)
	// Redeemable looks a promo up by code and verifies its auth secret. An unknown code or
	// a wrong secret both yield PromoNotFound.
	Redeemable(ctx context.Context, code, auth string) (*Promo, error)
	Evaluate(ctx context.Context, p *Promo, s Subject) error
	SetActive(ctx context.Context, code string, active bool) (*Promo, error)
}

// CreatePromoRequest holds the data for creating a promo. Dates are "2006-01-02".
type CreatePromoRequest struct {
	Code               string          `json:"promo_code"`
	Auth               string          `json:"promo_auth"`
	Title              string          `json:"title"`
	SubTitle           string          `json:"subTitle"`
	Type               Type            `json:"promo_type"`
	Amount             decimal.Decimal `json:"promo_amount"`
	ApplyOn            Target          `json:"apply_on"`
	ApplicableFrom     string          `json:"applicable_from"`
	RestaurantID       string          `json:"restaurant"`
	ApplyOnRestaurants []string        `json:"apply_on_restaurants"`
	Categories         []string        `json:"categories"`
	IncludeStores      bool            `json:"include_stores"`
	MinOrderAmount     int64           `json:"min_order_amount"`
	MaxDiscountAmount  int64           `json:"max_discount_amount"`
	MinOrder           *int            `json:"min_order"`
	MaxOrder           *int            `json:"max_order"`
	MaxUsage           int             `json:"max_usage"`
	MaxUsagePerUser    int             `json:"max_usage_user"`
	StartDate          string          `json:"start_date"`
	EndDate            string          `json:"end_date"`
	ActiveTime         []ActiveTime    `json:"activeTime"`
	EligibleUsers      []string        `json:"eligible_users"`
}

type service struct {
	repo      Repository
	evaluator *Evaluator
}

func NewService(repo Repository, evaluator *Evaluator) Service {
	return &service{repo: repo, evaluator: evaluator}
}

func (s *service) CreatePromo(ctx context.Context, req CreatePromoRequest) (*Promo, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	p := &Promo{
		ID:                 uuid.NewString(),
		Code:               strings.ToUpper(strings.TrimSpace(req.Code)),
		Title:              req.Title,
		SubTitle:           req.SubTitle,
		Type:               req.Type,
		Amount:             req.Amount,
		ApplyOn:            req.ApplyOn,
		ApplicableFrom:     req.ApplicableFrom,
		RestaurantID:       req.RestaurantID,
		ApplyOnRestaurants: req.ApplyOnRestaurants,
		Categories:         req.Categories,
		IncludeStores:      req.IncludeStores,
		MinOrderAmount:     req.MinOrderAmount,
		MaxDiscountAmount:  req.MaxDiscountAmount,
		MinOrder:           req.MinOrder,
		MaxOrder:           req.MaxOrder,
		MaxUsage:           req.MaxUsage,
		MaxUsagePerUser:    req.MaxUsagePerUser,
		ActiveTime:         req.ActiveTime,
		EligibleUsers:      req.EligibleUsers,
		IsActive:           true,
	}
	if p.ApplicableFrom == "" {
		p.ApplicableFrom = PlatformBoth
	}
	p.StartDate, _ = parseDate(req.StartDate)
	p.EndDate, _ = parseDate(req.EndDate)

	if req.Auth != "" {
		hash, err := HashAuth(req.Auth)
		if err != nil {
			return nil, fmt.Errorf("hash promo auth: %w", err)
		}
		p.AuthHash = hash
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create promo: %w", err)
	}
	return p, nil
}

func (req *CreatePromoRequest) validate() error {
	if strings.TrimSpace(req.Code) == "" {
		return apperror.Validation("promo_code is required")
	}
	switch req.Type {
	case TypeFixed:
	case TypePercentage:
		if req.Amount.GreaterThan(decimal.NewFromInt(100)) {
			return apperror.Validation("percentage promo_amount must not exceed 100")
		}
	default:
		return apperror.Validation("unknown promo_type %q", req.Type)
	}
	if !req.Amount.IsPositive() {
		return apperror.Validation("promo_amount must be positive")
	}
	switch req.ApplyOn {
	case ApplyOnProduct, ApplyOnCategories, ApplyOnDeliveryCharge:
	default:
		return apperror.Validation("unknown apply_on %q", req.ApplyOn)
	}
	switch req.ApplicableFrom {
	case "", PlatformBoth, "app", "web":
	default:
		return apperror.Validation("unknown applicable_from %q", req.ApplicableFrom)
	}
	if req.MinOrderAmount < 0 || req.MaxDiscountAmount < 0 || req.MaxUsage < 0 || req.MaxUsagePerUser < 0 {
		return apperror.Validation("amounts and usage limits must not be negative")
	}
	for _, d := range []string{req.StartDate, req.EndDate} {
		if _, err := parseDate(d); err != nil {
			return apperror.Validation("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	for _, at := range req.ActiveTime {
		if _, ok := clockOn(time.Time{}, at.StartTime); !ok {
			return apperror.Validation("invalid activeTime startTime %q", at.StartTime)
		}
		if _, ok := clockOn(time.Time{}, at.EndTime); !ok {
			return apperror.Validation("invalid activeTime endTime %q", at.EndTime)
		}
	}
	return nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *service) GetPromo(ctx context.Context, code string) (*Promo, error) {
	return s.repo.FindByCode(ctx, strings.ToUpper(code))
}

func (s *service) Redeemable(ctx context.Context, code, auth string) (*Promo, error) {
	p, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if err := p.Authenticate(auth); err != nil {
		if errors.Is(err, errInvalidAuth) {
			return nil, apperror.PromoNotFound("Promo code %s not found!", code)
		}
		return nil, err
	}
	return p, nil
}

func (s *service) Evaluate(ctx context.Context, p *Promo, subj Subject) error {
	return s.evaluator.Evaluate(ctx, p, subj)
}

func (s *service) SetActive(ctx context.Context, code string, active bool) (*Promo, error) {
	code = strings.ToUpper(code)
	if err := s.repo.SetActive(ctx, code, active); err != nil {
		return nil, err
	}
	return s.repo.FindByCode(ctx, code)
}
