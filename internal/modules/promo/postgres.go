package promo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/postgres"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const promoColumns = `id,code,auth_hash,title,sub_title,type,amount,apply_on,applicable_from,restaurant_id,
	apply_on_restaurants,categories,include_stores,min_order_amount,max_discount_amount,min_order,max_order,
	max_usage,max_usage_user,total_usage,start_date,end_date,active_time,eligible_users,is_active,created_at`

func (r *postgresRepo) Create(ctx context.Context, p *Promo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO promos
		  (id, code, auth_hash, title, sub_title, type, amount, apply_on, applicable_from, restaurant_id,
		   apply_on_restaurants, categories, include_stores, min_order_amount, max_discount_amount,
		   min_order, max_order, max_usage, max_usage_user, start_date, end_date, active_time,
		   eligible_users, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)`,
		p.ID, p.Code, p.AuthHash, p.Title, p.SubTitle, p.Type, p.Amount, p.ApplyOn, p.ApplicableFrom,
		p.RestaurantID, pq.Array(nonNil(p.ApplyOnRestaurants)), pq.Array(nonNil(p.Categories)),
		p.IncludeStores, p.MinOrderAmount, p.MaxDiscountAmount, p.MinOrder, p.MaxOrder, p.MaxUsage,
		p.MaxUsagePerUser, p.StartDate, p.EndDate, postgres.JSON(activeTimes(p.ActiveTime)),
		pq.Array(nonNil(p.EligibleUsers)), p.IsActive)
	if postgres.IsUniqueViolation(err) {
		return apperror.Conflict("promo code %s already exists", p.Code)
	}
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func activeTimes(a []ActiveTime) []ActiveTime {
	if a == nil {
		return []ActiveTime{}
	}
	return a
}

func (r *postgresRepo) FindByCode(ctx context.Context, code string) (*Promo, error) {
	p := &Promo{}
	var minOrder, maxOrder sql.NullInt64
	var start, end sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT `+promoColumns+` FROM promos WHERE code=$1`, code).Scan(
		&p.ID, &p.Code, &p.AuthHash, &p.Title, &p.SubTitle, &p.Type, &p.Amount, &p.ApplyOn,
		&p.ApplicableFrom, &p.RestaurantID, pq.Array(&p.ApplyOnRestaurants), pq.Array(&p.Categories),
		&p.IncludeStores, &p.MinOrderAmount, &p.MaxDiscountAmount, &minOrder, &maxOrder, &p.MaxUsage,
		&p.MaxUsagePerUser, &p.TotalUsage, &start, &end, postgres.JSON(&p.ActiveTime),
		pq.Array(&p.EligibleUsers), &p.IsActive, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.PromoNotFound("Promo code %s not found!", code)
	}
	if err != nil {
		return nil, err
	}
	if minOrder.Valid {
		n := int(minOrder.Int64)
		p.MinOrder = &n
	}
	if maxOrder.Valid {
		n := int(maxOrder.Int64)
		p.MaxOrder = &n
	}
	if start.Valid {
		p.StartDate = &start.Time
	}
	if end.Valid {
		p.EndDate = &end.Time
	}
	return p, nil
}

func (r *postgresRepo) SetActive(ctx context.Context, code string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE promos SET is_active=$1 WHERE code=$2`, active, code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.PromoNotFound("Promo code %s not found!", code)
	}
	return nil
}

type orderCounter struct{ db *sql.DB }

// NewOrderCounter counts non-deleted orders in the orders table.
func NewOrderCounter(db *sql.DB) OrderCounter { return &orderCounter{db: db} }

func (c *orderCounter) CountUserOrders(ctx context.Context, userID string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id=$1 AND NOT deleted`, userID).Scan(&n)
	return n, err
}

func (c *orderCounter) CountUserPromoOrders(ctx context.Context, userID, promoID string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id=$1 AND promo_id=$2 AND NOT deleted`, userID, promoID).Scan(&n)
	return n, err
}
