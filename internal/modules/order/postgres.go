package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/postgres"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id,user_id,customer_name,customer_phone,customer_address,customer_area,platform,
	payment_method,note,hub_id,status,items,charge,pickups,promo,inventory,delivery_time,created_at,updated_at`

func (r *postgresRepo) Create(ctx context.Context, o *Order, claim *PromoClaim) error {
	return postgres.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if claim != nil {
			if err := reservePromo(ctx, tx, claim); err != nil {
				return err
			}
		}

		for _, p := range o.Pickups {
			var counter int64
			err := tx.QueryRowContext(ctx, `
				UPDATE restaurants SET order_counter = order_counter + 1
				WHERE id=$1 RETURNING prefix, order_counter`, p.RestaurantID).Scan(&p.Prefix, &counter)
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.RestaurantUnavailable("%s isn't available at this moment.", p.Name)
			}
			if err != nil {
				return fmt.Errorf("mint order number: %w", err)
			}
			p.Counter = counter - 1
			p.OrderNumber = orderNumber(p.Prefix, counter)
		}

		var promoID sql.NullString
		if o.Promo != nil {
			promoID = sql.NullString{String: o.Promo.ID, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders
			  (id, user_id, customer_name, customer_phone, customer_address, customer_area, platform,
			   payment_method, note, hub_id, status, items, charge, pickups, promo_id, promo,
			   delivery_time, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
			o.ID, o.UserID, o.CustomerName, o.CustomerPhone, o.CustomerAddress, o.CustomerArea,
			o.Platform, o.PaymentMethod, o.Note, o.HubID, o.Status, postgres.JSON(o.Items),
			postgres.JSON(o.Charge), postgres.JSON(o.Pickups), promoID, postgres.JSON(o.Promo),
			o.DeliveryTime, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
}

// reservePromo enforces the usage caps under concurrency. The per-user count runs under a
// transaction-scoped advisory lock keyed on (user, promo); the global counter only moves
// while it is below max_usage.
func reservePromo(ctx context.Context, tx *sql.Tx, c *PromoClaim) error {
	if c.PerUserCap > 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, c.UserID+":"+c.PromoID); err != nil {
			return fmt.Errorf("lock promo claim: %w", err)
		}
		var used int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM orders WHERE user_id=$1 AND promo_id=$2 AND NOT deleted`,
			c.UserID, c.PromoID).Scan(&used)
		if err != nil {
			return fmt.Errorf("count promo claims: %w", err)
		}
		if used >= c.PerUserCap {
			return apperror.PromoUsageExceeded("You have already used this promo code the maximum number of times.")
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE promos SET total_usage = total_usage + 1
		WHERE id=$1 AND ($2 OR max_usage <= 0 OR total_usage < max_usage)`,
		c.PromoID, c.PerUserCap > 0)
	if err != nil {
		return fmt.Errorf("reserve promo usage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.PromoUsageExceeded("This promo code has reached its usage limit.")
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	err := row.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
		&o.CustomerArea, &o.Platform, &o.PaymentMethod, &o.Note, &o.HubID, &o.Status,
		postgres.JSON(&o.Items), postgres.JSON(&o.Charge), postgres.JSON(&o.Pickups),
		postgres.JSON(&o.Promo), postgres.JSON(&o.Inventory), &o.DeliveryTime, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1 AND NOT deleted`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("order %s not found", id)
	}
	return o, err
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id=$1 AND NOT deleted ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3 AND NOT deleted`,
		to, id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.Conflict("order %s is no longer %s", id, from)
	}
	return nil
}
