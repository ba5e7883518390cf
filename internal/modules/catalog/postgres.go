package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/postgres"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const productColumns = `id,name,images,availability,price,addons,is_inv,stock,lots,restaurant_id,category_id,created_at,updated_at`

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products
		  (id, name, images, availability, price, addons, is_inv, stock, lots, restaurant_id, category_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.Name, pq.Array(p.Images), p.Availability, postgres.JSON(p.Price), addonsValue(p.Addons),
		p.Inventoried, p.Stock, postgres.JSON(lotsOrEmpty(p.Lots)), p.RestaurantID, p.CategoryID)
	return err
}

func addonsValue(g *AddonGroup) any {
	if g == nil {
		return nil
	}
	return postgres.JSON(g)
}

func lotsOrEmpty(lots []Lot) []Lot {
	if lots == nil {
		return []Lot{}
	}
	return lots
}

func scanProduct(scan func(...any) error) (*Product, error) {
	p := &Product{}
	err := scan(&p.ID, &p.Name, pq.Array(&p.Images), &p.Availability, postgres.JSON(&p.Price),
		postgres.JSON(&p.Addons), &p.Inventoried, &p.Stock, postgres.JSON(&p.Lots),
		&p.RestaurantID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("product %s not found", id)
	}
	return p, err
}

func (r *postgresRepo) FindByIDs(ctx context.Context, ids []string) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *postgresRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE restaurant_id=$1 ORDER BY name`, restaurantID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]*Product, error) {
	defer rows.Close()
	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) UpdateAvailability(ctx context.Context, id string, availability Availability) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET availability=$1, updated_at=NOW() WHERE id=$2`, availability, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("product %s not found", id)
	}
	return nil
}

// AddLot appends lot to the product's lot list, raises its stock and records the lot in the
// inventory collection, all under a row lock on the product.
func (r *postgresRepo) AddLot(ctx context.Context, productID string, lot Lot) (*Product, error) {
	var p *Product
	err := postgres.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, productID)
		var err error
		p, err = scanProduct(row.Scan)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("product %s not found", productID)
		}
		if err != nil {
			return err
		}

		p.Lots = append(p.Lots, lot)
		p.Stock += lot.Stock
		p.Inventoried = true
		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET lots=$1, stock=$2, is_inv=true, updated_at=NOW() WHERE id=$3`,
			postgres.JSON(p.Lots), p.Stock, p.ID); err != nil {
			return fmt.Errorf("update product lots: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO inventory_lots (id, product_id, restaurant_id, stock, quantity, unit_price, selling_price, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			lot.ID, p.ID, p.RestaurantID, lot.Stock, lot.Quantity, lot.UnitPrice, lot.SellingPrice, lot.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert inventory lot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
