package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/postgres"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &postgresTx{tx: tx}, nil
}

type postgresTx struct{ tx *sql.Tx }

// LockProducts takes row locks in id order so concurrent orders touching the same
// products cannot deadlock.
func (t *postgresTx) LockProducts(ctx context.Context, ids []string) ([]*catalog.Product, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, is_inv, stock, lots FROM products
		WHERE id = ANY($1) ORDER BY id FOR UPDATE`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*catalog.Product
	for rows.Next() {
		p := &catalog.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Inventoried, &p.Stock, postgres.JSON(&p.Lots)); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (t *postgresTx) SaveProduct(ctx context.Context, p *catalog.Product) error {
	lots := p.Lots
	if lots == nil {
		lots = []catalog.Lot{}
	}
	_, err := t.tx.ExecContext(ctx,
		`UPDATE products SET stock=$1, lots=$2, updated_at=NOW() WHERE id=$3`,
		p.Stock, postgres.JSON(lots), p.ID)
	return err
}

func (t *postgresTx) AdjustLots(ctx context.Context, deltas map[string]int) error {
	if len(deltas) == 0 {
		return nil
	}
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	qty := make([]int64, len(ids))
	for i, id := range ids {
		qty[i] = int64(deltas[id])
	}
	_, err := t.tx.ExecContext(ctx, `
		UPDATE inventory_lots AS l SET stock = l.stock - d.qty
		FROM unnest($1::text[], $2::int[]) AS d(id, qty)
		WHERE l.id = d.id`, pq.Array(ids), pq.Array(qty))
	return err
}

func (t *postgresTx) SaveHistory(ctx context.Context, orderID string, h History) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE orders SET inventory=$1, updated_at=NOW() WHERE id=$2 AND inventory IS NULL`,
		postgres.JSON(h), orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.Conflict("inventory for order %s was already applied", orderID)
	}
	return nil
}

func (t *postgresTx) ClaimHistory(ctx context.Context, orderID string) (History, bool, error) {
	var h History
	err := t.tx.QueryRowContext(ctx, `
		UPDATE orders SET inventory_restored=true, updated_at=NOW()
		WHERE id=$1 AND inventory IS NOT NULL AND NOT inventory_restored
		RETURNING inventory`, orderID).Scan(postgres.JSON(&h))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return h, true, nil
}

func (t *postgresTx) Commit() error   { return t.tx.Commit() }
func (t *postgresTx) Rollback() error { return t.tx.Rollback() }
