package delivery

import (
	"context"
	"database/sql"
	"errors"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) FindCharge(ctx context.Context, hubID, area string) (int64, bool, error) {
	var charge int64
	err := r.db.QueryRowContext(ctx,
		`SELECT delivery_charge FROM hub_areas WHERE hub_id=$1 AND area=$2`, hubID, area).Scan(&charge)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return charge, true, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, a *HubArea) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hub_areas (hub_id, area, delivery_charge) VALUES ($1,$2,$3)
		ON CONFLICT (hub_id, area) DO UPDATE SET delivery_charge = EXCLUDED.delivery_charge`,
		a.HubID, a.Area, a.DeliveryCharge)
	return err
}

func (r *postgresRepo) ListByHub(ctx context.Context, hubID string) ([]*HubArea, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT hub_id, area, delivery_charge FROM hub_areas WHERE hub_id=$1 ORDER BY area`, hubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []*HubArea
	for rows.Next() {
		a := &HubArea{}
		if err := rows.Scan(&a.HubID, &a.Area, &a.DeliveryCharge); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}
