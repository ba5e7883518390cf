package restaurant

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

const columns = `id,name,banner_image,type,availability,opening_hours,group_ids,hub_id,prefix,order_counter,address,created_at`

func (r *postgresRepo) Create(ctx context.Context, res *Restaurant) error {
	var hoursArg any
	if len(res.OperatingHours) > 0 {
		hrs := make(pq.Int64Array, len(res.OperatingHours))
		for i, h := range res.OperatingHours {
			hrs[i] = int64(h)
		}
		hoursArg = hrs
	}
	var addr any
	if res.Address != nil {
		addr = postgres.JSON(res.Address)
	}
	group := res.Group
	if group == nil {
		group = []string{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO restaurants
		  (id, name, banner_image, type, availability, opening_hours, group_ids, hub_id, prefix, address)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		res.ID, res.Name, res.BannerImage, res.Type, res.Availability, hoursArg,
		pq.Array(group), res.HubID, res.Prefix, addr)
	return err
}

func scanRestaurant(scan func(...any) error) (*Restaurant, error) {
	res := &Restaurant{}
	var hrs pq.Int64Array
	err := scan(&res.ID, &res.Name, &res.BannerImage, &res.Type, &res.Availability, &hrs,
		pq.Array(&res.Group), &res.HubID, &res.Prefix, &res.Counter, postgres.JSON(&res.Address), &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	for _, h := range hrs {
		res.OperatingHours = append(res.OperatingHours, int(h))
	}
	return res, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Restaurant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM restaurants WHERE id=$1`, id)
	res, err := scanRestaurant(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("restaurant %s not found", id)
	}
	return res, err
}

func (r *postgresRepo) FindByIDs(ctx context.Context, ids []string) ([]*Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM restaurants WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Restaurant
	for rows.Next() {
		res, err := scanRestaurant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *postgresRepo) UpdateAvailability(ctx context.Context, id string, available bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE restaurants SET availability=$1 WHERE id=$2`, available, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperror.NotFound("restaurant %s not found", id)
	}
	return nil
}
