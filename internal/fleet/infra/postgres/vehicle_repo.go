package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/entregalabs/entrega/internal/fleet/domain"
)

type VehicleRepo struct {
	pool *pgxpool.Pool
}

func NewVehicleRepo(pool *pgxpool.Pool) *VehicleRepo {
	return &VehicleRepo{pool: pool}
}

const vehicleCols = `id, carrier_id, name, lat, lng, created_at, updated_at`

func (r *VehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	const q = `
		INSERT INTO vehicles (id, carrier_id, name, lat, lng, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING ` + vehicleCols

	row := r.pool.QueryRow(ctx, q, uuid.NewString(), v.CarrierID, v.Name, v.Lat, v.Lng)
	return scanVehicle(row)
}

func (r *VehicleRepo) Get(ctx context.Context, id string) (domain.Vehicle, error) {
	v, err := scanVehicle(r.pool.QueryRow(ctx,
		`SELECT `+vehicleCols+` FROM vehicles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Vehicle{}, domain.ErrNotFound
	}
	return v, err
}

func (r *VehicleRepo) ListByCarrier(ctx context.Context, carrierID string) ([]domain.Vehicle, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+vehicleCols+` FROM vehicles WHERE carrier_id = $1 ORDER BY name`, carrierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func (r *VehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vehicleCols+` FROM vehicles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func (r *VehicleRepo) UpdatePosition(ctx context.Context, id string, lat, lng float64) (domain.Vehicle, error) {
	const q = `
		UPDATE vehicles SET lat = $2, lng = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + vehicleCols

	v, err := scanVehicle(r.pool.QueryRow(ctx, q, id, lat, lng))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Vehicle{}, domain.ErrNotFound
	}
	return v, err
}

func scanVehicle(row pgx.Row) (domain.Vehicle, error) {
	var v domain.Vehicle
	err := row.Scan(&v.ID, &v.CarrierID, &v.Name, &v.Lat, &v.Lng, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func collectVehicles(rows pgx.Rows) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
