package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/entregalabs/entrega/internal/route/domain"
)

type RouteRepo struct {
	pool *pgxpool.Pool
}

func NewRouteRepo(pool *pgxpool.Pool) *RouteRepo {
	return &RouteRepo{pool: pool}
}

func (r *RouteRepo) Save(ctx context.Context, rt domain.Route) (domain.Route, error) {
	waypoints, err := json.Marshal(rt.Waypoints)
	if err != nil {
		return domain.Route{}, err
	}

	const q = `
		INSERT INTO routes (order_id, vehicle_id, waypoints, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (order_id) DO UPDATE
		SET vehicle_id = EXCLUDED.vehicle_id,
		    waypoints = EXCLUDED.waypoints,
		    created_at = now()
		RETURNING created_at`

	err = r.pool.QueryRow(ctx, q, rt.OrderID, rt.VehicleID, waypoints).Scan(&rt.CreatedAt)
	return rt, err
}

func (r *RouteRepo) ByOrder(ctx context.Context, orderID string) (domain.Route, error) {
	const q = `SELECT order_id, vehicle_id, waypoints, created_at FROM routes WHERE order_id = $1`

	var rt domain.Route
	var raw []byte
	err := r.pool.QueryRow(ctx, q, orderID).Scan(&rt.OrderID, &rt.VehicleID, &raw, &rt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Route{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Route{}, err
	}
	if err := json.Unmarshal(raw, &rt.Waypoints); err != nil {
		return domain.Route{}, err
	}
	return rt, nil
}
