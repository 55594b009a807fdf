package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/entregalabs/entrega/internal/order/app"
	"github.com/entregalabs/entrega/internal/order/domain"
	pgutil "github.com/entregalabs/entrega/pkg/postgres"
)

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderCols = `id, customer_id, store_id, COALESCE(carrier_id, ''), COALESCE(vehicle_id, ''),
	status, total, stock_released, created_at, updated_at`

func (r *OrderRepo) CreateTx(ctx context.Context, o domain.Order) (domain.Order, error) {
	created := o
	err := pgutil.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `
			INSERT INTO orders (id, customer_id, store_id, status, total, stock_released, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, false, now(), now())
			RETURNING created_at, updated_at`

		created.ID = uuid.NewString()
		created.Status = o.Status
		if err := tx.QueryRow(ctx, q, created.ID, o.CustomerID, o.StoreID, o.Status, o.Total).
			Scan(&created.CreatedAt, &created.UpdatedAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, it := range o.Items {
			if it.LineTotal != it.UnitPrice*int64(it.Quantity) {
				return fmt.Errorf("item %d: line total mismatch", i)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, name, unit_price, quantity, line_total)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				created.ID, it.ProductID, it.Name, it.UnitPrice, it.Quantity, it.LineTotal); err != nil {
				return fmt.Errorf("insert item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return created, nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	o.Items, err = r.items(ctx, id)
	return o, err
}

// Transition updates only when the current status matches from. Zero
// rows affected means another actor won the race; the fresh status is
// re-read to name it in the error.
func (r *OrderRepo) Transition(ctx context.Context, id string, from, to domain.Status, assign *app.Assignment) (domain.Order, error) {
	var tag pgconn.CommandTag
	var err error

	if assign != nil {
		// NULLIF keeps an empty assignment (a rolled-back accept) visible
		// to the carrier_id IS NULL freight-board query.
		tag, err = r.pool.Exec(ctx, `
			UPDATE orders SET status = $3, carrier_id = NULLIF($4, ''), vehicle_id = NULLIF($5, ''), updated_at = now()
			WHERE id = $1 AND status = $2`,
			id, from, to, assign.CarrierID, assign.VehicleID)
	} else {
		tag, err = r.pool.Exec(ctx, `
			UPDATE orders SET status = $3, updated_at = now()
			WHERE id = $1 AND status = $2`,
			id, from, to)
	}
	if err != nil {
		return domain.Order{}, err
	}

	if tag.RowsAffected() == 0 {
		o, err := r.Get(ctx, id)
		if err != nil {
			return domain.Order{}, err
		}
		return domain.Order{}, &domain.InvalidTransitionError{From: o.Status, To: to}
	}
	return r.Get(ctx, id)
}

func (r *OrderRepo) MarkStockReleased(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET stock_released = true, updated_at = now()
		WHERE id = $1 AND NOT stock_released`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderRepo) ClearStockReleased(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET stock_released = false, updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string, statuses []domain.Status) ([]domain.Order, error) {
	return r.listWhere(ctx, `customer_id = $1 AND status = ANY($2)`, customerID, statusStrings(statuses))
}

func (r *OrderRepo) ListByStore(ctx context.Context, storeID string, statuses []domain.Status) ([]domain.Order, error) {
	return r.listWhere(ctx, `store_id = $1 AND status = ANY($2)`, storeID, statusStrings(statuses))
}

func (r *OrderRepo) ListByCarrier(ctx context.Context, carrierID string, statuses []domain.Status) ([]domain.Order, error) {
	return r.listWhere(ctx, `carrier_id = $1 AND status = ANY($2)`, carrierID, statusStrings(statuses))
}

func (r *OrderRepo) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	return r.listWhere(ctx, `status = $1 AND carrier_id IS NULL`, string(domain.StatusApproved))
}

func (r *OrderRepo) HasActiveOrders(ctx context.Context, storeID, productID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN order_items i ON i.order_id = o.id
			WHERE o.store_id = $1 AND i.product_id = $2
			AND o.status NOT IN ('DELIVERED', 'CANCELLED')
		)`

	var exists bool
	err := r.pool.QueryRow(ctx, q, storeID, productID).Scan(&exists)
	return exists, err
}

func (r *OrderRepo) listWhere(ctx context.Context, where string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderCols+` FROM orders WHERE `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Items, err = r.items(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrderRepo) items(ctx context.Context, orderID string) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, name, unit_price, quantity, line_total
		FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.StoreID, &o.CarrierID, &o.VehicleID,
		&o.Status, &o.Total, &o.StockReleased, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
