package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgutil "github.com/entregalabs/entrega/pkg/postgres"

	"github.com/entregalabs/entrega/internal/stock/domain"
)

type StockRepo struct {
	pool *pgxpool.Pool
}

func NewStockRepo(pool *pgxpool.Pool) *StockRepo {
	return &StockRepo{pool: pool}
}

func (r *StockRepo) Link(ctx context.Context, sp domain.StoreProduct) (domain.StoreProduct, error) {
	const q = `
		INSERT INTO store_products (store_id, product_id, product_name, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (store_id, product_id) DO UPDATE
		SET price = EXCLUDED.price,
		    quantity = store_products.quantity + EXCLUDED.quantity,
		    updated_at = now()
		RETURNING store_id, product_id, product_name, price, quantity, created_at, updated_at`

	row := r.pool.QueryRow(ctx, q, sp.StoreID, sp.ProductID, sp.ProductName, sp.Price, sp.Quantity)
	return scanStoreProduct(row)
}

func (r *StockRepo) Unlink(ctx context.Context, storeID, productID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM store_products WHERE store_id = $1 AND product_id = $2`,
		storeID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StockRepo) Get(ctx context.Context, storeID, productID string) (domain.StoreProduct, error) {
	const q = `
		SELECT store_id, product_id, product_name, price, quantity, created_at, updated_at
		FROM store_products WHERE store_id = $1 AND product_id = $2`

	sp, err := scanStoreProduct(r.pool.QueryRow(ctx, q, storeID, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoreProduct{}, domain.ErrNotFound
	}
	return sp, err
}

func (r *StockRepo) StoreCatalog(ctx context.Context, storeID string) ([]domain.StoreProduct, error) {
	const q = `
		SELECT store_id, product_id, product_name, price, quantity, created_at, updated_at
		FROM store_products WHERE store_id = $1 ORDER BY product_name`

	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StoreProduct
	for rows.Next() {
		sp, err := scanStoreProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (r *StockRepo) Restock(ctx context.Context, storeID, productID string, delta int32) (domain.StoreProduct, error) {
	const q = `
		UPDATE store_products
		SET quantity = quantity + $3, updated_at = now()
		WHERE store_id = $1 AND product_id = $2
		RETURNING store_id, product_id, product_name, price, quantity, created_at, updated_at`

	sp, err := scanStoreProduct(r.pool.QueryRow(ctx, q, storeID, productID, delta))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoreProduct{}, domain.ErrNotFound
	}
	return sp, err
}

func (r *StockRepo) Reprice(ctx context.Context, storeID, productID string, price int64) (domain.StoreProduct, error) {
	const q = `
		UPDATE store_products
		SET price = $3, updated_at = now()
		WHERE store_id = $1 AND product_id = $2
		RETURNING store_id, product_id, product_name, price, quantity, created_at, updated_at`

	sp, err := scanStoreProduct(r.pool.QueryRow(ctx, q, storeID, productID, price))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoreProduct{}, domain.ErrNotFound
	}
	return sp, err
}

// Reserve locks every touched row with FOR UPDATE, checks all lines,
// then decrements. Any shortfall rolls the whole transaction back.
func (r *StockRepo) Reserve(ctx context.Context, storeID string, lines []domain.Line) error {
	return pgutil.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, l := range lines {
			var available int32
			err := tx.QueryRow(ctx,
				`SELECT quantity FROM store_products
				 WHERE store_id = $1 AND product_id = $2 FOR UPDATE`,
				storeID, l.ProductID).Scan(&available)
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			if err != nil {
				return err
			}
			if available < l.Quantity {
				return &domain.InsufficientStockError{
					ProductID: l.ProductID,
					Requested: l.Quantity,
					Available: available,
				}
			}
		}

		for _, l := range lines {
			if _, err := tx.Exec(ctx,
				`UPDATE store_products
				 SET quantity = quantity - $3, updated_at = now()
				 WHERE store_id = $1 AND product_id = $2`,
				storeID, l.ProductID, l.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *StockRepo) Release(ctx context.Context, storeID string, lines []domain.Line) error {
	return pgutil.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, l := range lines {
			if _, err := tx.Exec(ctx,
				`UPDATE store_products
				 SET quantity = quantity + $3, updated_at = now()
				 WHERE store_id = $1 AND product_id = $2`,
				storeID, l.ProductID, l.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func scanStoreProduct(row pgx.Row) (domain.StoreProduct, error) {
	var sp domain.StoreProduct
	err := row.Scan(&sp.StoreID, &sp.ProductID, &sp.ProductName,
		&sp.Price, &sp.Quantity, &sp.CreatedAt, &sp.UpdatedAt)
	return sp, err
}
