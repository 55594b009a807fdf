package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/entregalabs/entrega/internal/catalog/app"
	"github.com/entregalabs/entrega/internal/catalog/domain"
)

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	const q = `
		INSERT INTO products (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, name, description, created_at, updated_at`

	row := r.pool.QueryRow(ctx, q, uuid.NewString(), p.Name, p.Description)
	return scanProduct(row)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	const q = `
		SELECT id, name, description, created_at, updated_at
		FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) List(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	const q = `
		SELECT id, name, description, created_at, updated_at
		FROM products
		WHERE ($1 = '' OR name ILIKE $1 || '%')
		ORDER BY name
		LIMIT $2`

	rows, err := r.pool.Query(ctx, q, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
