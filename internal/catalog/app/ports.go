package app

import (
	"context"

	"github.com/entregalabs/entrega/internal/catalog/domain"
)

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	// List filters by a case-insensitive name prefix when query is
	// non-empty. It backs the store-side autocomplete.
	List(ctx context.Context, query string, limit int) ([]domain.Product, error)
}
