package app

import (
	"context"

	"github.com/entregalabs/entrega/internal/stock/domain"
)

type StockRepo interface {
	Link(ctx context.Context, sp domain.StoreProduct) (domain.StoreProduct, error)
	Unlink(ctx context.Context, storeID, productID string) error
	Get(ctx context.Context, storeID, productID string) (domain.StoreProduct, error)
	StoreCatalog(ctx context.Context, storeID string) ([]domain.StoreProduct, error)

	Restock(ctx context.Context, storeID, productID string, delta int32) (domain.StoreProduct, error)
	Reprice(ctx context.Context, storeID, productID string, price int64) (domain.StoreProduct, error)

	// Reserve decrements every line or none. On shortfall it returns
	// *domain.InsufficientStockError for the first violating line.
	Reserve(ctx context.Context, storeID string, lines []domain.Line) error
	// Release credits a prior reservation back. Callers are responsible
	// for calling it at most once per reservation.
	Release(ctx context.Context, storeID string, lines []domain.Line) error
}

// OrderRefChecker reports whether any non-terminal order at the store
// still references the product. Implemented by the order context.
type OrderRefChecker interface {
	HasActiveOrders(ctx context.Context, storeID, productID string) (bool, error)
}
