package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/entregalabs/entrega/internal/stock/domain"
)

type key struct{ store, product string }

// StockRepo keeps store stock in memory. A single lock guards the map;
// the per-store serialization for reservations lives in the service.
type StockRepo struct {
	mu    sync.Mutex
	links map[key]domain.StoreProduct
}

func NewStockRepo() *StockRepo {
	return &StockRepo{links: make(map[key]domain.StoreProduct)}
}

func (r *StockRepo) Link(ctx context.Context, sp domain.StoreProduct) (domain.StoreProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	k := key{sp.StoreID, sp.ProductID}
	if existing, ok := r.links[k]; ok {
		// Relinking an existing product updates price and adds stock,
		// matching what the store stock screen does.
		existing.Price = sp.Price
		existing.Quantity += sp.Quantity
		existing.UpdatedAt = now
		r.links[k] = existing
		return existing, nil
	}

	sp.CreatedAt = now
	sp.UpdatedAt = now
	r.links[k] = sp
	return sp, nil
}

func (r *StockRepo) Unlink(ctx context.Context, storeID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{storeID, productID}
	if _, ok := r.links[k]; !ok {
		return domain.ErrNotFound
	}
	delete(r.links, k)
	return nil
}

func (r *StockRepo) Get(ctx context.Context, storeID, productID string) (domain.StoreProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sp, ok := r.links[key{storeID, productID}]
	if !ok {
		return domain.StoreProduct{}, domain.ErrNotFound
	}
	return sp, nil
}

func (r *StockRepo) StoreCatalog(ctx context.Context, storeID string) ([]domain.StoreProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.StoreProduct
	for k, sp := range r.links {
		if k.store == storeID {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

func (r *StockRepo) Restock(ctx context.Context, storeID, productID string, delta int32) (domain.StoreProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{storeID, productID}
	sp, ok := r.links[k]
	if !ok {
		return domain.StoreProduct{}, domain.ErrNotFound
	}
	sp.Quantity += delta
	sp.UpdatedAt = time.Now().UTC()
	r.links[k] = sp
	return sp, nil
}

func (r *StockRepo) Reprice(ctx context.Context, storeID, productID string, price int64) (domain.StoreProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{storeID, productID}
	sp, ok := r.links[k]
	if !ok {
		return domain.StoreProduct{}, domain.ErrNotFound
	}
	sp.Price = price
	sp.UpdatedAt = time.Now().UTC()
	r.links[k] = sp
	return sp, nil
}

func (r *StockRepo) Reserve(ctx context.Context, storeID string, lines []domain.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check every line before touching any, so a shortfall mid-list
	// leaves nothing decremented.
	for _, l := range lines {
		sp, ok := r.links[key{storeID, l.ProductID}]
		if !ok {
			return domain.ErrNotFound
		}
		if sp.Quantity < l.Quantity {
			return &domain.InsufficientStockError{
				ProductID: l.ProductID,
				Requested: l.Quantity,
				Available: sp.Quantity,
			}
		}
	}

	now := time.Now().UTC()
	for _, l := range lines {
		k := key{storeID, l.ProductID}
		sp := r.links[k]
		sp.Quantity -= l.Quantity
		sp.UpdatedAt = now
		r.links[k] = sp
	}
	return nil
}

func (r *StockRepo) Release(ctx context.Context, storeID string, lines []domain.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, l := range lines {
		k := key{storeID, l.ProductID}
		sp, ok := r.links[k]
		if !ok {
			// The product may have been unlinked after the order went
			// terminal; the credit has nowhere to go.
			continue
		}
		sp.Quantity += l.Quantity
		sp.UpdatedAt = now
		r.links[k] = sp
	}
	return nil
}
