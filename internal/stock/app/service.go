package app

import (
	"context"
	"strings"
	"sync"

	"github.com/entregalabs/entrega/internal/stock/domain"
)

// Service is the stock ledger. Reservations are serialized per store so
// that concurrent checkouts can never oversell, whatever repo backs it.
type Service struct {
	repo   StockRepo
	orders OrderRefChecker

	mu     sync.Mutex
	stores map[string]*sync.Mutex
}

func NewService(repo StockRepo, orders OrderRefChecker) *Service {
	return &Service{
		repo:   repo,
		orders: orders,
		stores: make(map[string]*sync.Mutex),
	}
}

func (s *Service) storeLock(storeID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.stores[storeID]
	if !ok {
		l = &sync.Mutex{}
		s.stores[storeID] = l
	}
	return l
}

func (s *Service) Link(ctx context.Context, sp domain.StoreProduct) (domain.StoreProduct, error) {
	if strings.TrimSpace(sp.StoreID) == "" || strings.TrimSpace(sp.ProductID) == "" ||
		sp.Quantity < 0 || sp.Price <= 0 {
		return domain.StoreProduct{}, domain.ErrInvalidQuantity
	}
	return s.repo.Link(ctx, sp)
}

// Unlink removes a product from the store's stock. It refuses while any
// non-terminal order still references the product, so in-flight
// deliveries keep resolving their lines.
func (s *Service) Unlink(ctx context.Context, storeID, productID string) error {
	inUse, err := s.orders.HasActiveOrders(ctx, storeID, productID)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrProductInUse
	}
	return s.repo.Unlink(ctx, storeID, productID)
}

func (s *Service) Get(ctx context.Context, storeID, productID string) (domain.StoreProduct, error) {
	return s.repo.Get(ctx, storeID, productID)
}

func (s *Service) StoreCatalog(ctx context.Context, storeID string) ([]domain.StoreProduct, error) {
	return s.repo.StoreCatalog(ctx, storeID)
}

func (s *Service) Restock(ctx context.Context, storeID, productID string, delta int32) (domain.StoreProduct, error) {
	if delta <= 0 {
		return domain.StoreProduct{}, domain.ErrInvalidQuantity
	}
	return s.repo.Restock(ctx, storeID, productID, delta)
}

func (s *Service) Reprice(ctx context.Context, storeID, productID string, price int64) (domain.StoreProduct, error) {
	if price <= 0 {
		return domain.StoreProduct{}, domain.ErrInvalidQuantity
	}
	return s.repo.Reprice(ctx, storeID, productID, price)
}

func (s *Service) Reserve(ctx context.Context, storeID string, lines []domain.Line) error {
	if len(lines) == 0 {
		return domain.ErrInvalidQuantity
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	}

	lock := s.storeLock(storeID)
	lock.Lock()
	defer lock.Unlock()

	return s.repo.Reserve(ctx, storeID, lines)
}

func (s *Service) Release(ctx context.Context, storeID string, lines []domain.Line) error {
	lock := s.storeLock(storeID)
	lock.Lock()
	defer lock.Unlock()

	return s.repo.Release(ctx, storeID, lines)
}
