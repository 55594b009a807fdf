package memory

import (
	"context"
	"sync"
	"time"

	"github.com/entregalabs/entrega/internal/route/domain"
)

type RouteRepo struct {
	mu     sync.RWMutex
	routes map[string]domain.Route
}

func NewRouteRepo() *RouteRepo {
	return &RouteRepo{routes: make(map[string]domain.Route)}
}

func (r *RouteRepo) Save(ctx context.Context, rt domain.Route) (domain.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt.CreatedAt = time.Now().UTC()
	r.routes[rt.OrderID] = rt
	return rt, nil
}

func (r *RouteRepo) ByOrder(ctx context.Context, orderID string) (domain.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[orderID]
	if !ok {
		return domain.Route{}, domain.ErrNotFound
	}
	return rt, nil
}
