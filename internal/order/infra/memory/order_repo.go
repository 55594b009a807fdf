package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entregalabs/entrega/internal/order/app"
	"github.com/entregalabs/entrega/internal/order/domain"
)

type OrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{orders: make(map[string]domain.Order)}
}

func (r *OrderRepo) CreateTx(ctx context.Context, o domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	o.ID = uuid.NewString()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.orders[o.ID] = o
	return o, nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

func (r *OrderRepo) Transition(ctx context.Context, id string, from, to domain.Status, assign *app.Assignment) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	if o.Status != from {
		return domain.Order{}, &domain.InvalidTransitionError{From: o.Status, To: to}
	}

	o.Status = to
	if assign != nil {
		o.CarrierID = assign.CarrierID
		o.VehicleID = assign.VehicleID
	}
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return o, nil
}

func (r *OrderRepo) MarkStockReleased(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.StockReleased {
		return false, nil
	}
	o.StockReleased = true
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return true, nil
}

func (r *OrderRepo) ClearStockReleased(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.StockReleased = false
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return nil
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string, statuses []domain.Status) ([]domain.Order, error) {
	return r.list(func(o domain.Order) bool {
		return o.CustomerID == customerID && statusIn(o.Status, statuses)
	})
}

func (r *OrderRepo) ListByStore(ctx context.Context, storeID string, statuses []domain.Status) ([]domain.Order, error) {
	return r.list(func(o domain.Order) bool {
		return o.StoreID == storeID && statusIn(o.Status, statuses)
	})
}

func (r *OrderRepo) ListByCarrier(ctx context.Context, carrierID string, statuses []domain.Status) ([]domain.Order, error) {
	return r.list(func(o domain.Order) bool {
		return o.CarrierID == carrierID && statusIn(o.Status, statuses)
	})
}

func (r *OrderRepo) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	return r.list(func(o domain.Order) bool {
		return o.Status == domain.StatusApproved && o.CarrierID == ""
	})
}

func (r *OrderRepo) HasActiveOrders(ctx context.Context, storeID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.StoreID != storeID || o.Status.Terminal() {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *OrderRepo) list(keep func(domain.Order) bool) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Order
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func statusIn(s domain.Status, in []domain.Status) bool {
	for _, c := range in {
		if s == c {
			return true
		}
	}
	return false
}
