package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entregalabs/entrega/internal/fleet/domain"
)

type VehicleRepo struct {
	mu       sync.RWMutex
	vehicles map[string]domain.Vehicle
}

func NewVehicleRepo() *VehicleRepo {
	return &VehicleRepo{vehicles: make(map[string]domain.Vehicle)}
}

func (r *VehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	v.ID = uuid.NewString()
	v.CreatedAt = now
	v.UpdatedAt = now
	r.vehicles[v.ID] = v
	return v, nil
}

func (r *VehicleRepo) Get(ctx context.Context, id string) (domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vehicles[id]
	if !ok {
		return domain.Vehicle{}, domain.ErrNotFound
	}
	return v, nil
}

func (r *VehicleRepo) ListByCarrier(ctx context.Context, carrierID string) ([]domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Vehicle
	for _, v := range r.vehicles {
		if v.CarrierID == carrierID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *VehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *VehicleRepo) UpdatePosition(ctx context.Context, id string, lat, lng float64) (domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vehicles[id]
	if !ok {
		return domain.Vehicle{}, domain.ErrNotFound
	}
	v.Lat, v.Lng = lat, lng
	v.UpdatedAt = time.Now().UTC()
	r.vehicles[id] = v
	return v, nil
}
