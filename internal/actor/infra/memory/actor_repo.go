package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entregalabs/entrega/internal/actor/domain"
)

type ActorRepo struct {
	mu      sync.RWMutex
	actors  map[string]domain.Actor
	byToken map[string]string
}

func NewActorRepo() *ActorRepo {
	return &ActorRepo{
		actors:  make(map[string]domain.Actor),
		byToken: make(map[string]string),
	}
}

func (r *ActorRepo) Create(ctx context.Context, a domain.Actor) (domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	r.actors[a.ID] = a
	r.byToken[a.Token] = a.ID
	return a, nil
}

func (r *ActorRepo) Get(ctx context.Context, id string) (domain.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.actors[id]
	if !ok {
		return domain.Actor{}, domain.ErrNotFound
	}
	return a, nil
}

func (r *ActorRepo) GetByToken(ctx context.Context, token string) (domain.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return domain.Actor{}, domain.ErrInvalidToken
	}
	return r.actors[id], nil
}

func (r *ActorRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Actor
	for _, a := range r.actors {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *ActorRepo) UpdateLocation(ctx context.Context, id string, lat, lng float64) (domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.actors[id]
	if !ok {
		return domain.Actor{}, domain.ErrNotFound
	}
	a.Lat, a.Lng = lat, lng
	a.UpdatedAt = time.Now().UTC()
	r.actors[id] = a
	return a, nil
}
