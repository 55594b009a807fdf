package app

import (
	"context"
	"strings"

	"github.com/entregalabs/entrega/internal/actor/domain"
)

type ActorRepo interface {
	Create(ctx context.Context, a domain.Actor) (domain.Actor, error)
	Get(ctx context.Context, id string) (domain.Actor, error)
	GetByToken(ctx context.Context, token string) (domain.Actor, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Actor, error)
	UpdateLocation(ctx context.Context, id string, lat, lng float64) (domain.Actor, error)
}

type Service struct {
	repo ActorRepo
}

func NewService(repo ActorRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, a domain.Actor) (domain.Actor, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" || a.Token == "" {
		return domain.Actor{}, domain.ErrInvalidToken
	}
	return s.repo.Create(ctx, a)
}

// Authenticate resolves a bearer token to the actor it identifies.
// Token issuance is external; this is only the lookup side.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Actor{}, domain.ErrInvalidToken
	}
	return s.repo.GetByToken(ctx, token)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Actor, error) {
	return s.repo.Get(ctx, id)
}

// Stores lists every registered store, the customer's storefront picker.
func (s *Service) Stores(ctx context.Context) ([]domain.Actor, error) {
	return s.repo.ListByRole(ctx, domain.RoleStore)
}

func (s *Service) UpdateLocation(ctx context.Context, id string, lat, lng float64) (domain.Actor, error) {
	return s.repo.UpdateLocation(ctx, id, lat, lng)
}
