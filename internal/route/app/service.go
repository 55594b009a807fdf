package app

import (
	"context"

	"github.com/entregalabs/entrega/internal/route/domain"
)

// Planner computes waypoints between two points. The default is the
// straight-line interpolator below; a road-routing engine can be swapped
// in behind the same interface.
type Planner interface {
	Plan(ctx context.Context, from, to domain.Point) ([]domain.Point, error)
}

type RouteRepo interface {
	Save(ctx context.Context, r domain.Route) (domain.Route, error)
	ByOrder(ctx context.Context, orderID string) (domain.Route, error)
}

type Service struct {
	planner Planner
	repo    RouteRepo
}

func NewService(planner Planner, repo RouteRepo) *Service {
	return &Service{planner: planner, repo: repo}
}

// PlanForOrder plans and durably stores the route in one step. Replanning
// the same order overwrites the stored route.
func (s *Service) PlanForOrder(ctx context.Context, orderID, vehicleID string, from, to domain.Point) (domain.Route, error) {
	points, err := s.planner.Plan(ctx, from, to)
	if err != nil {
		return domain.Route{}, err
	}
	return s.repo.Save(ctx, domain.Route{
		OrderID:   orderID,
		VehicleID: vehicleID,
		Waypoints: points,
	})
}

func (s *Service) ByOrder(ctx context.Context, orderID string) (domain.Route, error) {
	return s.repo.ByOrder(ctx, orderID)
}
