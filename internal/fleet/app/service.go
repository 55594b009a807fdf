package app

import (
	"context"
	"errors"
	"strings"

	"github.com/entregalabs/entrega/internal/fleet/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotOwner     = errors.New("vehicle belongs to another carrier")
)

type VehicleRepo interface {
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	Get(ctx context.Context, id string) (domain.Vehicle, error)
	ListByCarrier(ctx context.Context, carrierID string) ([]domain.Vehicle, error)
	List(ctx context.Context) ([]domain.Vehicle, error)
	UpdatePosition(ctx context.Context, id string, lat, lng float64) (domain.Vehicle, error)
}

// PositionPublisher pushes a live position to realtime subscribers.
type PositionPublisher interface {
	PublishPosition(vehicleID string, lat, lng float64)
}

type Service struct {
	repo VehicleRepo
	pub  PositionPublisher
}

func NewService(repo VehicleRepo, pub PositionPublisher) *Service {
	return &Service{repo: repo, pub: pub}
}

func (s *Service) Register(ctx context.Context, carrierID, name string, lat, lng float64) (domain.Vehicle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Vehicle{}, ErrInvalidInput
	}
	return s.repo.Create(ctx, domain.Vehicle{
		CarrierID: carrierID,
		Name:      name,
		Lat:       lat,
		Lng:       lng,
	})
}

func (s *Service) Get(ctx context.Context, id string) (domain.Vehicle, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) MyFleet(ctx context.Context, carrierID string) ([]domain.Vehicle, error) {
	return s.repo.ListByCarrier(ctx, carrierID)
}

func (s *Service) All(ctx context.Context) ([]domain.Vehicle, error) {
	return s.repo.List(ctx)
}

// MovePosition persists the last known position and then broadcasts it.
// Persist-first means a crash between the two loses an event, never the
// durable position recovery reads.
func (s *Service) MovePosition(ctx context.Context, vehicleID string, lat, lng float64) (domain.Vehicle, error) {
	v, err := s.repo.UpdatePosition(ctx, vehicleID, lat, lng)
	if err != nil {
		return domain.Vehicle{}, err
	}
	if s.pub != nil {
		s.pub.PublishPosition(v.ID, v.Lat, v.Lng)
	}
	return v, nil
}

// MovePositionFor is MovePosition gated on ownership. Every caller that
// acts on behalf of a carrier, HTTP or websocket, goes through here.
func (s *Service) MovePositionFor(ctx context.Context, carrierID, vehicleID string, lat, lng float64) (domain.Vehicle, error) {
	v, err := s.repo.Get(ctx, vehicleID)
	if err != nil {
		return domain.Vehicle{}, err
	}
	if v.CarrierID != carrierID {
		return domain.Vehicle{}, ErrNotOwner
	}
	return s.MovePosition(ctx, vehicleID, lat, lng)
}
