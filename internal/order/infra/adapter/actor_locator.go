package adapter

import (
	"context"

	actorapp "github.com/entregalabs/entrega/internal/actor/app"
	routedom "github.com/entregalabs/entrega/internal/route/domain"
)

// ActorLocator exposes actor profile locations as route endpoints.
type ActorLocator struct {
	svc *actorapp.Service
}

func NewActorLocator(svc *actorapp.Service) *ActorLocator {
	return &ActorLocator{svc: svc}
}

func (l *ActorLocator) Location(ctx context.Context, actorID string) (routedom.Point, error) {
	a, err := l.svc.Get(ctx, actorID)
	if err != nil {
		return routedom.Point{}, err
	}
	return routedom.Point{Lat: a.Lat, Lng: a.Lng}, nil
}
