package client

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Recovery rebuilds the local view from durable server state. It runs on
// startup and after every reconnect; the outcome is indistinguishable
// from a session that never lost its connection.
type Recovery struct {
	client        *Client
	view          *ViewState
	log           *slog.Logger
	maxConcurrent int
}

func NewRecovery(c *Client, view *ViewState, log *slog.Logger) *Recovery {
	return &Recovery{
		client:        c,
		view:          view,
		log:           log,
		maxConcurrent: 4,
	}
}

// Run fetches the actor's in-transit orders and, concurrently per order,
// the persisted route and the vehicle's last known position.
func (r *Recovery) Run(ctx context.Context) error {
	orders, err := r.client.MyOrders(ctx, "in-transit")
	if err != nil {
		return err
	}

	for _, o := range orders {
		r.view.MergeOrder(o)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrent)

	for _, o := range orders {
		o := o
		g.Go(func() error {
			route, err := r.client.OrderRoute(gctx, o.ID)
			if err != nil {
				// Accept just happened and the route is not stored yet,
				// or it was cleaned up; the next pass will see it.
				var apiErr *APIError
				if errors.As(err, &apiErr) && apiErr.Status == 404 {
					return nil
				}
				return err
			}
			r.view.SetRoute(route.VehicleID, route.Waypoints)

			v, err := r.client.Vehicle(gctx, o.VehicleID)
			if err != nil {
				return err
			}
			r.view.SetVehiclePosition(v.ID, v.Lat, v.Lng)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.log.Warn("recovery incomplete", "err", err)
		return err
	}
	return nil
}
