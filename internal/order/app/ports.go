package app

import (
	"context"

	"github.com/entregalabs/entrega/internal/order/domain"
	routedom "github.com/entregalabs/entrega/internal/route/domain"
	stockdom "github.com/entregalabs/entrega/internal/stock/domain"
)

// Assignment carries the carrier and vehicle set when a freight is
// accepted.
type Assignment struct {
	CarrierID string
	VehicleID string
}

type OrderRepo interface {
	CreateTx(ctx context.Context, o domain.Order) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)

	// Transition is a compare-and-set on status. When the order is no
	// longer in from, it fails with *domain.InvalidTransitionError
	// carrying the status the winner left behind. assign is non-nil
	// only for the accept-freight transition.
	Transition(ctx context.Context, id string, from, to domain.Status, assign *Assignment) (domain.Order, error)

	// MarkStockReleased flips the release marker. It reports false when
	// the marker was already set, which makes release exactly-once.
	MarkStockReleased(ctx context.Context, id string) (bool, error)
	// ClearStockReleased unsets the marker after a failed credit so the
	// release can be retried.
	ClearStockReleased(ctx context.Context, id string) error

	ListByCustomer(ctx context.Context, customerID string, statuses []domain.Status) ([]domain.Order, error)
	ListByStore(ctx context.Context, storeID string, statuses []domain.Status) ([]domain.Order, error)
	ListByCarrier(ctx context.Context, carrierID string, statuses []domain.Status) ([]domain.Order, error)
	// ListAvailable returns approved orders not yet claimed by any
	// carrier, the freight board.
	ListAvailable(ctx context.Context) ([]domain.Order, error)

	HasActiveOrders(ctx context.Context, storeID, productID string) (bool, error)
}

// StockLedger is the slice of the stock context the order engine needs.
type StockLedger interface {
	Reserve(ctx context.Context, storeID string, lines []stockdom.Line) error
	Release(ctx context.Context, storeID string, lines []stockdom.Line) error
}

// RoutePlanner plans and durably stores the delivery route.
type RoutePlanner interface {
	PlanForOrder(ctx context.Context, orderID, vehicleID string, from, to routedom.Point) (routedom.Route, error)
}

// Locator resolves an actor's profile location, the route endpoints.
type Locator interface {
	Location(ctx context.Context, actorID string) (routedom.Point, error)
}

// EventPublisher pushes delivery events to realtime subscribers.
type EventPublisher interface {
	PublishRoute(vehicleID string, waypoints []routedom.Point)
	PublishDeliveryCompleted(vehicleID string)
}
