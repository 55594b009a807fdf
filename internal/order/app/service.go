package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/entregalabs/entrega/internal/order/domain"
	routedom "github.com/entregalabs/entrega/internal/route/domain"
	stockdom "github.com/entregalabs/entrega/internal/stock/domain"
)

var ErrForbidden = errors.New("actor does not own this order")

type Service struct {
	repo    OrderRepo
	stock   StockLedger
	routes  RoutePlanner
	locator Locator
	events  EventPublisher
	log     *slog.Logger
}

func NewService(repo OrderRepo, stock StockLedger, routes RoutePlanner, locator Locator, events EventPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		stock:   stock,
		routes:  routes,
		locator: locator,
		events:  events,
		log:     log,
	}
}

type CreateRequest struct {
	CustomerID string
	StoreID    string
	Items      []ItemRequest
}

type ItemRequest struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int32
}

// Create reserves stock first and only then persists the order. A
// persistence failure credits the reservation straight back, so a failed
// submit leaves stock untouched.
func (s *Service) Create(ctx context.Context, req CreateRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, stockdom.ErrInvalidQuantity
	}

	items := make([]domain.Item, 0, len(req.Items))
	lines := make([]stockdom.Line, 0, len(req.Items))
	var total int64

	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return domain.Order{}, stockdom.ErrInvalidQuantity
		}
		if it.UnitPrice <= 0 {
			return domain.Order{}, stockdom.ErrInvalidQuantity
		}

		lineTotal := it.UnitPrice * int64(it.Quantity)
		items = append(items, domain.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: lineTotal,
		})
		lines = append(lines, stockdom.Line{ProductID: it.ProductID, Quantity: it.Quantity})
		total += lineTotal
	}

	if err := s.stock.Reserve(ctx, req.StoreID, lines); err != nil {
		return domain.Order{}, err
	}

	order, err := s.repo.CreateTx(ctx, domain.Order{
		CustomerID: req.CustomerID,
		StoreID:    req.StoreID,
		Status:     domain.StatusPending,
		Items:      items,
		Total:      total,
	})
	if err != nil {
		if relErr := s.stock.Release(ctx, req.StoreID, lines); relErr != nil {
			s.log.Error("failed to release reservation after create failure",
				"store_id", req.StoreID, "err", relErr)
		}
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// Approve moves a pending order to approved. Only the store the order
// was placed at may approve it.
func (s *Service) Approve(ctx context.Context, orderID, storeID string) (domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.StoreID != storeID {
		return domain.Order{}, ErrForbidden
	}

	return s.repo.Transition(ctx, orderID, domain.StatusPending, domain.StatusApproved, nil)
}

// AcceptFreight claims an approved order for a carrier and vehicle. The
// status compare-and-set decides races: exactly one carrier wins, the
// rest get InvalidTransitionError. The route is planned from the store
// to the customer, persisted, then announced on the hub. An accept that
// claimed the order but could not produce a durable route is rolled
// back so the freight returns to the board.
func (s *Service) AcceptFreight(ctx context.Context, orderID, carrierID, vehicleID string) (domain.Order, error) {
	order, err := s.repo.Transition(ctx, orderID, domain.StatusApproved, domain.StatusInTransit,
		&Assignment{CarrierID: carrierID, VehicleID: vehicleID})
	if err != nil {
		return domain.Order{}, err
	}

	route, err := s.planRoute(ctx, order, vehicleID)
	if err != nil {
		s.unclaim(ctx, orderID)
		return domain.Order{}, err
	}

	s.events.PublishRoute(vehicleID, route.Waypoints)
	s.log.Info("freight accepted",
		"order_id", order.ID, "carrier_id", carrierID, "vehicle_id", vehicleID)
	return order, nil
}

func (s *Service) planRoute(ctx context.Context, order domain.Order, vehicleID string) (routedom.Route, error) {
	from, err := s.locator.Location(ctx, order.StoreID)
	if err != nil {
		return routedom.Route{}, fmt.Errorf("store location: %w", err)
	}
	to, err := s.locator.Location(ctx, order.CustomerID)
	if err != nil {
		return routedom.Route{}, fmt.Errorf("customer location: %w", err)
	}
	route, err := s.routes.PlanForOrder(ctx, order.ID, vehicleID, from, to)
	if err != nil {
		return routedom.Route{}, fmt.Errorf("plan route: %w", err)
	}
	return route, nil
}

// unclaim reverts a half-finished accept: the order goes back to
// approved with the assignment cleared, so another carrier (or a retry)
// can claim it.
func (s *Service) unclaim(ctx context.Context, orderID string) {
	if _, err := s.repo.Transition(ctx, orderID, domain.StatusInTransit, domain.StatusApproved,
		&Assignment{}); err != nil {
		s.log.Error("failed to return freight to the board", "order_id", orderID, "err", err)
	}
}

// CompleteDelivery finishes an in-transit order and announces it. Only
// the assigned carrier may complete.
func (s *Service) CompleteDelivery(ctx context.Context, orderID, carrierID string) (domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.CarrierID != carrierID {
		return domain.Order{}, ErrForbidden
	}

	order, err = s.repo.Transition(ctx, orderID, domain.StatusInTransit, domain.StatusDelivered, nil)
	if err != nil {
		return domain.Order{}, err
	}

	s.events.PublishDeliveryCompleted(order.VehicleID)
	return order, nil
}

// Cancel is customer-only and allowed from Pending or Approved. The
// reserved stock is credited back exactly once: the release marker
// survives retries and races, and a cancel whose credit failed can be
// retried by the owner until the credit lands.
func (s *Service) Cancel(ctx context.Context, orderID, customerID string) (domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.CustomerID != customerID {
		return domain.Order{}, ErrForbidden
	}
	switch {
	case order.Status == domain.StatusCancelled && !order.StockReleased:
		// An earlier cancel flipped the status but the credit failed;
		// fall through and retry the release.
	case order.Status != domain.StatusPending && order.Status != domain.StatusApproved:
		return domain.Order{}, &domain.InvalidTransitionError{From: order.Status, To: domain.StatusCancelled}
	default:
		order, err = s.repo.Transition(ctx, orderID, order.Status, domain.StatusCancelled, nil)
		if err != nil {
			return domain.Order{}, err
		}
	}

	first, err := s.repo.MarkStockReleased(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if first {
		lines := make([]stockdom.Line, 0, len(order.Items))
		for _, it := range order.Items {
			lines = append(lines, stockdom.Line{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		if err := s.stock.Release(ctx, order.StoreID, lines); err != nil {
			// Unset the marker so a retry gets another shot at the
			// credit; otherwise it would be lost for good.
			if clearErr := s.repo.ClearStockReleased(ctx, orderID); clearErr != nil {
				s.log.Error("failed to clear release marker",
					"order_id", orderID, "err", clearErr)
			}
			return domain.Order{}, fmt.Errorf("release stock: %w", err)
		}
	}

	return order, nil
}

// ActiveForCustomer covers everything still moving; History the rest.
func (s *Service) ActiveForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID,
		[]domain.Status{domain.StatusPending, domain.StatusApproved, domain.StatusInTransit})
}

func (s *Service) HistoryForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID,
		[]domain.Status{domain.StatusDelivered, domain.StatusCancelled})
}

func (s *Service) PendingForStore(ctx context.Context, storeID string) ([]domain.Order, error) {
	return s.repo.ListByStore(ctx, storeID, []domain.Status{domain.StatusPending})
}

func (s *Service) AvailableFreights(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *Service) InTransitForCarrier(ctx context.Context, carrierID string) ([]domain.Order, error) {
	return s.repo.ListByCarrier(ctx, carrierID, []domain.Status{domain.StatusInTransit})
}

func (s *Service) InTransitForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID, []domain.Status{domain.StatusInTransit})
}

// HasActiveOrders backs the stock ledger's unlink guard.
func (s *Service) HasActiveOrders(ctx context.Context, storeID, productID string) (bool, error) {
	return s.repo.HasActiveOrders(ctx, storeID, productID)
}
