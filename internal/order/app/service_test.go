package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/entregalabs/entrega/internal/order/app"
	"github.com/entregalabs/entrega/internal/order/domain"
	ordermem "github.com/entregalabs/entrega/internal/order/infra/memory"
	routedom "github.com/entregalabs/entrega/internal/route/domain"
	stockapp "github.com/entregalabs/entrega/internal/stock/app"
	stockdom "github.com/entregalabs/entrega/internal/stock/domain"
	stockmem "github.com/entregalabs/entrega/internal/stock/infra/memory"
)

type noRefs struct{}

func (noRefs) HasActiveOrders(ctx context.Context, storeID, productID string) (bool, error) {
	return false, nil
}

type fakePlanner struct {
	mu    sync.Mutex
	calls int
	fail  error
}

func (p *fakePlanner) PlanForOrder(ctx context.Context, orderID, vehicleID string, from, to routedom.Point) (routedom.Route, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.fail != nil {
		return routedom.Route{}, p.fail
	}
	return routedom.Route{
		OrderID:   orderID,
		VehicleID: vehicleID,
		Waypoints: []routedom.Point{from, to},
	}, nil
}

func (p *fakePlanner) setFail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

type fixedLocator struct{}

func (fixedLocator) Location(ctx context.Context, actorID string) (routedom.Point, error) {
	return routedom.Point{Lat: 1, Lng: 1}, nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	routes    int
	completed []string
}

func (p *recordingPublisher) PublishRoute(vehicleID string, waypoints []routedom.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes++
}

func (p *recordingPublisher) PublishDeliveryCompleted(vehicleID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, vehicleID)
}

type fixture struct {
	orders *app.Service
	stock  *stockapp.Service
	pub    *recordingPublisher
	plan   *fakePlanner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	stock := stockapp.NewService(stockmem.NewStockRepo(), noRefs{})
	pub := &recordingPublisher{}
	plan := &fakePlanner{}

	orders := app.NewService(ordermem.NewOrderRepo(), stock, plan, fixedLocator{}, pub, log)
	return &fixture{orders: orders, stock: stock, pub: pub, plan: plan}
}

func (f *fixture) seedStock(t *testing.T, store, product string, qty int32) {
	t.Helper()
	_, err := f.stock.Link(context.Background(), stockdom.StoreProduct{
		StoreID: store, ProductID: product, ProductName: product, Price: 100, Quantity: qty,
	})
	require.NoError(t, err)
}

func (f *fixture) placeOrder(t *testing.T, customer, store, product string, qty int32) domain.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), app.CreateRequest{
		CustomerID: customer,
		StoreID:    store,
		Items:      []app.ItemRequest{{ProductID: product, Name: product, UnitPrice: 100, Quantity: qty}},
	})
	require.NoError(t, err)
	return o
}

func TestCreateReservesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStock(t, "store", "p1", 3)

	o := f.placeOrder(t, "cust", "store", "p1", 3)
	require.Equal(t, domain.StatusPending, o.Status)
	require.EqualValues(t, 300, o.Total)

	sp, err := f.stock.Get(ctx, "store", "p1")
	require.NoError(t, err)
	require.EqualValues(t, 0, sp.Quantity)

	// Stock is gone, the next order for the same product fails and
	// names the product.
	_, err = f.orders.Create(ctx, app.CreateRequest{
		CustomerID: "cust2",
		StoreID:    "store",
		Items:      []app.ItemRequest{{ProductID: "p1", Name: "p1", UnitPrice: 100, Quantity: 1}},
	})
	var short *stockdom.InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.Equal(t, "p1", short.ProductID)
}

func TestCreateRejectsNonPositiveUnitPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStock(t, "store", "p1", 3)

	for _, price := range []int64{0, -100} {
		_, err := f.orders.Create(ctx, app.CreateRequest{
			CustomerID: "cust",
			StoreID:    "store",
			Items:      []app.ItemRequest{{ProductID: "p1", Name: "p1", UnitPrice: price, Quantity: 1}},
		})
		require.ErrorIs(t, err, stockdom.ErrInvalidQuantity)
	}

	// Nothing was reserved by the rejected requests.
	sp, err := f.stock.Get(ctx, "store", "p1")
	require.NoError(t, err)
	require.EqualValues(t, 3, sp.Quantity)
}

func TestAcceptFreightRaceHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStock(t, "store", "p1", 5)

	o := f.placeOrder(t, "cust", "store", "p1", 1)
	_, err := f.orders.Approve(ctx, o.ID, "store")
	require.NoError(t, err)

	const carriers = 8
	var winners, losers int
	var mu sync.Mutex
	var g errgroup.Group

	for i := 0; i < carriers; i++ {
		carrier := string(rune('a' + i))
		g.Go(func() error {
			_, err := f.orders.AcceptFreight(ctx, o.ID, carrier, "v-"+carrier)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
				return nil
			}
			var invalid *domain.InvalidTransitionError
			if errors.As(err, &invalid) {
				if invalid.From != domain.StatusInTransit {
					return errors.New("loser should observe the winner's status")
				}
				losers++
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 1, winners)
	require.Equal(t, carriers-1, losers)

	// Exactly one route planned, one route event published.
	require.Equal(t, 1, f.plan.calls)
	require.Equal(t, 1, f.pub.routes)

	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInTransit, got.Status)
	require.NotEmpty(t, got.CarrierID)
}

func TestAcceptFreightFailedPlanReturnsFreight(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStock(t, "store", "p1", 5)

	o := f.placeOrder(t, "cust", "store", "p1", 1)
	_, err := f.orders.Approve(ctx, o.ID, "store")
	require.NoError(t, err)

	f.plan.setFail(errors.New("no road data"))
	_, err = f.orders.AcceptFreight(ctx, o.ID, "carrier", "v1")
	require.Error(t, err)

	// The claim was rolled back: no assignment, and the freight is back
	// on the board.
	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, got.Status)
	require.Empty(t, got.CarrierID)
	require.Empty(t, got.VehicleID)

	board, err := f.orders.AvailableFreights(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)

	// A retry with a working planner goes through and announces one route.
	f.plan.setFail(nil)
	got, err = f.orders.AcceptFreight(ctx, o.ID, "carrier", "v1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusInTransit, got.Status)
	require.Equal(t, 1, f.pub.routes)
}

func TestCompleteDeliveryPublishesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStock(t, "store", "p1", 5)

	o := f.placeOrder(t, "cust", "store", "p1", 1)
	_, err := f.orders.Approve(ctx, o.ID, "store")
	require.NoError(t, err)
	_, err = f.orders.AcceptFreight(ctx, o.ID, "carrier", "v1")
	require.NoError(t, err)

	got, err := f.orders.CompleteDelivery(ctx, o.ID, "carrier")
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivered, got.Status)
	require.Equal(t, []string{"v1"}, f.pub.completed)

	// A second completion loses the compare-and-set.
	_, err = f.orders.CompleteDelivery(ctx, o.ID, "carrier")
	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Len(t, f.pub.completed, 1)
}

func TestCancelReleasesStockExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStock(t, "store", "p1", 10)

	o := f.placeOrder(t, "cust", "store", "p1", 4)

	sp, err := f.stock.Get(ctx, "store", "p1")
	require.NoError(t, err)
	require.EqualValues(t, 6, sp.Quantity)

	got, err := f.orders.Cancel(ctx, o.ID, "cust")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, got.Status)

	sp, err = f.stock.Get(ctx, "store", "p1")
	require.NoError(t, err)
	require.EqualValues(t, 10, sp.Quantity)

	// Retried cancel fails the transition and must not credit again.
	_, err = f.orders.Cancel(ctx, o.ID, "cust")
	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	sp, err = f.stock.Get(ctx, "store", "p1")
	require.NoError(t, err)
	require.EqualValues(t, 10, sp.Quantity)
}

// flakyLedger fails the first release to exercise the retry path.
type flakyLedger struct {
	inner    app.StockLedger
	mu       sync.Mutex
	failures int
}

func (l *flakyLedger) Reserve(ctx context.Context, storeID string, lines []stockdom.Line) error {
	return l.inner.Reserve(ctx, storeID, lines)
}

func (l *flakyLedger) Release(ctx context.Context, storeID string, lines []stockdom.Line) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failures > 0 {
		l.failures--
		return errors.New("ledger offline")
	}
	return l.inner.Release(ctx, storeID, lines)
}

func TestCancelRetriesReleaseAfterFailure(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	stock := stockapp.NewService(stockmem.NewStockRepo(), noRefs{})
	ledger := &flakyLedger{inner: stock, failures: 1}
	orders := app.NewService(ordermem.NewOrderRepo(), ledger, &fakePlanner{},
		fixedLocator{}, &recordingPublisher{}, log)

	_, err := stock.Link(ctx, stockdom.StoreProduct{
		StoreID: "store", ProductID: "p1", ProductName: "p1", Price: 100, Quantity: 10,
	})
	require.NoError(t, err)

	o, err := orders.Create(ctx, app.CreateRequest{
		CustomerID: "cust",
		StoreID:    "store",
		Items:      []app.ItemRequest{{ProductID: "p1", Name: "p1", UnitPrice: 100, Quantity: 4}},
	})
	require.NoError(t, err)

	// The first cancel flips the status but the credit fails; stock
	// stays reserved.
	_, err = orders.Cancel(ctx, o.ID, "cust")
	require.Error(t, err)

	got, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, got.Status)
	require.False(t, got.StockReleased)

	sp, err := stock.Get(ctx, "store", "p1")
	require.NoError(t, err)
	require.EqualValues(t, 6, sp.Quantity)

	// The owner's retry runs the release and credits the stock back.
	got, err = orders.Cancel(ctx, o.ID, "cust")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, got.Status)

	sp, err = stock.Get(ctx, "store", "p1")
	require.NoError(t, err)
	require.EqualValues(t, 10, sp.Quantity)

	// Once the credit landed, a further cancel is rejected and nothing
	// is credited twice.
	_, err = orders.Cancel(ctx, o.ID, "cust")
	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	sp, err = stock.Get(ctx, "store", "p1")
	require.NoError(t, err)
	require.EqualValues(t, 10, sp.Quantity)
}

func TestCancelOnlyByOwningCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStock(t, "store", "p1", 5)

	o := f.placeOrder(t, "cust", "store", "p1", 1)

	_, err := f.orders.Cancel(ctx, o.ID, "someone-else")
	require.ErrorIs(t, err, app.ErrForbidden)
}

func TestCancelRejectedOnceInTransit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStock(t, "store", "p1", 5)

	o := f.placeOrder(t, "cust", "store", "p1", 1)
	_, err := f.orders.Approve(ctx, o.ID, "store")
	require.NoError(t, err)
	_, err = f.orders.AcceptFreight(ctx, o.ID, "carrier", "v1")
	require.NoError(t, err)

	_, err = f.orders.Cancel(ctx, o.ID, "cust")
	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, domain.StatusInTransit, invalid.From)
	require.Equal(t, domain.StatusCancelled, invalid.To)
}

func TestApproveOnlyByOwningStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStock(t, "store", "p1", 5)

	o := f.placeOrder(t, "cust", "store", "p1", 1)

	_, err := f.orders.Approve(ctx, o.ID, "other-store")
	require.ErrorIs(t, err, app.ErrForbidden)
}

func TestFreightBoardListsUnclaimedApproved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStock(t, "store", "p1", 10)

	a := f.placeOrder(t, "cust", "store", "p1", 1)
	b := f.placeOrder(t, "cust", "store", "p1", 1)

	_, err := f.orders.Approve(ctx, a.ID, "store")
	require.NoError(t, err)
	_, err = f.orders.Approve(ctx, b.ID, "store")
	require.NoError(t, err)

	board, err := f.orders.AvailableFreights(ctx)
	require.NoError(t, err)
	require.Len(t, board, 2)

	_, err = f.orders.AcceptFreight(ctx, a.ID, "carrier", "v1")
	require.NoError(t, err)

	board, err = f.orders.AvailableFreights(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	require.Equal(t, b.ID, board[0].ID)
}
