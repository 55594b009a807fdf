package app_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/entregalabs/entrega/internal/stock/app"
	"github.com/entregalabs/entrega/internal/stock/domain"
	"github.com/entregalabs/entrega/internal/stock/infra/memory"
)

type noActiveOrders struct{}

func (noActiveOrders) HasActiveOrders(ctx context.Context, storeID, productID string) (bool, error) {
	return false, nil
}

type alwaysActiveOrders struct{}

func (alwaysActiveOrders) HasActiveOrders(ctx context.Context, storeID, productID string) (bool, error) {
	return true, nil
}

func newService(t *testing.T, checker app.OrderRefChecker) *app.Service {
	t.Helper()
	return app.NewService(memory.NewStockRepo(), checker)
}

func TestReserveAllOrNothing(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, noActiveOrders{})

	_, err := svc.Link(ctx, domain.StoreProduct{StoreID: "s1", ProductID: "p1", ProductName: "Arroz", Price: 500, Quantity: 10})
	require.NoError(t, err)
	_, err = svc.Link(ctx, domain.StoreProduct{StoreID: "s1", ProductID: "p2", ProductName: "Feijao", Price: 700, Quantity: 2})
	require.NoError(t, err)

	err = svc.Reserve(ctx, "s1", []domain.Line{
		{ProductID: "p1", Quantity: 5},
		{ProductID: "p2", Quantity: 3},
	})

	var short *domain.InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.Equal(t, "p2", short.ProductID)
	require.EqualValues(t, 3, short.Requested)
	require.EqualValues(t, 2, short.Available)

	// The failing reservation must not have touched p1.
	sp, err := svc.Get(ctx, "s1", "p1")
	require.NoError(t, err)
	require.EqualValues(t, 10, sp.Quantity)
}

func TestReserveNeverOversells(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, noActiveOrders{})

	const stock = 50
	_, err := svc.Link(ctx, domain.StoreProduct{StoreID: "s1", ProductID: "p1", ProductName: "Leite", Price: 300, Quantity: stock})
	require.NoError(t, err)

	var reserved atomic.Int32
	var g errgroup.Group
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			err := svc.Reserve(ctx, "s1", []domain.Line{{ProductID: "p1", Quantity: 3}})
			if err == nil {
				reserved.Add(3)
				return nil
			}
			var short *domain.InsufficientStockError
			if errors.As(err, &short) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	sp, err := svc.Get(ctx, "s1", "p1")
	require.NoError(t, err)
	require.EqualValues(t, stock-reserved.Load(), sp.Quantity)
	require.LessOrEqual(t, reserved.Load(), int32(stock))
}

func TestRestockRejectsNonPositiveDelta(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, noActiveOrders{})

	_, err := svc.Link(ctx, domain.StoreProduct{StoreID: "s1", ProductID: "p1", Price: 100, Quantity: 1})
	require.NoError(t, err)

	for _, delta := range []int32{0, -5} {
		_, err := svc.Restock(ctx, "s1", "p1", delta)
		require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}

	sp, err := svc.Restock(ctx, "s1", "p1", 4)
	require.NoError(t, err)
	require.EqualValues(t, 5, sp.Quantity)
}

func TestLinkAndRepriceRequirePositivePrice(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, noActiveOrders{})

	for _, price := range []int64{0, -100} {
		_, err := svc.Link(ctx, domain.StoreProduct{StoreID: "s1", ProductID: "p1", Price: price, Quantity: 1})
		require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}

	_, err := svc.Link(ctx, domain.StoreProduct{StoreID: "s1", ProductID: "p1", Price: 100, Quantity: 1})
	require.NoError(t, err)

	for _, price := range []int64{0, -1} {
		_, err := svc.Reprice(ctx, "s1", "p1", price)
		require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}

	sp, err := svc.Reprice(ctx, "s1", "p1", 250)
	require.NoError(t, err)
	require.EqualValues(t, 250, sp.Price)
}

func TestUnlinkBlockedByActiveOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("active orders -> product in use", func(t *testing.T) {
		svc := newService(t, alwaysActiveOrders{})
		_, err := svc.Link(ctx, domain.StoreProduct{StoreID: "s1", ProductID: "p1", Price: 100, Quantity: 1})
		require.NoError(t, err)

		err = svc.Unlink(ctx, "s1", "p1")
		require.ErrorIs(t, err, domain.ErrProductInUse)

		_, err = svc.Get(ctx, "s1", "p1")
		require.NoError(t, err)
	})

	t.Run("no active orders -> unlinked", func(t *testing.T) {
		svc := newService(t, noActiveOrders{})
		_, err := svc.Link(ctx, domain.StoreProduct{StoreID: "s1", ProductID: "p1", Price: 100, Quantity: 1})
		require.NoError(t, err)

		require.NoError(t, svc.Unlink(ctx, "s1", "p1"))
		_, err = svc.Get(ctx, "s1", "p1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestReleaseRestoresStock(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, noActiveOrders{})

	_, err := svc.Link(ctx, domain.StoreProduct{StoreID: "s1", ProductID: "p1", Price: 100, Quantity: 10})
	require.NoError(t, err)

	lines := []domain.Line{{ProductID: "p1", Quantity: 4}}
	require.NoError(t, svc.Reserve(ctx, "s1", lines))
	require.NoError(t, svc.Release(ctx, "s1", lines))

	sp, err := svc.Get(ctx, "s1", "p1")
	require.NoError(t, err)
	require.EqualValues(t, 10, sp.Quantity)
}
