package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	actorapp "github.com/entregalabs/entrega/internal/actor/app"
	actormem "github.com/entregalabs/entrega/internal/actor/infra/memory"
	catalogapp "github.com/entregalabs/entrega/internal/catalog/app"
	catalogmem "github.com/entregalabs/entrega/internal/catalog/infra/memory"
	catalogpg "github.com/entregalabs/entrega/internal/catalog/infra/postgres"
	fleetapp "github.com/entregalabs/entrega/internal/fleet/app"
	fleetmem "github.com/entregalabs/entrega/internal/fleet/infra/memory"
	fleetpg "github.com/entregalabs/entrega/internal/fleet/infra/postgres"
	"github.com/entregalabs/entrega/internal/httpapi"
	"github.com/entregalabs/entrega/internal/hub"
	orderapp "github.com/entregalabs/entrega/internal/order/app"
	"github.com/entregalabs/entrega/internal/order/infra/adapter"
	ordermem "github.com/entregalabs/entrega/internal/order/infra/memory"
	orderpg "github.com/entregalabs/entrega/internal/order/infra/postgres"
	routeapp "github.com/entregalabs/entrega/internal/route/app"
	routemem "github.com/entregalabs/entrega/internal/route/infra/memory"
	routepg "github.com/entregalabs/entrega/internal/route/infra/postgres"
	stockapp "github.com/entregalabs/entrega/internal/stock/app"
	stockmem "github.com/entregalabs/entrega/internal/stock/infra/memory"
	stockpg "github.com/entregalabs/entrega/internal/stock/infra/postgres"
	"github.com/entregalabs/entrega/pkg/config"
	"github.com/entregalabs/entrega/pkg/logger"
	"github.com/entregalabs/entrega/pkg/metrics"
	"github.com/entregalabs/entrega/pkg/postgres"
	"github.com/entregalabs/entrega/pkg/shutdown"
)

type repos struct {
	catalog  catalogapp.ProductRepo
	stock    stockapp.StockRepo
	order    orderapp.OrderRepo
	fleet    fleetapp.VehicleRepo
	route    routeapp.RouteRepo
	refCheck stockapp.OrderRefChecker
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Service: "entrega", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool = mustPool(ctx, log, cfg.DatabaseURL)
		defer pool.Close()
	}
	r := buildRepos(pool)

	m := metrics.NewServerMetrics()
	h := hub.New(log, m, cfg.SubscriberBuffer)

	actorSvc := actorapp.NewService(actormem.NewActorRepo())
	catalogSvc := catalogapp.NewService(r.catalog)
	stockSvc := stockapp.NewService(r.stock, r.refCheck)
	routeSvc := routeapp.NewService(routeapp.StraightLinePlanner{}, r.route)
	fleetSvc := fleetapp.NewService(r.fleet, h)
	orderSvc := orderapp.NewService(r.order, stockSvc, routeSvc,
		adapter.NewActorLocator(actorSvc), h, log)

	sink := hub.PositionSinkFunc(func(ctx context.Context, actorID, vehicleID string, lat, lng float64) error {
		_, err := fleetSvc.MovePositionFor(ctx, actorID, vehicleID, lat, lng)
		return err
	})
	ws := hub.NewWSHandler(h, sink, log)

	api := httpapi.NewServer(actorSvc, catalogSvc, stockSvc, orderSvc, fleetSvc, routeSvc, ws, log, m)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", m.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var wg sync.WaitGroup
	for _, s := range []*http.Server{server, metricsServer} {
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("http server starting", slog.String("addr", s.Addr))
			if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server error", slog.Any("err", err))
				cancel()
			}
		}()
	}

	<-ctx.Done()
	log.Info("shutdown requested")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stopCancel()

	for _, s := range []*http.Server{server, metricsServer} {
		if err := s.Shutdown(stopCtx); err != nil {
			log.Error("http shutdown error", slog.Any("err", err))
		}
	}

	wg.Wait()
	log.Info("bye")
}

// buildRepos picks the storage backend. Without a DATABASE_URL the
// server runs fully in memory, which is what local development and the
// CLI demo use.
func buildRepos(pool *pgxpool.Pool) repos {
	if pool == nil {
		orderRepo := ordermem.NewOrderRepo()
		return repos{
			catalog:  catalogmem.NewProductRepo(),
			stock:    stockmem.NewStockRepo(),
			order:    orderRepo,
			fleet:    fleetmem.NewVehicleRepo(),
			route:    routemem.NewRouteRepo(),
			refCheck: orderRepo,
		}
	}

	orderRepo := orderpg.NewOrderRepo(pool)
	return repos{
		catalog:  catalogpg.NewProductRepo(pool),
		stock:    stockpg.NewStockRepo(pool),
		order:    orderRepo,
		fleet:    fleetpg.NewVehicleRepo(pool),
		route:    routepg.NewRouteRepo(pool),
		refCheck: orderRepo,
	}
}

func mustPool(ctx context.Context, log *slog.Logger, url string) *pgxpool.Pool {
	pool, err := postgres.Connect(ctx, url)
	if err != nil {
		log.Error("db connect failed", slog.Any("err", err))
		os.Exit(1)
	}
	return pool
}
