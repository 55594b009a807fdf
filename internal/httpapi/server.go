package httpapi

import (
	"log/slog"
	"net/http"

	actorapp "github.com/entregalabs/entrega/internal/actor/app"
	actordom "github.com/entregalabs/entrega/internal/actor/domain"
	catalogapp "github.com/entregalabs/entrega/internal/catalog/app"
	fleetapp "github.com/entregalabs/entrega/internal/fleet/app"
	"github.com/entregalabs/entrega/internal/hub"
	orderapp "github.com/entregalabs/entrega/internal/order/app"
	routeapp "github.com/entregalabs/entrega/internal/route/app"
	stockapp "github.com/entregalabs/entrega/internal/stock/app"
	"github.com/entregalabs/entrega/pkg/metrics"
)

// Server wires every context's service behind one JSON API.
type Server struct {
	actors  *actorapp.Service
	catalog *catalogapp.Service
	stock   *stockapp.Service
	orders  *orderapp.Service
	fleet   *fleetapp.Service
	routes  *routeapp.Service
	ws      *hub.WSHandler
	log     *slog.Logger
	m       *metrics.ServerMetrics
}

func NewServer(
	actors *actorapp.Service,
	catalog *catalogapp.Service,
	stock *stockapp.Service,
	orders *orderapp.Service,
	fleet *fleetapp.Service,
	routes *routeapp.Service,
	ws *hub.WSHandler,
	log *slog.Logger,
	m *metrics.ServerMetrics,
) *Server {
	return &Server{
		actors:  actors,
		catalog: catalog,
		stock:   stock,
		orders:  orders,
		fleet:   fleet,
		routes:  routes,
		ws:      ws,
		log:     log,
		m:       m,
	}
}

// Handler builds the full route table. The websocket endpoint bypasses
// the instrumentation wrapper because the upgrade needs to hijack the
// connection.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	auth := s.actors

	// catalog
	mux.HandleFunc("POST /products", requireRole(auth, actordom.RoleStore, s.createProduct))
	mux.HandleFunc("GET /products", requireAuth(auth, s.listProducts))

	// actors
	mux.HandleFunc("GET /stores", requireAuth(auth, s.listStores))
	mux.HandleFunc("PUT /me/location", requireAuth(auth, s.updateLocation))

	// store stock
	mux.HandleFunc("POST /stock", requireRole(auth, actordom.RoleStore, s.linkStock))
	mux.HandleFunc("PATCH /stock/{productID}", requireRole(auth, actordom.RoleStore, s.updateStock))
	mux.HandleFunc("DELETE /stock/{productID}", requireRole(auth, actordom.RoleStore, s.unlinkStock))
	mux.HandleFunc("GET /stores/{storeID}/stock", requireAuth(auth, s.storeCatalog))

	// orders
	mux.HandleFunc("POST /orders", requireRole(auth, actordom.RoleCustomer, s.createOrder))
	mux.HandleFunc("GET /orders/{id}", requireAuth(auth, s.getOrder))
	mux.HandleFunc("GET /orders/{id}/route", requireAuth(auth, s.getRoute))
	mux.HandleFunc("DELETE /orders/{id}", requireRole(auth, actordom.RoleCustomer, s.cancelOrder))
	mux.HandleFunc("POST /orders/{id}/approve", requireRole(auth, actordom.RoleStore, s.approveOrder))
	mux.HandleFunc("POST /orders/{id}/accept", requireRole(auth, actordom.RoleCarrier, s.acceptFreight))
	mux.HandleFunc("POST /orders/{id}/complete", requireRole(auth, actordom.RoleCarrier, s.completeDelivery))
	mux.HandleFunc("GET /orders", requireAuth(auth, s.listOrders))
	mux.HandleFunc("GET /freights", requireRole(auth, actordom.RoleCarrier, s.availableFreights))

	// fleet
	mux.HandleFunc("POST /vehicles", requireRole(auth, actordom.RoleCarrier, s.registerVehicle))
	mux.HandleFunc("GET /vehicles", requireAuth(auth, s.listVehicles))
	mux.HandleFunc("GET /vehicles/{id}", requireAuth(auth, s.getVehicle))
	mux.HandleFunc("POST /vehicles/{id}/position", requireRole(auth, actordom.RoleCarrier, s.moveVehicle))

	root := http.NewServeMux()
	// The websocket upgrade still needs a valid token; pushes on the
	// connection are scoped to the authenticated actor.
	root.Handle("GET /ws", requireAuth(auth, func(w http.ResponseWriter, r *http.Request) {
		a, _ := actorFrom(r.Context())
		s.ws.Serve(w, r, a.ID)
	}))
	root.Handle("/", instrument(s.log, s.m, mux))
	return root
}
