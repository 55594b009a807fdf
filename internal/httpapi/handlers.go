package httpapi

import (
	"encoding/json"
	"net/http"

	actordom "github.com/entregalabs/entrega/internal/actor/domain"
	orderapp "github.com/entregalabs/entrega/internal/order/app"
	stockdom "github.com/entregalabs/entrega/internal/stock/domain"
)

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// catalog

type createProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	p, err := s.catalog.CreateProduct(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context(), r.URL.Query().Get("query"), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// actors

func (s *Server) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := s.actors.Stores(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	type storeView struct {
		ID   string  `json:"id"`
		Name string  `json:"name"`
		Lat  float64 `json:"lat"`
		Lng  float64 `json:"lng"`
	}
	out := make([]storeView, 0, len(stores))
	for _, st := range stores {
		out = append(out, storeView{ID: st.ID, Name: st.Name, Lat: st.Lat, Lng: st.Lng})
	}
	writeJSON(w, http.StatusOK, out)
}

type locationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (s *Server) updateLocation(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	var req locationRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	updated, err := s.actors.UpdateLocation(r.Context(), actor.ID, req.Lat, req.Lng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lat": updated.Lat, "lng": updated.Lng})
}

// store stock

type linkStockRequest struct {
	ProductID string `json:"productId"`
	Price     int64  `json:"price"`
	Quantity  int32  `json:"quantity"`
}

func (s *Server) linkStock(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	var req linkStockRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	product, err := s.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}

	sp, err := s.stock.Link(r.Context(), stockdom.StoreProduct{
		StoreID:     actor.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

type updateStockRequest struct {
	RestockDelta *int32 `json:"restockDelta,omitempty"`
	Price        *int64 `json:"price,omitempty"`
}

func (s *Server) updateStock(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	productID := r.PathValue("productID")

	var req updateStockRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	sp, err := s.stock.Get(r.Context(), actor.ID, productID)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.RestockDelta != nil {
		if sp, err = s.stock.Restock(r.Context(), actor.ID, productID, *req.RestockDelta); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Price != nil {
		if sp, err = s.stock.Reprice(r.Context(), actor.ID, productID, *req.Price); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) unlinkStock(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	if err := s.stock.Unlink(r.Context(), actor.ID, r.PathValue("productID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) storeCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.stock.StoreCatalog(r.Context(), r.PathValue("storeID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// orders

type createOrderRequest struct {
	StoreID string             `json:"storeId"`
	Items   []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int32  `json:"quantity"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	items := make([]orderapp.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orderapp.ItemRequest{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	order, err := s.orders.Create(r.Context(), orderapp.CreateRequest{
		CustomerID: actor.ID,
		StoreID:    req.StoreID,
		Items:      items,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) getRoute(w http.ResponseWriter, r *http.Request) {
	route, err := s.routes.ByOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	order, err := s.orders.Cancel(r.Context(), r.PathValue("id"), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) approveOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	order, err := s.orders.Approve(r.Context(), r.PathValue("id"), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) acceptFreight(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	vehicleID := r.URL.Query().Get("vehicleId")
	if vehicleID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "vehicleId is required"})
		return
	}

	// The vehicle must exist and belong to the accepting carrier.
	v, err := s.fleet.Get(r.Context(), vehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	if v.CarrierID != actor.ID {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "vehicle belongs to another carrier"})
		return
	}

	order, err := s.orders.AcceptFreight(r.Context(), r.PathValue("id"), actor.ID, vehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) completeDelivery(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	order, err := s.orders.CompleteDelivery(r.Context(), r.PathValue("id"), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// listOrders serves each role's own slices: customers get active or
// history, stores their pending approvals, carriers their in-transit
// deliveries.
func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	filter := r.URL.Query().Get("filter")

	var (
		orders any
		err    error
	)

	switch actor.Role {
	case actordom.RoleCustomer:
		switch filter {
		case "history":
			orders, err = s.orders.HistoryForCustomer(r.Context(), actor.ID)
		case "in-transit":
			orders, err = s.orders.InTransitForCustomer(r.Context(), actor.ID)
		default:
			orders, err = s.orders.ActiveForCustomer(r.Context(), actor.ID)
		}
	case actordom.RoleStore:
		orders, err = s.orders.PendingForStore(r.Context(), actor.ID)
	case actordom.RoleCarrier:
		orders, err = s.orders.InTransitForCarrier(r.Context(), actor.ID)
	}

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) availableFreights(w http.ResponseWriter, r *http.Request) {
	freights, err := s.orders.AvailableFreights(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, freights)
}

// fleet

type registerVehicleRequest struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func (s *Server) registerVehicle(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	var req registerVehicleRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	v, err := s.fleet.Register(r.Context(), actor.ID, req.Name, req.Lat, req.Lng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) listVehicles(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	if actor.Role == actordom.RoleCarrier {
		vehicles, err := s.fleet.MyFleet(r.Context(), actor.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicles)
		return
	}

	vehicles, err := s.fleet.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (s *Server) getVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := s.fleet.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) moveVehicle(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id := r.PathValue("id")

	var req locationRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	moved, err := s.fleet.MovePositionFor(r.Context(), actor.ID, id, req.Lat, req.Lng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moved)
}
