package client

import (
	"sync"
)

// statusRank orders lifecycle statuses by progress. The merge below
// keeps the freshest status, never the latest arrival: a stale poll
// result landing after a realtime update cannot regress the view.
func statusRank(status string) int {
	switch status {
	case "PENDING":
		return 1
	case "APPROVED":
		return 2
	case "IN_TRANSIT":
		return 3
	case "DELIVERED", "CANCELLED":
		return 4
	default:
		return 0
	}
}

// OrderView is what the UI layer renders for one order.
type OrderView struct {
	Order    Order
	Route    []Point
	Vehicle  *Point
	HasRoute bool
}

// ViewState is the client's local picture of its orders. Realtime
// events, poll results and recovery all funnel into the same merge.
type ViewState struct {
	mu     sync.Mutex
	orders map[string]*OrderView
	// vehicleIndex maps a vehicle to the in-transit order it serves, so
	// vehicle-keyed events can find their order.
	vehicleIndex map[string]string
}

func NewViewState() *ViewState {
	return &ViewState{
		orders:       make(map[string]*OrderView),
		vehicleIndex: make(map[string]string),
	}
}

// MergeOrder applies an order snapshot unless the view already holds a
// fresher status for it.
func (v *ViewState) MergeOrder(o Order) {
	v.mu.Lock()
	defer v.mu.Unlock()

	cur, ok := v.orders[o.ID]
	if !ok {
		v.orders[o.ID] = &OrderView{Order: o}
		v.index(o)
		return
	}
	if statusRank(o.Status) < statusRank(cur.Order.Status) {
		return
	}
	cur.Order = o
	v.index(o)
}

func (v *ViewState) index(o Order) {
	if o.VehicleID != "" && o.Status == "IN_TRANSIT" {
		v.vehicleIndex[o.VehicleID] = o.ID
	}
}

// SetRoute attaches waypoints to whichever order the vehicle serves.
func (v *ViewState) SetRoute(vehicleID string, waypoints []Point) {
	v.mu.Lock()
	defer v.mu.Unlock()

	orderID, ok := v.vehicleIndex[vehicleID]
	if !ok {
		return
	}
	if view, ok := v.orders[orderID]; ok {
		view.Route = waypoints
		view.HasRoute = true
	}
}

// SetVehiclePosition moves the marker for the order served by the
// vehicle. Events for unknown vehicles are ignored; the next recovery
// pass fills the gap.
func (v *ViewState) SetVehiclePosition(vehicleID string, lat, lng float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	orderID, ok := v.vehicleIndex[vehicleID]
	if !ok {
		return
	}
	if view, ok := v.orders[orderID]; ok {
		view.Vehicle = &Point{Lat: lat, Lng: lng}
	}
}

// CompleteByVehicle marks the vehicle's order delivered and clears the
// live route and marker.
func (v *ViewState) CompleteByVehicle(vehicleID string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	orderID, ok := v.vehicleIndex[vehicleID]
	if !ok {
		return
	}
	if view, ok := v.orders[orderID]; ok {
		if statusRank("DELIVERED") >= statusRank(view.Order.Status) {
			view.Order.Status = "DELIVERED"
		}
		view.Route = nil
		view.HasRoute = false
		view.Vehicle = nil
	}
	delete(v.vehicleIndex, vehicleID)
}

func (v *ViewState) Get(orderID string) (OrderView, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	view, ok := v.orders[orderID]
	if !ok {
		return OrderView{}, false
	}
	return *view, true
}

// InTransit lists the orders currently being delivered.
func (v *ViewState) InTransit() []OrderView {
	v.mu.Lock()
	defer v.mu.Unlock()

	var out []OrderView
	for _, view := range v.orders {
		if view.Order.Status == "IN_TRANSIT" {
			out = append(out, *view)
		}
	}
	return out
}
