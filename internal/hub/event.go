package hub

import "github.com/entregalabs/entrega/internal/route/domain"

// Event kinds on the delivery channel. Each kind is independently
// consumable; payload fields are fixed per kind.
const (
	KindPosition          = "Position"
	KindRoute             = "Route"
	KindDeliveryCompleted = "DeliveryCompleted"
)

// Event is the wire envelope. Only the fields for the given Kind are set.
type Event struct {
	Kind      string         `json:"kind"`
	VehicleID string         `json:"vehicleId"`
	Lat       float64        `json:"lat,omitempty"`
	Lng       float64        `json:"lng,omitempty"`
	Waypoints []domain.Point `json:"waypoints,omitempty"`
}

func PositionEvent(vehicleID string, lat, lng float64) Event {
	return Event{Kind: KindPosition, VehicleID: vehicleID, Lat: lat, Lng: lng}
}

func RouteEvent(vehicleID string, waypoints []domain.Point) Event {
	return Event{Kind: KindRoute, VehicleID: vehicleID, Waypoints: waypoints}
}

func DeliveryCompletedEvent(vehicleID string) Event {
	return Event{Kind: KindDeliveryCompleted, VehicleID: vehicleID}
}
