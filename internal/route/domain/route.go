package domain

import (
	"errors"
	"time"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Route is the planned path for one delivery. It is persisted when the
// freight is accepted so a reloading client can always re-fetch it.
type Route struct {
	OrderID   string
	VehicleID string
	Waypoints []Point
	CreatedAt time.Time
}

var ErrNotFound = errors.New("route not found")
