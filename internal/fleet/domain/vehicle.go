package domain

import (
	"errors"
	"time"
)

// Vehicle belongs to a carrier. Lat/Lng is the last known position,
// updated both from the stock screen (relocate at rest) and from live
// position pushes while delivering.
type Vehicle struct {
	ID        string
	CarrierID string
	Name      string
	Lat       float64
	Lng       float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

var ErrNotFound = errors.New("vehicle not found")
