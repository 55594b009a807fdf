package domain

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal statuses admit no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Rank orders statuses by lifecycle progress. Client views merge
// concurrent updates by keeping the higher rank, never arrival order.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusApproved:
		return 2
	case StatusInTransit:
		return 3
	case StatusDelivered, StatusCancelled:
		return 4
	default:
		return 0
	}
}

type Order struct {
	ID         string
	CustomerID string
	StoreID    string
	CarrierID  string
	VehicleID  string
	Status     Status
	Items      []Item
	Total      int64
	// StockReleased marks that the cancel path already credited the
	// reservation back, so a retried cancel cannot double-credit.
	StockReleased bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Item struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int32
	LineTotal int64
}

var ErrNotFound = errors.New("order not found")

// InvalidTransitionError names the order's current status and the one
// requested. Racing actors lose with this error and observe the winner's
// status in From.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}
