package domain

import (
	"errors"
	"fmt"
	"time"
)

// StoreProduct links a catalog product into a store's sellable stock.
// Price is in cents and is what the customer pays at this store.
type StoreProduct struct {
	StoreID     string
	ProductID   string
	ProductName string
	Price       int64
	Quantity    int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Line is one product/quantity pair in a reservation or release.
type Line struct {
	ProductID string
	Quantity  int32
}

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrProductInUse    = errors.New("product referenced by active orders")
	ErrNotFound        = errors.New("not found")
)

// InsufficientStockError names the first product that cannot be covered.
// The whole reservation fails; nothing is decremented.
type InsufficientStockError struct {
	ProductID string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
