package domain

import "time"

// Product is a global registry entry. Price and stock live on the store
// link, not here: the same product can be sold by many stores at
// different prices.
type Product struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
