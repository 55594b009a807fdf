package domain

import (
	"errors"
	"time"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStore    Role = "STORE"
	RoleCarrier  Role = "CARRIER"
)

// Actor is any authenticated participant. Customers and stores carry a
// location used as route endpoints; carriers do not (their vehicles do).
type Actor struct {
	ID        string
	Role      Role
	Name      string
	Token     string
	Lat       float64
	Lng       float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrNotFound     = errors.New("actor not found")
	ErrInvalidToken = errors.New("invalid token")
)
