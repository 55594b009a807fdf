package client

import (
	"context"
	"errors"
	"sort"
)

var ErrEmptyCart = errors.New("cart is empty")

type cartLine struct {
	productID string
	name      string
	// unitPrice is captured when the product is first added; a later
	// reprice by the store does not touch lines already in the cart.
	unitPrice int64
	quantity  int32
	// available is the stock snapshot at selection time, a soft cap.
	// The server re-checks against live stock on submit.
	available int32
}

// CartBuilder is a purely local order draft for one store. Nothing is
// reserved until Submit.
type CartBuilder struct {
	client  *Client
	storeID string
	lines   map[string]*cartLine
}

func NewCartBuilder(c *Client, storeID string) *CartBuilder {
	return &CartBuilder{
		client:  c,
		storeID: storeID,
		lines:   make(map[string]*cartLine),
	}
}

// Add puts one more unit of the product in the cart, bounded by the
// stock snapshot taken when the entry was browsed.
func (b *CartBuilder) Add(sp StoreProduct) {
	line, ok := b.lines[sp.ProductID]
	if !ok {
		if sp.Quantity < 1 {
			return
		}
		b.lines[sp.ProductID] = &cartLine{
			productID: sp.ProductID,
			name:      sp.ProductName,
			unitPrice: sp.Price,
			quantity:  1,
			available: sp.Quantity,
		}
		return
	}
	if line.quantity < line.available {
		line.quantity++
	}
}

// Remove takes one unit out; past zero the line disappears.
func (b *CartBuilder) Remove(productID string) {
	line, ok := b.lines[productID]
	if !ok {
		return
	}
	line.quantity--
	if line.quantity <= 0 {
		delete(b.lines, productID)
	}
}

func (b *CartBuilder) Quantity(productID string) int32 {
	if line, ok := b.lines[productID]; ok {
		return line.quantity
	}
	return 0
}

func (b *CartBuilder) Total() int64 {
	var total int64
	for _, line := range b.lines {
		total += line.unitPrice * int64(line.quantity)
	}
	return total
}

func (b *CartBuilder) Empty() bool { return len(b.lines) == 0 }

func (b *CartBuilder) Items() []OrderItem {
	out := make([]OrderItem, 0, len(b.lines))
	for _, line := range b.lines {
		out = append(out, OrderItem{
			ProductID: line.productID,
			Name:      line.name,
			UnitPrice: line.unitPrice,
			Quantity:  line.quantity,
			LineTotal: line.unitPrice * int64(line.quantity),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Submit places the order. On failure the cart is kept so the customer
// can adjust and retry; on success it is cleared.
func (b *CartBuilder) Submit(ctx context.Context) (Order, error) {
	if b.Empty() {
		return Order{}, ErrEmptyCart
	}

	order, err := b.client.SubmitOrder(ctx, b.storeID, b.Items())
	if err != nil {
		return Order{}, err
	}

	b.lines = make(map[string]*cartLine)
	return order, nil
}
