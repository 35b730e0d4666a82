package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/safar/pizza-storefront/internal/api"
	"github.com/safar/pizza-storefront/internal/models"
)

// ErrBusy means an identical operation is already in flight on this store.
// Guards checkout and login against double submission.
var ErrBusy = errors.New("operation already in flight")

// largeSizeMultiplier scales the displayed unit price when a pizza is
// ordered at the larger size. Display-side only; the order payload never
// carries a price.
var largeSizeMultiplier = decimal.NewFromFloat(1.3)

// Line is one cart entry: a product snapshot at one selected size with its
// own quantity. The product data is frozen at add time.
type Line struct {
	ID        string
	Product   models.Product
	Size      models.Size
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderPlacer submits an order-creation request to the backend.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) error
}

// Cart is the session-scoped shopping cart. Lines live in memory only;
// nothing survives the process.
type Cart struct {
	mu     sync.Mutex
	orders OrderPlacer
	now    func() time.Time

	lines []Line
	open  bool
	busy  bool
	seq   int
}

func NewCart(orders OrderPlacer) *Cart {
	return &Cart{
		orders: orders,
		now:    time.Now,
	}
}

// AddItem appends a new line with quantity 1 and opens the cart panel.
// The unit price gets the large-size multiplier only for pizzas at the
// larger size; other categories keep the base price at any size.
func (c *Cart) AddItem(product models.Product, size models.Size) Line {
	price := product.Price
	if size == models.SizeLarge && product.Category == models.CategoryPizza {
		price = price.Mul(largeSizeMultiplier)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The timestamp alone collides when two adds land in the same
	// millisecond; the per-cart sequence keeps IDs unique for the session.
	c.seq++
	line := Line{
		ID:        fmt.Sprintf("%d-%s-%d-%d", product.ID, size, c.now().UnixMilli(), c.seq),
		Product:   product,
		Size:      size,
		Quantity:  1,
		UnitPrice: price,
	}
	c.lines = append(c.lines, line)
	c.open = true

	return line
}

// RemoveItem deletes the line with the given ID. Unknown IDs are a silent
// no-op; removal is never an error.
func (c *Cart) RemoveItem(lineID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, line := range c.lines {
		if line.ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// ChangeQuantity adds delta to the line's quantity. Quantity never drops
// below 1: a delta that would reach zero leaves the line unchanged, so the
// last unit can only go away through RemoveItem. Unknown IDs are a no-op.
func (c *Cart) ChangeQuantity(lineID string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ID == lineID {
			if q := c.lines[i].Quantity + delta; q > 0 {
				c.lines[i].Quantity = q
			}
			return
		}
	}
}

func (c *Cart) ToggleVisibility() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = !c.open
}

func (c *Cart) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Lines returns a snapshot copy of the current lines.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return lines
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// TotalPrice recomputes the total from the current lines on every call.
// The total is never stored.
func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Checkout submits the cart as an order-creation request. An empty cart is
// a quiet no-op. On success all lines are cleared and the panel closes; on
// failure the cart is left untouched and the error is returned as-is for
// the caller to surface. A second Checkout while one is in flight fails
// fast with ErrBusy.
func (c *Cart) Checkout(ctx context.Context, deliveryAddress string) error {
	c.mu.Lock()
	if len(c.lines) == 0 {
		c.mu.Unlock()
		return nil
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true

	req := api.CreateOrderRequest{
		Items:           make([]api.OrderItemRequest, 0, len(c.lines)),
		DeliveryAddress: deliveryAddress,
	}
	for _, line := range c.lines {
		req.Items = append(req.Items, api.OrderItemRequest{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}
	c.mu.Unlock()

	err := c.orders.CreateOrder(ctx, req)

	c.mu.Lock()
	c.busy = false
	if err == nil {
		c.lines = nil
		c.open = false
	}
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}
