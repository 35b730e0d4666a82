package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safar/pizza-storefront/internal/api"
	"github.com/safar/pizza-storefront/internal/models"
)

type fakeOrderPlacer struct {
	calls   int
	lastReq api.CreateOrderRequest
	err     error

	entered  chan struct{}
	released chan struct{}
}

func (f *fakeOrderPlacer) CreateOrder(_ context.Context, req api.CreateOrderRequest) error {
	f.calls++
	f.lastReq = req
	if f.entered != nil {
		close(f.entered)
		<-f.released
	}
	return f.err
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func margherita() models.Product {
	return models.Product{ID: 1, Name: "Margherita", Price: price("10.00"), Category: models.CategoryPizza}
}

func cola() models.Product {
	return models.Product{ID: 2, Name: "Cola", Price: price("5.00"), Category: models.CategoryDrinks}
}

// newTestCart pins the clock so generated line IDs are distinct and
// predictable within a test.
func newTestCart(placer OrderPlacer) *Cart {
	c := NewCart(placer)
	base := time.UnixMilli(1_700_000_000_000)
	n := 0
	c.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Millisecond)
	}
	return c
}

func TestAddItemPricing(t *testing.T) {
	tests := []struct {
		name    string
		product models.Product
		size    models.Size
		want    string
	}{
		{"large pizza gets multiplier", margherita(), models.SizeLarge, "13"},
		{"small pizza keeps base price", margherita(), models.SizeSmall, "10.00"},
		{"large drink keeps base price", cola(), models.SizeLarge, "5.00"},
		{"small drink keeps base price", cola(), models.SizeSmall, "5.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := newTestCart(&fakeOrderPlacer{})
			line := cart.AddItem(tt.product, tt.size)

			assert.True(t, line.UnitPrice.Equal(price(tt.want)),
				"unit price = %s, want %s", line.UnitPrice, tt.want)
			assert.Equal(t, 1, line.Quantity)
		})
	}
}

func TestAddItemOpensCart(t *testing.T) {
	cart := newTestCart(&fakeOrderPlacer{})
	require.False(t, cart.IsOpen())

	cart.AddItem(margherita(), models.SizeSmall)
	assert.True(t, cart.IsOpen())
}

func TestAddItemLineIDsUnique(t *testing.T) {
	cart := newTestCart(&fakeOrderPlacer{})

	a := cart.AddItem(margherita(), models.SizeSmall)
	b := cart.AddItem(margherita(), models.SizeSmall)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAddItemLineIDsUniqueRealClock(t *testing.T) {
	// Identical adds in the same millisecond must still get distinct IDs.
	cart := NewCart(&fakeOrderPlacer{})

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		line := cart.AddItem(margherita(), models.SizeSmall)
		if seen[line.ID] {
			t.Fatalf("duplicate line ID %q on add %d", line.ID, i)
		}
		seen[line.ID] = true
	}
}

func TestMutationsAddressLaterDuplicateAdds(t *testing.T) {
	cart := NewCart(&fakeOrderPlacer{})
	a := cart.AddItem(margherita(), models.SizeSmall)
	b := cart.AddItem(margherita(), models.SizeSmall)

	cart.ChangeQuantity(b.ID, 2)
	cart.RemoveItem(a.ID)

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, b.ID, lines[0].ID)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestTotalPriceScenario(t *testing.T) {
	// Large pizza at 10.00 -> 13.00, drink at 5.00 -> 5.00, total 18.00.
	cart := newTestCart(&fakeOrderPlacer{})
	cart.AddItem(margherita(), models.SizeLarge)
	cart.AddItem(cola(), models.SizeSmall)

	assert.True(t, cart.TotalPrice().Equal(price("18.00")),
		"total = %s, want 18.00", cart.TotalPrice())
}

func TestTotalPriceRecomputed(t *testing.T) {
	cart := newTestCart(&fakeOrderPlacer{})
	a := cart.AddItem(margherita(), models.SizeSmall)
	b := cart.AddItem(cola(), models.SizeSmall)

	cart.ChangeQuantity(a.ID, 2)
	assert.True(t, cart.TotalPrice().Equal(price("35.00")))

	cart.RemoveItem(b.ID)
	assert.True(t, cart.TotalPrice().Equal(price("30.00")))

	cart.RemoveItem(a.ID)
	assert.True(t, cart.TotalPrice().IsZero())
}

func TestChangeQuantityFloor(t *testing.T) {
	cart := newTestCart(&fakeOrderPlacer{})
	line := cart.AddItem(margherita(), models.SizeSmall)

	// Increment then decrement twice: must settle at 1, never 0.
	cart.ChangeQuantity(line.ID, 1)
	cart.ChangeQuantity(line.ID, -1)
	cart.ChangeQuantity(line.ID, -1)

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)

	cart.ChangeQuantity(line.ID, -5)
	assert.Equal(t, 1, cart.Lines()[0].Quantity)
}

func TestChangeQuantityUnknownLine(t *testing.T) {
	cart := newTestCart(&fakeOrderPlacer{})
	cart.AddItem(margherita(), models.SizeSmall)

	cart.ChangeQuantity("nope", 3)
	assert.Equal(t, 1, cart.Lines()[0].Quantity)
}

func TestRemoveItemUnknownLine(t *testing.T) {
	cart := newTestCart(&fakeOrderPlacer{})
	cart.AddItem(margherita(), models.SizeSmall)

	cart.RemoveItem("nope")
	assert.Equal(t, 1, cart.Len())
}

func TestCheckoutEmptyCart(t *testing.T) {
	placer := &fakeOrderPlacer{}
	cart := newTestCart(placer)

	err := cart.Checkout(context.Background(), "somewhere")
	require.NoError(t, err)
	assert.Zero(t, placer.calls, "empty checkout must not hit the network")
}

func TestCheckoutSuccess(t *testing.T) {
	placer := &fakeOrderPlacer{}
	cart := newTestCart(placer)
	line := cart.AddItem(margherita(), models.SizeLarge)
	cart.ChangeQuantity(line.ID, 1)
	cart.AddItem(cola(), models.SizeSmall)

	err := cart.Checkout(context.Background(), "1 Main St")
	require.NoError(t, err)

	require.Equal(t, 1, placer.calls)
	assert.Equal(t, "1 Main St", placer.lastReq.DeliveryAddress)
	require.Len(t, placer.lastReq.Items, 2)
	assert.Equal(t, api.OrderItemRequest{ProductID: 1, Quantity: 2}, placer.lastReq.Items[0])
	assert.Equal(t, api.OrderItemRequest{ProductID: 2, Quantity: 1}, placer.lastReq.Items[1])

	assert.Zero(t, cart.Len(), "lines cleared on success")
	assert.False(t, cart.IsOpen(), "panel closed on success")
}

func TestCheckoutFailureKeepsState(t *testing.T) {
	placer := &fakeOrderPlacer{err: errors.New("backend down")}
	cart := newTestCart(placer)
	cart.AddItem(margherita(), models.SizeSmall)

	err := cart.Checkout(context.Background(), "1 Main St")
	require.Error(t, err)

	assert.Equal(t, 1, cart.Len(), "lines untouched on failure")
	assert.True(t, cart.IsOpen(), "panel untouched on failure")
	assert.True(t, cart.TotalPrice().Equal(price("10.00")))
}

func TestCheckoutConcurrentRejected(t *testing.T) {
	placer := &fakeOrderPlacer{
		entered:  make(chan struct{}),
		released: make(chan struct{}),
	}
	cart := newTestCart(placer)
	cart.AddItem(margherita(), models.SizeSmall)

	done := make(chan error, 1)
	go func() {
		done <- cart.Checkout(context.Background(), "1 Main St")
	}()

	<-placer.entered
	err := cart.Checkout(context.Background(), "1 Main St")
	assert.ErrorIs(t, err, ErrBusy)

	close(placer.released)
	require.NoError(t, <-done)
	assert.Equal(t, 1, placer.calls, "only one order submitted")
}

func TestToggleVisibility(t *testing.T) {
	cart := newTestCart(&fakeOrderPlacer{})

	cart.ToggleVisibility()
	assert.True(t, cart.IsOpen())
	cart.ToggleVisibility()
	assert.False(t, cart.IsOpen())
}
