package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/safar/pizza-storefront/internal/models"
)

type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest carries product id and quantity only. Pricing authority
// stays with the backend; the client never sends a price.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	DeliveryAddress string             `json:"delivery_address"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) error {
	if err := c.do(ctx, http.MethodPost, "/orders/create", nil, req, nil); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// ListOrders returns orders scoped to the authenticated caller; employees
// and admins see all orders.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/", nil, nil, &orders); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	body := struct {
		Status string `json:"status"`
	}{status}

	order := &models.Order{}
	path := "/orders/" + strconv.FormatInt(id, 10) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, nil, body, order); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return order, nil
}
