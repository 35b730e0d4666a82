package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/safar/pizza-storefront/internal/models"
)

// ListPizzas returns the catalog, optionally filtered by category. Results
// are never cached; callers re-fetch after mutations.
func (c *Client) ListPizzas(ctx context.Context, category models.Category) ([]models.Product, error) {
	var query url.Values
	if category != "" {
		query = url.Values{"category": {string(category)}}
	}

	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/pizzas/", query, nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (c *Client) SearchPizzas(ctx context.Context, query string) ([]models.Product, error) {
	var products []models.Product
	q := url.Values{"query": {query}}
	if err := c.do(ctx, http.MethodGet, "/pizzas/search", q, nil, &products); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

func (c *Client) CreatePizza(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	product := &models.Product{}
	if err := c.do(ctx, http.MethodPost, "/pizzas/", nil, input, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (c *Client) UpdatePizza(ctx context.Context, id int64, input models.ProductInput) (*models.Product, error) {
	product := &models.Product{}
	path := "/pizzas/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, path, nil, input, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

func (c *Client) DeletePizza(ctx context.Context, id int64) error {
	path := "/pizzas/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
