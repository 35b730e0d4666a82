package models

import (
	"github.com/shopspring/decimal"
)

// Category is the fixed product taxonomy served by the backend.
type Category string

const (
	CategoryPizza    Category = "pizza"
	CategoryDrinks   Category = "drinks"
	CategoryDesserts Category = "desserts"
)

// Size is the physical size choice offered for pizzas. Other categories
// ignore it.
type Size string

const (
	SizeSmall Size = "30cm"
	SizeLarge Size = "40cm"
)

// Role is the access tier attached to an authenticated identity.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Category    Category        `json:"category"`
}

// ProductInput is the create/update payload for privileged catalog calls.
type ProductInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Category    Category        `json:"category"`
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Status          string          `json:"status"`
	DeliveryAddress string          `json:"delivery_address"`
	Items           []OrderItem     `json:"items"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

type OrderItem struct {
	ProductID int64           `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Order status values are owned by the backend; the client only displays
// them and submits transitions.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)
