package models

import (
	"time"

	"github.com/shopspring/decimal"

	"food-order-service/internal/status"
)

// Order is a priced, persisted order. Subtotal, discount and total are a
// snapshot taken at creation time and never recomputed.
type Order struct {
	ID        int64
	Number    string
	UserID    *int64
	Status    status.Status
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	PromoCode *string
	CreatedAt time.Time
	Items     []OrderItem
}

// OrderItem is one line of an order with the menu item's name and price
// captured at the moment of ordering.
type OrderItem struct {
	ID           int64
	OrderID      int64
	MenuItemID   int64
	NameSnapshot string
	UnitPrice    decimal.Decimal
	Quantity     int
}

// MenuItem is the catalog read model consumed by pricing.
type MenuItem struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	IsActive bool
}
