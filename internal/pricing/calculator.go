// Package pricing turns a cart into an order total: catalog lookup, per-line
// subtotals, promo discount, final total.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"food-order-service/internal/models"
	"food-order-service/internal/promo"
)

var (
	// ErrInvalidLineItem marks a cart line referencing a missing or inactive
	// menu item. The whole pricing operation is rejected.
	ErrInvalidLineItem = errors.New("invalid line item")
	// ErrInvalidQuantity marks a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Catalog resolves menu items for pricing.
type Catalog interface {
	GetMenuItems(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error)
}

// PromoStore reads one promo record by exact code. A nil record with a nil
// error means the code does not exist.
type PromoStore interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
}

// ItemRequest is one unpriced cart line as submitted by the client.
type ItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// Quote is the full pricing outcome: totals, the resolved lines with price
// snapshots, and the promo evaluation (which may be a soft rejection).
type Quote struct {
	models.PricingResult
	Promo promo.Result
	Lines []models.LineItem
}

// Calculator prices carts. It is stateless; identical inputs yield identical
// quotes.
type Calculator struct {
	catalog Catalog
	promos  PromoStore
}

func NewCalculator(catalog Catalog, promos PromoStore) *Calculator {
	return &Calculator{catalog: catalog, promos: promos}
}

// Price resolves the requested items, sums per-line totals (each line rounded
// to 2dp before summation), applies the promo code if any, and derives the
// final total. A rejected promo is not an error: the quote carries discount 0
// and the rejection reason.
func (c *Calculator) Price(ctx context.Context, reqs []ItemRequest, code string, now time.Time) (Quote, error) {
	for _, r := range reqs {
		if r.Quantity <= 0 {
			return Quote{}, fmt.Errorf("%w: item %d qty %d", ErrInvalidQuantity, r.MenuItemID, r.Quantity)
		}
	}

	var q Quote
	subtotal := decimal.Zero
	if len(reqs) > 0 {
		ids := make([]int64, 0, len(reqs))
		for _, r := range reqs {
			ids = append(ids, r.MenuItemID)
		}
		items, err := c.catalog.GetMenuItems(ctx, ids)
		if err != nil {
			return Quote{}, fmt.Errorf("catalog lookup: %w", err)
		}
		for _, r := range reqs {
			mi, ok := items[r.MenuItemID]
			if !ok || !mi.IsActive {
				return Quote{}, fmt.Errorf("%w: item %d", ErrInvalidLineItem, r.MenuItemID)
			}
			lineTotal := mi.Price.Mul(decimal.NewFromInt(int64(r.Quantity))).Round(2)
			subtotal = subtotal.Add(lineTotal)
			q.Lines = append(q.Lines, models.LineItem{
				MenuItemID: mi.ID,
				Name:       mi.Name,
				UnitPrice:  mi.Price,
				Quantity:   r.Quantity,
			})
		}
	}

	pr, err := c.evaluatePromo(ctx, code, subtotal, now)
	if err != nil {
		return Quote{}, err
	}
	q.Promo = pr
	discount := decimal.Zero
	if q.Promo.Valid {
		discount = q.Promo.Discount
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	q.Subtotal = subtotal.Round(2)
	q.Discount = discount.Round(2)
	q.Total = total.Round(2)
	return q, nil
}

// evaluatePromo performs the single promo read and the pure evaluation. An
// empty code is the no-promo path and always succeeds with a zero discount.
func (c *Calculator) evaluatePromo(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (promo.Result, error) {
	if code == "" {
		return promo.Result{Valid: true, Discount: decimal.Zero}, nil
	}
	p, err := c.promos.GetByCode(ctx, code)
	if err != nil {
		return promo.Result{}, fmt.Errorf("promo lookup: %w", err)
	}
	return promo.Evaluate(p, subtotal, now), nil
}
