// Package promo decides whether a promo code applies to an order and how much
// it is worth. Evaluation is a pure function over a loaded promo record; the
// lookup itself belongs to the caller.
package promo

import (
	"time"

	"github.com/shopspring/decimal"

	"food-order-service/internal/models"
)

// Reason explains a rejected code. Rejection is not an error: the caller
// surfaces the reason and prices the order with a zero discount.
type Reason string

const (
	ReasonCodeNotFound      Reason = "code_not_found"
	ReasonInactive          Reason = "inactive"
	ReasonNotStarted        Reason = "not_started"
	ReasonExpired           Reason = "expired"
	ReasonMinSubtotalNotMet Reason = "min_subtotal_not_met"
)

// Result is the outcome of evaluating one code against one subtotal.
type Result struct {
	Valid    bool
	Discount decimal.Decimal
	Reason   Reason
}

var hundred = decimal.NewFromInt(100)

// Evaluate checks p against subtotal at now. A nil p means the code was not
// found. Per-user and max-redemption limits are deliberately not checked here;
// redemption counters are bookkeeping owned by order creation.
func Evaluate(p *models.PromoCode, subtotal decimal.Decimal, now time.Time) Result {
	if p == nil {
		return Result{Discount: decimal.Zero, Reason: ReasonCodeNotFound}
	}
	if !p.Active {
		return Result{Discount: decimal.Zero, Reason: ReasonInactive}
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return Result{Discount: decimal.Zero, Reason: ReasonNotStarted}
	}
	if p.ValidTo != nil && now.After(*p.ValidTo) {
		return Result{Discount: decimal.Zero, Reason: ReasonExpired}
	}
	if p.MinSubtotal.Valid && subtotal.LessThan(p.MinSubtotal.Decimal) {
		return Result{Discount: decimal.Zero, Reason: ReasonMinSubtotalNotMet}
	}

	var discount decimal.Decimal
	switch p.Kind {
	case models.KindPercent:
		discount = subtotal.Mul(p.Value).Div(hundred).Round(2)
	default: // fixed_amount
		discount = p.Value
	}

	// total never goes negative
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return Result{Valid: true, Discount: discount}
}
