package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"food-order-service/internal/models"
	"food-order-service/internal/promo"
)

type fakeCatalog map[int64]models.MenuItem

func (f fakeCatalog) GetMenuItems(_ context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	out := make(map[int64]models.MenuItem)
	for _, id := range ids {
		if mi, ok := f[id]; ok {
			out[id] = mi
		}
	}
	return out, nil
}

type fakePromos map[string]*models.PromoCode

func (f fakePromos) GetByCode(_ context.Context, code string) (*models.PromoCode, error) {
	return f[code], nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		1: {ID: 1, Name: "Plov", Price: dec("1000"), IsActive: true},
		2: {ID: 2, Name: "Lagman", Price: dec("500"), IsActive: true},
		3: {ID: 3, Name: "Retired dish", Price: dec("700"), IsActive: false},
		4: {ID: 4, Name: "Samsa", Price: dec("0.335"), IsActive: true},
	}
}

func TestPrice_EmptyCart(t *testing.T) {
	c := NewCalculator(testCatalog(), fakePromos{})
	q, err := c.Price(context.Background(), nil, "", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !q.Subtotal.IsZero() || !q.Discount.IsZero() || !q.Total.IsZero() {
		t.Errorf("empty cart: got %s/%s/%s, want 0/0/0", q.Subtotal, q.Discount, q.Total)
	}
	if !q.Promo.Valid {
		t.Error("no-promo path must be valid")
	}
}

func TestPrice_PercentPromoEndToEnd(t *testing.T) {
	promos := fakePromos{"SAVE10": {
		Code: "SAVE10", Kind: models.KindPercent, Value: dec("10"), Active: true,
		MinSubtotal: decimal.NewNullDecimal(dec("0")),
	}}
	c := NewCalculator(testCatalog(), promos)

	reqs := []ItemRequest{{MenuItemID: 1, Quantity: 2}, {MenuItemID: 2, Quantity: 1}}
	q, err := c.Price(context.Background(), reqs, "SAVE10", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !q.Subtotal.Equal(dec("2500")) {
		t.Errorf("subtotal = %s, want 2500", q.Subtotal)
	}
	if !q.Discount.Equal(dec("250")) {
		t.Errorf("discount = %s, want 250", q.Discount)
	}
	if !q.Total.Equal(dec("2250")) {
		t.Errorf("total = %s, want 2250", q.Total)
	}
	if len(q.Lines) != 2 || q.Lines[0].Name != "Plov" || q.Lines[0].Quantity != 2 {
		t.Errorf("unexpected lines: %+v", q.Lines)
	}
}

func TestPrice_PerLineRounding(t *testing.T) {
	// 0.335 * 3 = 1.005, rounded per line to 1.01 before summing
	c := NewCalculator(testCatalog(), fakePromos{})
	q, err := c.Price(context.Background(), []ItemRequest{{MenuItemID: 4, Quantity: 3}}, "", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !q.Subtotal.Equal(dec("1.01")) {
		t.Errorf("subtotal = %s, want 1.01", q.Subtotal)
	}
}

func TestPrice_RejectedPromoIsSoft(t *testing.T) {
	promos := fakePromos{"DEAD": {Code: "DEAD", Kind: models.KindPercent, Value: dec("10"), Active: false}}
	c := NewCalculator(testCatalog(), promos)

	q, err := c.Price(context.Background(), []ItemRequest{{MenuItemID: 2, Quantity: 2}}, "DEAD", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if q.Promo.Valid || q.Promo.Reason != promo.ReasonInactive {
		t.Errorf("promo result = %+v, want inactive rejection", q.Promo)
	}
	if !q.Discount.IsZero() || !q.Total.Equal(dec("1000")) {
		t.Errorf("got discount %s total %s, want 0 and 1000", q.Discount, q.Total)
	}
}

func TestPrice_UnknownCode(t *testing.T) {
	c := NewCalculator(testCatalog(), fakePromos{})
	q, err := c.Price(context.Background(), []ItemRequest{{MenuItemID: 1, Quantity: 1}}, "NOPE", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if q.Promo.Valid || q.Promo.Reason != promo.ReasonCodeNotFound {
		t.Errorf("promo result = %+v, want code_not_found", q.Promo)
	}
}

func TestPrice_FixedAmountClampsTotalAtZero(t *testing.T) {
	promos := fakePromos{"BIG": {Code: "BIG", Kind: models.KindFixedAmount, Value: dec("99999"), Active: true}}
	c := NewCalculator(testCatalog(), promos)

	q, err := c.Price(context.Background(), []ItemRequest{{MenuItemID: 2, Quantity: 1}}, "BIG", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !q.Discount.Equal(dec("500")) {
		t.Errorf("discount = %s, want clamped 500", q.Discount)
	}
	if !q.Total.IsZero() {
		t.Errorf("total = %s, want 0", q.Total)
	}
}

func TestPrice_InvalidItems(t *testing.T) {
	c := NewCalculator(testCatalog(), fakePromos{})

	_, err := c.Price(context.Background(), []ItemRequest{{MenuItemID: 99, Quantity: 1}}, "", time.Now())
	if !errors.Is(err, ErrInvalidLineItem) {
		t.Errorf("missing item: got %v, want ErrInvalidLineItem", err)
	}

	_, err = c.Price(context.Background(), []ItemRequest{{MenuItemID: 3, Quantity: 1}}, "", time.Now())
	if !errors.Is(err, ErrInvalidLineItem) {
		t.Errorf("inactive item: got %v, want ErrInvalidLineItem", err)
	}

	_, err = c.Price(context.Background(), []ItemRequest{{MenuItemID: 1, Quantity: 0}}, "", time.Now())
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero qty: got %v, want ErrInvalidQuantity", err)
	}

	_, err = c.Price(context.Background(), []ItemRequest{{MenuItemID: 1, Quantity: -2}}, "", time.Now())
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("negative qty: got %v, want ErrInvalidQuantity", err)
	}
}

func TestPrice_Deterministic(t *testing.T) {
	promos := fakePromos{"SAVE10": {Code: "SAVE10", Kind: models.KindPercent, Value: dec("10"), Active: true}}
	c := NewCalculator(testCatalog(), promos)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reqs := []ItemRequest{{MenuItemID: 1, Quantity: 2}, {MenuItemID: 4, Quantity: 3}}

	a, err := c.Price(context.Background(), reqs, "SAVE10", now)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Price(context.Background(), reqs, "SAVE10", now)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Subtotal.Equal(b.Subtotal) || !a.Discount.Equal(b.Discount) || !a.Total.Equal(b.Total) {
		t.Errorf("not deterministic: %v vs %v", a.PricingResult, b.PricingResult)
	}
}
