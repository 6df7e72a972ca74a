package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promo kinds.
const (
	KindPercent     = "percent"
	KindFixedAmount = "fixed_amount"
)

// PromoCode is a redeemable discount token. Limits (MaxRedemptions,
// PerUserLimit) are stored for accounting but not checked when a code is
// evaluated; CurrentRedemptions is only ever incremented at order creation.
type PromoCode struct {
	ID                 int64
	Code               string
	Kind               string
	Value              decimal.Decimal
	MinSubtotal        decimal.NullDecimal
	Active             bool
	ValidFrom          *time.Time
	ValidTo            *time.Time
	MaxRedemptions     *int
	CurrentRedemptions int
	PerUserLimit       *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// KnownKind reports whether k is a supported discount kind.
func KnownKind(k string) bool {
	return k == KindPercent || k == KindFixedAmount
}
