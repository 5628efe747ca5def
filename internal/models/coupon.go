package models

import "github.com/shopspring/decimal"

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// Coupon is a compiled-in catalog entry. Zero MinOrderValue and
// MaxUsagePerUser mean no constraint.
type Coupon struct {
	Code            string
	Type            DiscountType
	Discount        decimal.Decimal
	MaxDiscount     *decimal.Decimal
	MinOrderValue   decimal.Decimal
	MaxUsagePerUser int
	Description     string
}

// CouponResult is what a successful coupon evaluation yields.
type CouponResult struct {
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	NormalizedCode string          `json:"code"`
}
