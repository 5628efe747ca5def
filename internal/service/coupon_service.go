package service

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
)

var (
	ErrInvalidCoupon  = errors.New("invalid coupon code")
	ErrMinOrderNotMet = errors.New("order total below coupon minimum")
)

var hundred = decimal.NewFromInt(100)

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// DefaultCoupons is the compiled-in catalog.
var DefaultCoupons = []models.Coupon{
	{
		Code:            "WELCOME10",
		Type:            models.DiscountPercent,
		Discount:        decimal.NewFromInt(10),
		MaxDiscount:     decimalPtr(100),
		MaxUsagePerUser: 1,
		Description:     "10% off your first order, up to 100",
	},
	{
		Code:          "SAVE20",
		Type:          models.DiscountPercent,
		Discount:      decimal.NewFromInt(20),
		MaxDiscount:   decimalPtr(250),
		MinOrderValue: decimal.NewFromInt(500),
		Description:   "20% off orders above 500, up to 250",
	},
	{
		Code:        "FLAT50",
		Type:        models.DiscountFixed,
		Discount:    decimal.NewFromInt(50),
		Description: "flat 50 off",
	},
}

// CouponService evaluates codes against a static catalog. It holds no
// mutable state and is safe for concurrent use.
type CouponService struct {
	catalog map[string]models.Coupon
}

func NewCouponService(coupons []models.Coupon) *CouponService {
	catalog := make(map[string]models.Coupon, len(coupons))
	for _, c := range coupons {
		catalog[normalizeCode(c.Code)] = c
	}
	return &CouponService{catalog: catalog}
}

// Lookup finds a catalog entry by case-insensitive code.
func (s *CouponService) Lookup(code string) (models.Coupon, bool) {
	norm := normalizeCode(code)
	if norm == "" {
		return models.Coupon{}, false
	}
	c, ok := s.catalog[norm]
	return c, ok
}

// Apply computes the discount a code grants on subtotal.
func (s *CouponService) Apply(code string, subtotal decimal.Decimal) (models.CouponResult, error) {
	norm := normalizeCode(code)
	if norm == "" {
		return models.CouponResult{}, ErrInvalidCoupon
	}
	c, ok := s.catalog[norm]
	if !ok {
		return models.CouponResult{}, ErrInvalidCoupon
	}
	if c.MinOrderValue.IsPositive() && subtotal.LessThan(c.MinOrderValue) {
		return models.CouponResult{}, ErrMinOrderNotMet
	}

	return models.CouponResult{
		DiscountAmount: discountFor(c, subtotal),
		NormalizedCode: norm,
	}, nil
}

// discountFor does not clamp fixed discounts to the subtotal; the order
// total is floored at zero when the payload is built.
func discountFor(c models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case models.DiscountPercent:
		d := subtotal.Mul(c.Discount).Div(hundred).Floor()
		if c.MaxDiscount != nil && d.GreaterThan(*c.MaxDiscount) {
			d = *c.MaxDiscount
		}
		return d
	case models.DiscountFixed:
		return c.Discount
	default:
		return decimal.Zero
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponSelection is the coupon currently applied to a checkout.
type CouponSelection struct {
	Code     string
	Discount decimal.Decimal
}

// Apply evaluates code and stores the result. On failure the previous
// selection is kept.
func (sel *CouponSelection) Apply(svc *CouponService, code string, subtotal decimal.Decimal) error {
	res, err := svc.Apply(code, subtotal)
	if err != nil {
		return err
	}
	sel.Code = res.NormalizedCode
	sel.Discount = res.DiscountAmount
	return nil
}

// Remove resets the selection. Calling it repeatedly is fine.
func (sel *CouponSelection) Remove() {
	sel.Code = ""
	sel.Discount = decimal.Zero
}
