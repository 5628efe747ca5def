package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/medicine-checkout-service/internal/api/middleware"
	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
	"github.com/Cheertaboi/medicine-checkout-service/internal/service"
)

// --- Request / Response DTOs ---

type ApplyCouponRequest struct {
	CouponCode string `json:"coupon_code"`
}

type CouponResponse struct {
	IsValid  bool            `json:"is_valid"`
	Code     string          `json:"code,omitempty"`
	Discount decimal.Decimal `json:"discount"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`
	Message  string          `json:"message,omitempty"`
}

type CouponListItem struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CouponUsage is how often a user redeemed a code. Remaining is absent for
// codes without a per-user limit.
type CouponUsage struct {
	Code      string `json:"code"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
}

type UsageReader interface {
	UsageCount(ctx context.Context, couponCode, userID string) (int, error)
}

// --- Handler struct & constructor ---

type CouponHandler struct {
	carts   *service.CartStores
	coupons *service.CouponService
	catalog []models.Coupon
	usage   UsageReader
}

func NewCouponHandler(carts *service.CartStores, coupons *service.CouponService, catalog []models.Coupon, usage UsageReader) *CouponHandler {
	return &CouponHandler{carts: carts, coupons: coupons, catalog: catalog, usage: usage}
}

// --- Handlers ---

// ListCoupons handles GET /coupons
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	out := make([]CouponListItem, 0, len(h.catalog))
	for _, c := range h.catalog {
		out = append(out, CouponListItem{Code: c.Code, Description: c.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetUsage handles GET /coupons/usage
func (h *CouponHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	out := make([]CouponUsage, 0, len(h.catalog))
	for _, c := range h.catalog {
		used, err := h.usage.UsageCount(r.Context(), c.Code, userID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		u := CouponUsage{Code: c.Code, Used: used}
		if c.MaxUsagePerUser > 0 {
			remaining := c.MaxUsagePerUser - used
			if remaining < 0 {
				remaining = 0
			}
			u.Limit = c.MaxUsagePerUser
			u.Remaining = &remaining
		}
		out = append(out, u)
	}
	writeJSON(w, http.StatusOK, out)
}

// ApplyCoupon handles POST /coupons/apply
// evaluates the code against the session cart subtotal; an unusable code is
// reported with is_valid=false rather than an error status
func (h *CouponHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req ApplyCouponRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	items, err := h.carts.For(middleware.SessionID(r.Context())).Items(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	subtotal := models.Subtotal(items)

	var sel service.CouponSelection
	if err := sel.Apply(h.coupons, req.CouponCode, subtotal); err != nil {
		if errors.Is(err, service.ErrInvalidCoupon) || errors.Is(err, service.ErrMinOrderNotMet) {
			writeJSON(w, http.StatusOK, CouponResponse{
				IsValid:  false,
				Discount: decimal.Zero,
				Subtotal: subtotal,
				Total:    subtotal,
				Message:  err.Error(),
			})
			return
		}
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CouponResponse{
		IsValid:  true,
		Code:     sel.Code,
		Discount: sel.Discount,
		Subtotal: subtotal,
		Total:    service.OrderTotal(subtotal, sel.Discount),
		Message:  "coupon applied",
	})
}

// RemoveCoupon handles DELETE /coupons
func (h *CouponHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	items, err := h.carts.For(middleware.SessionID(r.Context())).Items(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	subtotal := models.Subtotal(items)

	var sel service.CouponSelection
	sel.Remove()
	writeJSON(w, http.StatusOK, CouponResponse{
		IsValid:  false,
		Discount: sel.Discount,
		Subtotal: subtotal,
		Total:    subtotal,
		Message:  "coupon removed",
	})
}
