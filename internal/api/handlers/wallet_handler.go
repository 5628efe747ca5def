package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/medicine-checkout-service/internal/api/middleware"
	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
	"github.com/Cheertaboi/medicine-checkout-service/internal/service"
)

type ToggleWalletRequest struct {
	UseWallet  bool   `json:"use_wallet"`
	CouponCode string `json:"coupon_code,omitempty"`
}

type WalletResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// WalletPreview is the effect of the toggled flag on the session cart.
type WalletPreview struct {
	UseWallet     bool            `json:"use_wallet"`
	Balance       decimal.Decimal `json:"balance"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	WalletAmount  decimal.Decimal `json:"wallet_amount"`
	PayableAmount decimal.Decimal `json:"payable_amount"`
}

type WalletHandler struct {
	wallets service.WalletRepo
	carts   *service.CartStores
	coupons *service.CouponService
}

func NewWalletHandler(wallets service.WalletRepo, carts *service.CartStores, coupons *service.CouponService) *WalletHandler {
	return &WalletHandler{wallets: wallets, carts: carts, coupons: coupons}
}

// GetWallet handles GET /wallet
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	balance, err := h.wallets.Balance(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WalletResponse{Balance: balance})
}

// ToggleWallet handles POST /wallet/toggle
// the body carries the current flag; the response carries the flipped one
func (h *WalletHandler) ToggleWallet(w http.ResponseWriter, r *http.Request) {
	var req ToggleWalletRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	ctx := r.Context()
	useWallet := service.ToggleWallet(req.UseWallet)

	balance, err := h.wallets.Balance(ctx, middleware.UserID(ctx))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	items, err := h.carts.For(middleware.SessionID(ctx)).Items(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	subtotal := models.Subtotal(items)

	var sel service.CouponSelection
	if req.CouponCode != "" {
		if err := sel.Apply(h.coupons, req.CouponCode, subtotal); err != nil {
			respondServiceError(w, err)
			return
		}
	}
	total := service.OrderTotal(subtotal, sel.Discount)

	writeJSON(w, http.StatusOK, WalletPreview{
		UseWallet:     useWallet,
		Balance:       balance,
		TotalAmount:   total,
		WalletAmount:  service.WalletDeduction(total, balance, useWallet),
		PayableAmount: service.Payable(total, balance, useWallet),
	})
}
