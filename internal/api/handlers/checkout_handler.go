package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Cheertaboi/medicine-checkout-service/internal/api/middleware"
	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
	"github.com/Cheertaboi/medicine-checkout-service/internal/service"
)

type CheckoutRequestBody struct {
	AddressID       string `json:"address_id,omitempty"`
	CouponCode      string `json:"coupon_code,omitempty"`
	UseWallet       bool   `json:"use_wallet"`
	PrescriptionURL string `json:"prescription_url,omitempty"`
	PaymentMethod   string `json:"payment_method,omitempty"`
}

type CheckoutHandler struct {
	checkout *service.CheckoutService
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout *service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

// Checkout handles POST /checkout
// an empty address_id falls back to the user's default address
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestBody
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	ctx := r.Context()
	res, err := h.checkout.Checkout(ctx, models.CheckoutRequest{
		UserID:          middleware.UserID(ctx),
		SessionID:       middleware.SessionID(ctx),
		AddressID:       req.AddressID,
		CouponCode:      req.CouponCode,
		UseWallet:       req.UseWallet,
		PrescriptionURL: req.PrescriptionURL,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		if status, _ := errorStatus(err); status >= http.StatusInternalServerError {
			h.logger.Error("checkout failed",
				zap.String("user_id", middleware.UserID(ctx)),
				zap.Error(err))
		}
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// GetStatus handles GET /checkout
func (h *CheckoutHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, ok := h.checkout.Status(middleware.UserID(r.Context()))
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "no checkout yet")
		return
	}
	writeJSON(w, http.StatusOK, st)
}
