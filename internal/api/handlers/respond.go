package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Cheertaboi/medicine-checkout-service/internal/repository"
	"github.com/Cheertaboi/medicine-checkout-service/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// errorStatus maps a service or repository error to an HTTP status and a
// stable error code. Specific causes are checked before the wrappers that
// carry them.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest, "empty_cart"
	case errors.Is(err, service.ErrMissingAddress):
		return http.StatusBadRequest, "missing_address"
	case errors.Is(err, service.ErrMissingPrescription):
		return http.StatusBadRequest, "missing_prescription"
	case errors.Is(err, service.ErrInvalidCoupon):
		return http.StatusUnprocessableEntity, "invalid_coupon"
	case errors.Is(err, service.ErrMinOrderNotMet):
		return http.StatusUnprocessableEntity, "min_order_not_met"
	case errors.Is(err, service.ErrItemNotInCart), errors.Is(err, repository.ErrOrderNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrCheckoutInProgress):
		return http.StatusConflict, "checkout_in_progress"
	case errors.Is(err, service.ErrIllegalTransition):
		return http.StatusConflict, "checkout_completed"
	case errors.Is(err, repository.ErrCouponUsageExhausted):
		return http.StatusConflict, "coupon_usage_exhausted"
	case errors.Is(err, repository.ErrInsufficientWallet):
		return http.StatusConflict, "insufficient_wallet"
	case errors.Is(err, service.ErrOrderPersistence):
		return http.StatusBadGateway, "order_persistence_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	respondError(w, status, code, msg)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
