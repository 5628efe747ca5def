package handlers

import (
	"net/http"

	"github.com/Cheertaboi/medicine-checkout-service/internal/api/middleware"
	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
	"github.com/Cheertaboi/medicine-checkout-service/internal/service"
)

type AddressHandler struct {
	addresses service.AddressRepo
}

func NewAddressHandler(addresses service.AddressRepo) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// ListAddresses handles GET /addresses
func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.addresses.ListByUser(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if addrs == nil {
		addrs = []models.Address{}
	}
	writeJSON(w, http.StatusOK, addrs)
}
