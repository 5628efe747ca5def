package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Cheertaboi/medicine-checkout-service/internal/api/middleware"
	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
)

type OrderReader interface {
	GetOrder(ctx context.Context, userID, id string) (*models.Order, error)
}

type OrderHandler struct {
	orders OrderReader
}

func NewOrderHandler(orders OrderReader) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GetOrder handles GET /orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
