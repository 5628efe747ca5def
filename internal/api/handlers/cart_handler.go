package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/medicine-checkout-service/internal/api/middleware"
	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
	"github.com/Cheertaboi/medicine-checkout-service/internal/service"
)

type AddItemRequest struct {
	models.Product
	Quantity      *int `json:"quantity,omitempty"`
	StripQuantity *int `json:"strip_quantity,omitempty"`
}

type UpdateItemRequest struct {
	Quantity      *int `json:"quantity,omitempty"`
	StripQuantity *int `json:"strip_quantity,omitempty"`
}

type CartResponse struct {
	Items    []models.CartItem `json:"items"`
	Count    int               `json:"count"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type CartHandler struct {
	carts *service.CartStores
}

func NewCartHandler(carts *service.CartStores) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) store(r *http.Request) *service.CartStore {
	return h.carts.For(middleware.SessionID(r.Context()))
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int) {
	items, err := h.store(r).Items(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, status, CartResponse{
		Items:    items,
		Count:    len(items),
		Subtotal: models.Subtotal(items),
	})
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK)
}

// GetCount handles GET /cart/count
func (h *CartHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.store(r).Count(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// AddItem handles POST /cart/items
// omitted quantities default to 1
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "id is required")
		return
	}
	if req.Price.IsNegative() || (req.DiscountPrice != nil && req.DiscountPrice.IsNegative()) {
		respondError(w, http.StatusBadRequest, "invalid_product", "prices must not be negative")
		return
	}

	qty, strip := 1, 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if req.StripQuantity != nil {
		strip = *req.StripQuantity
	}

	n, err := h.store(r).AddOrUpdate(r.Context(), req.Product, qty, strip)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CountResponse{Count: n})
}

// UpdateItem handles PATCH /cart/items/{id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.Quantity == nil && req.StripQuantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "quantity or strip_quantity required")
		return
	}

	store := h.store(r)
	if req.Quantity != nil {
		if err := store.SetQuantity(r.Context(), id, *req.Quantity); err != nil {
			respondServiceError(w, err)
			return
		}
	}
	if req.StripQuantity != nil {
		if err := store.SetStripQuantity(r.Context(), id, *req.StripQuantity); err != nil {
			respondServiceError(w, err)
			return
		}
	}
	h.respondCart(w, r, http.StatusOK)
}

// RemoveItem handles DELETE /cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.store(r).Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.store(r).Clear(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Items: []models.CartItem{}, Subtotal: decimal.Zero})
}
