package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/holocommerce/storefront/internal/domain"
	"github.com/holocommerce/storefront/internal/service"
)

type Carts interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, sessionID string, items []domain.CartItem) (*domain.Cart, error)
}

type CartHandler struct {
	carts   Carts
	timeout time.Duration
}

func NewCartHandler(carts Carts, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

// Pointer fields tell a missing key apart from a zero value.
type CartItemDTO struct {
	ProductID *string `json:"product_id"`
	Quantity  *int    `json:"quantity"`
}

type UpsertCartRequestDTO struct {
	SessionID *string        `json:"session_id"`
	Items     *[]CartItemDTO `json:"items"`
}

func (d *UpsertCartRequestDTO) toDomain() (string, []domain.CartItem, error) {
	if d.SessionID == nil {
		return "", nil, &service.ValidationError{Field: "session_id", Message: "is required"}
	}
	if d.Items == nil {
		return "", nil, &service.ValidationError{Field: "items", Message: "is required"}
	}

	items := make([]domain.CartItem, len(*d.Items))
	for i, it := range *d.Items {
		if it.ProductID == nil {
			return "", nil, &service.ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "is required"}
		}
		quantity := domain.DefaultQuantity
		if it.Quantity != nil {
			quantity = *it.Quantity
		}
		items[i] = domain.CartItem{ProductID: *it.ProductID, Quantity: quantity}
	}
	return *d.SessionID, items, nil
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, chi.URLParam(r, "session_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) UpsertCart(w http.ResponseWriter, r *http.Request) {
	var req UpsertCartRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sessionID, items, err := req.toDomain()
	if err != nil {
		handleServiceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.UpsertCart(ctx, sessionID, items)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}
