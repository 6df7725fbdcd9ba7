package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/GonzanDev/sellos-pro/internal/catalog"
	"github.com/GonzanDev/sellos-pro/internal/catalog/repository"
	"github.com/GonzanDev/sellos-pro/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CartStore is the slice of the cart store the HTTP layer consumes.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Add(ctx context.Context, sessionID string, product domain.Product, quantity int, customization domain.Customization) (*domain.Cart, error)
	Remove(ctx context.Context, sessionID, lineID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*domain.Cart, error)
	Replace(ctx context.Context, sessionID, lineID string, line domain.CartLine) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) (*domain.Cart, error)
	SetOpen(ctx context.Context, sessionID string, open bool) (*domain.Cart, error)
}

type CartHandler struct {
	carts   CartStore
	catalog Catalog
	timeout time.Duration
}

func NewCartHandler(carts CartStore, catalog Catalog, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		timeout: timeout,
	}
}

type CartResponse struct {
	Lines []domain.CartLine `json:"lines"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
	Open  bool              `json:"open"`
}

func cartResponse(cart *domain.Cart) CartResponse {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return CartResponse{
		Lines: lines,
		Count: cart.Count(),
		Total: cart.Total(),
		Open:  cart.Open,
	}
}

type AddLineRequestDTO struct {
	ProductID     int64                `json:"product_id"`
	Quantity      int                  `json:"quantity"`
	Customization domain.Customization `json:"customization"`
}

type UpdateLineRequestDTO struct {
	Quantity      *int                 `json:"quantity"`
	Customization domain.Customization `json:"customization"`
}

type SetOpenRequestDTO struct {
	Open bool `json:"open"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.Get(ctx, getSessionID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}

	if fieldErrors := catalog.ValidateCustomization(product.Category, req.Customization); fieldErrors != nil {
		respondFieldErrors(w, fieldErrors)
		return
	}

	cart, err := h.carts.Add(ctx, getSessionID(r.Context()), *product, req.Quantity, req.Customization)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}
	respondJSON(w, http.StatusCreated, cartResponse(cart))
}

func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lineID := chi.URLParam(r, "lineID")

	var req UpdateLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sessionID := getSessionID(r.Context())

	// A customization payload replaces the line; a bare quantity just
	// updates it (and removes the line when it drops below 1).
	if req.Customization != nil {
		h.replaceLine(w, ctx, sessionID, lineID, req)
		return
	}

	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "quantity or customization is required")
		return
	}

	cart, err := h.carts.UpdateQuantity(ctx, sessionID, lineID, *req.Quantity)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) replaceLine(w http.ResponseWriter, ctx context.Context, sessionID, lineID string, req UpdateLineRequestDTO) {
	current, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	var existing *domain.CartLine
	for i := range current.Lines {
		if current.Lines[i].LineID == lineID {
			existing = &current.Lines[i]
			break
		}
	}
	if existing == nil {
		// Unknown line: replace is a no-op, return the cart unchanged.
		respondJSON(w, http.StatusOK, cartResponse(current))
		return
	}

	// The edited customization still has to satisfy the product's schema.
	if product, err := h.catalog.GetProduct(ctx, existing.ProductID); err == nil {
		if fieldErrors := catalog.ValidateCustomization(product.Category, req.Customization); fieldErrors != nil {
			respondFieldErrors(w, fieldErrors)
			return
		}
	}

	quantity := existing.Quantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.carts.Replace(ctx, sessionID, lineID, domain.CartLine{
		ProductID:     existing.ProductID,
		Name:          existing.Name,
		UnitPrice:     existing.UnitPrice,
		Quantity:      quantity,
		Customization: req.Customization,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.Remove(ctx, getSessionID(r.Context()), chi.URLParam(r, "lineID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.Clear(ctx, getSessionID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SetOpenRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, err := h.carts.SetOpen(ctx, getSessionID(r.Context()), req.Open)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(cart))
}
