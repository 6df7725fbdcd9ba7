package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/GonzanDev/sellos-pro/internal/checkout"
	"github.com/GonzanDev/sellos-pro/internal/domain"
	"github.com/GonzanDev/sellos-pro/internal/payment"
)

// CheckoutService runs the submission flow.
type CheckoutService interface {
	Submit(ctx context.Context, cart *domain.Cart, buyer checkout.BuyerInfo) (*payment.Preference, checkout.FieldErrors, error)
}

type CheckoutHandler struct {
	service CheckoutService
	carts   CartStore
	timeout time.Duration
}

func NewCheckoutHandler(service CheckoutService, carts CartStore, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		carts:   carts,
		timeout: timeout,
	}
}

type SubmitRequestDTO struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	PickupAck bool   `json:"pickup_ack"`
}

type SubmitResponseDTO struct {
	PreferenceID string `json:"preference_id"`
	RedirectURL  string `json:"redirect_url"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, err := h.carts.Get(ctx, getSessionID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	pref, fieldErrors, err := h.service.Submit(ctx, cart, checkout.BuyerInfo{
		Name:      req.Name,
		Contact:   req.Contact,
		PickupAck: req.PickupAck,
	})
	if fieldErrors != nil {
		respondFieldErrors(w, fieldErrors)
		return
	}
	if err != nil {
		if errors.Is(err, checkout.ErrSubmissionInFlight) {
			respondError(w, http.StatusConflict, "submission_in_flight",
				"a submission for this cart is already in progress")
			return
		}
		respondError(w, http.StatusBadGateway, "payment_unavailable",
			"could not reach the payment provider, please try again")
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponseDTO{
		PreferenceID: pref.ID,
		RedirectURL:  pref.RedirectURL,
	})
}
