package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"
)

// WebhookRelay processes one raw notification payload.
type WebhookRelay interface {
	Process(ctx context.Context, payload []byte) error
}

type WebhookHandler struct {
	relay   WebhookRelay
	timeout time.Duration
}

func NewWebhookHandler(relay WebhookRelay, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		relay:   relay,
		timeout: timeout,
	}
}

// POST /webhooks/payment
//
// Replies 200 whenever the payload could be read and parsed, even when the
// downstream notification failed: the ack means "webhook received", not
// "notification delivered". Only an unreadable payload maps to 500.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to read payload")
		return
	}

	if err := h.relay.Process(ctx, payload); err != nil {
		respondError(w, http.StatusInternalServerError, "invalid_payload", "failed to parse payload")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
