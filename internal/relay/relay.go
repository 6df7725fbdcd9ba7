package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GonzanDev/sellos-pro/internal/metrics"
	"go.uber.org/zap"
)

// Notification is the provider's callback payload. Only the event kind and
// the payment identifier matter here; anything else rides along untouched.
type Notification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	ExternalReference string `json:"external_reference,omitempty"`
}

// PaymentEvent is what the relay emits onto the event stream for each
// confirmed payment.
type PaymentEvent struct {
	PaymentID  string          `json:"payment_id"`
	SessionID  string          `json:"session_id,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}

type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

type Publisher interface {
	Publish(ctx context.Context, event PaymentEvent) error
}

// Relay processes asynchronous payment notifications. A payload that fails
// to parse is the only error it reports; once parsed, every downstream
// failure is logged and swallowed so the provider always gets its ack and
// never retry-storms the endpoint.
type Relay struct {
	notifier  Notifier
	publisher Publisher
	recipient string
	logger    *zap.Logger
}

func NewRelay(notifier Notifier, publisher Publisher, recipient string, logger *zap.Logger) *Relay {
	return &Relay{
		notifier:  notifier,
		publisher: publisher,
		recipient: recipient,
		logger:    logger,
	}
}

// Process handles one notification payload. A non-nil error means the
// payload itself was unreadable; the caller maps that to HTTP 500.
func (r *Relay) Process(ctx context.Context, payload []byte) error {
	metrics.WebhooksReceived.Inc()

	var notification Notification
	if err := json.Unmarshal(payload, &notification); err != nil {
		return fmt.Errorf("parse notification: %w", err)
	}

	if notification.Type != "payment" || notification.Data.ID == "" {
		r.logger.Info("ignoring non-payment notification",
			zap.String("type", notification.Type))
		return nil
	}

	r.logger.Info("payment confirmed",
		zap.String("payment_id", notification.Data.ID),
		zap.String("session_id", notification.ExternalReference))

	body := fmt.Sprintf("Payment confirmed. id=%s\n%s", notification.Data.ID, payload)
	if err := r.notifier.Send(ctx, r.recipient, body); err != nil {
		metrics.NotificationsFailed.Inc()
		r.logger.Error("merchant notification failed",
			zap.String("payment_id", notification.Data.ID), zap.Error(err))
	} else {
		metrics.NotificationsSent.Inc()
	}

	if r.publisher != nil {
		event := PaymentEvent{
			PaymentID:  notification.Data.ID,
			SessionID:  notification.ExternalReference,
			ReceivedAt: time.Now(),
			Payload:    json.RawMessage(payload),
		}
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.Error("payment event publish failed",
				zap.String("payment_id", notification.Data.ID), zap.Error(err))
		} else {
			metrics.PaymentEventsPublished.Inc()
		}
	}

	return nil
}
