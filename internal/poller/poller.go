package poller

import (
	"context"
	"encoding/json"

	"github.com/GonzanDev/sellos-pro/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CartClearer is the slice of the cart store the poller needs.
type CartClearer interface {
	Clear(ctx context.Context, sessionID string) (*domain.Cart, error)
}

// Poller consumes payment events and empties the paying session's cart, so
// a buyer coming back from the payment redirect finds their cart cleared.
type Poller struct {
	carts  CartClearer
	reader *kafka.Reader
	logger *zap.Logger
}

func NewPoller(carts CartClearer, logger *zap.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "payment-events",
		GroupID:  "storefront-cart-clearer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{carts: carts, reader: reader, logger: logger}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("error reading payment event", zap.Error(err))
			continue
		}
		p.handleMessage(ctx, m.Value)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Error("error closing reader", zap.Error(err))
	}
}

func (p *Poller) handleMessage(ctx context.Context, value []byte) {
	var payload map[string]interface{}
	if err := json.Unmarshal(value, &payload); err != nil {
		p.logger.Error("error parsing payment event", zap.Error(err))
		return
	}

	sessionID, ok := payload["session_id"].(string)
	if !ok || sessionID == "" {
		// Events without a session reference have no cart to clear.
		p.logger.Info("payment event without session reference, skipping")
		return
	}

	if _, err := p.carts.Clear(ctx, sessionID); err != nil {
		p.logger.Error("failed to clear cart after payment",
			zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	p.logger.Info("cart cleared after confirmed payment",
		zap.String("session_id", sessionID))
}
