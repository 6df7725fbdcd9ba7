package cart

import (
	"context"
	"errors"
	"time"

	"github.com/GonzanDev/sellos-pro/internal/cart/persistence"
	"github.com/GonzanDev/sellos-pro/internal/domain"
	"github.com/GonzanDev/sellos-pro/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store owns all cart mutations for the storefront. Every operation loads
// the session's cart, mutates it, and saves the full record back through the
// persistence port before returning, so the stored state always matches what
// the caller saw.
type Store struct {
	persistence persistence.Store
	logger      *zap.Logger
}

func NewStore(p persistence.Store, logger *zap.Logger) *Store {
	return &Store{
		persistence: p,
		logger:      logger,
	}
}

// Get returns the session's cart. A missing or unreadable record means an
// empty cart; a load failure is never propagated to the caller.
func (s *Store) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.load(ctx, sessionID), nil
}

// Add merges the request into an existing line when the product and the
// customization fingerprint match, otherwise appends a new line with a fresh
// line ID. It opens the cart panel. Missing fields default: price 0,
// quantity 1.
func (s *Store) Add(ctx context.Context, sessionID string, product domain.Product, quantity int, customization domain.Customization) (*domain.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	price := product.Price
	if price < 0 {
		price = 0
	}

	cart := s.load(ctx, sessionID)
	cart.Open = true

	fp := domain.Fingerprint(customization)
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == product.ID && domain.Fingerprint(cart.Lines[i].Customization) == fp {
			cart.Lines[i].Quantity += quantity
			metrics.CartMutations.WithLabelValues("merge").Inc()
			return cart, s.save(ctx, cart)
		}
	}

	cart.Lines = append(cart.Lines, domain.CartLine{
		LineID:        uuid.NewString(),
		ProductID:     product.ID,
		Name:          product.Name,
		UnitPrice:     price,
		Quantity:      quantity,
		Customization: customization,
		AddedAt:       time.Now(),
	})
	metrics.CartMutations.WithLabelValues("add").Inc()
	return cart, s.save(ctx, cart)
}

// Remove deletes the line with the given ID. Removing an absent line is a
// no-op, not an error.
func (s *Store) Remove(ctx context.Context, sessionID, lineID string) (*domain.Cart, error) {
	cart := s.load(ctx, sessionID)

	for i, line := range cart.Lines {
		if line.LineID == lineID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			metrics.CartMutations.WithLabelValues("remove").Inc()
			return cart, s.save(ctx, cart)
		}
	}
	return cart, nil
}

// UpdateQuantity sets the line's quantity. A quantity below 1 removes the
// line instead. Unknown line IDs are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return s.Remove(ctx, sessionID, lineID)
	}

	cart := s.load(ctx, sessionID)
	for i := range cart.Lines {
		if cart.Lines[i].LineID == lineID {
			cart.Lines[i].Quantity = quantity
			metrics.CartMutations.WithLabelValues("update").Inc()
			return cart, s.save(ctx, cart)
		}
	}
	return cart, nil
}

// Replace overwrites the named line's fields, keeping its line ID. Used when
// a customization is edited after the fact. If the edit makes the line
// equivalent to another line (same product, same customization fingerprint)
// the two collapse into one, summing quantities, so the cart never holds two
// interchangeable lines. Opens the cart panel. Unknown line IDs are a no-op.
func (s *Store) Replace(ctx context.Context, sessionID, lineID string, line domain.CartLine) (*domain.Cart, error) {
	cart := s.load(ctx, sessionID)

	for i := range cart.Lines {
		if cart.Lines[i].LineID == lineID {
			line.LineID = lineID
			if line.Quantity < 1 {
				line.Quantity = 1
			}
			if line.UnitPrice < 0 {
				line.UnitPrice = 0
			}
			if line.AddedAt.IsZero() {
				line.AddedAt = cart.Lines[i].AddedAt
			}
			cart.Lines[i] = line

			fp := domain.Fingerprint(line.Customization)
			for j := range cart.Lines {
				if j != i && cart.Lines[j].ProductID == line.ProductID &&
					domain.Fingerprint(cart.Lines[j].Customization) == fp {
					cart.Lines[j].Quantity += line.Quantity
					cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
					break
				}
			}

			cart.Open = true
			metrics.CartMutations.WithLabelValues("replace").Inc()
			return cart, s.save(ctx, cart)
		}
	}
	return cart, nil
}

// Clear empties the cart, used after a confirmed payment.
func (s *Store) Clear(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart := s.load(ctx, sessionID)
	cart.Lines = nil
	cart.Open = false
	metrics.CartMutations.WithLabelValues("clear").Inc()
	return cart, s.save(ctx, cart)
}

// SetOpen flips the cart panel flag; it is independent of cart contents.
func (s *Store) SetOpen(ctx context.Context, sessionID string, open bool) (*domain.Cart, error) {
	cart := s.load(ctx, sessionID)
	cart.Open = open
	return cart, s.save(ctx, cart)
}

func (s *Store) load(ctx context.Context, sessionID string) *domain.Cart {
	cart, err := s.persistence.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, persistence.ErrCartNotFound) {
			// Corrupt or unreadable record: reset to an empty cart.
			s.logger.Warn("cart load failed, starting empty",
				zap.String("session_id", sessionID), zap.Error(err))
		}
		now := time.Now()
		return &domain.Cart{
			SessionID: sessionID,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	// Older persisted shapes carried no line IDs; assign fresh ones so
	// update and remove can address the lines.
	for i := range cart.Lines {
		if cart.Lines[i].LineID == "" {
			cart.Lines[i].LineID = uuid.NewString()
		}
		if cart.Lines[i].Quantity < 1 {
			cart.Lines[i].Quantity = 1
		}
	}
	return cart
}

func (s *Store) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now()
	if err := s.persistence.Save(ctx, cart); err != nil {
		s.logger.Error("cart save failed",
			zap.String("session_id", cart.SessionID), zap.Error(err))
		return err
	}
	return nil
}
