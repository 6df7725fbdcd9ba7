package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GonzanDev/sellos-pro/internal/domain"
	"github.com/GonzanDev/sellos-pro/internal/payment"
	"go.uber.org/zap"
)

var (
	ErrSubmissionInFlight = errors.New("a submission for this cart is already in flight")
	ErrSubmissionNotFound = errors.New("submission not found")
)

// PreferenceClient is the outbound payment-preference collaborator.
type PreferenceClient interface {
	CreatePreference(ctx context.Context, req *payment.PreferenceRequest) (*payment.Preference, error)
}

// SubmissionRepository stores submission records durably. The service keeps
// working off its in-memory attempts when no repository is configured.
type SubmissionRepository interface {
	GetByKey(ctx context.Context, key string) (*SubmissionRecord, error)
	Create(ctx context.Context, record *SubmissionRecord) error
	SetResult(ctx context.Context, key string, status SubmissionStatus, preferenceID, redirectURL string) error
}

type attempt struct {
	status     SubmissionStatus
	preference *payment.Preference
}

// Service runs the checkout submission flow: validate buyer and cart, then
// create at most one payment preference per distinct cart+buyer submission.
// The in-flight guard is explicit; rapid repeated submission of the same
// valid cart never dispatches twice.
type Service struct {
	payments PreferenceClient
	repo     SubmissionRepository
	logger   *zap.Logger
	timeout  time.Duration

	mu       sync.Mutex
	attempts map[string]*attempt
}

func NewService(payments PreferenceClient, repo SubmissionRepository, logger *zap.Logger, timeout time.Duration) *Service {
	return &Service{
		payments: payments,
		repo:     repo,
		logger:   logger,
		timeout:  timeout,
		attempts: make(map[string]*attempt),
	}
}

// Submit validates and, when valid, creates the payment preference. It
// returns field errors for validation failures. A concurrent submit for the
// same key gets ErrSubmissionInFlight; a repeat of an already succeeded
// submission returns the stored preference without a new outbound call. A
// failed attempt stays failed until the cart or buyer changes (new key) or
// the caller explicitly re-triggers, which starts a fresh attempt.
func (s *Service) Submit(ctx context.Context, cart *domain.Cart, buyer BuyerInfo) (*payment.Preference, FieldErrors, error) {
	if fieldErrors := Validate(cart, buyer); fieldErrors != nil {
		return nil, fieldErrors, nil
	}

	key := SubmissionKey(cart, buyer)

	s.mu.Lock()
	if a, ok := s.attempts[key]; ok {
		switch a.status {
		case StatusInFlight:
			s.mu.Unlock()
			return nil, nil, ErrSubmissionInFlight
		case StatusSucceeded:
			pref := a.preference
			s.mu.Unlock()
			return pref, nil, nil
		}
	}
	s.attempts[key] = &attempt{status: StatusInFlight}
	s.mu.Unlock()

	// A durable record from an earlier process may already hold the result.
	if prior := s.lookupDurable(ctx, key); prior != nil {
		s.finish(key, StatusSucceeded, prior)
		return prior, nil, nil
	}
	s.persistInFlight(ctx, key, cart)

	pref, err := s.createPreference(ctx, cart, buyer, key)
	if err != nil {
		s.logger.Warn("preference creation failed", zap.String("key", key), zap.Error(err))
		s.finish(key, StatusFailed, nil)
		s.persistResult(ctx, key, StatusFailed, "", "")
		return nil, nil, fmt.Errorf("create preference: %w", err)
	}

	s.finish(key, StatusSucceeded, pref)
	s.persistResult(ctx, key, StatusSucceeded, pref.ID, pref.RedirectURL)
	return pref, nil, nil
}

// Reset discards the attempt for a cart+buyer combination, the explicit
// reset signal after cart contents change.
func (s *Service) Reset(cart *domain.Cart, buyer BuyerInfo) {
	key := SubmissionKey(cart, buyer)
	s.mu.Lock()
	delete(s.attempts, key)
	s.mu.Unlock()
}

// Status reports the current state of a submission attempt.
func (s *Service) Status(cart *domain.Cart, buyer BuyerInfo) SubmissionStatus {
	key := SubmissionKey(cart, buyer)
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attempts[key]; ok {
		return a.status
	}
	return StatusIdle
}

func (s *Service) createPreference(ctx context.Context, cart *domain.Cart, buyer BuyerInfo, key string) (*payment.Preference, error) {
	items := make([]payment.PreferenceItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, payment.PreferenceItem{
			Title:     line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.payments.CreatePreference(callCtx, &payment.PreferenceRequest{
		Items:             items,
		Payer:             &payment.Payer{Name: buyer.Name, Contact: buyer.Contact},
		ExternalReference: cart.SessionID,
	})
}

func (s *Service) finish(key string, status SubmissionStatus, pref *payment.Preference) {
	s.mu.Lock()
	s.attempts[key] = &attempt{status: status, preference: pref}
	s.mu.Unlock()
}

func (s *Service) lookupDurable(ctx context.Context, key string) *payment.Preference {
	if s.repo == nil {
		return nil
	}
	record, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSubmissionNotFound) {
			s.logger.Warn("submission lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	if record.Status != StatusSucceeded {
		return nil
	}
	return &payment.Preference{ID: record.PreferenceID, RedirectURL: record.RedirectURL}
}

func (s *Service) persistInFlight(ctx context.Context, key string, cart *domain.Cart) {
	if s.repo == nil {
		return
	}
	err := s.repo.Create(ctx, &SubmissionRecord{
		Key:       key,
		SessionID: cart.SessionID,
		Status:    StatusInFlight,
		Amount:    cart.Total(),
	})
	if err != nil {
		s.logger.Warn("submission record create failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) persistResult(ctx context.Context, key string, status SubmissionStatus, preferenceID, redirectURL string) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SetResult(ctx, key, status, preferenceID, redirectURL); err != nil {
		s.logger.Warn("submission record update failed", zap.String("key", key), zap.Error(err))
	}
}
