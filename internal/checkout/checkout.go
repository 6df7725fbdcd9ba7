package checkout

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/GonzanDev/sellos-pro/internal/domain"
)

type BuyerInfo struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	PickupAck bool   `json:"pickup_ack"`
}

// SubmissionStatus tracks one submission attempt through its lifecycle.
// IN_FLIGHT is the guard that prevents duplicate preference dispatch.
type SubmissionStatus string

const (
	StatusIdle      SubmissionStatus = "IDLE"
	StatusInFlight  SubmissionStatus = "IN_FLIGHT"
	StatusSucceeded SubmissionStatus = "SUCCEEDED"
	StatusFailed    SubmissionStatus = "FAILED"
)

func (s SubmissionStatus) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

func (s SubmissionStatus) String() string {
	return string(s)
}

// FieldErrors maps a buyer/cart field to its validation message.
type FieldErrors map[string]string

// Validate recomputes the field-level errors for a submission. Empty result
// means the submission may proceed.
func Validate(cart *domain.Cart, buyer BuyerInfo) FieldErrors {
	fieldErrors := make(FieldErrors)

	if strings.TrimSpace(buyer.Name) == "" {
		fieldErrors["name"] = "buyer name is required"
	}
	if strings.TrimSpace(buyer.Contact) == "" {
		fieldErrors["contact"] = "buyer contact is required"
	}
	if !buyer.PickupAck {
		fieldErrors["pickup_ack"] = "pickup terms must be acknowledged"
	}
	if cart == nil || len(cart.Lines) == 0 {
		fieldErrors["cart"] = "cart is empty"
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// SubmissionKey derives the identity of one distinct cart+buyer submission.
// Any change to the cart contents or the buyer fields yields a new key and
// with it a fresh submission attempt.
func SubmissionKey(cart *domain.Cart, buyer BuyerInfo) string {
	lines := make([]string, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, fmt.Sprintf("%d|%s|%d|%g",
			line.ProductID, domain.Fingerprint(line.Customization), line.Quantity, line.UnitPrice))
	}
	sort.Strings(lines)

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%t\x00", buyer.Name, buyer.Contact, buyer.PickupAck)
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SubmissionRecord is the durable trace of one submission attempt, keyed by
// the submission key.
type SubmissionRecord struct {
	Key          string
	SessionID    string
	Status       SubmissionStatus
	PreferenceID string
	RedirectURL  string
	Amount       float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
