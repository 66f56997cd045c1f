// Package payterms manages the payment condition catalog: named payment terms
// that describe how a payable total splits into dated installments.
package payterms

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is a way an installment can be settled (cash, card, bank slip).
type PaymentMethod struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InstallmentTemplate is one slice of a payment condition: the percentage of
// the payable total due a number of days after the document issue date.
type InstallmentTemplate struct {
	Sequence        int             `json:"sequence"`
	DayOffset       int             `json:"day_offset"`
	Percentage      decimal.Decimal `json:"percentage"`
	PaymentMethodID int64           `json:"payment_method_id"`
}

// PaymentCondition is a named payment term with its ordered templates.
type PaymentCondition struct {
	ID           int64                 `json:"id"`
	Description  string                `json:"description"`
	InterestRate decimal.Decimal       `json:"interest_rate"`
	FineRate     decimal.Decimal       `json:"fine_rate"`
	DiscountRate decimal.Decimal       `json:"discount_rate"`
	Templates    []InstallmentTemplate `json:"templates"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

var (
	// ErrNotFound indicates the condition or method does not exist.
	ErrNotFound = errors.New("payterms: not found")
	// ErrValidation indicates invalid catalog input.
	ErrValidation = errors.New("payterms: invalid input")
)

var hundred = decimal.NewFromInt(100)

// Validate enforces the catalog boundary invariants: at least one template,
// contiguous sequences starting at 1, non-negative day offsets, and
// percentages summing to exactly 100.
func (c PaymentCondition) Validate() error {
	if c.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if len(c.Templates) == 0 {
		return fmt.Errorf("%w: at least one installment template is required", ErrValidation)
	}
	sum := decimal.Zero
	for i, t := range c.Templates {
		if t.Sequence != i+1 {
			return fmt.Errorf("%w: template sequences must be contiguous starting at 1", ErrValidation)
		}
		if t.DayOffset < 0 {
			return fmt.Errorf("%w: day offset must not be negative", ErrValidation)
		}
		if !t.Percentage.IsPositive() {
			return fmt.Errorf("%w: template percentage must be positive", ErrValidation)
		}
		if t.PaymentMethodID <= 0 {
			return fmt.Errorf("%w: template payment method is required", ErrValidation)
		}
		sum = sum.Add(t.Percentage)
	}
	if !sum.Equal(hundred) {
		return fmt.Errorf("%w: template percentages must sum to exactly 100", ErrValidation)
	}
	return nil
}
