package documents

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/varejo-erp/varejo-erp/internal/payterms"
)

var hundred = decimal.NewFromInt(100)

// GenerateInstallments expands a payment condition against the document issue
// date and payable total into a dated installment list.
//
// Templates are processed in sequence order: each installment is due
// DayOffset calendar days after the issue date and carries the rounded
// percentage slice of the payable total. The rounding drift is absorbed by
// the last installment so the amounts sum to the payable total exactly.
//
// The catalog should already guarantee percentages summing to 100; this is
// re-checked here and never silently normalized. Non-monotonic day offsets
// are preserved as given: output order follows template sequence, not due date.
func GenerateInstallments(cond payterms.PaymentCondition, issueDate time.Time, payableTotal decimal.Decimal) ([]Installment, error) {
	if len(cond.Templates) == 0 {
		return nil, ErrInvalidCondition
	}

	templates := make([]payterms.InstallmentTemplate, len(cond.Templates))
	copy(templates, cond.Templates)
	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].Sequence < templates[j].Sequence
	})

	sum := decimal.Zero
	for _, t := range templates {
		sum = sum.Add(t.Percentage)
	}
	if !sum.Equal(hundred) {
		return nil, ErrInconsistentCondition
	}

	installments := make([]Installment, len(templates))
	generated := decimal.Zero
	for i, t := range templates {
		amount := roundMoney(payableTotal.Mul(t.Percentage).Div(hundred))
		installments[i] = Installment{
			Sequence:        t.Sequence,
			DueDate:         issueDate.AddDate(0, 0, t.DayOffset),
			Amount:          amount,
			PaymentMethodID: t.PaymentMethodID,
			Status:          InstallmentOpen,
		}
		generated = generated.Add(amount)
	}

	// Same drift rule as allocation: the last installment absorbs the remainder.
	if drift := payableTotal.Sub(generated); !drift.IsZero() {
		last := len(installments) - 1
		installments[last].Amount = installments[last].Amount.Add(drift)
	}

	return installments, nil
}
