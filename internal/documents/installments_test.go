package documents

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varejo-erp/varejo-erp/internal/payterms"
)

func condition(templates ...payterms.InstallmentTemplate) payterms.PaymentCondition {
	return payterms.PaymentCondition{ID: 1, Description: "test condition", Templates: templates}
}

func template(seq, days int, pct string) payterms.InstallmentTemplate {
	return payterms.InstallmentTemplate{
		Sequence:        seq,
		DayOffset:       days,
		Percentage:      dec(pct),
		PaymentMethodID: 1,
	}
}

func TestGenerateInstallmentsThreeWaySplit(t *testing.T) {
	cond := condition(
		template(1, 0, "33.34"),
		template(2, 30, "33.33"),
		template(3, 60, "33.33"),
	)
	issue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	out, err := GenerateInstallments(cond, issue, dec("1000.00"))
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.True(t, out[0].Amount.Equal(dec("333.40")), "got %s", out[0].Amount)
	assert.True(t, out[1].Amount.Equal(dec("333.30")), "got %s", out[1].Amount)
	assert.True(t, out[2].Amount.Equal(dec("333.30")), "got %s", out[2].Amount)

	assert.Equal(t, issue, out[0].DueDate)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), out[1].DueDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), out[2].DueDate)

	sum := decimal.Zero
	for _, inst := range out {
		assert.Equal(t, InstallmentOpen, inst.Status)
		sum = sum.Add(inst.Amount)
	}
	assert.True(t, sum.Equal(dec("1000.00")), "amounts sum to %s", sum)
}

func TestGenerateInstallmentsDriftToLast(t *testing.T) {
	cond := condition(
		template(1, 0, "33.33"),
		template(2, 30, "33.33"),
		template(3, 60, "33.34"),
	)

	// 100.10 x 33.33% rounds to 33.36 twice and 33.37 for the 33.34% slice,
	// leaving one cent for the last installment to absorb.
	out, err := GenerateInstallments(cond, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), dec("100.10"))
	require.NoError(t, err)

	assert.True(t, out[0].Amount.Equal(dec("33.36")), "got %s", out[0].Amount)
	assert.True(t, out[1].Amount.Equal(dec("33.36")), "got %s", out[1].Amount)
	assert.True(t, out[2].Amount.Equal(dec("33.38")), "got %s", out[2].Amount)

	sum := out[0].Amount.Add(out[1].Amount).Add(out[2].Amount)
	assert.True(t, sum.Equal(dec("100.10")))
}

func TestGenerateInstallmentsReconcilesForAnyTotal(t *testing.T) {
	cond := condition(
		template(1, 0, "30"),
		template(2, 30, "30"),
		template(3, 60, "40"),
	)
	issue := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)

	for _, total := range []string{"0.01", "0.05", "99.99", "1234.56", "10000.03"} {
		out, err := GenerateInstallments(cond, issue, dec(total))
		require.NoError(t, err)

		sum := decimal.Zero
		for _, inst := range out {
			sum = sum.Add(inst.Amount)
		}
		assert.True(t, sum.Equal(dec(total)), "total %s reconciled to %s", total, sum)
	}
}

func TestGenerateInstallmentsSequenceOrder(t *testing.T) {
	// Templates arrive out of order; output follows sequence numbers.
	cond := condition(
		template(2, 30, "50"),
		template(1, 0, "50"),
	)

	out, err := GenerateInstallments(cond, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), dec("200.00"))
	require.NoError(t, err)
	assert.Equal(t, 1, out[0].Sequence)
	assert.Equal(t, 2, out[1].Sequence)
}

func TestGenerateInstallmentsNonMonotonicOffsetsPreserved(t *testing.T) {
	// A later sequence with an earlier due date stays in sequence order.
	cond := condition(
		template(1, 60, "50"),
		template(2, 0, "50"),
	)
	issue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	out, err := GenerateInstallments(cond, issue, dec("100.00"))
	require.NoError(t, err)
	assert.Equal(t, issue.AddDate(0, 0, 60), out[0].DueDate)
	assert.Equal(t, issue, out[1].DueDate)
}

func TestGenerateInstallmentsEmptyTemplates(t *testing.T) {
	_, err := GenerateInstallments(condition(), time.Now(), dec("100.00"))
	assert.ErrorIs(t, err, ErrInvalidCondition)
}

func TestGenerateInstallmentsPercentagesMustSumToHundred(t *testing.T) {
	cond := condition(
		template(1, 0, "50"),
		template(2, 30, "49.99"),
	)
	_, err := GenerateInstallments(cond, time.Now(), dec("100.00"))
	assert.ErrorIs(t, err, ErrInconsistentCondition)
}

func TestGenerateInstallmentsMonthBoundary(t *testing.T) {
	// Calendar-day arithmetic, no month snapping: Jan 31 + 30 days is Mar 1
	// in a leap year.
	cond := condition(template(1, 30, "100"))

	out, err := GenerateInstallments(cond, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), dec("500.00"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), out[0].DueDate)
	assert.True(t, out[0].Amount.Equal(dec("500.00")))
}
