package documents

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// roundMoney rounds a monetary value half-up to 2 fractional digits. All
// amounts are rounded at the point of assignment, never re-rounded later.
func roundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// AllocateShares distributes the header-level shared charges (freight,
// insurance, other expenses) across the items in proportion to each item's
// line value, and derives the per-item cost fields.
//
// The returned items carry NetUnit, LineTotal, AllocatedShare and
// FinalUnitCost. The sum of all AllocatedShare values equals sharedCharges
// exactly: after per-item rounding the residual drift is absorbed by the last
// item (see applyDrift). When every line total is zero no allocation is made
// and every share is zero.
func AllocateShares(items []Item, sharedCharges decimal.Decimal) ([]Item, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: document requires at least one item", ErrValidation)
	}
	if sharedCharges.IsNegative() {
		return nil, fmt.Errorf("%w: shared charges must not be negative", ErrValidation)
	}

	out := make([]Item, len(items))
	base := decimal.Zero
	for i, item := range items {
		if !item.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: item %d quantity must be positive", ErrValidation, i+1)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: item %d unit price must not be negative", ErrValidation, i+1)
		}
		if item.UnitDiscount.IsNegative() {
			return nil, fmt.Errorf("%w: item %d unit discount must not be negative", ErrValidation, i+1)
		}
		item.NetUnit = item.UnitPrice.Sub(item.UnitDiscount)
		if item.NetUnit.IsNegative() {
			return nil, fmt.Errorf("%w: item %d discount exceeds unit price", ErrValidation, i+1)
		}
		item.LineTotal = roundMoney(item.Quantity.Mul(item.NetUnit))
		out[i] = item
		base = base.Add(item.LineTotal)
	}

	if base.IsZero() {
		for i := range out {
			out[i].AllocatedShare = decimal.Zero
			out[i].FinalUnitCost = out[i].NetUnit
		}
		return out, nil
	}

	allocated := decimal.Zero
	for i := range out {
		share := roundMoney(out[i].LineTotal.Div(base).Mul(sharedCharges))
		out[i].AllocatedShare = share
		allocated = allocated.Add(share)
	}

	applyDrift(out, sharedCharges.Sub(allocated))

	for i := range out {
		out[i].FinalUnitCost = roundMoney(out[i].NetUnit.Add(out[i].AllocatedShare.Div(out[i].Quantity)))
	}
	return out, nil
}

// applyDrift assigns the rounding remainder to the last item. The choice of
// the last element is a fixed tie-break so allocation stays reproducible; it
// must never fall out of loop order by accident.
func applyDrift(items []Item, drift decimal.Decimal) {
	if drift.IsZero() {
		return
	}
	last := len(items) - 1
	items[last].AllocatedShare = items[last].AllocatedShare.Add(drift)
}
