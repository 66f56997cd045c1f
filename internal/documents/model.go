package documents

import (
	"time"

	"github.com/shopspring/decimal"
)

// Header is a purchase or sales note header. ProductsTotal and PayableTotal
// are derived from the items and never accepted from callers.
type Header struct {
	Ref                DocumentRef     `json:"ref"`
	CounterpartyID     int64           `json:"counterparty_id"`
	IssueDate          time.Time       `json:"issue_date"`
	ArrivalDate        *time.Time      `json:"arrival_date,omitempty"`
	FreightType        FreightType     `json:"freight_type"`
	FreightValue       decimal.Decimal `json:"freight_value"`
	InsuranceValue     decimal.Decimal `json:"insurance_value"`
	OtherExpenses      decimal.Decimal `json:"other_expenses"`
	ProductsTotal      decimal.Decimal `json:"products_total"`
	PayableTotal       decimal.Decimal `json:"payable_total"`
	PaymentConditionID *int64          `json:"payment_condition_id,omitempty"`
	CarrierID          *int64          `json:"carrier_id,omitempty"`
	VehiclePlate       *string         `json:"vehicle_plate,omitempty"`
	Note               *string         `json:"note,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// SharedCharges is the header-level amount distributed across items.
func (h Header) SharedCharges() decimal.Decimal {
	return h.FreightValue.Add(h.InsuranceValue).Add(h.OtherExpenses)
}

// Cancelled reports whether the header is terminal.
func (h Header) Cancelled() bool {
	return h.CancelledAt != nil
}

// Item is one document line. An item belongs to exactly one header and is
// always rewritten together with it.
type Item struct {
	Sequence     int             `json:"sequence"`
	ProductID    int64           `json:"product_id"`
	UnitID       int64           `json:"unit_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UnitDiscount decimal.Decimal `json:"unit_discount"`

	// Derived by the allocator.
	NetUnit        decimal.Decimal `json:"net_unit"`
	LineTotal      decimal.Decimal `json:"line_total"`
	AllocatedShare decimal.Decimal `json:"allocated_share"`
	FinalUnitCost  decimal.Decimal `json:"final_unit_cost"`
}

// Installment is one dated obligation generated from a payment condition.
// Installments are created with the header in the same transaction and never
// independently.
type Installment struct {
	Sequence        int               `json:"sequence"`
	DueDate         time.Time         `json:"due_date"`
	Amount          decimal.Decimal   `json:"amount"`
	PaymentMethodID int64             `json:"payment_method_id"`
	Status          InstallmentStatus `json:"status"`
	PaidDate        *time.Time        `json:"paid_date,omitempty"`
	PaidAmount      *decimal.Decimal  `json:"paid_amount,omitempty"`
	SettlementRef   *string           `json:"settlement_ref,omitempty"`
}

// Document is the whole aggregate: header, items, and installments.
type Document struct {
	Header       Header        `json:"header"`
	Items        []Item        `json:"items"`
	Installments []Installment `json:"installments"`
}
