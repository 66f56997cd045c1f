package documents

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type itemRequest struct {
	ProductID    int64           `json:"product_id" validate:"required,gt=0"`
	UnitID       int64           `json:"unit_id" validate:"required,gt=0"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UnitDiscount decimal.Decimal `json:"unit_discount"`
}

type documentRequest struct {
	Model              string          `json:"model" validate:"required,max=10"`
	Series             string          `json:"series" validate:"required,max=10"`
	Number             string          `json:"number" validate:"required,max=20"`
	CounterpartyID     int64           `json:"counterparty_id" validate:"required,gt=0"`
	IssueDate          string          `json:"issue_date" validate:"required,datetime=2006-01-02"`
	ArrivalDate        *string         `json:"arrival_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	FreightType        string          `json:"freight_type" validate:"required,oneof=CIF FOB"`
	FreightValue       decimal.Decimal `json:"freight_value"`
	InsuranceValue     decimal.Decimal `json:"insurance_value"`
	OtherExpenses      decimal.Decimal `json:"other_expenses"`
	PaymentConditionID *int64          `json:"payment_condition_id,omitempty" validate:"omitempty,gt=0"`
	CarrierID          *int64          `json:"carrier_id,omitempty" validate:"omitempty,gt=0"`
	VehiclePlate       *string         `json:"vehicle_plate,omitempty" validate:"omitempty,max=10"`
	Note               *string         `json:"note,omitempty" validate:"omitempty,max=500"`
	Items              []itemRequest   `json:"items" validate:"required,min=1,dive"`
}

type settleRequest struct {
	PaidDate   string          `json:"paid_date" validate:"required,datetime=2006-01-02"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

// toDraft converts the wire shape into a draft for the coordinator. Dates are
// plain calendar days; due-date arithmetic never involves a timezone.
func (req documentRequest) toDraft(kind DocumentKind) (DraftDocument, error) {
	issueDate, err := time.Parse(dateLayout, req.IssueDate)
	if err != nil {
		return DraftDocument{}, fmt.Errorf("%w: issue_date: %v", ErrValidation, err)
	}
	var arrivalDate *time.Time
	if req.ArrivalDate != nil {
		parsed, err := time.Parse(dateLayout, *req.ArrivalDate)
		if err != nil {
			return DraftDocument{}, fmt.Errorf("%w: arrival_date: %v", ErrValidation, err)
		}
		arrivalDate = &parsed
	}

	items := make([]DraftItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = DraftItem{
			ProductID:    it.ProductID,
			UnitID:       it.UnitID,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			UnitDiscount: it.UnitDiscount,
		}
	}

	return DraftDocument{
		Ref: DocumentRef{
			Kind:   kind,
			Model:  req.Model,
			Series: req.Series,
			Number: req.Number,
		},
		CounterpartyID:     req.CounterpartyID,
		IssueDate:          issueDate,
		ArrivalDate:        arrivalDate,
		FreightType:        FreightType(req.FreightType),
		FreightValue:       req.FreightValue,
		InsuranceValue:     req.InsuranceValue,
		OtherExpenses:      req.OtherExpenses,
		PaymentConditionID: req.PaymentConditionID,
		CarrierID:          req.CarrierID,
		VehiclePlate:       req.VehiclePlate,
		Note:               req.Note,
		Items:              items,
	}, nil
}
