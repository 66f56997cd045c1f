// Package documents implements the commercial document engine: purchase and
// sales notes with per-line allocation of shared charges and generated
// installment schedules, committed as one atomic unit.
package documents

import (
	"errors"
	"fmt"
)

// DocumentKind selects the purchase or sales variant of a document.
type DocumentKind string

const (
	KindPurchase DocumentKind = "purchase"
	KindSales    DocumentKind = "sales"
)

// Valid reports whether the kind is one of the two supported variants.
func (k DocumentKind) Valid() bool {
	return k == KindPurchase || k == KindSales
}

// FreightType indicates who bears the freight cost.
type FreightType string

const (
	FreightCIF FreightType = "CIF"
	FreightFOB FreightType = "FOB"
)

// InstallmentStatus is the lifecycle state of a generated installment.
type InstallmentStatus string

const (
	InstallmentOpen      InstallmentStatus = "OPEN"
	InstallmentPaid      InstallmentStatus = "PAID"
	InstallmentCancelled InstallmentStatus = "CANCELLED"
)

// DocumentRef is the composite natural identity of a document. It has value
// equality and is used as the lookup key wherever documents are referenced.
type DocumentRef struct {
	Kind   DocumentKind `json:"kind"`
	Model  string       `json:"doc_model"`
	Series string       `json:"series"`
	Number string       `json:"number"`
}

func (r DocumentRef) String() string {
	return fmt.Sprintf("%s %s/%s/%s", r.Kind, r.Model, r.Series, r.Number)
}

var (
	// ErrValidation indicates a required header or item field is missing or malformed.
	ErrValidation = errors.New("documents: invalid input")
	// ErrUnknownReference indicates a referenced counterparty, product, carrier
	// or condition does not exist.
	ErrUnknownReference = errors.New("documents: unknown reference")
	// ErrInvalidCondition indicates the payment condition has no installment templates.
	ErrInvalidCondition = errors.New("documents: payment condition has no installment templates")
	// ErrInconsistentCondition indicates the template percentages do not sum to 100.
	ErrInconsistentCondition = errors.New("documents: installment percentages do not sum to 100")
	// ErrAlreadyCancelled indicates an operation on a terminal document or installment.
	ErrAlreadyCancelled = errors.New("documents: already cancelled")
	// ErrSettlementConflict indicates a cancellation blocked by a paid installment.
	ErrSettlementConflict = errors.New("documents: settlement conflict")
	// ErrPersistence indicates the transaction failed to commit; the document was
	// fully rolled back and the operation is retryable by the caller.
	ErrPersistence = errors.New("documents: persistence failure")
	// ErrNotFound indicates the document or installment does not exist.
	ErrNotFound = errors.New("documents: not found")
	// ErrDuplicate indicates a document with the same natural key already exists.
	ErrDuplicate = errors.New("documents: duplicate document key")
)
