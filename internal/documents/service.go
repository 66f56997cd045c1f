package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/varejo-erp/varejo-erp/internal/masterdata/carriers"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/clients"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/products"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/shared"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/suppliers"
	"github.com/varejo-erp/varejo-erp/internal/payterms"
)

// Collaborator lookups. Each is the read slice of the owning package's
// repository, so master-data stores satisfy them without adapters.
type (
	SupplierSource interface {
		Get(ctx context.Context, id int64) (suppliers.Supplier, error)
	}
	ClientSource interface {
		Get(ctx context.Context, id int64) (clients.Client, error)
	}
	CarrierSource interface {
		Get(ctx context.Context, id int64) (carriers.Carrier, error)
	}
	ProductSource interface {
		Get(ctx context.Context, id int64) (products.Product, error)
	}
	ConditionSource interface {
		GetCondition(ctx context.Context, id int64) (payterms.PaymentCondition, error)
	}
)

// Sources bundles the external catalogs a document references.
type Sources struct {
	Suppliers  SupplierSource
	Clients    ClientSource
	Carriers   CarrierSource
	Products   ProductSource
	Conditions ConditionSource
}

// DraftItem is caller input for one line. Derived amounts are computed here
// and never accepted from the caller.
type DraftItem struct {
	ProductID    int64           `json:"product_id"`
	UnitID       int64           `json:"unit_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UnitDiscount decimal.Decimal `json:"unit_discount"`
}

// DraftDocument is caller input for a create or a wholesale update.
type DraftDocument struct {
	Ref                DocumentRef
	CounterpartyID     int64
	IssueDate          time.Time
	ArrivalDate        *time.Time
	FreightType        FreightType
	FreightValue       decimal.Decimal
	InsuranceValue     decimal.Decimal
	OtherExpenses      decimal.Decimal
	PaymentConditionID *int64
	CarrierID          *int64
	VehiclePlate       *string
	Note               *string
	Items              []DraftItem
}

// Metrics is the slice of the observability registry the coordinator uses.
type Metrics interface {
	DocumentCommitted(kind string)
	DocumentCancelled(kind string)
	InstallmentSettled()
}

// Service coordinates document commits. It is the only component that
// mutates persisted document state; every write path runs inside a single
// repository transaction.
type Service struct {
	repo    Repository
	sources Sources
	metrics Metrics
	logger  *slog.Logger
}

func NewService(repo Repository, sources Sources, metrics Metrics, logger *slog.Logger) *Service {
	return &Service{repo: repo, sources: sources, metrics: metrics, logger: logger}
}

// Create validates the draft, allocates shared charges, expands the payment
// condition, and persists header, items, and installments atomically.
func (s *Service) Create(ctx context.Context, draft DraftDocument) (Document, error) {
	doc, err := s.assemble(ctx, draft)
	if err != nil {
		return Document{}, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.InsertHeader(ctx, doc.Header); err != nil {
			return err
		}
		for _, item := range doc.Items {
			if err := tx.InsertItem(ctx, doc.Header.Ref, item); err != nil {
				return err
			}
		}
		for _, inst := range doc.Installments {
			if err := tx.InsertInstallment(ctx, doc.Header.Ref, inst); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Document{}, err
	}

	s.metrics.DocumentCommitted(string(draft.Ref.Kind))
	s.logger.Info("document committed",
		slog.String("ref", doc.Header.Ref.String()),
		slog.Int("items", len(doc.Items)),
		slog.Int("installments", len(doc.Installments)))
	return doc, nil
}

// Update replaces items and installments wholesale inside one transaction,
// recomputing allocation and totals identically to Create. Cancelled
// documents never accept updates.
func (s *Service) Update(ctx context.Context, draft DraftDocument) (Document, error) {
	current, err := s.repo.GetHeader(ctx, draft.Ref)
	if err != nil {
		return Document{}, err
	}
	if current.Cancelled() {
		return Document{}, fmt.Errorf("%w: %s", ErrAlreadyCancelled, draft.Ref)
	}

	doc, err := s.assemble(ctx, draft)
	if err != nil {
		return Document{}, err
	}
	doc.Header.CreatedAt = current.CreatedAt

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.UpdateHeader(ctx, doc.Header); err != nil {
			return err
		}
		if err := tx.DeleteInstallments(ctx, doc.Header.Ref); err != nil {
			return err
		}
		if err := tx.DeleteItems(ctx, doc.Header.Ref); err != nil {
			return err
		}
		for _, item := range doc.Items {
			if err := tx.InsertItem(ctx, doc.Header.Ref, item); err != nil {
				return err
			}
		}
		for _, inst := range doc.Installments {
			if err := tx.InsertInstallment(ctx, doc.Header.Ref, inst); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Document{}, err
	}

	s.logger.Info("document replaced", slog.String("ref", doc.Header.Ref.String()))
	return doc, nil
}

// Cancel marks the document terminal. Installments are left untouched so a
// partially paid document stays payable for its open remainder.
func (s *Service) Cancel(ctx context.Context, ref DocumentRef) error {
	header, err := s.repo.GetHeader(ctx, ref)
	if err != nil {
		return err
	}
	if header.Cancelled() {
		return fmt.Errorf("%w: %s", ErrAlreadyCancelled, ref)
	}
	if err := s.repo.SetCancelled(ctx, ref, time.Now()); err != nil {
		return err
	}
	s.metrics.DocumentCancelled(string(ref.Kind))
	s.logger.Info("document cancelled", slog.String("ref", ref.String()))
	return nil
}

// Get assembles header, items, and installments for display.
func (s *Service) Get(ctx context.Context, ref DocumentRef) (Document, error) {
	header, err := s.repo.GetHeader(ctx, ref)
	if err != nil {
		return Document{}, err
	}
	items, err := s.repo.GetItems(ctx, ref)
	if err != nil {
		return Document{}, err
	}
	installments, err := s.repo.GetInstallments(ctx, ref)
	if err != nil {
		return Document{}, err
	}
	return Document{Header: header, Items: items, Installments: installments}, nil
}

// List returns headers matching the filters plus a total count.
func (s *Service) List(ctx context.Context, kind DocumentKind, filters ListFilters) ([]Header, int, error) {
	if !kind.Valid() {
		return nil, 0, fmt.Errorf("%w: unsupported document kind %q", ErrValidation, kind)
	}
	return s.repo.ListHeaders(ctx, kind, filters)
}

// MarkInstallmentPaid settles one open installment. Siblings are not
// recomputed, and a cancelled document can still have its open installments
// settled.
func (s *Service) MarkInstallmentPaid(ctx context.Context, ref DocumentRef, sequence int, paidDate time.Time, paidAmount decimal.Decimal) (Installment, error) {
	if !paidAmount.IsPositive() {
		return Installment{}, fmt.Errorf("%w: paid amount must be positive", ErrValidation)
	}
	if _, err := s.repo.GetHeader(ctx, ref); err != nil {
		return Installment{}, err
	}
	inst, err := s.repo.GetInstallment(ctx, ref, sequence)
	if err != nil {
		return Installment{}, err
	}
	if inst.Status != InstallmentOpen {
		return Installment{}, fmt.Errorf("%w: %s installment %d is %s", ErrSettlementConflict, ref, sequence, inst.Status)
	}

	settlementRef := uuid.NewString()
	if err := s.repo.MarkInstallmentPaid(ctx, ref, sequence, paidDate, paidAmount, settlementRef); err != nil {
		return Installment{}, err
	}
	s.metrics.InstallmentSettled()
	s.logger.Info("installment settled",
		slog.String("ref", ref.String()),
		slog.Int("sequence", sequence),
		slog.String("settlement_ref", settlementRef))
	return s.repo.GetInstallment(ctx, ref, sequence)
}

// CancelInstallment voids one open installment. The operation is refused when
// any sibling has been paid; partial settlement means the document's history
// must stay intact.
func (s *Service) CancelInstallment(ctx context.Context, ref DocumentRef, sequence int) (Installment, error) {
	if _, err := s.repo.GetHeader(ctx, ref); err != nil {
		return Installment{}, err
	}
	inst, err := s.repo.GetInstallment(ctx, ref, sequence)
	if err != nil {
		return Installment{}, err
	}
	if inst.Status != InstallmentOpen {
		return Installment{}, fmt.Errorf("%w: %s installment %d is %s", ErrAlreadyCancelled, ref, sequence, inst.Status)
	}
	paid, err := s.repo.HasPaidSibling(ctx, ref)
	if err != nil {
		return Installment{}, err
	}
	if paid {
		return Installment{}, fmt.Errorf("%w: %s has settled installments", ErrSettlementConflict, ref)
	}
	if err := s.repo.CancelInstallment(ctx, ref, sequence); err != nil {
		return Installment{}, err
	}
	s.logger.Info("installment cancelled", slog.String("ref", ref.String()), slog.Int("sequence", sequence))
	return s.repo.GetInstallment(ctx, ref, sequence)
}

// assemble validates the draft, resolves every referenced id, runs the
// allocator, and expands the payment condition. It performs no writes.
func (s *Service) assemble(ctx context.Context, draft DraftDocument) (Document, error) {
	if err := s.validateDraft(draft); err != nil {
		return Document{}, err
	}
	catalog, err := s.resolveReferences(ctx, draft)
	if err != nil {
		return Document{}, err
	}

	sharedCharges := draft.FreightValue.Add(draft.InsuranceValue).Add(draft.OtherExpenses)
	rawItems := make([]Item, len(draft.Items))
	for i, d := range draft.Items {
		unitPrice := d.UnitPrice
		if unitPrice.IsZero() {
			// The catalog seeds the price: cost side for purchases, sale
			// price for sales notes.
			product := catalog[d.ProductID]
			if draft.Ref.Kind == KindPurchase {
				unitPrice = product.Cost
			} else {
				unitPrice = product.Price
			}
		}
		rawItems[i] = Item{
			Sequence:     i + 1,
			ProductID:    d.ProductID,
			UnitID:       d.UnitID,
			Quantity:     d.Quantity,
			UnitPrice:    unitPrice,
			UnitDiscount: d.UnitDiscount,
		}
	}
	items, err := AllocateShares(rawItems, sharedCharges)
	if err != nil {
		return Document{}, err
	}

	productsTotal := decimal.Zero
	for _, item := range items {
		productsTotal = productsTotal.Add(item.LineTotal)
	}
	payableTotal := productsTotal.Add(sharedCharges)

	now := time.Now()
	header := Header{
		Ref:                draft.Ref,
		CounterpartyID:     draft.CounterpartyID,
		IssueDate:          draft.IssueDate,
		ArrivalDate:        draft.ArrivalDate,
		FreightType:        draft.FreightType,
		FreightValue:       draft.FreightValue,
		InsuranceValue:     draft.InsuranceValue,
		OtherExpenses:      draft.OtherExpenses,
		ProductsTotal:      productsTotal,
		PayableTotal:       payableTotal,
		PaymentConditionID: draft.PaymentConditionID,
		CarrierID:          draft.CarrierID,
		VehiclePlate:       draft.VehiclePlate,
		Note:               draft.Note,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	var installments []Installment
	if draft.PaymentConditionID != nil {
		condition, err := s.sources.Conditions.GetCondition(ctx, *draft.PaymentConditionID)
		if err != nil {
			if errors.Is(err, payterms.ErrNotFound) {
				return Document{}, fmt.Errorf("%w: payment condition %d", ErrUnknownReference, *draft.PaymentConditionID)
			}
			return Document{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		installments, err = GenerateInstallments(condition, draft.IssueDate, payableTotal)
		if err != nil {
			return Document{}, err
		}
	}

	return Document{Header: header, Items: items, Installments: installments}, nil
}

func (s *Service) validateDraft(draft DraftDocument) error {
	var missing []string
	if !draft.Ref.Kind.Valid() {
		missing = append(missing, "kind")
	}
	if draft.Ref.Model == "" {
		missing = append(missing, "model")
	}
	if draft.Ref.Series == "" {
		missing = append(missing, "series")
	}
	if draft.Ref.Number == "" {
		missing = append(missing, "number")
	}
	if draft.CounterpartyID <= 0 {
		missing = append(missing, "counterparty_id")
	}
	if draft.IssueDate.IsZero() {
		missing = append(missing, "issue_date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrValidation, missing)
	}

	switch draft.FreightType {
	case FreightCIF, FreightFOB:
	default:
		return fmt.Errorf("%w: freight type must be CIF or FOB", ErrValidation)
	}
	for _, v := range []decimal.Decimal{draft.FreightValue, draft.InsuranceValue, draft.OtherExpenses} {
		if v.IsNegative() {
			return fmt.Errorf("%w: shared charges must not be negative", ErrValidation)
		}
	}
	if len(draft.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	return nil
}

// resolveReferences confirms every referenced id exists before any write and
// returns the resolved products for price seeding.
func (s *Service) resolveReferences(ctx context.Context, draft DraftDocument) (map[int64]products.Product, error) {
	switch draft.Ref.Kind {
	case KindPurchase:
		if _, err := s.sources.Suppliers.Get(ctx, draft.CounterpartyID); err != nil {
			return nil, unknownRef(err, fmt.Sprintf("supplier %d", draft.CounterpartyID))
		}
	case KindSales:
		if _, err := s.sources.Clients.Get(ctx, draft.CounterpartyID); err != nil {
			return nil, unknownRef(err, fmt.Sprintf("client %d", draft.CounterpartyID))
		}
	}
	if draft.CarrierID != nil {
		if _, err := s.sources.Carriers.Get(ctx, *draft.CarrierID); err != nil {
			return nil, unknownRef(err, fmt.Sprintf("carrier %d", *draft.CarrierID))
		}
	}
	catalog := make(map[int64]products.Product, len(draft.Items))
	for _, item := range draft.Items {
		if _, seen := catalog[item.ProductID]; seen {
			continue
		}
		product, err := s.sources.Products.Get(ctx, item.ProductID)
		if err != nil {
			return nil, unknownRef(err, fmt.Sprintf("product %d", item.ProductID))
		}
		catalog[item.ProductID] = product
	}
	return catalog, nil
}

func unknownRef(err error, what string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownReference, what)
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
