package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varejo-erp/varejo-erp/internal/masterdata/carriers"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/clients"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/products"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/shared"
	"github.com/varejo-erp/varejo-erp/internal/masterdata/suppliers"
	"github.com/varejo-erp/varejo-erp/internal/payterms"
)

// ============================================================================
// FAKE REPOSITORY
// ============================================================================

type fakeRepo struct {
	headers      map[string]Header
	items        map[string][]Item
	installments map[string][]Installment

	// Error injection
	insertHeaderErr      error
	insertItemErr        error
	insertInstallmentErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		headers:      make(map[string]Header),
		items:        make(map[string][]Item),
		installments: make(map[string][]Installment),
	}
}

func (f *fakeRepo) snapshot() (map[string]Header, map[string][]Item, map[string][]Installment) {
	headers := make(map[string]Header, len(f.headers))
	for k, v := range f.headers {
		headers[k] = v
	}
	items := make(map[string][]Item, len(f.items))
	for k, v := range f.items {
		items[k] = append([]Item(nil), v...)
	}
	installments := make(map[string][]Installment, len(f.installments))
	for k, v := range f.installments {
		installments[k] = append([]Installment(nil), v...)
	}
	return headers, items, installments
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	headers, items, installments := f.snapshot()
	if err := fn(ctx, f); err != nil {
		f.headers, f.items, f.installments = headers, items, installments
		return err
	}
	return nil
}

func (f *fakeRepo) GetHeader(ctx context.Context, ref DocumentRef) (Header, error) {
	h, ok := f.headers[ref.String()]
	if !ok {
		return Header{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return h, nil
}

func (f *fakeRepo) ListHeaders(ctx context.Context, kind DocumentKind, filters ListFilters) ([]Header, int, error) {
	var out []Header
	for _, h := range f.headers {
		if h.Ref.Kind != kind {
			continue
		}
		if !filters.IncludeCancelled && h.Cancelled() {
			continue
		}
		out = append(out, h)
	}
	return out, len(out), nil
}

func (f *fakeRepo) InsertHeader(ctx context.Context, h Header) error {
	if f.insertHeaderErr != nil {
		return f.insertHeaderErr
	}
	if _, exists := f.headers[h.Ref.String()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, h.Ref)
	}
	f.headers[h.Ref.String()] = h
	return nil
}

func (f *fakeRepo) UpdateHeader(ctx context.Context, h Header) error {
	if _, exists := f.headers[h.Ref.String()]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, h.Ref)
	}
	f.headers[h.Ref.String()] = h
	return nil
}

func (f *fakeRepo) SetCancelled(ctx context.Context, ref DocumentRef, at time.Time) error {
	h, ok := f.headers[ref.String()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	h.CancelledAt = &at
	f.headers[ref.String()] = h
	return nil
}

func (f *fakeRepo) GetItems(ctx context.Context, ref DocumentRef) ([]Item, error) {
	return f.items[ref.String()], nil
}

func (f *fakeRepo) InsertItem(ctx context.Context, ref DocumentRef, item Item) error {
	if f.insertItemErr != nil {
		return f.insertItemErr
	}
	f.items[ref.String()] = append(f.items[ref.String()], item)
	return nil
}

func (f *fakeRepo) DeleteItems(ctx context.Context, ref DocumentRef) error {
	delete(f.items, ref.String())
	return nil
}

func (f *fakeRepo) GetInstallments(ctx context.Context, ref DocumentRef) ([]Installment, error) {
	return f.installments[ref.String()], nil
}

func (f *fakeRepo) GetInstallment(ctx context.Context, ref DocumentRef, sequence int) (Installment, error) {
	for _, inst := range f.installments[ref.String()] {
		if inst.Sequence == sequence {
			return inst, nil
		}
	}
	return Installment{}, fmt.Errorf("%w: %s installment %d", ErrNotFound, ref, sequence)
}

func (f *fakeRepo) InsertInstallment(ctx context.Context, ref DocumentRef, inst Installment) error {
	if f.insertInstallmentErr != nil {
		return f.insertInstallmentErr
	}
	f.installments[ref.String()] = append(f.installments[ref.String()], inst)
	return nil
}

func (f *fakeRepo) DeleteInstallments(ctx context.Context, ref DocumentRef) error {
	delete(f.installments, ref.String())
	return nil
}

func (f *fakeRepo) MarkInstallmentPaid(ctx context.Context, ref DocumentRef, sequence int, paidDate time.Time, paidAmount decimal.Decimal, settlementRef string) error {
	list := f.installments[ref.String()]
	for i, inst := range list {
		if inst.Sequence != sequence {
			continue
		}
		if inst.Status != InstallmentOpen {
			return fmt.Errorf("%w: %s installment %d is not open", ErrSettlementConflict, ref, sequence)
		}
		inst.Status = InstallmentPaid
		inst.PaidDate = &paidDate
		inst.PaidAmount = &paidAmount
		inst.SettlementRef = &settlementRef
		list[i] = inst
		return nil
	}
	return fmt.Errorf("%w: %s installment %d", ErrNotFound, ref, sequence)
}

func (f *fakeRepo) CancelInstallment(ctx context.Context, ref DocumentRef, sequence int) error {
	list := f.installments[ref.String()]
	for i, inst := range list {
		if inst.Sequence != sequence {
			continue
		}
		if inst.Status != InstallmentOpen {
			return fmt.Errorf("%w: %s installment %d is not open", ErrAlreadyCancelled, ref, sequence)
		}
		inst.Status = InstallmentCancelled
		list[i] = inst
		return nil
	}
	return fmt.Errorf("%w: %s installment %d", ErrNotFound, ref, sequence)
}

func (f *fakeRepo) HasPaidSibling(ctx context.Context, ref DocumentRef) (bool, error) {
	for _, inst := range f.installments[ref.String()] {
		if inst.Status == InstallmentPaid {
			return true, nil
		}
	}
	return false, nil
}

// ============================================================================
// FAKE COLLABORATORS
// ============================================================================

type supplierStore map[int64]suppliers.Supplier

func (s supplierStore) Get(ctx context.Context, id int64) (suppliers.Supplier, error) {
	v, ok := s[id]
	if !ok {
		return suppliers.Supplier{}, shared.ErrNotFound
	}
	return v, nil
}

type clientStore map[int64]clients.Client

func (s clientStore) Get(ctx context.Context, id int64) (clients.Client, error) {
	v, ok := s[id]
	if !ok {
		return clients.Client{}, shared.ErrNotFound
	}
	return v, nil
}

type carrierStore map[int64]carriers.Carrier

func (s carrierStore) Get(ctx context.Context, id int64) (carriers.Carrier, error) {
	v, ok := s[id]
	if !ok {
		return carriers.Carrier{}, shared.ErrNotFound
	}
	return v, nil
}

type productStore map[int64]products.Product

func (s productStore) Get(ctx context.Context, id int64) (products.Product, error) {
	v, ok := s[id]
	if !ok {
		return products.Product{}, shared.ErrNotFound
	}
	return v, nil
}

type conditionStore map[int64]payterms.PaymentCondition

func (s conditionStore) GetCondition(ctx context.Context, id int64) (payterms.PaymentCondition, error) {
	v, ok := s[id]
	if !ok {
		return payterms.PaymentCondition{}, payterms.ErrNotFound
	}
	return v, nil
}

type fakeMetrics struct {
	committed int
	cancelled int
	settled   int
}

func (m *fakeMetrics) DocumentCommitted(kind string) { m.committed++ }
func (m *fakeMetrics) DocumentCancelled(kind string) { m.cancelled++ }
func (m *fakeMetrics) InstallmentSettled()           { m.settled++ }

// ============================================================================
// FIXTURES
// ============================================================================

func newTestService(repo *fakeRepo) (*Service, *fakeMetrics) {
	metrics := &fakeMetrics{}
	sources := Sources{
		Suppliers: supplierStore{10: {ID: 10, Code: "SUP-10", Name: "Atacado Norte"}},
		Clients:   clientStore{20: {ID: 20, Code: "CLI-20", Name: "Mercado Silva"}},
		Carriers:  carrierStore{30: {ID: 30, Code: "CAR-30", Name: "TransLog"}},
		Products: productStore{
			100: {ID: 100, Code: "P-100", Description: "Arroz 5kg", Cost: dec("22.50"), Price: dec("29.90")},
			101: {ID: 101, Code: "P-101", Description: "Feijao 1kg", Cost: dec("5.10"), Price: dec("8.75")},
		},
		Conditions: conditionStore{
			5: condition(
				template(1, 0, "33.34"),
				template(2, 30, "33.33"),
				template(3, 60, "33.33"),
			),
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, sources, metrics, logger), metrics
}

func purchaseDraft() DraftDocument {
	conditionID := int64(5)
	return DraftDocument{
		Ref:                DocumentRef{Kind: KindPurchase, Model: "55", Series: "1", Number: "000123"},
		CounterpartyID:     10,
		IssueDate:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		FreightType:        FreightFOB,
		FreightValue:       dec("80.00"),
		InsuranceValue:     dec("15.00"),
		OtherExpenses:      dec("5.00"),
		PaymentConditionID: &conditionID,
		Items: []DraftItem{
			{ProductID: 100, UnitID: 1, Quantity: dec("10"), UnitPrice: dec("30.00"), UnitDiscount: dec("0")},
			{ProductID: 101, UnitID: 1, Quantity: dec("100"), UnitPrice: dec("7.00"), UnitDiscount: dec("0")},
		},
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateDocument(t *testing.T) {
	repo := newFakeRepo()
	svc, metrics := newTestService(repo)

	doc, err := svc.Create(context.Background(), purchaseDraft())
	require.NoError(t, err)

	assert.True(t, doc.Header.ProductsTotal.Equal(dec("1000.00")), "got %s", doc.Header.ProductsTotal)
	assert.True(t, doc.Header.PayableTotal.Equal(dec("1100.00")), "got %s", doc.Header.PayableTotal)

	require.Len(t, doc.Items, 2)
	assert.True(t, doc.Items[0].AllocatedShare.Equal(dec("30.00")))
	assert.True(t, doc.Items[1].AllocatedShare.Equal(dec("70.00")))

	require.Len(t, doc.Installments, 3)
	sum := decimal.Zero
	for _, inst := range doc.Installments {
		sum = sum.Add(inst.Amount)
	}
	assert.True(t, sum.Equal(doc.Header.PayableTotal))

	stored, err := repo.GetHeader(context.Background(), doc.Header.Ref)
	require.NoError(t, err)
	assert.False(t, stored.Cancelled())
	assert.True(t, stored.CreatedAt.Equal(doc.Header.CreatedAt))
	assert.True(t, stored.UpdatedAt.Equal(doc.Header.UpdatedAt))
	assert.Equal(t, 1, metrics.committed)
}

func TestCreateDocumentWithoutCondition(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	draft.PaymentConditionID = nil

	doc, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Empty(t, doc.Installments)
}

func TestCreateDocumentMissingFields(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	draft.Ref.Number = ""
	draft.CounterpartyID = 0

	_, err := svc.Create(context.Background(), draft)
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.headers)
}

func TestCreateDocumentRejectsNegativeUnitPrice(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	draft.Items[0].UnitPrice = dec("-30.00")

	_, err := svc.Create(context.Background(), draft)
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.headers)
}

func TestCreateDocumentRejectsNegativeDiscount(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	draft.Items[1].UnitDiscount = dec("-0.50")

	_, err := svc.Create(context.Background(), draft)
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.headers)
}

func TestCreateDocumentUnknownSupplier(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	draft.CounterpartyID = 999

	_, err := svc.Create(context.Background(), draft)
	require.ErrorIs(t, err, ErrUnknownReference)
	assert.Empty(t, repo.headers)
}

func TestCreateDocumentUnknownProduct(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	draft.Items[0].ProductID = 999

	_, err := svc.Create(context.Background(), draft)
	require.ErrorIs(t, err, ErrUnknownReference)
}

func TestCreateDocumentUnknownCondition(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	unknown := int64(999)
	draft := purchaseDraft()
	draft.PaymentConditionID = &unknown

	_, err := svc.Create(context.Background(), draft)
	require.ErrorIs(t, err, ErrUnknownReference)
	assert.Empty(t, repo.headers)
}

func TestCreateDocumentSeedsUnitPriceFromCatalog(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	draft.PaymentConditionID = nil
	draft.Items = []DraftItem{{ProductID: 100, UnitID: 1, Quantity: dec("2"), UnitPrice: dec("0"), UnitDiscount: dec("0")}}

	doc, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.True(t, doc.Items[0].UnitPrice.Equal(dec("22.50")), "purchase seeds product cost, got %s", doc.Items[0].UnitPrice)

	sales := purchaseDraft()
	sales.Ref.Kind = KindSales
	sales.Ref.Number = "000200"
	sales.CounterpartyID = 20
	sales.PaymentConditionID = nil
	sales.Items = []DraftItem{{ProductID: 100, UnitID: 1, Quantity: dec("2"), UnitPrice: dec("0"), UnitDiscount: dec("0")}}

	doc, err = svc.Create(context.Background(), sales)
	require.NoError(t, err)
	assert.True(t, doc.Items[0].UnitPrice.Equal(dec("29.90")), "sale seeds product price, got %s", doc.Items[0].UnitPrice)
}

func TestCreateDocumentSalesUsesClientCatalog(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	draft.Ref.Kind = KindSales
	draft.CounterpartyID = 20

	_, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)

	// A supplier id is not a client id.
	draft2 := purchaseDraft()
	draft2.Ref.Kind = KindSales
	draft2.Ref.Number = "000124"
	draft2.CounterpartyID = 10
	_, err = svc.Create(context.Background(), draft2)
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestCreateDocumentDuplicateKey(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), purchaseDraft())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), purchaseDraft())
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateDocumentRollsBackOnInstallmentFailure(t *testing.T) {
	repo := newFakeRepo()
	svc, metrics := newTestService(repo)
	repo.insertInstallmentErr = errors.New("connection reset")

	_, err := svc.Create(context.Background(), purchaseDraft())
	require.Error(t, err)

	// Nothing from the failed commit is visible.
	assert.Empty(t, repo.headers)
	assert.Empty(t, repo.items)
	assert.Empty(t, repo.installments)
	assert.Equal(t, 0, metrics.committed)
}

func TestUpdateDocumentReplacesWholesale(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	created, err := svc.Create(context.Background(), purchaseDraft())
	require.NoError(t, err)
	require.Len(t, created.Items, 2)

	draft := purchaseDraft()
	draft.Items = draft.Items[:1]
	draft.FreightValue = dec("50.00")
	draft.InsuranceValue = dec("0")
	draft.OtherExpenses = dec("0")

	updated, err := svc.Update(context.Background(), draft)
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.True(t, updated.Header.ProductsTotal.Equal(dec("300.00")))
	assert.True(t, updated.Header.PayableTotal.Equal(dec("350.00")))
	assert.True(t, updated.Items[0].AllocatedShare.Equal(dec("50.00")))

	items, err := repo.GetItems(context.Background(), draft.Ref)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	installments, err := repo.GetInstallments(context.Background(), draft.Ref)
	require.NoError(t, err)
	require.Len(t, installments, 3)
	sum := decimal.Zero
	for _, inst := range installments {
		sum = sum.Add(inst.Amount)
	}
	assert.True(t, sum.Equal(dec("350.00")))
}

func TestUpdateDocumentNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	_, err := svc.Update(context.Background(), purchaseDraft())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDocumentCancelled(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	_, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), draft.Ref))

	_, err = svc.Update(context.Background(), draft)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelDocument(t *testing.T) {
	repo := newFakeRepo()
	svc, metrics := newTestService(repo)

	draft := purchaseDraft()
	_, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), draft.Ref))
	assert.Equal(t, 1, metrics.cancelled)

	header, err := repo.GetHeader(context.Background(), draft.Ref)
	require.NoError(t, err)
	assert.True(t, header.Cancelled())

	// Installments are untouched by document cancellation.
	installments, err := repo.GetInstallments(context.Background(), draft.Ref)
	require.NoError(t, err)
	for _, inst := range installments {
		assert.Equal(t, InstallmentOpen, inst.Status)
	}

	err = svc.Cancel(context.Background(), draft.Ref)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestMarkInstallmentPaid(t *testing.T) {
	repo := newFakeRepo()
	svc, metrics := newTestService(repo)

	draft := purchaseDraft()
	_, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)

	paidDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	inst, err := svc.MarkInstallmentPaid(context.Background(), draft.Ref, 1, paidDate, dec("366.74"))
	require.NoError(t, err)

	assert.Equal(t, InstallmentPaid, inst.Status)
	require.NotNil(t, inst.PaidDate)
	assert.Equal(t, paidDate, *inst.PaidDate)
	require.NotNil(t, inst.PaidAmount)
	assert.True(t, inst.PaidAmount.Equal(dec("366.74")))
	require.NotNil(t, inst.SettlementRef)
	assert.NotEmpty(t, *inst.SettlementRef)
	assert.Equal(t, 1, metrics.settled)

	// Settling the same installment again conflicts.
	_, err = svc.MarkInstallmentPaid(context.Background(), draft.Ref, 1, paidDate, dec("366.74"))
	assert.ErrorIs(t, err, ErrSettlementConflict)
}

func TestMarkInstallmentPaidInvalidAmount(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	_, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)

	_, err = svc.MarkInstallmentPaid(context.Background(), draft.Ref, 1, time.Now(), dec("0"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMarkInstallmentPaidOnCancelledDocument(t *testing.T) {
	// A cancelled document keeps its open installments payable.
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	_, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), draft.Ref))

	_, err = svc.MarkInstallmentPaid(context.Background(), draft.Ref, 2, time.Now(), dec("366.63"))
	assert.NoError(t, err)
}

func TestCancelInstallment(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	_, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)

	inst, err := svc.CancelInstallment(context.Background(), draft.Ref, 3)
	require.NoError(t, err)
	assert.Equal(t, InstallmentCancelled, inst.Status)

	_, err = svc.CancelInstallment(context.Background(), draft.Ref, 3)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelInstallmentBlockedByPaidSibling(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	_, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)

	_, err = svc.MarkInstallmentPaid(context.Background(), draft.Ref, 1, time.Now(), dec("366.74"))
	require.NoError(t, err)

	_, err = svc.CancelInstallment(context.Background(), draft.Ref, 2)
	assert.ErrorIs(t, err, ErrSettlementConflict)
}

func TestGetDocument(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	draft := purchaseDraft()
	created, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)

	doc, err := svc.Get(context.Background(), draft.Ref)
	require.NoError(t, err)
	assert.Equal(t, created.Header.Ref, doc.Header.Ref)
	assert.Len(t, doc.Items, 2)
	assert.Len(t, doc.Installments, 3)
}

func TestGetDocumentNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	_, err := svc.Get(context.Background(), DocumentRef{Kind: KindPurchase, Model: "55", Series: "1", Number: "zzz"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDocumentsFiltersCancelled(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	first := purchaseDraft()
	_, err := svc.Create(context.Background(), first)
	require.NoError(t, err)

	second := purchaseDraft()
	second.Ref.Number = "000124"
	_, err = svc.Create(context.Background(), second)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), second.Ref))

	headers, total, err := svc.List(context.Background(), KindPurchase, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, headers, 1)

	_, total, err = svc.List(context.Background(), KindPurchase, ListFilters{IncludeCancelled: true})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestListDocumentsInvalidKind(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	_, _, err := svc.List(context.Background(), DocumentKind("bogus"), ListFilters{})
	assert.ErrorIs(t, err, ErrValidation)
}
