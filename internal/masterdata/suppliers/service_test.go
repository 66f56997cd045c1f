package suppliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varejo-erp/varejo-erp/internal/masterdata/shared"
)

type fakeRepo struct {
	suppliers map[int64]Supplier
	byCode    map[string]int64
	nextID    int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		suppliers: make(map[int64]Supplier),
		byCode:    make(map[string]int64),
		nextID:    1,
	}
}

func (f *fakeRepo) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	out := make([]Supplier, 0, len(f.suppliers))
	for _, s := range f.suppliers {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Supplier, error) {
	s, ok := f.suppliers[id]
	if !ok {
		return Supplier{}, shared.ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	if _, exists := f.byCode[supplier.Code]; exists {
		return Supplier{}, shared.ErrDuplicate
	}
	supplier.ID = f.nextID
	f.nextID++
	f.suppliers[supplier.ID] = supplier
	f.byCode[supplier.Code] = supplier.ID
	return supplier, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, supplier Supplier) error {
	if _, ok := f.suppliers[id]; !ok {
		return shared.ErrNotFound
	}
	supplier.ID = id
	f.suppliers[id] = supplier
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.suppliers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.suppliers, id)
	return nil
}

func TestCreateSupplier(t *testing.T) {
	svc := NewService(newFakeRepo())

	created, err := svc.Create(context.Background(), Supplier{Code: "SUP-1", Name: "Atacado Norte"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Atacado Norte", got.Name)
}

func TestCreateSupplierRequiresCodeAndName(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), Supplier{Name: "sem codigo"})
	assert.ErrorIs(t, err, shared.ErrRequiredField)

	_, err = svc.Create(context.Background(), Supplier{Code: "SUP-2", Name: "   "})
	assert.ErrorIs(t, err, shared.ErrRequiredField)
}

func TestCreateSupplierDuplicateCode(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), Supplier{Code: "SUP-1", Name: "a"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Supplier{Code: "SUP-1", Name: "b"})
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestGetSupplierInvalidID(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestUpdateSupplierNotFound(t *testing.T) {
	svc := NewService(newFakeRepo())

	err := svc.Update(context.Background(), 42, Supplier{Code: "SUP-9", Name: "x"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteSupplier(t *testing.T) {
	svc := NewService(newFakeRepo())

	created, err := svc.Create(context.Background(), Supplier{Code: "SUP-1", Name: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
