package payterms

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	conditions   map[int64]PaymentCondition
	methods      map[int64]PaymentMethod
	nextID       int64
	getMethodErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conditions: make(map[int64]PaymentCondition),
		methods:    make(map[int64]PaymentMethod),
		nextID:     1,
	}
}

func (f *fakeStore) GetCondition(ctx context.Context, id int64) (PaymentCondition, error) {
	c, ok := f.conditions[id]
	if !ok {
		return PaymentCondition{}, fmt.Errorf("%w: condition %d", ErrNotFound, id)
	}
	return c, nil
}

func (f *fakeStore) ListConditions(ctx context.Context) ([]PaymentCondition, error) {
	out := make([]PaymentCondition, 0, len(f.conditions))
	for _, c := range f.conditions {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) CreateCondition(ctx context.Context, c PaymentCondition) (PaymentCondition, error) {
	c.ID = f.nextID
	f.nextID++
	f.conditions[c.ID] = c
	return c, nil
}

func (f *fakeStore) UpdateCondition(ctx context.Context, c PaymentCondition) error {
	if _, ok := f.conditions[c.ID]; !ok {
		return fmt.Errorf("%w: condition %d", ErrNotFound, c.ID)
	}
	f.conditions[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteCondition(ctx context.Context, id int64) error {
	if _, ok := f.conditions[id]; !ok {
		return fmt.Errorf("%w: condition %d", ErrNotFound, id)
	}
	delete(f.conditions, id)
	return nil
}

func (f *fakeStore) GetMethod(ctx context.Context, id int64) (PaymentMethod, error) {
	if f.getMethodErr != nil {
		return PaymentMethod{}, f.getMethodErr
	}
	m, ok := f.methods[id]
	if !ok {
		return PaymentMethod{}, fmt.Errorf("%w: method %d", ErrNotFound, id)
	}
	return m, nil
}

func (f *fakeStore) ListMethods(ctx context.Context) ([]PaymentMethod, error) {
	out := make([]PaymentMethod, 0, len(f.methods))
	for _, m := range f.methods {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) CreateMethod(ctx context.Context, m PaymentMethod) (PaymentMethod, error) {
	m.ID = f.nextID
	f.nextID++
	f.methods[m.ID] = m
	return m, nil
}

func (f *fakeStore) UpdateMethod(ctx context.Context, m PaymentMethod) error {
	if _, ok := f.methods[m.ID]; !ok {
		return fmt.Errorf("%w: method %d", ErrNotFound, m.ID)
	}
	f.methods[m.ID] = m
	return nil
}

func (f *fakeStore) DeleteMethod(ctx context.Context, id int64) error {
	delete(f.methods, id)
	return nil
}

type recordingInvalidator struct {
	invalidated []int64
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, id int64) {
	r.invalidated = append(r.invalidated, id)
}

func pct(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validCondition(methodID int64) PaymentCondition {
	return PaymentCondition{
		Description: "30/60 dias",
		Templates: []InstallmentTemplate{
			{Sequence: 1, DayOffset: 30, Percentage: pct("50"), PaymentMethodID: methodID},
			{Sequence: 2, DayOffset: 60, Percentage: pct("50"), PaymentMethodID: methodID},
		},
	}
}

func seedMethod(t *testing.T, store *fakeStore) PaymentMethod {
	t.Helper()
	m, err := store.CreateMethod(context.Background(), PaymentMethod{Description: "boleto"})
	require.NoError(t, err)
	return m
}

func TestCreateCondition(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	method := seedMethod(t, store)

	created, err := svc.CreateCondition(context.Background(), validCondition(method.ID))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestCreateConditionRejectsBadPercentages(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	method := seedMethod(t, store)

	cond := validCondition(method.ID)
	cond.Templates[1].Percentage = pct("49.99")

	_, err := svc.CreateCondition(context.Background(), cond)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateConditionRejectsEmptyTemplates(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	_, err := svc.CreateCondition(context.Background(), PaymentCondition{Description: "empty"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateConditionRejectsGappedSequences(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	method := seedMethod(t, store)

	cond := validCondition(method.ID)
	cond.Templates[1].Sequence = 3

	_, err := svc.CreateCondition(context.Background(), cond)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateConditionRejectsUnknownMethod(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	_, err := svc.CreateCondition(context.Background(), validCondition(999))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateConditionStoreFailureIsNotValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	method := seedMethod(t, store)
	store.getMethodErr = errors.New("connection reset")

	_, err := svc.CreateCondition(context.Background(), validCondition(method.ID))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestUpdateConditionInvalidatesCache(t *testing.T) {
	store := newFakeStore()
	invalidator := &recordingInvalidator{}
	svc := NewService(store, invalidator)
	method := seedMethod(t, store)

	created, err := svc.CreateCondition(context.Background(), validCondition(method.ID))
	require.NoError(t, err)

	created.Description = "renamed"
	require.NoError(t, svc.UpdateCondition(context.Background(), created))
	assert.Equal(t, []int64{created.ID}, invalidator.invalidated)
}

func TestDeleteConditionInvalidatesCache(t *testing.T) {
	store := newFakeStore()
	invalidator := &recordingInvalidator{}
	svc := NewService(store, invalidator)
	method := seedMethod(t, store)

	created, err := svc.CreateCondition(context.Background(), validCondition(method.ID))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCondition(context.Background(), created.ID))
	assert.Equal(t, []int64{created.ID}, invalidator.invalidated)

	_, err = svc.GetCondition(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetConditionInvalidID(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	_, err := svc.GetCondition(context.Background(), 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateMethodRequiresDescription(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	_, err := svc.CreateMethod(context.Background(), PaymentMethod{})
	assert.ErrorIs(t, err, ErrValidation)
}
