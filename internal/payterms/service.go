package payterms

import (
	"context"
	"errors"
	"fmt"
)

// CatalogStore is the persistence surface the service needs.
type CatalogStore interface {
	GetCondition(ctx context.Context, id int64) (PaymentCondition, error)
	ListConditions(ctx context.Context) ([]PaymentCondition, error)
	CreateCondition(ctx context.Context, c PaymentCondition) (PaymentCondition, error)
	UpdateCondition(ctx context.Context, c PaymentCondition) error
	DeleteCondition(ctx context.Context, id int64) error
	GetMethod(ctx context.Context, id int64) (PaymentMethod, error)
	ListMethods(ctx context.Context) ([]PaymentMethod, error)
	CreateMethod(ctx context.Context, m PaymentMethod) (PaymentMethod, error)
	UpdateMethod(ctx context.Context, m PaymentMethod) error
	DeleteMethod(ctx context.Context, id int64) error
}

// Invalidator drops cached conditions after catalog writes.
type Invalidator interface {
	Invalidate(ctx context.Context, id int64)
}

// Service enforces catalog invariants in front of the store.
type Service struct {
	store CatalogStore
	cache Invalidator
}

// NewService constructs the catalog service. cache may be nil.
func NewService(store CatalogStore, cache Invalidator) *Service {
	return &Service{store: store, cache: cache}
}

func (s *Service) GetCondition(ctx context.Context, id int64) (PaymentCondition, error) {
	if id <= 0 {
		return PaymentCondition{}, fmt.Errorf("%w: condition id", ErrValidation)
	}
	return s.store.GetCondition(ctx, id)
}

func (s *Service) ListConditions(ctx context.Context) ([]PaymentCondition, error) {
	return s.store.ListConditions(ctx)
}

func (s *Service) CreateCondition(ctx context.Context, c PaymentCondition) (PaymentCondition, error) {
	if err := c.Validate(); err != nil {
		return PaymentCondition{}, err
	}
	if err := s.verifyMethods(ctx, c); err != nil {
		return PaymentCondition{}, err
	}
	return s.store.CreateCondition(ctx, c)
}

func (s *Service) UpdateCondition(ctx context.Context, c PaymentCondition) error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: condition id", ErrValidation)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.verifyMethods(ctx, c); err != nil {
		return err
	}
	if err := s.store.UpdateCondition(ctx, c); err != nil {
		return err
	}
	s.invalidate(ctx, c.ID)
	return nil
}

func (s *Service) DeleteCondition(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: condition id", ErrValidation)
	}
	if err := s.store.DeleteCondition(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) GetMethod(ctx context.Context, id int64) (PaymentMethod, error) {
	if id <= 0 {
		return PaymentMethod{}, fmt.Errorf("%w: method id", ErrValidation)
	}
	return s.store.GetMethod(ctx, id)
}

func (s *Service) ListMethods(ctx context.Context) ([]PaymentMethod, error) {
	return s.store.ListMethods(ctx)
}

func (s *Service) CreateMethod(ctx context.Context, m PaymentMethod) (PaymentMethod, error) {
	if m.Description == "" {
		return PaymentMethod{}, fmt.Errorf("%w: description is required", ErrValidation)
	}
	return s.store.CreateMethod(ctx, m)
}

func (s *Service) UpdateMethod(ctx context.Context, m PaymentMethod) error {
	if m.ID <= 0 {
		return fmt.Errorf("%w: method id", ErrValidation)
	}
	if m.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	return s.store.UpdateMethod(ctx, m)
}

func (s *Service) DeleteMethod(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: method id", ErrValidation)
	}
	return s.store.DeleteMethod(ctx, id)
}

// verifyMethods ensures every referenced payment method exists before the
// condition is written.
func (s *Service) verifyMethods(ctx context.Context, c PaymentCondition) error {
	seen := map[int64]bool{}
	for _, t := range c.Templates {
		if seen[t.PaymentMethodID] {
			continue
		}
		if _, err := s.store.GetMethod(ctx, t.PaymentMethodID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: payment method %d does not exist", ErrValidation, t.PaymentMethodID)
			}
			return fmt.Errorf("verify payment method %d: %w", t.PaymentMethodID, err)
		}
		seen[t.PaymentMethodID] = true
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}
