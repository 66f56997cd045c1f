package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/varejo-erp/varejo-erp/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(product); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, product)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(product Product) error {
	if strings.TrimSpace(product.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(product.Description) == "" {
		return fmt.Errorf("%w: description", shared.ErrRequiredField)
	}
	if product.UnitID <= 0 {
		return fmt.Errorf("%w: unit_id", shared.ErrRequiredField)
	}
	if product.Cost.IsNegative() || product.Price.IsNegative() {
		return fmt.Errorf("%w: cost and price must not be negative", shared.ErrValidation)
	}
	return nil
}
