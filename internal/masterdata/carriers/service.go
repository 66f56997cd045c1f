package carriers

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Carrier, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Carrier, error) {
	if id <= 0 {
		return Carrier{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, carrier Carrier) (Carrier, error) {
	if err := s.validate(carrier); err != nil {
		return Carrier{}, err
	}
	return s.repo.Create(ctx, carrier)
}

func (s *Service) Update(ctx context.Context, id int64, carrier Carrier) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(carrier); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, carrier)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(carrier Carrier) error {
	if strings.TrimSpace(carrier.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(carrier.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return nil
}
