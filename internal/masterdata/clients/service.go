package clients

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Client, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Client, error) {
	if id <= 0 {
		return Client{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, client Client) (Client, error) {
	if err := s.validate(client); err != nil {
		return Client{}, err
	}
	return s.repo.Create(ctx, client)
}

func (s *Service) Update(ctx context.Context, id int64, client Client) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(client); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, client)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(client Client) error {
	if strings.TrimSpace(client.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return nil
}
