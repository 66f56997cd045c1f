// Package brands manages product brands.
package brands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/varejo-erp/varejo-erp/internal/masterdata/shared"
)

type Brand struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Brand, int, error)
	Get(ctx context.Context, id int64) (Brand, error)
	Create(ctx context.Context, c Brand) (Brand, error)
	Update(ctx context.Context, id int64, c Brand) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Brand, int, error) {
	countQuery := `SELECT COUNT(*) FROM brands`
	query := `SELECT id, name, description, created_at, updated_at FROM brands`
	args := []interface{}{}
	countArgs := []interface{}{}
	if filters.Search != "" {
		query += ` WHERE name ILIKE $1`
		countQuery += ` WHERE name ILIKE $1`
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query += ` ORDER BY name`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Brand
	for rows.Next() {
		var c Brand
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Brand, error) {
	var c Brand
	err := r.db.QueryRow(ctx, `SELECT id, name, description, created_at, updated_at FROM brands WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Brand{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Brand) (Brand, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO brands (name, description, created_at, updated_at) VALUES ($1, $2, $3, $3) RETURNING id`,
		c.Name, c.Description, now).Scan(&c.ID)
	if err != nil {
		return Brand{}, err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Brand) error {
	tag, err := r.db.Exec(ctx, `UPDATE brands SET name = $1, description = $2, updated_at = $3 WHERE id = $4`,
		c.Name, c.Description, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Brand, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Brand, error) {
	if id <= 0 {
		return Brand{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, c Brand) (Brand, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Brand{}, fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, c Brand) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return s.repo.Update(ctx, id, c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
