// Package units manages units of measure.
package units

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

type Unit struct {
	ID           int64     `json:"id"`
	Abbreviation string    `json:"abbreviation"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Unit, int, error)
	Get(ctx context.Context, id int64) (Unit, error)
	Create(ctx context.Context, c Unit) (Unit, error)
	Update(ctx context.Context, id int64, c Unit) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Unit, int, error) {
	countQuery := `SELECT COUNT(*) FROM units`
	query := `SELECT id, abbreviation, description, created_at, updated_at FROM units`
	args := []interface{}{}
	countArgs := []interface{}{}
	if filters.Search != "" {
		query += ` WHERE abbreviation ILIKE $1`
		countQuery += ` WHERE abbreviation ILIKE $1`
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query += ` ORDER BY abbreviation`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Unit
	for rows.Next() {
		var c Unit
		if err := rows.Scan(&c.ID, &c.Abbreviation, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Unit, error) {
	var c Unit
	err := r.db.QueryRow(ctx, `SELECT id, abbreviation, description, created_at, updated_at FROM units WHERE id = $1`, id).
		Scan(&c.ID, &c.Abbreviation, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unit{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Unit) (Unit, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO units (abbreviation, description, created_at, updated_at) VALUES ($1, $2, $3, $3) RETURNING id`,
		c.Abbreviation, c.Description, now).Scan(&c.ID)
	if err != nil {
		return Unit{}, err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Unit) error {
	tag, err := r.db.Exec(ctx, `UPDATE units SET abbreviation = $1, description = $2, updated_at = $3 WHERE id = $4`,
		c.Abbreviation, c.Description, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Unit, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Unit, error) {
	if id <= 0 {
		return Unit{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, c Unit) (Unit, error) {
	if strings.TrimSpace(c.Abbreviation) == "" {
		return Unit{}, fmt.Errorf("%w: abbreviation", shared.ErrRequiredField)
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, c Unit) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if strings.TrimSpace(c.Abbreviation) == "" {
		return fmt.Errorf("%w: abbreviation", shared.ErrRequiredField)
	}
	return s.repo.Update(ctx, id, c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
