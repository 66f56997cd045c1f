package clients

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/varejo-erp/varejo-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Client, int, error)
	Get(ctx context.Context, id int64) (Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, id int64, client Client) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Client, int, error) {
	query := `SELECT id, code, name, tax_id, address, email, phone, created_at, updated_at FROM clients WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM clients WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countQuery += ` AND (name ILIKE $1 OR code ILIKE $1)`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var s Client
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.TaxID, &s.Address, &s.Email, &s.Phone, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		clients = append(clients, s)
	}
	return clients, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Client, error) {
	query := `SELECT id, code, name, tax_id, address, email, phone, created_at, updated_at FROM clients WHERE id = $1`
	var s Client
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Code, &s.Name, &s.TaxID, &s.Address, &s.Email, &s.Phone, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, shared.ErrNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, client Client) (Client, error) {
	query := `INSERT INTO clients (code, name, tax_id, address, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, client.Code, client.Name, client.TaxID, client.Address, client.Email, client.Phone, now).Scan(&client.ID)
	if err != nil {
		return Client{}, err
	}
	client.CreatedAt = now
	client.UpdatedAt = now
	return client, nil
}

func (r *repository) Update(ctx context.Context, id int64, client Client) error {
	query := `UPDATE clients SET code = $1, name = $2, tax_id = $3, address = $4, email = $5, phone = $6, updated_at = $7 WHERE id = $8`
	tag, err := r.db.Exec(ctx, query, client.Code, client.Name, client.TaxID, client.Address, client.Email, client.Phone, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
