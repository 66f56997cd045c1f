package payterms

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/varejo-erp/varejo-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetCondition returns a payment condition with its templates in sequence order.
func (r *Repository) GetCondition(ctx context.Context, id int64) (PaymentCondition, error) {
	var c PaymentCondition
	err := r.pool.QueryRow(ctx,
		`SELECT id, description, interest_rate, fine_rate, discount_rate, created_at, updated_at
		 FROM payment_conditions WHERE id = $1`, id).
		Scan(&c.ID, &c.Description, &c.InterestRate, &c.FineRate, &c.DiscountRate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaymentCondition{}, ErrNotFound
		}
		return PaymentCondition{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT sequence, day_offset, percentage, payment_method_id
		 FROM installment_templates WHERE condition_id = $1 ORDER BY sequence`, id)
	if err != nil {
		return PaymentCondition{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var t InstallmentTemplate
		if err := rows.Scan(&t.Sequence, &t.DayOffset, &t.Percentage, &t.PaymentMethodID); err != nil {
			return PaymentCondition{}, err
		}
		c.Templates = append(c.Templates, t)
	}
	return c, rows.Err()
}

// ListConditions returns all payment conditions with their templates.
func (r *Repository) ListConditions(ctx context.Context) ([]PaymentCondition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, description, interest_rate, fine_rate, discount_rate, created_at, updated_at
		 FROM payment_conditions ORDER BY description`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conditions []PaymentCondition
	byID := map[int64]int{}
	for rows.Next() {
		var c PaymentCondition
		if err := rows.Scan(&c.ID, &c.Description, &c.InterestRate, &c.FineRate, &c.DiscountRate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		byID[c.ID] = len(conditions)
		conditions = append(conditions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tmplRows, err := r.pool.Query(ctx,
		`SELECT condition_id, sequence, day_offset, percentage, payment_method_id
		 FROM installment_templates ORDER BY condition_id, sequence`)
	if err != nil {
		return nil, err
	}
	defer tmplRows.Close()

	for tmplRows.Next() {
		var conditionID int64
		var t InstallmentTemplate
		if err := tmplRows.Scan(&conditionID, &t.Sequence, &t.DayOffset, &t.Percentage, &t.PaymentMethodID); err != nil {
			return nil, err
		}
		if idx, ok := byID[conditionID]; ok {
			conditions[idx].Templates = append(conditions[idx].Templates, t)
		}
	}
	return conditions, tmplRows.Err()
}

// CreateCondition inserts a condition and its templates in one transaction.
func (r *Repository) CreateCondition(ctx context.Context, c PaymentCondition) (PaymentCondition, error) {
	now := time.Now()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO payment_conditions (description, interest_rate, fine_rate, discount_rate, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
			c.Description, c.InterestRate, c.FineRate, c.DiscountRate, now).Scan(&c.ID); err != nil {
			return err
		}
		return insertTemplates(ctx, tx, c.ID, c.Templates)
	})
	if err != nil {
		return PaymentCondition{}, err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

// UpdateCondition rewrites the condition row and replaces its templates wholesale.
func (r *Repository) UpdateCondition(ctx context.Context, c PaymentCondition) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE payment_conditions SET description = $1, interest_rate = $2, fine_rate = $3, discount_rate = $4, updated_at = $5
			 WHERE id = $6`,
			c.Description, c.InterestRate, c.FineRate, c.DiscountRate, time.Now(), c.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM installment_templates WHERE condition_id = $1`, c.ID); err != nil {
			return err
		}
		return insertTemplates(ctx, tx, c.ID, c.Templates)
	})
}

// DeleteCondition removes a condition and its templates.
func (r *Repository) DeleteCondition(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM installment_templates WHERE condition_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM payment_conditions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func insertTemplates(ctx context.Context, tx pgx.Tx, conditionID int64, templates []InstallmentTemplate) error {
	for _, t := range templates {
		if _, err := tx.Exec(ctx,
			`INSERT INTO installment_templates (condition_id, sequence, day_offset, percentage, payment_method_id)
			 VALUES ($1, $2, $3, $4, $5)`,
			conditionID, t.Sequence, t.DayOffset, t.Percentage, t.PaymentMethodID); err != nil {
			return err
		}
	}
	return nil
}

// GetMethod returns a payment method.
func (r *Repository) GetMethod(ctx context.Context, id int64) (PaymentMethod, error) {
	var m PaymentMethod
	err := r.pool.QueryRow(ctx,
		`SELECT id, description, created_at, updated_at FROM payment_methods WHERE id = $1`, id).
		Scan(&m.ID, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PaymentMethod{}, ErrNotFound
	}
	return m, err
}

// ListMethods returns all payment methods.
func (r *Repository) ListMethods(ctx context.Context) ([]PaymentMethod, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, description, created_at, updated_at FROM payment_methods ORDER BY description`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []PaymentMethod
	for rows.Next() {
		var m PaymentMethod
		if err := rows.Scan(&m.ID, &m.Description, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

// CreateMethod inserts a payment method.
func (r *Repository) CreateMethod(ctx context.Context, m PaymentMethod) (PaymentMethod, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payment_methods (description, created_at, updated_at) VALUES ($1, $2, $2) RETURNING id`,
		m.Description, now).Scan(&m.ID)
	if err != nil {
		return PaymentMethod{}, err
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	return m, nil
}

// UpdateMethod rewrites a payment method.
func (r *Repository) UpdateMethod(ctx context.Context, m PaymentMethod) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payment_methods SET description = $1, updated_at = $2 WHERE id = $3`,
		m.Description, time.Now(), m.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMethod removes a payment method.
func (r *Repository) DeleteMethod(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
