package documents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/varejo-erp/varejo-erp/internal/platform/db"
)

// ListFilters narrows document list queries.
type ListFilters struct {
	CounterpartyID   *int64
	IssuedFrom       *time.Time
	IssuedTo         *time.Time
	IncludeCancelled bool
	Limit            int
	Offset           int
}

// Repository persists document aggregates. WithTx rebinds the repository to a
// transaction; every write issued through the rebound instance either commits
// as a whole or rolls back as a whole.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	GetHeader(ctx context.Context, ref DocumentRef) (Header, error)
	ListHeaders(ctx context.Context, kind DocumentKind, filters ListFilters) ([]Header, int, error)
	InsertHeader(ctx context.Context, h Header) error
	UpdateHeader(ctx context.Context, h Header) error
	SetCancelled(ctx context.Context, ref DocumentRef, at time.Time) error

	GetItems(ctx context.Context, ref DocumentRef) ([]Item, error)
	InsertItem(ctx context.Context, ref DocumentRef, item Item) error
	DeleteItems(ctx context.Context, ref DocumentRef) error

	GetInstallments(ctx context.Context, ref DocumentRef) ([]Installment, error)
	GetInstallment(ctx context.Context, ref DocumentRef, sequence int) (Installment, error)
	InsertInstallment(ctx context.Context, ref DocumentRef, inst Installment) error
	DeleteInstallments(ctx context.Context, ref DocumentRef) error
	MarkInstallmentPaid(ctx context.Context, ref DocumentRef, sequence int, paidDate time.Time, paidAmount decimal.Decimal, settlementRef string) error
	CancelInstallment(ctx context.Context, ref DocumentRef, sequence int) error
	HasPaidSibling(ctx context.Context, ref DocumentRef) (bool, error)
}

// tableSet names the three tables backing one document kind. Purchase and
// sales documents are structurally identical; they differ only in which party
// plays the counterparty role and which tables hold the rows.
type tableSet struct {
	headers         string
	items           string
	installments    string
	counterpartyCol string
}

var tableSets = map[DocumentKind]tableSet{
	KindPurchase: {
		headers:         "purchase_notes",
		items:           "purchase_note_items",
		installments:    "payable_installments",
		counterpartyCol: "supplier_id",
	},
	KindSales: {
		headers:         "sales_notes",
		items:           "sales_note_items",
		installments:    "receivable_installments",
		counterpartyCol: "client_id",
	},
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a document repository over the pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
	return wrapStoreErr(err)
}

func tablesFor(kind DocumentKind) (tableSet, error) {
	ts, ok := tableSets[kind]
	if !ok {
		return tableSet{}, fmt.Errorf("%w: unsupported document kind %q", ErrValidation, kind)
	}
	return ts, nil
}

// wrapStoreErr maps driver failures onto the package taxonomy. Domain
// sentinels pass through untouched so a rollback keeps its original cause.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrNotFound, ErrDuplicate, ErrValidation, ErrAlreadyCancelled,
		ErrSettlementConflict, ErrInvalidCondition, ErrInconsistentCondition, ErrUnknownReference, ErrPersistence} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

func (r *repository) GetHeader(ctx context.Context, ref DocumentRef) (Header, error) {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return Header{}, err
	}
	query := `SELECT doc_model, series, number, ` + ts.counterpartyCol + `, issue_date, arrival_date,
		freight_type, freight_value, insurance_value, other_expenses, products_total, payable_total,
		payment_condition_id, carrier_id, vehicle_plate, note, cancelled_at, created_at, updated_at
		FROM ` + ts.headers + ` WHERE doc_model = $1 AND series = $2 AND number = $3`

	h := Header{Ref: ref}
	err = r.db.QueryRow(ctx, query, ref.Model, ref.Series, ref.Number).Scan(
		&h.Ref.Model, &h.Ref.Series, &h.Ref.Number, &h.CounterpartyID, &h.IssueDate, &h.ArrivalDate,
		&h.FreightType, &h.FreightValue, &h.InsuranceValue, &h.OtherExpenses, &h.ProductsTotal, &h.PayableTotal,
		&h.PaymentConditionID, &h.CarrierID, &h.VehiclePlate, &h.Note, &h.CancelledAt, &h.CreatedAt, &h.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Header{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return Header{}, wrapStoreErr(err)
	}
	return h, nil
}

func (r *repository) ListHeaders(ctx context.Context, kind DocumentKind, filters ListFilters) ([]Header, int, error) {
	ts, err := tablesFor(kind)
	if err != nil {
		return nil, 0, err
	}

	where := ` WHERE 1=1`
	args := []interface{}{}
	argN := 0
	if filters.CounterpartyID != nil {
		argN++
		where += ` AND ` + ts.counterpartyCol + ` = $` + strconv.Itoa(argN)
		args = append(args, *filters.CounterpartyID)
	}
	if filters.IssuedFrom != nil {
		argN++
		where += ` AND issue_date >= $` + strconv.Itoa(argN)
		args = append(args, *filters.IssuedFrom)
	}
	if filters.IssuedTo != nil {
		argN++
		where += ` AND issue_date <= $` + strconv.Itoa(argN)
		args = append(args, *filters.IssuedTo)
	}
	if !filters.IncludeCancelled {
		where += ` AND cancelled_at IS NULL`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM `+ts.headers+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapStoreErr(err)
	}

	query := `SELECT doc_model, series, number, ` + ts.counterpartyCol + `, issue_date, arrival_date,
		freight_type, freight_value, insurance_value, other_expenses, products_total, payable_total,
		payment_condition_id, carrier_id, vehicle_plate, note, cancelled_at, created_at, updated_at
		FROM ` + ts.headers + where + ` ORDER BY issue_date DESC, number DESC`
	if filters.Limit > 0 {
		argN++
		query += ` LIMIT $` + strconv.Itoa(argN)
		args = append(args, filters.Limit)
		argN++
		query += ` OFFSET $` + strconv.Itoa(argN)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapStoreErr(err)
	}
	defer rows.Close()

	var headers []Header
	for rows.Next() {
		h := Header{Ref: DocumentRef{Kind: kind}}
		if err := rows.Scan(
			&h.Ref.Model, &h.Ref.Series, &h.Ref.Number, &h.CounterpartyID, &h.IssueDate, &h.ArrivalDate,
			&h.FreightType, &h.FreightValue, &h.InsuranceValue, &h.OtherExpenses, &h.ProductsTotal, &h.PayableTotal,
			&h.PaymentConditionID, &h.CarrierID, &h.VehiclePlate, &h.Note, &h.CancelledAt, &h.CreatedAt, &h.UpdatedAt,
		); err != nil {
			return nil, 0, wrapStoreErr(err)
		}
		headers = append(headers, h)
	}
	return headers, total, wrapStoreErr(rows.Err())
}

func (r *repository) InsertHeader(ctx context.Context, h Header) error {
	ts, err := tablesFor(h.Ref.Kind)
	if err != nil {
		return err
	}
	query := `INSERT INTO ` + ts.headers + ` (doc_model, series, number, ` + ts.counterpartyCol + `, issue_date,
		arrival_date, freight_type, freight_value, insurance_value, other_expenses, products_total, payable_total,
		payment_condition_id, carrier_id, vehicle_plate, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err = r.db.Exec(ctx, query,
		h.Ref.Model, h.Ref.Series, h.Ref.Number, h.CounterpartyID, h.IssueDate,
		h.ArrivalDate, h.FreightType, h.FreightValue, h.InsuranceValue, h.OtherExpenses, h.ProductsTotal, h.PayableTotal,
		h.PaymentConditionID, h.CarrierID, h.VehiclePlate, h.Note, h.CreatedAt, h.UpdatedAt,
	)
	return wrapStoreErr(err)
}

func (r *repository) UpdateHeader(ctx context.Context, h Header) error {
	ts, err := tablesFor(h.Ref.Kind)
	if err != nil {
		return err
	}
	query := `UPDATE ` + ts.headers + ` SET ` + ts.counterpartyCol + ` = $4, issue_date = $5, arrival_date = $6,
		freight_type = $7, freight_value = $8, insurance_value = $9, other_expenses = $10, products_total = $11,
		payable_total = $12, payment_condition_id = $13, carrier_id = $14, vehicle_plate = $15, note = $16,
		updated_at = $17
		WHERE doc_model = $1 AND series = $2 AND number = $3`
	tag, err := r.db.Exec(ctx, query,
		h.Ref.Model, h.Ref.Series, h.Ref.Number, h.CounterpartyID, h.IssueDate, h.ArrivalDate,
		h.FreightType, h.FreightValue, h.InsuranceValue, h.OtherExpenses, h.ProductsTotal,
		h.PayableTotal, h.PaymentConditionID, h.CarrierID, h.VehiclePlate, h.Note, h.UpdatedAt,
	)
	if err != nil {
		return wrapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, h.Ref)
	}
	return nil
}

func (r *repository) SetCancelled(ctx context.Context, ref DocumentRef, at time.Time) error {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE `+ts.headers+` SET cancelled_at = $4, updated_at = $4 WHERE doc_model = $1 AND series = $2 AND number = $3`,
		ref.Model, ref.Series, ref.Number, at,
	)
	if err != nil {
		return wrapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return nil
}

func (r *repository) GetItems(ctx context.Context, ref DocumentRef) ([]Item, error) {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT sequence, product_id, unit_id, quantity, unit_price, unit_discount, net_unit, line_total,
			allocated_share, final_unit_cost
		 FROM `+ts.items+` WHERE doc_model = $1 AND series = $2 AND number = $3 ORDER BY sequence`,
		ref.Model, ref.Series, ref.Number,
	)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Sequence, &it.ProductID, &it.UnitID, &it.Quantity, &it.UnitPrice,
			&it.UnitDiscount, &it.NetUnit, &it.LineTotal, &it.AllocatedShare, &it.FinalUnitCost); err != nil {
			return nil, wrapStoreErr(err)
		}
		items = append(items, it)
	}
	return items, wrapStoreErr(rows.Err())
}

func (r *repository) InsertItem(ctx context.Context, ref DocumentRef, item Item) error {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO `+ts.items+` (doc_model, series, number, sequence, product_id, unit_id, quantity,
			unit_price, unit_discount, net_unit, line_total, allocated_share, final_unit_cost)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		ref.Model, ref.Series, ref.Number, item.Sequence, item.ProductID, item.UnitID, item.Quantity,
		item.UnitPrice, item.UnitDiscount, item.NetUnit, item.LineTotal, item.AllocatedShare, item.FinalUnitCost,
	)
	return wrapStoreErr(err)
}

func (r *repository) DeleteItems(ctx context.Context, ref DocumentRef) error {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`DELETE FROM `+ts.items+` WHERE doc_model = $1 AND series = $2 AND number = $3`,
		ref.Model, ref.Series, ref.Number,
	)
	return wrapStoreErr(err)
}

func (r *repository) GetInstallments(ctx context.Context, ref DocumentRef) ([]Installment, error) {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT sequence, due_date, amount, payment_method_id, status, paid_date, paid_amount, settlement_ref
		 FROM `+ts.installments+` WHERE doc_model = $1 AND series = $2 AND number = $3 ORDER BY sequence`,
		ref.Model, ref.Series, ref.Number,
	)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer rows.Close()

	var installments []Installment
	for rows.Next() {
		var inst Installment
		if err := rows.Scan(&inst.Sequence, &inst.DueDate, &inst.Amount, &inst.PaymentMethodID,
			&inst.Status, &inst.PaidDate, &inst.PaidAmount, &inst.SettlementRef); err != nil {
			return nil, wrapStoreErr(err)
		}
		installments = append(installments, inst)
	}
	return installments, wrapStoreErr(rows.Err())
}

func (r *repository) GetInstallment(ctx context.Context, ref DocumentRef, sequence int) (Installment, error) {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return Installment{}, err
	}
	var inst Installment
	err = r.db.QueryRow(ctx,
		`SELECT sequence, due_date, amount, payment_method_id, status, paid_date, paid_amount, settlement_ref
		 FROM `+ts.installments+` WHERE doc_model = $1 AND series = $2 AND number = $3 AND sequence = $4`,
		ref.Model, ref.Series, ref.Number, sequence,
	).Scan(&inst.Sequence, &inst.DueDate, &inst.Amount, &inst.PaymentMethodID,
		&inst.Status, &inst.PaidDate, &inst.PaidAmount, &inst.SettlementRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return Installment{}, fmt.Errorf("%w: %s installment %d", ErrNotFound, ref, sequence)
	}
	if err != nil {
		return Installment{}, wrapStoreErr(err)
	}
	return inst, nil
}

func (r *repository) InsertInstallment(ctx context.Context, ref DocumentRef, inst Installment) error {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO `+ts.installments+` (doc_model, series, number, sequence, due_date, amount,
			payment_method_id, status, paid_date, paid_amount, settlement_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		ref.Model, ref.Series, ref.Number, inst.Sequence, inst.DueDate, inst.Amount,
		inst.PaymentMethodID, inst.Status, inst.PaidDate, inst.PaidAmount, inst.SettlementRef,
	)
	return wrapStoreErr(err)
}

func (r *repository) DeleteInstallments(ctx context.Context, ref DocumentRef) error {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`DELETE FROM `+ts.installments+` WHERE doc_model = $1 AND series = $2 AND number = $3`,
		ref.Model, ref.Series, ref.Number,
	)
	return wrapStoreErr(err)
}

func (r *repository) MarkInstallmentPaid(ctx context.Context, ref DocumentRef, sequence int, paidDate time.Time, paidAmount decimal.Decimal, settlementRef string) error {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE `+ts.installments+` SET status = $5, paid_date = $6, paid_amount = $7, settlement_ref = $8
		 WHERE doc_model = $1 AND series = $2 AND number = $3 AND sequence = $4 AND status = $9`,
		ref.Model, ref.Series, ref.Number, sequence,
		InstallmentPaid, paidDate, paidAmount, settlementRef, InstallmentOpen,
	)
	if err != nil {
		return wrapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s installment %d is not open", ErrSettlementConflict, ref, sequence)
	}
	return nil
}

func (r *repository) CancelInstallment(ctx context.Context, ref DocumentRef, sequence int) error {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE `+ts.installments+` SET status = $5
		 WHERE doc_model = $1 AND series = $2 AND number = $3 AND sequence = $4 AND status = $6`,
		ref.Model, ref.Series, ref.Number, sequence, InstallmentCancelled, InstallmentOpen,
	)
	if err != nil {
		return wrapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s installment %d is not open", ErrAlreadyCancelled, ref, sequence)
	}
	return nil
}

func (r *repository) HasPaidSibling(ctx context.Context, ref DocumentRef) (bool, error) {
	ts, err := tablesFor(ref.Kind)
	if err != nil {
		return false, err
	}
	var exists bool
	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+ts.installments+`
		 WHERE doc_model = $1 AND series = $2 AND number = $3 AND status = $4)`,
		ref.Model, ref.Series, ref.Number, InstallmentPaid,
	).Scan(&exists)
	if err != nil {
		return false, wrapStoreErr(err)
	}
	return exists, nil
}
