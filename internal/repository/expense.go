package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solobooks/solobooks/internal/common"
	"github.com/solobooks/solobooks/internal/entity"
)

// CreateExpenseRequest wraps the merged (extracted + client-edited) fields for
// one permanent expense row.
type CreateExpenseRequest struct {
	UserID          uuid.UUID
	VendorName      string
	Amount          float64
	TxDate          time.Time
	CurrencyCode    string
	Description     string
	InvoiceNumber   string
	Notes           string
	CategoryID      *uuid.UUID
	PaymentMethodID *uuid.UUID
}

// Validate applies the row-level rules before touching the database.
func (r *CreateExpenseRequest) Validate() error {
	if strings.TrimSpace(r.VendorName) == "" {
		return common.NewAppError("VALIDATION", "vendor name is required", common.ErrInvalidInput)
	}
	if r.Amount <= 0 {
		return common.NewAppError("VALIDATION", "amount must be positive", common.ErrInvalidInput)
	}
	if r.TxDate.IsZero() {
		return common.NewAppError("VALIDATION", "transaction date is required", common.ErrInvalidInput)
	}
	if len(r.CurrencyCode) != 3 {
		return common.NewAppError("VALIDATION", "currency must be a 3-letter ISO 4217 code", common.ErrInvalidInput)
	}
	return nil
}

type ExpenseRepository interface {
	// CreateExpense inserts one expense row in its own transaction so a
	// failing sibling in the same confirm batch cannot roll it back.
	CreateExpense(ctx context.Context, req *CreateExpenseRequest) (*entity.Expense, error)
	// ListExpenses returns the user's expenses inside an optional inclusive
	// date window, ordered by transaction date.
	ListExpenses(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]entity.Expense, error)
}

type expenseRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewExpenseRepository(pool *pgxpool.Pool, logger *slog.Logger) ExpenseRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &expenseRepository{pool: pool, logger: logger}
}

func (r *expenseRepository) CreateExpense(ctx context.Context, req *CreateExpenseRequest) (*entity.Expense, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	exp := &entity.Expense{
		ID:              uuid.New(),
		UserID:          req.UserID,
		VendorName:      strings.TrimSpace(req.VendorName),
		Amount:          req.Amount,
		TxDate:          req.TxDate,
		CurrencyCode:    req.CurrencyCode,
		Description:     req.Description,
		InvoiceNumber:   req.InvoiceNumber,
		Notes:           req.Notes,
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	sql, args, err := squirrel.Insert("expenses").
		Columns("id", "user_id", "vendor_name", "amount", "tx_date", "currency_code",
			"description", "invoice_number", "notes", "category_id", "payment_method_id",
			"created_at", "updated_at").
		Values(exp.ID, exp.UserID, exp.VendorName, exp.Amount, exp.TxDate, exp.CurrencyCode,
			exp.Description, exp.InvoiceNumber, exp.Notes, exp.CategoryID, exp.PaymentMethodID,
			exp.CreatedAt, exp.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, common.WrapError(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		r.logger.Error("expense.create.failed", "user_id", req.UserID, "vendor", exp.VendorName, "error", err)
		return nil, common.WrapError(err, "insert expense")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.WrapError(err, "commit expense")
	}
	return exp, nil
}

func (r *expenseRepository) ListExpenses(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]entity.Expense, error) {
	q := squirrel.Select("id", "user_id", "vendor_name", "amount", "tx_date", "currency_code",
		"description", "invoice_number", "notes", "category_id", "payment_method_id",
		"created_at", "updated_at").
		From("expenses").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("tx_date", "created_at").
		PlaceholderFormat(squirrel.Dollar)
	if from != nil {
		q = q.Where(squirrel.GtOrEq{"tx_date": *from})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{"tx_date": *to})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error("expense.list.failed", "user_id", userID, "error", err)
		return nil, common.WrapError(err, "list expenses")
	}
	defer rows.Close()

	var out []entity.Expense
	for rows.Next() {
		var e entity.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.VendorName, &e.Amount, &e.TxDate, &e.CurrencyCode,
			&e.Description, &e.InvoiceNumber, &e.Notes, &e.CategoryID, &e.PaymentMethodID,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
