package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const expenseSelect = `SELECT e.id, e.workspace_id, e.category_id, c.name, e.amount, e.currency, e.date,
	e.description, e.payment_method, e.merchant, e.notes, e.receipt_path, e.created_at, e.updated_at`

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// Create inserts an expense and returns it with its category name
func (r *ExpenseRepository) Create(expense *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(),
		`WITH e AS (
			INSERT INTO expenses (workspace_id, category_id, amount, currency, date, description,
			                      payment_method, merchant, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING *
		)
		`+expenseSelect+` FROM e LEFT JOIN categories c ON c.id = e.category_id`,
		expense.WorkspaceID, int32PtrToPgInt4(expense.CategoryID), amount, expense.Currency,
		dateToPg(expense.Date), expense.Description, expense.PaymentMethod, expense.Merchant, expense.Notes)
	return scanExpense(row)
}

// GetByID retrieves an expense owned by the workspace
func (r *ExpenseRepository) GetByID(workspaceID int32, id int32) (*domain.Expense, error) {
	row := r.pool.QueryRow(context.Background(),
		expenseSelect+` FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.id = $1 AND e.workspace_id = $2`, id, workspaceID)
	return scanExpense(row)
}

// List returns one page of the workspace's expenses, newest first
func (r *ExpenseRepository) List(workspaceID int32, filters *domain.ExpenseFilters) (*domain.PaginatedExpenses, error) {
	ctx := context.Background()

	page, pageSize := filters.Page, filters.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	const where = ` WHERE e.workspace_id = $1
		 AND ($2::date IS NULL OR e.date >= $2)
		 AND ($3::date IS NULL OR e.date <= $3)
		 AND ($4::int IS NULL OR e.category_id = $4)`
	args := []any{workspaceID, datePtrToPg(filters.StartDate), datePtrToPg(filters.EndDate), int32PtrToPgInt4(filters.CategoryID)}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses e`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		expenseSelect+` FROM expenses e LEFT JOIN categories c ON c.id = e.category_id`+where+
			` ORDER BY e.date DESC, e.id DESC LIMIT $5 OFFSET $6`,
		append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, err
	}
	expenses, err := collectExpenses(rows)
	if err != nil {
		return nil, err
	}

	totalPages := int32((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedExpenses{
		Data:       expenses,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Update overwrites the editable fields of an expense
func (r *ExpenseRepository) Update(expense *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(),
		`WITH e AS (
			UPDATE expenses SET category_id = $3, amount = $4, currency = $5, date = $6, description = $7,
			       payment_method = $8, merchant = $9, notes = $10, updated_at = NOW()
			WHERE id = $1 AND workspace_id = $2
			RETURNING *
		)
		`+expenseSelect+` FROM e LEFT JOIN categories c ON c.id = e.category_id`,
		expense.ID, expense.WorkspaceID, int32PtrToPgInt4(expense.CategoryID), amount, expense.Currency,
		dateToPg(expense.Date), expense.Description, expense.PaymentMethod, expense.Merchant, expense.Notes)
	return scanExpense(row)
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM expenses WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// SetReceiptPath stores or clears the object key of an expense's receipt
func (r *ExpenseRepository) SetReceiptPath(workspaceID int32, id int32, path *string) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE expenses SET receipt_path = $3, updated_at = NOW() WHERE id = $1 AND workspace_id = $2`,
		id, workspaceID, stringPtrToPgText(path))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// SumByCategory sums spend per category, largest first. Uncategorized spend has a nil CategoryID.
func (r *ExpenseRepository) SumByCategory(scope domain.ReportScope, start, end time.Time) ([]*domain.CategorySpend, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT e.category_id, COALESCE(c.name, ''), SUM(e.amount), COUNT(*)
		 FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		 WHERE ($1::int IS NULL OR e.workspace_id = $1) AND e.date BETWEEN $2 AND $3
		 GROUP BY e.category_id, c.name
		 ORDER BY SUM(e.amount) DESC, e.category_id`,
		scopeArg(scope.WorkspaceID), dateToPg(start), dateToPg(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.CategorySpend
	for rows.Next() {
		var (
			categoryID pgtype.Int4
			total      pgtype.Numeric
			cs         domain.CategorySpend
		)
		if err := rows.Scan(&categoryID, &cs.CategoryName, &total, &cs.Count); err != nil {
			return nil, err
		}
		cs.CategoryID = pgInt4ToInt32Ptr(categoryID)
		cs.Total = pgNumericToDecimal(total)
		result = append(result, &cs)
	}
	return result, rows.Err()
}

// SumTotal sums all spend in the range
func (r *ExpenseRepository) SumTotal(scope domain.ReportScope, start, end time.Time) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.pool.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(amount), 0) FROM expenses
		 WHERE ($1::int IS NULL OR workspace_id = $1) AND date BETWEEN $2 AND $3`,
		scopeArg(scope.WorkspaceID), dateToPg(start), dateToPg(end)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// DailyTotals sums spend per day for days that have any
func (r *ExpenseRepository) DailyTotals(scope domain.ReportScope, start, end time.Time) ([]*domain.DailyTotal, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT date, SUM(amount) FROM expenses
		 WHERE ($1::int IS NULL OR workspace_id = $1) AND date BETWEEN $2 AND $3
		 GROUP BY date ORDER BY date`,
		scopeArg(scope.WorkspaceID), dateToPg(start), dateToPg(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.DailyTotal
	for rows.Next() {
		var (
			day   pgtype.Date
			total pgtype.Numeric
		)
		if err := rows.Scan(&day, &total); err != nil {
			return nil, err
		}
		result = append(result, &domain.DailyTotal{Date: day.Time, Total: pgNumericToDecimal(total)})
	}
	return result, rows.Err()
}

// ListEvents returns the workspace's expenses in the range as analytics events
func (r *ExpenseRepository) ListEvents(workspaceID int32, start, end time.Time) ([]*domain.MonetaryEvent, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT e.amount, e.date, e.category_id, COALESCE(c.name, '')
		 FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.workspace_id = $1 AND e.date BETWEEN $2 AND $3
		 ORDER BY e.date, e.id`,
		workspaceID, dateToPg(start), dateToPg(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.MonetaryEvent
	for rows.Next() {
		var (
			amount     pgtype.Numeric
			day        pgtype.Date
			categoryID pgtype.Int4
			ev         domain.MonetaryEvent
		)
		if err := rows.Scan(&amount, &day, &categoryID, &ev.CategoryName); err != nil {
			return nil, err
		}
		ev.Amount = pgNumericToDecimal(amount)
		ev.Date = day.Time
		ev.CategoryID = pgInt4ToInt32Ptr(categoryID)
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// ListForExport returns every expense in scope, optionally bounded by date
func (r *ExpenseRepository) ListForExport(scope domain.ReportScope, start, end *time.Time) ([]*domain.Expense, error) {
	rows, err := r.pool.Query(context.Background(),
		expenseSelect+` FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		 WHERE ($1::int IS NULL OR e.workspace_id = $1)
		   AND ($2::date IS NULL OR e.date >= $2)
		   AND ($3::date IS NULL OR e.date <= $3)
		 ORDER BY e.date, e.id`,
		scopeArg(scope.WorkspaceID), datePtrToPg(start), datePtrToPg(end))
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

func collectExpenses(rows pgx.Rows) ([]*domain.Expense, error) {
	defer rows.Close()
	expenses := []*domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		e            domain.Expense
		categoryID   pgtype.Int4
		categoryName pgtype.Text
		amount       pgtype.Numeric
		day          pgtype.Date
		receiptPath  pgtype.Text
	)
	err := row.Scan(&e.ID, &e.WorkspaceID, &categoryID, &categoryName, &amount, &e.Currency, &day,
		&e.Description, &e.PaymentMethod, &e.Merchant, &e.Notes, &receiptPath, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	e.CategoryID = pgInt4ToInt32Ptr(categoryID)
	e.CategoryName = pgTextToStringPtr(categoryName)
	e.Amount = pgNumericToDecimal(amount)
	e.Date = day.Time
	e.ReceiptPath = pgTextToStringPtr(receiptPath)
	return &e, nil
}
