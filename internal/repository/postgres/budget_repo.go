package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const budgetSelect = `SELECT b.id, b.workspace_id, b.month, b.scope, b.category_id, c.name, b.amount,
	b.warn_threshold, b.rollover, b.created_at, b.updated_at`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Upsert creates or updates a budget keyed by (workspace, month, scope, category).
// The bool result is true when a row was inserted.
func (r *BudgetRepository) Upsert(budget *domain.Budget) (*domain.Budget, bool, error) {
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, false, err
	}
	warn, err := decimalToPgNumeric(budget.WarnThreshold)
	if err != nil {
		return nil, false, err
	}

	var inserted bool
	row := r.pool.QueryRow(context.Background(),
		`WITH b AS (
			INSERT INTO budgets (workspace_id, month, scope, category_id, amount, warn_threshold, rollover)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT ON CONSTRAINT budgets_owner_month_scope_key DO UPDATE
			  SET amount = EXCLUDED.amount,
			      warn_threshold = EXCLUDED.warn_threshold,
			      rollover = EXCLUDED.rollover,
			      updated_at = NOW()
			RETURNING *, (xmax = 0) AS inserted
		)
		`+budgetSelect+`, b.inserted FROM b LEFT JOIN categories c ON c.id = b.category_id`,
		budget.WorkspaceID, dateToPg(budget.Month), string(budget.Scope), int32PtrToPgInt4(budget.CategoryID),
		amount, warn, budget.Rollover)

	b, err := scanBudget(row, &inserted)
	if err != nil {
		return nil, false, err
	}
	return b, inserted, nil
}

// GetByID retrieves a budget owned by the workspace
func (r *BudgetRepository) GetByID(workspaceID int32, id int32) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		budgetSelect+` FROM budgets b LEFT JOIN categories c ON c.id = b.category_id
		 WHERE b.id = $1 AND b.workspace_id = $2`, id, workspaceID)
	return scanBudget(row)
}

// GetByMonth lists the overall budget first, then category budgets by category name
func (r *BudgetRepository) GetByMonth(workspaceID int32, month time.Time) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(context.Background(),
		budgetSelect+` FROM budgets b LEFT JOIN categories c ON c.id = b.category_id
		 WHERE b.workspace_id = $1 AND b.month = $2
		 ORDER BY b.scope DESC, c.name, b.id`, workspaceID, dateToPg(month))
	if err != nil {
		return nil, err
	}
	return collectBudgets(rows)
}

// Delete removes a budget
func (r *BudgetRepository) Delete(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM budgets WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

// CountByMonth counts budgets across all workspaces for a month
func (r *BudgetRepository) CountByMonth(month time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM budgets WHERE month = $1`, dateToPg(month)).Scan(&count)
	return count, err
}

// ListForExport returns every budget in scope
func (r *BudgetRepository) ListForExport(scope domain.ReportScope) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(context.Background(),
		budgetSelect+` FROM budgets b LEFT JOIN categories c ON c.id = b.category_id
		 WHERE ($1::int IS NULL OR b.workspace_id = $1) ORDER BY b.month, b.id`,
		scopeArg(scope.WorkspaceID))
	if err != nil {
		return nil, err
	}
	return collectBudgets(rows)
}

func collectBudgets(rows pgx.Rows) ([]*domain.Budget, error) {
	defer rows.Close()
	budgets := []*domain.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// scanBudget reads a budgetSelect row; extra receives trailing columns
func scanBudget(row pgx.Row, extra ...any) (*domain.Budget, error) {
	var (
		b            domain.Budget
		month        pgtype.Date
		scope        string
		categoryID   pgtype.Int4
		categoryName pgtype.Text
		amount       pgtype.Numeric
		warn         pgtype.Numeric
	)
	dest := append([]any{&b.ID, &b.WorkspaceID, &month, &scope, &categoryID, &categoryName, &amount,
		&warn, &b.Rollover, &b.CreatedAt, &b.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	b.Month = month.Time
	b.Scope = domain.BudgetScope(scope)
	b.CategoryID = pgInt4ToInt32Ptr(categoryID)
	b.CategoryName = pgTextToStringPtr(categoryName)
	b.Amount = pgNumericToDecimal(amount)
	b.WarnThreshold = pgNumericToDecimal(warn)
	return &b, nil
}
