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

const monthlyBudgetColumns = `id, workspace_id, month, total_budget, notes, created_at, updated_at`

// MonthlyBudgetRepository implements domain.MonthlyBudgetRepository using PostgreSQL
type MonthlyBudgetRepository struct {
	pool *pgxpool.Pool
}

func NewMonthlyBudgetRepository(pool *pgxpool.Pool) *MonthlyBudgetRepository {
	return &MonthlyBudgetRepository{pool: pool}
}

// Upsert sets the total budget for a month
func (r *MonthlyBudgetRepository) Upsert(budget *domain.MonthlyBudget) (*domain.MonthlyBudget, bool, error) {
	total, err := decimalToPgNumeric(budget.TotalBudget)
	if err != nil {
		return nil, false, err
	}

	var inserted bool
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO monthly_budgets (workspace_id, month, total_budget, notes)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT ON CONSTRAINT monthly_budgets_owner_month_key DO UPDATE
		   SET total_budget = EXCLUDED.total_budget, notes = EXCLUDED.notes, updated_at = NOW()
		 RETURNING `+monthlyBudgetColumns+`, (xmax = 0)`,
		budget.WorkspaceID, dateToPg(budget.Month), total, budget.Notes)
	mb, err := scanMonthlyBudget(row, &inserted)
	if err != nil {
		return nil, false, err
	}
	return mb, inserted, nil
}

// GetByMonth returns domain.ErrBudgetNotFound when the month has no total budget
func (r *MonthlyBudgetRepository) GetByMonth(workspaceID int32, month time.Time) (*domain.MonthlyBudget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+monthlyBudgetColumns+` FROM monthly_budgets WHERE workspace_id = $1 AND month = $2`,
		workspaceID, dateToPg(month))
	return scanMonthlyBudget(row)
}

func (r *MonthlyBudgetRepository) ListForExport(scope domain.ReportScope) ([]*domain.MonthlyBudget, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+monthlyBudgetColumns+` FROM monthly_budgets
		 WHERE ($1::int IS NULL OR workspace_id = $1) ORDER BY month, id`,
		scopeArg(scope.WorkspaceID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []*domain.MonthlyBudget{}
	for rows.Next() {
		mb, err := scanMonthlyBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, mb)
	}
	return budgets, rows.Err()
}

func scanMonthlyBudget(row pgx.Row, extra ...any) (*domain.MonthlyBudget, error) {
	var (
		mb    domain.MonthlyBudget
		month pgtype.Date
		total pgtype.Numeric
	)
	dest := append([]any{&mb.ID, &mb.WorkspaceID, &month, &total, &mb.Notes, &mb.CreatedAt, &mb.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	mb.Month = month.Time
	mb.TotalBudget = pgNumericToDecimal(total)
	return &mb, nil
}
