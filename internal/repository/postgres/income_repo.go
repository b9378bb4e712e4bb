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

const incomeColumns = `id, workspace_id, month, source_id, source_name, amount, notes, created_at, updated_at`

// IncomeRepository implements domain.IncomeRepository using PostgreSQL
type IncomeRepository struct {
	pool *pgxpool.Pool
}

func NewIncomeRepository(pool *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{pool: pool}
}

func (r *IncomeRepository) Create(income *domain.Income) (*domain.Income, error) {
	amount, err := decimalToPgNumeric(income.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO incomes (workspace_id, month, source_id, source_name, amount, notes)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+incomeColumns,
		income.WorkspaceID, dateToPg(income.Month), int32PtrToPgInt4(income.SourceID), income.SourceName, amount, income.Notes)
	return scanIncome(row)
}

func (r *IncomeRepository) GetByMonth(workspaceID int32, month time.Time) ([]*domain.Income, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+incomeColumns+` FROM incomes WHERE workspace_id = $1 AND month = $2 ORDER BY id`,
		workspaceID, dateToPg(month))
	if err != nil {
		return nil, err
	}
	return collectIncomes(rows)
}

// SumByMonth totals the workspace's income for a normalized month
func (r *IncomeRepository) SumByMonth(workspaceID int32, month time.Time) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.pool.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(amount), 0) FROM incomes WHERE workspace_id = $1 AND month = $2`,
		workspaceID, dateToPg(month)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

func (r *IncomeRepository) Delete(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM incomes WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}
	return nil
}

func (r *IncomeRepository) ListForExport(scope domain.ReportScope) ([]*domain.Income, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+incomeColumns+` FROM incomes WHERE ($1::int IS NULL OR workspace_id = $1) ORDER BY month, id`,
		scopeArg(scope.WorkspaceID))
	if err != nil {
		return nil, err
	}
	return collectIncomes(rows)
}

func collectIncomes(rows pgx.Rows) ([]*domain.Income, error) {
	defer rows.Close()
	incomes := []*domain.Income{}
	for rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, i)
	}
	return incomes, rows.Err()
}

func scanIncome(row pgx.Row) (*domain.Income, error) {
	var (
		i        domain.Income
		month    pgtype.Date
		sourceID pgtype.Int4
		amount   pgtype.Numeric
	)
	err := row.Scan(&i.ID, &i.WorkspaceID, &month, &sourceID, &i.SourceName, &amount, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeNotFound
		}
		return nil, err
	}
	i.Month = month.Time
	i.SourceID = pgInt4ToInt32Ptr(sourceID)
	i.Amount = pgNumericToDecimal(amount)
	return &i, nil
}
