package postgres

import (
	"context"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminStatsRepository runs the cross-workspace aggregates behind the admin dashboard
type AdminStatsRepository struct {
	pool *pgxpool.Pool
}

func NewAdminStatsRepository(pool *pgxpool.Pool) *AdminStatsRepository {
	return &AdminStatsRepository{pool: pool}
}

func (r *AdminStatsRepository) CountUsers() (*domain.UserCounts, error) {
	var counts domain.UserCounts
	err := r.pool.QueryRow(context.Background(),
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_active),
		        COUNT(*) FILTER (WHERE role = 'admin')
		 FROM users`).Scan(&counts.Total, &counts.Active, &counts.Admins)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *AdminStatsRepository) CountExpenses(start, end time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM expenses WHERE date BETWEEN $1 AND $2`,
		dateToPg(start), dateToPg(end)).Scan(&count)
	return count, err
}

// TopSpenders ranks users by spend in the range
func (r *AdminStatsRepository) TopSpenders(start, end time.Time, limit int32) ([]*domain.SpenderTotal, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT u.id, u.email, SUM(e.amount), COUNT(e.id)
		 FROM expenses e
		 JOIN workspaces w ON w.id = e.workspace_id
		 JOIN users u ON u.id = w.user_id
		 WHERE e.date BETWEEN $1 AND $2
		 GROUP BY u.id, u.email
		 ORDER BY SUM(e.amount) DESC
		 LIMIT $3`,
		dateToPg(start), dateToPg(end), limit)
	if err != nil {
		return nil, err
	}
	return collectSpenders(rows)
}

func collectSpenders(rows pgx.Rows) ([]*domain.SpenderTotal, error) {
	defer rows.Close()
	spenders := []*domain.SpenderTotal{}
	for rows.Next() {
		var (
			s     domain.SpenderTotal
			total pgtype.Numeric
		)
		if err := rows.Scan(&s.UserID, &s.Email, &total, &s.Count); err != nil {
			return nil, err
		}
		s.Total = pgNumericToDecimal(total)
		spenders = append(spenders, &s)
	}
	return spenders, rows.Err()
}

const adminExpenseFrom = ` FROM expenses e
	 JOIN workspaces w ON w.id = e.workspace_id
	 JOIN users u ON u.id = w.user_id
	 LEFT JOIN categories c ON c.id = e.category_id`

const adminExpenseWhere = ` WHERE ($1::uuid IS NULL OR u.id = $1)
	 AND ($2::int IS NULL OR e.category_id = $2)
	 AND ($3::date IS NULL OR e.date >= $3)
	 AND ($4::date IS NULL OR e.date <= $4)
	 AND ($5::numeric IS NULL OR e.amount >= $5)
	 AND ($6::numeric IS NULL OR e.amount <= $6)`

func adminExpenseArgs(filters domain.AdminExpenseFilters) ([]any, error) {
	minAmount, err := decimalPtrToPgNumeric(filters.MinAmount)
	if err != nil {
		return nil, err
	}
	maxAmount, err := decimalPtrToPgNumeric(filters.MaxAmount)
	if err != nil {
		return nil, err
	}
	return []any{
		uuidPtrToPg(filters.UserID),
		int32PtrToPgInt4(filters.CategoryID),
		datePtrToPg(filters.StartDate),
		datePtrToPg(filters.EndDate),
		minAmount,
		maxAmount,
	}, nil
}

// ListExpenses pages through every workspace's expenses with their owner
func (r *AdminStatsRepository) ListExpenses(filters domain.AdminExpenseFilters) (*domain.PaginatedAdminExpenses, error) {
	ctx := context.Background()
	args, err := adminExpenseArgs(filters)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+adminExpenseFrom+adminExpenseWhere, args...).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		expenseSelect+`, u.id, u.email`+adminExpenseFrom+adminExpenseWhere+
			` ORDER BY e.date DESC, e.id DESC LIMIT $7 OFFSET $8`,
		append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []*domain.AdminExpense{}
	for rows.Next() {
		e, err := scanAdminExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.PaginatedAdminExpenses{
		Data:       expenses,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: int32((total + int64(filters.PageSize) - 1) / int64(filters.PageSize)),
	}, nil
}

// SummarizeExpenses totals the matching expenses and ranks the top users and categories
func (r *AdminStatsRepository) SummarizeExpenses(filters domain.AdminExpenseFilters, limit int32) (*domain.AdminExpenseSummary, error) {
	ctx := context.Background()
	args, err := adminExpenseArgs(filters)
	if err != nil {
		return nil, err
	}

	var (
		summary    domain.AdminExpenseSummary
		total, avg pgtype.Numeric
	)
	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(e.amount), 0), COUNT(*), COALESCE(AVG(e.amount), 0)`+adminExpenseFrom+adminExpenseWhere,
		args...).Scan(&total, &summary.Count, &avg)
	if err != nil {
		return nil, err
	}
	summary.Total = pgNumericToDecimal(total)
	summary.Average = pgNumericToDecimal(avg)

	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.email, SUM(e.amount), COUNT(*)`+adminExpenseFrom+adminExpenseWhere+
			` GROUP BY u.id, u.email ORDER BY SUM(e.amount) DESC LIMIT $7`,
		append(args, limit)...)
	if err != nil {
		return nil, err
	}
	if summary.ByUser, err = collectSpenders(rows); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT e.category_id, c.name, SUM(e.amount), COUNT(*)`+adminExpenseFrom+adminExpenseWhere+
			` GROUP BY e.category_id, c.name ORDER BY SUM(e.amount) DESC LIMIT $7`,
		append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary.ByCategory = []*domain.CategorySpend{}
	for rows.Next() {
		var (
			cs         domain.CategorySpend
			categoryID pgtype.Int4
			name       pgtype.Text
			sum        pgtype.Numeric
		)
		if err := rows.Scan(&categoryID, &name, &sum, &cs.Count); err != nil {
			return nil, err
		}
		cs.CategoryID = pgInt4ToInt32Ptr(categoryID)
		if name.Valid {
			cs.CategoryName = name.String
		}
		cs.Total = pgNumericToDecimal(sum)
		summary.ByCategory = append(summary.ByCategory, &cs)
	}
	return &summary, rows.Err()
}

func scanAdminExpense(row pgx.Row) (*domain.AdminExpense, error) {
	var (
		e            domain.AdminExpense
		categoryID   pgtype.Int4
		categoryName pgtype.Text
		amount       pgtype.Numeric
		day          pgtype.Date
		receiptPath  pgtype.Text
	)
	err := row.Scan(&e.ID, &e.WorkspaceID, &categoryID, &categoryName, &amount, &e.Currency, &day,
		&e.Description, &e.PaymentMethod, &e.Merchant, &e.Notes, &receiptPath, &e.CreatedAt, &e.UpdatedAt,
		&e.UserID, &e.UserEmail)
	if err != nil {
		return nil, err
	}
	e.CategoryID = pgInt4ToInt32Ptr(categoryID)
	e.CategoryName = pgTextToStringPtr(categoryName)
	e.Amount = pgNumericToDecimal(amount)
	e.Date = day.Time
	e.ReceiptPath = pgTextToStringPtr(receiptPath)
	return &e, nil
}
