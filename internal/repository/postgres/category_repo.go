package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id, workspace_id, name, is_system, icon, color_token, created_at, updated_at`

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create creates a workspace category, or a system one when IsSystem is set
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO categories (workspace_id, name, is_system, icon, color_token)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+categoryColumns,
		int32PtrToPgInt4(category.WorkspaceID), category.Name, category.IsSystem, category.Icon, category.ColorToken)
	return scanCategoryWrite(row)
}

// GetByID returns a system category or one owned by the workspace
func (r *CategoryRepository) GetByID(workspaceID int32, id int32) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+categoryColumns+` FROM categories
		 WHERE id = $1 AND (is_system OR workspace_id = $2)`, id, workspaceID)
	return scanCategory(row)
}

// GetAllByWorkspace lists system categories followed by the workspace's own, by name
func (r *CategoryRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Category, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+categoryColumns+` FROM categories
		 WHERE is_system OR workspace_id = $1
		 ORDER BY is_system DESC, name, id`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

// Update renames a workspace category. System categories never match.
func (r *CategoryRepository) Update(workspaceID int32, id int32, name, icon, colorToken string) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE categories SET name = $3, icon = $4, color_token = $5, updated_at = NOW()
		 WHERE id = $1 AND workspace_id = $2 AND NOT is_system
		 RETURNING `+categoryColumns,
		id, workspaceID, name, icon, colorToken)
	return scanCategoryWrite(row)
}

// Delete removes a workspace category; its expenses become uncategorized
func (r *CategoryRepository) Delete(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM categories WHERE id = $1 AND workspace_id = $2 AND NOT is_system`, id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// ListAll returns every category in every workspace
func (r *CategoryRepository) ListAll() ([]*domain.Category, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

// ListSystem returns the system categories by name with their use across every workspace
func (r *CategoryRepository) ListSystem() ([]*domain.SystemCategory, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT c.id, c.workspace_id, c.name, c.is_system, c.icon, c.color_token, c.created_at, c.updated_at,
		        COUNT(e.id), COALESCE(SUM(e.amount), 0)
		 FROM categories c
		 LEFT JOIN expenses e ON e.category_id = c.id
		 WHERE c.is_system
		 GROUP BY c.id
		 ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*domain.SystemCategory{}
	for rows.Next() {
		var (
			sc          domain.SystemCategory
			workspaceID pgtype.Int4
			total       pgtype.Numeric
		)
		err := rows.Scan(&sc.ID, &workspaceID, &sc.Name, &sc.IsSystem, &sc.Icon, &sc.ColorToken,
			&sc.CreatedAt, &sc.UpdatedAt, &sc.UsageCount, &total)
		if err != nil {
			return nil, err
		}
		sc.WorkspaceID = pgInt4ToInt32Ptr(workspaceID)
		sc.TotalAmount = pgNumericToDecimal(total)
		categories = append(categories, &sc)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) UpdateSystem(id int32, name, icon, colorToken string) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE categories SET name = $2, icon = $3, color_token = $4, updated_at = NOW()
		 WHERE id = $1 AND is_system
		 RETURNING `+categoryColumns,
		id, name, icon, colorToken)
	return scanCategoryWrite(row)
}

// DeleteSystem removes a system category; its expenses become uncategorized
func (r *CategoryRepository) DeleteSystem(id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM categories WHERE id = $1 AND is_system`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// UsageStats aggregates a system category's expenses, with per-month
// totals for the months starting at since
func (r *CategoryRepository) UsageStats(id int32, since time.Time) (*domain.UsageStats, error) {
	ctx := context.Background()

	var (
		stats      domain.UsageStats
		total, avg pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(e.amount), 0), COUNT(e.id), COALESCE(AVG(e.amount), 0), COUNT(DISTINCT e.workspace_id)
		 FROM categories c
		 LEFT JOIN expenses e ON e.category_id = c.id
		 WHERE c.id = $1 AND c.is_system
		 GROUP BY c.id`, id).Scan(&total, &stats.TotalCount, &avg, &stats.UniqueUsers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	stats.TotalAmount = pgNumericToDecimal(total)
	stats.AvgAmount = pgNumericToDecimal(avg)

	rows, err := r.pool.Query(ctx,
		`SELECT date_trunc('month', date)::date, SUM(amount), COUNT(*)
		 FROM expenses
		 WHERE category_id = $1 AND date >= $2
		 GROUP BY 1
		 ORDER BY 1`, id, dateToPg(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m     domain.MonthlyUsage
			month pgtype.Date
			sum   pgtype.Numeric
		)
		if err := rows.Scan(&month, &sum, &m.Count); err != nil {
			return nil, err
		}
		m.Month = month.Time
		m.Total = pgNumericToDecimal(sum)
		stats.Monthly = append(stats.Monthly, &m)
	}
	return &stats, rows.Err()
}

func collectCategories(rows pgx.Rows) ([]*domain.Category, error) {
	defer rows.Close()
	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanCategoryWrite(row pgx.Row) (*domain.Category, error) {
	c, err := scanCategory(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, domain.ErrCategoryNameExists
	}
	return c, err
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c           domain.Category
		workspaceID pgtype.Int4
	)
	err := row.Scan(&c.ID, &workspaceID, &c.Name, &c.IsSystem, &c.Icon, &c.ColorToken, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	c.WorkspaceID = pgInt4ToInt32Ptr(workspaceID)
	return &c, nil
}
