package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const incomeSourceColumns = `id, workspace_id, name, is_system, created_at, updated_at`

// IncomeSourceRepository implements domain.IncomeSourceRepository using PostgreSQL
type IncomeSourceRepository struct {
	pool *pgxpool.Pool
}

func NewIncomeSourceRepository(pool *pgxpool.Pool) *IncomeSourceRepository {
	return &IncomeSourceRepository{pool: pool}
}

func (r *IncomeSourceRepository) Create(source *domain.IncomeSource) (*domain.IncomeSource, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO income_sources (workspace_id, name, is_system)
		 VALUES ($1, $2, $3) RETURNING `+incomeSourceColumns,
		int32PtrToPgInt4(source.WorkspaceID), source.Name, source.IsSystem)
	return scanIncomeSourceWrite(row)
}

func (r *IncomeSourceRepository) GetByID(workspaceID int32, id int32) (*domain.IncomeSource, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+incomeSourceColumns+` FROM income_sources
		 WHERE id = $1 AND (is_system OR workspace_id = $2)`, id, workspaceID)
	return scanIncomeSource(row)
}

// GetAllByWorkspace lists system sources followed by the workspace's own, by name
func (r *IncomeSourceRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.IncomeSource, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+incomeSourceColumns+` FROM income_sources
		 WHERE is_system OR workspace_id = $1
		 ORDER BY is_system DESC, name, id`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := []*domain.IncomeSource{}
	for rows.Next() {
		s, err := scanIncomeSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *IncomeSourceRepository) Update(workspaceID int32, id int32, name string) (*domain.IncomeSource, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE income_sources SET name = $3, updated_at = NOW()
		 WHERE id = $1 AND workspace_id = $2 AND NOT is_system
		 RETURNING `+incomeSourceColumns, id, workspaceID, name)
	return scanIncomeSourceWrite(row)
}

// Delete removes a workspace source. Incomes keep their recorded name.
func (r *IncomeSourceRepository) Delete(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM income_sources WHERE id = $1 AND workspace_id = $2 AND NOT is_system`, id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeSourceNotFound
	}
	return nil
}

// ListSystem returns the system sources by name with how many incomes use each
func (r *IncomeSourceRepository) ListSystem() ([]*domain.SystemIncomeSource, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT s.id, s.workspace_id, s.name, s.is_system, s.created_at, s.updated_at, COUNT(i.id)
		 FROM income_sources s
		 LEFT JOIN incomes i ON i.source_id = s.id
		 WHERE s.is_system
		 GROUP BY s.id
		 ORDER BY s.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := []*domain.SystemIncomeSource{}
	for rows.Next() {
		var (
			s           domain.SystemIncomeSource
			workspaceID pgtype.Int4
		)
		if err := rows.Scan(&s.ID, &workspaceID, &s.Name, &s.IsSystem, &s.CreatedAt, &s.UpdatedAt, &s.UsageCount); err != nil {
			return nil, err
		}
		s.WorkspaceID = pgInt4ToInt32Ptr(workspaceID)
		sources = append(sources, &s)
	}
	return sources, rows.Err()
}

func (r *IncomeSourceRepository) UpdateSystem(id int32, name string) (*domain.IncomeSource, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE income_sources SET name = $2, updated_at = NOW()
		 WHERE id = $1 AND is_system
		 RETURNING `+incomeSourceColumns, id, name)
	return scanIncomeSourceWrite(row)
}

// DeleteSystem removes a system source; incomes that used it are unlinked
func (r *IncomeSourceRepository) DeleteSystem(id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM income_sources WHERE id = $1 AND is_system`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeSourceNotFound
	}
	return nil
}

// UsageStats aggregates every income recorded against a system source
func (r *IncomeSourceRepository) UsageStats(id int32) (*domain.UsageStats, error) {
	var (
		stats      domain.UsageStats
		total, avg pgtype.Numeric
	)
	err := r.pool.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(i.amount), 0), COUNT(i.id), COALESCE(AVG(i.amount), 0), COUNT(DISTINCT i.workspace_id)
		 FROM income_sources s
		 LEFT JOIN incomes i ON i.source_id = s.id
		 WHERE s.id = $1 AND s.is_system
		 GROUP BY s.id`, id).Scan(&total, &stats.TotalCount, &avg, &stats.UniqueUsers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeSourceNotFound
		}
		return nil, err
	}
	stats.TotalAmount = pgNumericToDecimal(total)
	stats.AvgAmount = pgNumericToDecimal(avg)
	return &stats, nil
}

func scanIncomeSourceWrite(row pgx.Row) (*domain.IncomeSource, error) {
	s, err := scanIncomeSource(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, domain.ErrIncomeSourceNameExists
	}
	return s, err
}

func scanIncomeSource(row pgx.Row) (*domain.IncomeSource, error) {
	var (
		s           domain.IncomeSource
		workspaceID pgtype.Int4
	)
	err := row.Scan(&s.ID, &workspaceID, &s.Name, &s.IsSystem, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeSourceNotFound
		}
		return nil, err
	}
	s.WorkspaceID = pgInt4ToInt32Ptr(workspaceID)
	return &s, nil
}
