package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, auth0_id, email, name, picture_url, role, is_active, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by their UUID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByAuth0ID retrieves a user by their Auth0 ID
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID)
	return scanUser(row)
}

// CreateOrGetByAuth0ID creates a new user or refreshes the profile of an existing one (upsert on login)
func (r *UserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO users (auth0_id, email, name, picture_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (auth0_id) DO UPDATE
		   SET email = EXCLUDED.email,
		       name = COALESCE(EXCLUDED.name, users.name),
		       picture_url = COALESCE(EXCLUDED.picture_url, users.picture_url),
		       updated_at = NOW()
		 RETURNING `+userColumns,
		auth0ID, email, stringPtrToPgText(name), stringPtrToPgText(pictureURL))
	return scanUser(row)
}

// List returns users matching the filters, newest first
func (r *UserRepository) List(filters domain.UserFilters) ([]*domain.User, error) {
	var role pgtype.Text
	if filters.Role != nil {
		role = pgtype.Text{String: string(*filters.Role), Valid: true}
	}
	var active pgtype.Bool
	if filters.IsActive != nil {
		active = pgtype.Bool{Bool: *filters.IsActive, Valid: true}
	}

	rows, err := r.pool.Query(context.Background(),
		`SELECT `+userColumns+` FROM users
		 WHERE ($1::text IS NULL OR role = $1)
		   AND ($2::bool IS NULL OR is_active = $2)
		   AND ($3 = '' OR email ILIKE '%' || $3 || '%' OR name ILIKE '%' || $3 || '%')
		 ORDER BY created_at DESC`,
		role, active, filters.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(id uuid.UUID, role domain.Role) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns,
		id, string(role))
	return scanUser(row)
}

// SetActive activates or deactivates a user
func (r *UserRepository) SetActive(id uuid.UUID, active bool) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns,
		id, active)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u          domain.User
		name       pgtype.Text
		pictureURL pgtype.Text
		role       string
	)
	err := row.Scan(&u.ID, &u.Auth0ID, &u.Email, &name, &pictureURL, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Name = pgTextToStringPtr(name)
	u.PictureURL = pgTextToStringPtr(pictureURL)
	u.Role = domain.Role(role)
	return &u, nil
}
