package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `id, workspace_id, kind, title, message, is_read, created_at`

// NotificationRepository implements domain.NotificationRepository using PostgreSQL
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(n *domain.Notification) (*domain.Notification, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO notifications (workspace_id, kind, title, message)
		 VALUES ($1, $2, $3, $4) RETURNING `+notificationColumns,
		n.WorkspaceID, string(n.Kind), n.Title, n.Message)
	return scanNotification(row)
}

// CreateForWorkspaces fans one notification out to every listed workspace in a single statement
func (r *NotificationRepository) CreateForWorkspaces(workspaceIDs []int32, kind domain.NotificationKind, title, message string) (int64, error) {
	if len(workspaceIDs) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(context.Background(),
		`INSERT INTO notifications (workspace_id, kind, title, message)
		 SELECT ws, $2, $3, $4 FROM unnest($1::int[]) AS ws`,
		workspaceIDs, string(kind), title, message)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) ListByWorkspace(workspaceID int32, unreadOnly bool) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE workspace_id = $1 AND (NOT $2 OR NOT is_read)
		 ORDER BY created_at DESC, id DESC LIMIT 100`,
		workspaceID, unreadOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// Stats counts notifications across every workspace, by read state and kind
func (r *NotificationRepository) Stats() (*domain.NotificationStats, error) {
	ctx := context.Background()

	var stats domain.NotificationStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read), COUNT(*) FILTER (WHERE is_read)
		 FROM notifications`).Scan(&stats.Total, &stats.Unread, &stats.Read)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT kind, COUNT(*) FROM notifications GROUP BY kind ORDER BY COUNT(*) DESC, kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.ByKind = []*domain.KindCount{}
	for rows.Next() {
		var (
			kc   domain.KindCount
			kind string
		)
		if err := rows.Scan(&kind, &kc.Count); err != nil {
			return nil, err
		}
		kc.Kind = domain.NotificationKind(kind)
		stats.ByKind = append(stats.ByKind, &kc)
	}
	return &stats, rows.Err()
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n    domain.Notification
		kind string
	)
	if err := row.Scan(&n.ID, &n.WorkspaceID, &kind, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	n.Kind = domain.NotificationKind(kind)
	return &n, nil
}
