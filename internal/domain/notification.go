package domain

import (
	"errors"
	"time"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTitleRequired        = errors.New("title is required")
	ErrMessageRequired      = errors.New("message is required")
)

type NotificationKind string

const (
	NotificationBroadcast NotificationKind = "broadcast"
	NotificationBudget    NotificationKind = "budget"
)

type Notification struct {
	ID          int32            `json:"id"`
	WorkspaceID int32            `json:"workspaceId"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	IsRead      bool             `json:"isRead"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// NotificationStats counts notifications across every workspace
type NotificationStats struct {
	Total  int64
	Unread int64
	Read   int64
	ByKind []*KindCount
}

type KindCount struct {
	Kind  NotificationKind
	Count int64
}

type NotificationRepository interface {
	Create(n *Notification) (*Notification, error)
	// CreateForWorkspaces inserts one copy of the notification per workspace
	CreateForWorkspaces(workspaceIDs []int32, kind NotificationKind, title, message string) (int64, error)
	ListByWorkspace(workspaceID int32, unreadOnly bool) ([]*Notification, error)
	MarkRead(workspaceID int32, id int32) error
	Stats() (*NotificationStats, error)
}
