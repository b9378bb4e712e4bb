package service

import (
	"context"
	"strings"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/messaging"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

const (
	maxNotificationTitleLength   = 120
	maxNotificationMessageLength = 2000
)

// NotificationService handles persisted notifications and admin broadcasts
type NotificationService struct {
	notificationRepo domain.NotificationRepository
	workspaceRepo    domain.WorkspaceRepository
	queue            messaging.Publisher
	eventPublisher   websocket.EventPublisher
}

// NewNotificationService creates a new NotificationService. queue may be nil.
func NewNotificationService(notificationRepo domain.NotificationRepository, workspaceRepo domain.WorkspaceRepository, queue messaging.Publisher) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		workspaceRepo:    workspaceRepo,
		queue:            queue,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *NotificationService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// GetNotifications lists a workspace's notifications, newest first
func (s *NotificationService) GetNotifications(workspaceID int32, unreadOnly bool) ([]*domain.Notification, error) {
	return s.notificationRepo.ListByWorkspace(workspaceID, unreadOnly)
}

// MarkRead marks one notification as read
func (s *NotificationService) MarkRead(workspaceID int32, id int32) error {
	return s.notificationRepo.MarkRead(workspaceID, id)
}

// Stats counts notifications across every workspace
func (s *NotificationService) Stats() (*domain.NotificationStats, error) {
	return s.notificationRepo.Stats()
}

// BroadcastPayload is pushed to every active workspace
type BroadcastPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Broadcast stores one notification per active workspace and pushes it to
// connected clients. It returns the number of workspaces reached.
func (s *NotificationService) Broadcast(title, message string) (int64, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || len(title) > maxNotificationTitleLength {
		return 0, domain.ErrTitleRequired
	}
	if message == "" || len(message) > maxNotificationMessageLength {
		return 0, domain.ErrMessageRequired
	}

	workspaceIDs, err := s.workspaceRepo.ListActiveIDs()
	if err != nil {
		return 0, err
	}
	if len(workspaceIDs) == 0 {
		return 0, nil
	}

	count, err := s.notificationRepo.CreateForWorkspaces(workspaceIDs, domain.NotificationBroadcast, title, message)
	if err != nil {
		return 0, err
	}

	payload := BroadcastPayload{Title: title, Message: message}
	websocket.PublishEach(s.eventPublisher, workspaceIDs, websocket.NotificationBroadcast(payload))
	if s.queue != nil {
		msg, err := messaging.NewMessage(messaging.TypeBroadcast, 0, payload)
		if err == nil {
			err = s.queue.Publish(context.Background(), msg)
		}
		if err != nil {
			log.Warn().Err(err).Msg("Failed to queue broadcast")
		}
	}

	log.Info().Int64("workspaces", count).Msg("Broadcast sent")
	return count, nil
}
