package handler

import (
	"net/http"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
)

func newNotificationFixture() (*testutil.MockNotificationRepository, *NotificationHandler) {
	repo := testutil.NewMockNotificationRepository()
	svc := service.NewNotificationService(repo, testutil.NewMockWorkspaceRepository(), nil)
	return repo, NewNotificationHandler(svc)
}

func TestGetNotifications_UnreadFilter(t *testing.T) {
	repo, h := newNotificationFixture()
	_, _ = repo.Create(&domain.Notification{WorkspaceID: 1, Kind: domain.NotificationBudget, Title: "a", Message: "a", IsRead: true})
	_, _ = repo.Create(&domain.Notification{WorkspaceID: 1, Kind: domain.NotificationBroadcast, Title: "b", Message: "b"})
	_, _ = repo.Create(&domain.Notification{WorkspaceID: 2, Kind: domain.NotificationBroadcast, Title: "c", Message: "c"})

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/notifications", "")
	if err := h.GetNotifications(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
	var all []domain.Notification
	decodeBody(t, rec, &all)
	if len(all) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(all))
	}
	if all[0].Title != "b" {
		t.Errorf("Expected newest first, got %s", all[0].Title)
	}

	c, rec = newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/notifications?unread=true", "")
	if err := h.GetNotifications(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var unread []domain.Notification
	decodeBody(t, rec, &unread)
	if len(unread) != 1 {
		t.Errorf("Expected 1 unread notification, got %d", len(unread))
	}
}

func TestMarkRead(t *testing.T) {
	repo, h := newNotificationFixture()
	n, _ := repo.Create(&domain.Notification{WorkspaceID: 1, Kind: domain.NotificationBroadcast, Title: "a", Message: "a"})
	other, _ := repo.Create(&domain.Notification{WorkspaceID: 2, Kind: domain.NotificationBroadcast, Title: "b", Message: "b"})

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodPost, "/api/v1/notifications/1/read", "")
	setParam(c, "id", "1")
	if err := h.MarkRead(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusNoContent)
	if !n.IsRead {
		t.Error("Expected notification to be read")
	}

	c, rec = newOwnerRequest(newTestEcho(), testOwner, http.MethodPost, "/api/v1/notifications/2/read", "")
	setParam(c, "id", "2")
	if err := h.MarkRead(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectProblem(t, rec, http.StatusNotFound, ErrorTypeNotFound)
	if other.IsRead {
		t.Error("Expected other workspace's notification to stay unread")
	}
}
