package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the owner of every expense, income, budget and category.
// Each user gets exactly one on first login.
type Workspace struct {
	ID        int32     `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Owner is the authenticated identity attached to a request
type Owner struct {
	UserID      uuid.UUID
	WorkspaceID int32
	Role        Role
}

// IsAdmin reports whether the owner acts with admin rights
func (o Owner) IsAdmin() bool {
	return o.Role == RoleAdmin
}

// WorkspaceRepository defines the interface for workspace persistence operations
type WorkspaceRepository interface {
	GetByID(id int32) (*Workspace, error)
	GetByUserID(userID uuid.UUID) (*Workspace, error)
	Create(workspace *Workspace) (*Workspace, error)
	ListActiveIDs() ([]int32, error)
}
