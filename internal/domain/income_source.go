package domain

import (
	"errors"
	"time"
)

var (
	ErrIncomeSourceNotFound   = errors.New("income source not found")
	ErrIncomeSourceNameExists = errors.New("income source with this name already exists")
	ErrSystemIncomeSource     = errors.New("system income sources cannot be modified")
	// ErrUnknownIncomeSource rejects a source id the workspace cannot use
	ErrUnknownIncomeSource = errors.New("income source does not exist")
)

// IncomeSource names where income comes from. System sources have no
// workspace and are offered to everyone.
type IncomeSource struct {
	ID          int32     `json:"id"`
	WorkspaceID *int32    `json:"workspaceId,omitempty"`
	Name        string    `json:"name"`
	IsSystem    bool      `json:"isSystem"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *IncomeSource) VisibleTo(workspaceID int32) bool {
	return s.IsSystem || (s.WorkspaceID != nil && *s.WorkspaceID == workspaceID)
}

// SystemIncomeSource is a system source with how often it has been used
type SystemIncomeSource struct {
	IncomeSource
	UsageCount int64
}

type IncomeSourceRepository interface {
	// Create stores a workspace source, or a system source when IsSystem is set
	Create(source *IncomeSource) (*IncomeSource, error)
	// GetByID returns system sources and sources owned by the workspace
	GetByID(workspaceID int32, id int32) (*IncomeSource, error)
	GetAllByWorkspace(workspaceID int32) ([]*IncomeSource, error)
	Update(workspaceID int32, id int32, name string) (*IncomeSource, error)
	Delete(workspaceID int32, id int32) error

	ListSystem() ([]*SystemIncomeSource, error)
	UpdateSystem(id int32, name string) (*IncomeSource, error)
	DeleteSystem(id int32) error
	UsageStats(id int32) (*UsageStats, error)
}
