package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryNameExists = errors.New("category with this name already exists")
	ErrSystemCategory     = errors.New("system categories cannot be modified")
)

// Category groups expenses. System categories have no workspace and are visible to everyone.
type Category struct {
	ID          int32     `json:"id"`
	WorkspaceID *int32    `json:"workspaceId,omitempty"`
	Name        string    `json:"name"`
	IsSystem    bool      `json:"isSystem"`
	Icon        string    `json:"icon"`
	ColorToken  string    `json:"colorToken"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VisibleTo reports whether the category can be used by the workspace
func (c *Category) VisibleTo(workspaceID int32) bool {
	return c.IsSystem || (c.WorkspaceID != nil && *c.WorkspaceID == workspaceID)
}

// SystemCategory is a system category with its use across every workspace
type SystemCategory struct {
	Category
	UsageCount  int64
	TotalAmount decimal.Decimal
}

type CategoryRepository interface {
	// Create stores a workspace category, or a system category when IsSystem is set
	Create(category *Category) (*Category, error)
	// GetByID returns system categories and categories owned by the workspace
	GetByID(workspaceID int32, id int32) (*Category, error)
	GetAllByWorkspace(workspaceID int32) ([]*Category, error)
	Update(workspaceID int32, id int32, name, icon, colorToken string) (*Category, error)
	Delete(workspaceID int32, id int32) error
	ListAll() ([]*Category, error)

	ListSystem() ([]*SystemCategory, error)
	UpdateSystem(id int32, name, icon, colorToken string) (*Category, error)
	DeleteSystem(id int32) error
	// UsageStats aggregates the category's expenses; Monthly starts at since
	UsageStats(id int32, since time.Time) (*UsageStats, error)
}
