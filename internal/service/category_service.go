package service

import (
	"strings"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// CategoryService handles expense category business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CategoryInput carries the editable fields of a category
type CategoryInput struct {
	Name       string
	Icon       string
	ColorToken string
}

func (in *CategoryInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Icon = strings.TrimSpace(in.Icon)
	in.ColorToken = strings.TrimSpace(in.ColorToken)
	if in.Name == "" {
		return domain.ErrNameRequired
	}
	if len(in.Name) > domain.MaxCategoryNameLength {
		return domain.ErrNameTooLong
	}
	return nil
}

// CreateCategory creates a workspace category
func (s *CategoryService) CreateCategory(workspaceID int32, input CategoryInput) (*domain.Category, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.Create(&domain.Category{
		WorkspaceID: &workspaceID,
		Name:        input.Name,
		Icon:        input.Icon,
		ColorToken:  input.ColorToken,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int32("workspace_id", workspaceID).Int32("category_id", category.ID).Msg("Category created")
	return category, nil
}

// GetCategories returns system categories and the workspace's own, by name
func (s *CategoryService) GetCategories(workspaceID int32) ([]*domain.Category, error) {
	return s.categoryRepo.GetAllByWorkspace(workspaceID)
}

// GetCategoryByID retrieves a category visible to the workspace
func (s *CategoryService) GetCategoryByID(workspaceID int32, id int32) (*domain.Category, error) {
	return s.categoryRepo.GetByID(workspaceID, id)
}

// UpdateCategory updates a workspace category. System categories are read-only.
func (s *CategoryService) UpdateCategory(workspaceID int32, id int32, input CategoryInput) (*domain.Category, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	if err := s.requireOwned(workspaceID, id); err != nil {
		return nil, err
	}
	return s.categoryRepo.Update(workspaceID, id, input.Name, input.Icon, input.ColorToken)
}

// DeleteCategory deletes a workspace category. Expenses keep their rows and become uncategorized.
func (s *CategoryService) DeleteCategory(workspaceID int32, id int32) error {
	if err := s.requireOwned(workspaceID, id); err != nil {
		return err
	}
	if err := s.categoryRepo.Delete(workspaceID, id); err != nil {
		return err
	}
	log.Info().Int32("workspace_id", workspaceID).Int32("category_id", id).Msg("Category deleted")
	return nil
}

func (s *CategoryService) requireOwned(workspaceID int32, id int32) error {
	category, err := s.categoryRepo.GetByID(workspaceID, id)
	if err != nil {
		return err
	}
	if category.IsSystem {
		return domain.ErrSystemCategory
	}
	return nil
}
