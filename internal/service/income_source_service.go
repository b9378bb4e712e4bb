package service

import (
	"strings"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// IncomeSourceService manages the income sources a workspace can record income under
type IncomeSourceService struct {
	sourceRepo domain.IncomeSourceRepository
}

// NewIncomeSourceService creates a new IncomeSourceService
func NewIncomeSourceService(sourceRepo domain.IncomeSourceRepository) *IncomeSourceService {
	return &IncomeSourceService{sourceRepo: sourceRepo}
}

func normalizeSourceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}

// GetSources returns system sources followed by the workspace's own
func (s *IncomeSourceService) GetSources(workspaceID int32) ([]*domain.IncomeSource, error) {
	return s.sourceRepo.GetAllByWorkspace(workspaceID)
}

func (s *IncomeSourceService) CreateSource(workspaceID int32, name string) (*domain.IncomeSource, error) {
	name, err := normalizeSourceName(name)
	if err != nil {
		return nil, err
	}
	source, err := s.sourceRepo.Create(&domain.IncomeSource{WorkspaceID: &workspaceID, Name: name})
	if err != nil {
		return nil, err
	}
	log.Info().Int32("workspace_id", workspaceID).Int32("source_id", source.ID).Msg("Income source created")
	return source, nil
}

// UpdateSource renames a workspace source. System sources are read-only.
func (s *IncomeSourceService) UpdateSource(workspaceID int32, id int32, name string) (*domain.IncomeSource, error) {
	name, err := normalizeSourceName(name)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwned(workspaceID, id); err != nil {
		return nil, err
	}
	return s.sourceRepo.Update(workspaceID, id, name)
}

// DeleteSource removes a workspace source. Incomes recorded under it keep their name.
func (s *IncomeSourceService) DeleteSource(workspaceID int32, id int32) error {
	if err := s.requireOwned(workspaceID, id); err != nil {
		return err
	}
	if err := s.sourceRepo.Delete(workspaceID, id); err != nil {
		return err
	}
	log.Info().Int32("workspace_id", workspaceID).Int32("source_id", id).Msg("Income source deleted")
	return nil
}

func (s *IncomeSourceService) requireOwned(workspaceID int32, id int32) error {
	source, err := s.sourceRepo.GetByID(workspaceID, id)
	if err != nil {
		return err
	}
	if source.IsSystem {
		return domain.ErrSystemIncomeSource
	}
	return nil
}
