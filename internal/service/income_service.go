package service

import (
	"errors"
	"strings"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// IncomeService handles monthly income records
type IncomeService struct {
	incomeRepo domain.IncomeRepository
	sourceRepo domain.IncomeSourceRepository
}

// NewIncomeService creates a new IncomeService
func NewIncomeService(incomeRepo domain.IncomeRepository, sourceRepo domain.IncomeSourceRepository) *IncomeService {
	return &IncomeService{incomeRepo: incomeRepo, sourceRepo: sourceRepo}
}

// IncomeInput holds the fields of a new income. When SourceID is set the
// income takes the source's name and SourceName is ignored.
type IncomeInput struct {
	Month      time.Time
	SourceID   *int32
	SourceName string
	Amount     decimal.Decimal
	Notes      string
}

// CreateIncome records income for the month containing input.Month
func (s *IncomeService) CreateIncome(workspaceID int32, input IncomeInput) (*domain.Income, error) {
	source := strings.TrimSpace(input.SourceName)
	if input.SourceID != nil {
		linked, err := s.sourceRepo.GetByID(workspaceID, *input.SourceID)
		if errors.Is(err, domain.ErrIncomeSourceNotFound) {
			return nil, domain.ErrUnknownIncomeSource
		}
		if err != nil {
			return nil, err
		}
		source = linked.Name
	}
	if source == "" {
		return nil, domain.ErrIncomeSourceMissing
	}
	if len(source) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	notes := strings.TrimSpace(input.Notes)
	if len(notes) > domain.MaxNotesLength {
		return nil, domain.ErrNotesTooLong
	}

	income, err := s.incomeRepo.Create(&domain.Income{
		WorkspaceID: workspaceID,
		Month:       util.NormalizeMonth(input.Month),
		SourceID:    input.SourceID,
		SourceName:  source,
		Amount:      input.Amount,
		Notes:       notes,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int32("workspace_id", workspaceID).Int32("income_id", income.ID).Msg("Income recorded")
	return income, nil
}

// MonthIncome is the income of one month with its total
type MonthIncome struct {
	Month   time.Time
	Total   decimal.Decimal
	Incomes []*domain.Income
}

// GetIncomes lists the month's incomes
func (s *IncomeService) GetIncomes(workspaceID int32, month time.Time) (*MonthIncome, error) {
	month = util.NormalizeMonth(month)
	incomes, err := s.incomeRepo.GetByMonth(workspaceID, month)
	if err != nil {
		return nil, err
	}
	result := &MonthIncome{Month: month, Incomes: incomes}
	for _, income := range incomes {
		result.Total = result.Total.Add(income.Amount)
	}
	return result, nil
}

// DeleteIncome removes an income record
func (s *IncomeService) DeleteIncome(workspaceID int32, id int32) error {
	if err := s.incomeRepo.Delete(workspaceID, id); err != nil {
		return err
	}
	log.Info().Int32("workspace_id", workspaceID).Int32("income_id", id).Msg("Income deleted")
	return nil
}
