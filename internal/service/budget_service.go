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

// BudgetService handles scoped budgets and the monthly total budget
type BudgetService struct {
	budgetRepo        domain.BudgetRepository
	monthlyBudgetRepo domain.MonthlyBudgetRepository
	categoryRepo      domain.CategoryRepository
	incomeRepo        domain.IncomeRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo domain.BudgetRepository,
	monthlyBudgetRepo domain.MonthlyBudgetRepository,
	categoryRepo domain.CategoryRepository,
	incomeRepo domain.IncomeRepository,
) *BudgetService {
	return &BudgetService{
		budgetRepo:        budgetRepo,
		monthlyBudgetRepo: monthlyBudgetRepo,
		categoryRepo:      categoryRepo,
		incomeRepo:        incomeRepo,
	}
}

// BudgetInput represents a budget to set. A nil WarnThreshold uses the default.
type BudgetInput struct {
	Month         time.Time
	Scope         domain.BudgetScope
	CategoryID    *int32
	Amount        decimal.Decimal
	WarnThreshold *decimal.Decimal
	Rollover      bool
}

// SetBudget creates the budget or updates the existing one for the same
// month, scope and category. created reports which happened.
func (s *BudgetService) SetBudget(workspaceID int32, input BudgetInput) (budget *domain.Budget, created bool, err error) {
	candidate := &domain.Budget{
		WorkspaceID:   workspaceID,
		Month:         util.NormalizeMonth(input.Month),
		Scope:         input.Scope,
		CategoryID:    input.CategoryID,
		Amount:        input.Amount,
		WarnThreshold: domain.DefaultWarnThreshold,
		Rollover:      input.Rollover,
	}
	if input.WarnThreshold != nil {
		candidate.WarnThreshold = *input.WarnThreshold
	}
	if err := candidate.Validate(); err != nil {
		return nil, false, err
	}

	if candidate.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(workspaceID, *candidate.CategoryID)
		if err != nil {
			return nil, false, err
		}
		candidate.CategoryName = &category.Name
	}

	budget, created, err = s.budgetRepo.Upsert(candidate)
	if err != nil {
		return nil, false, err
	}
	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("budget_id", budget.ID).
		Str("scope", string(budget.Scope)).
		Bool("created", created).
		Msg("Budget saved")
	return budget, created, nil
}

// GetBudgets lists the month's budgets, the overall budget first
func (s *BudgetService) GetBudgets(workspaceID int32, month time.Time) ([]*domain.Budget, error) {
	return s.budgetRepo.GetByMonth(workspaceID, util.NormalizeMonth(month))
}

// DeleteBudget removes a budget
func (s *BudgetService) DeleteBudget(workspaceID int32, id int32) error {
	if err := s.budgetRepo.Delete(workspaceID, id); err != nil {
		return err
	}
	log.Info().Int32("workspace_id", workspaceID).Int32("budget_id", id).Msg("Budget deleted")
	return nil
}

// SetMonthlyBudget creates or updates the total budget of a month
func (s *BudgetService) SetMonthlyBudget(workspaceID int32, month time.Time, total decimal.Decimal, notes string) (*domain.MonthlyBudget, bool, error) {
	if total.IsNegative() {
		return nil, false, domain.ErrNegativeTotalBudget
	}
	notes = strings.TrimSpace(notes)
	if len(notes) > domain.MaxNotesLength {
		return nil, false, domain.ErrNotesTooLong
	}

	budget, created, err := s.monthlyBudgetRepo.Upsert(&domain.MonthlyBudget{
		WorkspaceID: workspaceID,
		Month:       util.NormalizeMonth(month),
		TotalBudget: total,
		Notes:       notes,
	})
	if err != nil {
		return nil, false, err
	}
	log.Info().Int32("workspace_id", workspaceID).Str("month", budget.Month.Format("2006-01")).Msg("Monthly budget saved")
	return budget, created, nil
}

// GetMonthlyBudgetOverview returns the month's total budget (nil when unset)
// with income, the amount allocated to categories and what is left.
// Without a total budget the income is the base for the unallocated amount.
func (s *BudgetService) GetMonthlyBudgetOverview(workspaceID int32, month time.Time) (*domain.MonthlyBudgetOverview, error) {
	month = util.NormalizeMonth(month)

	monthly, err := s.monthlyBudgetRepo.GetByMonth(workspaceID, month)
	if err != nil && !errors.Is(err, domain.ErrBudgetNotFound) {
		return nil, err
	}
	income, err := s.incomeRepo.SumByMonth(workspaceID, month)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.GetByMonth(workspaceID, month)
	if err != nil {
		return nil, err
	}

	overview := &domain.MonthlyBudgetOverview{
		Month:       month,
		Budget:      monthly,
		TotalIncome: income,
	}
	for _, b := range budgets {
		if b.Scope == domain.BudgetScopeCategory {
			overview.Allocated = overview.Allocated.Add(b.Amount)
		}
	}

	base := income
	if monthly != nil {
		base = monthly.TotalBudget
	}
	overview.Unallocated = base.Sub(overview.Allocated)
	return overview, nil
}
