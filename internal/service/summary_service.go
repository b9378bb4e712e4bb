package service

import (
	"errors"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
)

// SummaryService builds the month-end summary
type SummaryService struct {
	expenseRepo       domain.ExpenseRepository
	incomeRepo        domain.IncomeRepository
	budgetRepo        domain.BudgetRepository
	monthlyBudgetRepo domain.MonthlyBudgetRepository
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	expenseRepo domain.ExpenseRepository,
	incomeRepo domain.IncomeRepository,
	budgetRepo domain.BudgetRepository,
	monthlyBudgetRepo domain.MonthlyBudgetRepository,
) *SummaryService {
	return &SummaryService{
		expenseRepo:       expenseRepo,
		incomeRepo:        incomeRepo,
		budgetRepo:        budgetRepo,
		monthlyBudgetRepo: monthlyBudgetRepo,
	}
}

// GetMonthEndSummary composes income, effective budget, spend per category and savings for a month.
// Every category with spend is listed, budgeted or not.
func (s *SummaryService) GetMonthEndSummary(workspaceID int32, month time.Time) (*domain.MonthEndSummary, error) {
	month = util.NormalizeMonth(month)
	start, end := util.MonthBounds(month)

	income, err := s.incomeRepo.SumByMonth(workspaceID, month)
	if err != nil {
		return nil, err
	}
	monthly, err := s.monthlyBudgetRepo.GetByMonth(workspaceID, month)
	if err != nil && !errors.Is(err, domain.ErrBudgetNotFound) {
		return nil, err
	}
	budgets, err := s.budgetRepo.GetByMonth(workspaceID, month)
	if err != nil {
		return nil, err
	}
	spends, err := s.expenseRepo.SumByCategory(domain.WorkspaceScope(workspaceID), start, end)
	if err != nil {
		return nil, err
	}

	summary := &domain.MonthEndSummary{
		Month:        month,
		TotalIncome:  income,
		BudgetSource: domain.BudgetSourceIncome,
		Categories:   []domain.SummaryCategory{},
	}

	// without a monthly budget the month's income is the budget, even when it is zero
	effective := income
	if monthly != nil {
		effective = monthly.TotalBudget
		summary.BudgetSource = domain.BudgetSourceMonthly
	}
	summary.EffectiveBudget = &effective

	cfg := domain.BuildBudgetConfig(budgets, nil)
	for _, row := range spends {
		summary.TotalSpent = summary.TotalSpent.Add(row.Total)

		cat := domain.SummaryCategory{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Spent:        row.Total,
		}
		if row.CategoryID == nil {
			cat.CategoryName = domain.UncategorizedName
		}

		var usage domain.BudgetUsage
		if limit, ok := categoryLimit(cfg, row.CategoryID); ok {
			usage = domain.NewLimitUsage(row.Total, &limit)
		} else {
			usage = domain.NewLimitUsage(row.Total, nil)
		}
		cat.Budget = usage.Amount
		cat.PercentUsed = usage.PercentUsed
		cat.Status = usage.Status
		summary.Categories = append(summary.Categories, cat)
	}

	savings := effective.Sub(summary.TotalSpent)
	compliant := summary.TotalSpent.LessThanOrEqual(effective)
	summary.Savings = &savings
	summary.Compliant = &compliant
	if !effective.IsZero() {
		rate := savings.Div(effective).Mul(hundred)
		summary.SavingsRate = &rate
	}
	return summary, nil
}

func categoryLimit(cfg domain.BudgetConfig, categoryID *int32) (domain.BudgetLimit, bool) {
	if categoryID == nil {
		return domain.BudgetLimit{}, false
	}
	limit, ok := cfg.ByCategory[*categoryID]
	return limit, ok
}
