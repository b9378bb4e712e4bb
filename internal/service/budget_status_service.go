package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BudgetStatusService compares a month's spend with its budgets
type BudgetStatusService struct {
	expenseRepo       domain.ExpenseRepository
	budgetRepo        domain.BudgetRepository
	monthlyBudgetRepo domain.MonthlyBudgetRepository
	currencySymbol    string
}

// NewBudgetStatusService creates a new BudgetStatusService
func NewBudgetStatusService(
	expenseRepo domain.ExpenseRepository,
	budgetRepo domain.BudgetRepository,
	monthlyBudgetRepo domain.MonthlyBudgetRepository,
	currencySymbol string,
) *BudgetStatusService {
	return &BudgetStatusService{
		expenseRepo:       expenseRepo,
		budgetRepo:        budgetRepo,
		monthlyBudgetRepo: monthlyBudgetRepo,
		currencySymbol:    currencySymbol,
	}
}

// monthSpend is the month's spend split by category
type monthSpend struct {
	total         decimal.Decimal
	uncategorized decimal.Decimal
	byCategory    map[int32]decimal.Decimal
	names         map[int32]string
}

func (s *BudgetStatusService) loadSpend(workspaceID int32, month time.Time) (*monthSpend, error) {
	start, end := util.MonthBounds(month)
	rows, err := s.expenseRepo.SumByCategory(domain.WorkspaceScope(workspaceID), start, end)
	if err != nil {
		return nil, err
	}

	spend := &monthSpend{
		byCategory: make(map[int32]decimal.Decimal),
		names:      make(map[int32]string),
	}
	for _, row := range rows {
		spend.total = spend.total.Add(row.Total)
		if row.CategoryID == nil {
			spend.uncategorized = spend.uncategorized.Add(row.Total)
			continue
		}
		spend.byCategory[*row.CategoryID] = spend.byCategory[*row.CategoryID].Add(row.Total)
		spend.names[*row.CategoryID] = row.CategoryName
	}
	return spend, nil
}

// categoryBudgets returns category-scoped budgets ordered by category name then id
func categoryBudgets(budgets []*domain.Budget, names map[int32]string) []*domain.Budget {
	var result []*domain.Budget
	for _, b := range budgets {
		if b.Scope == domain.BudgetScopeCategory && b.CategoryID != nil {
			result = append(result, b)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		ni, nj := budgetCategoryName(result[i], names), budgetCategoryName(result[j], names)
		if ni != nj {
			return ni < nj
		}
		return *result[i].CategoryID < *result[j].CategoryID
	})
	return result
}

func budgetCategoryName(b *domain.Budget, names map[int32]string) string {
	if b.CategoryName != nil && *b.CategoryName != "" {
		return *b.CategoryName
	}
	if name, ok := names[*b.CategoryID]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Category %d", *b.CategoryID)
}

// GetBudgetStatus returns overall usage and one usage per budgeted category
func (s *BudgetStatusService) GetBudgetStatus(workspaceID int32, month time.Time) (*domain.BudgetStatus, error) {
	month = util.NormalizeMonth(month)

	spend, err := s.loadSpend(workspaceID, month)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.GetByMonth(workspaceID, month)
	if err != nil {
		return nil, err
	}

	cfg := domain.BuildBudgetConfig(budgets, nil)
	status := &domain.BudgetStatus{
		Month:              month,
		Overall:            domain.NewLimitUsage(spend.total, cfg.Overall),
		Categories:         []domain.CategoryUsage{},
		UncategorizedSpent: spend.uncategorized,
	}

	budgeted := make(map[int32]bool)
	for _, b := range categoryBudgets(budgets, spend.names) {
		id := *b.CategoryID
		budgeted[id] = true
		limit := cfg.ByCategory[id]
		status.Categories = append(status.Categories, domain.CategoryUsage{
			CategoryID:   id,
			CategoryName: budgetCategoryName(b, spend.names),
			BudgetUsage:  domain.NewLimitUsage(spend.byCategory[id], &limit),
		})
	}

	for id, spent := range spend.byCategory {
		if !budgeted[id] {
			status.UnbudgetedSpent = status.UnbudgetedSpent.Add(spent)
		}
	}
	return status, nil
}

// GetBudgetWarnings lists budgets at or over their warning threshold: the
// overall budget first, then categories by name
func (s *BudgetStatusService) GetBudgetWarnings(workspaceID int32, month time.Time) ([]domain.Warning, error) {
	month = util.NormalizeMonth(month)

	spend, err := s.loadSpend(workspaceID, month)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.GetByMonth(workspaceID, month)
	if err != nil {
		return nil, err
	}
	monthly, err := s.monthlyBudgetRepo.GetByMonth(workspaceID, month)
	if err != nil {
		if !errors.Is(err, domain.ErrBudgetNotFound) {
			return nil, err
		}
		monthly = nil
	}

	cfg := domain.BuildBudgetConfig(budgets, monthly)
	warnings := []domain.Warning{}

	if overall := domain.ResolveOverallBudget(cfg); overall != nil {
		usage := domain.NewBudgetUsage(spend.total, &overall.Amount, &overall.WarnThreshold)
		if w, ok := s.buildWarning(usage, nil, ""); ok {
			warnings = append(warnings, w)
		}
	}

	for _, b := range categoryBudgets(budgets, spend.names) {
		id := *b.CategoryID
		limit := cfg.ByCategory[id]
		usage := domain.NewLimitUsage(spend.byCategory[id], &limit)
		if w, ok := s.buildWarning(usage, &id, budgetCategoryName(b, spend.names)); ok {
			warnings = append(warnings, w)
		}
	}
	return warnings, nil
}

// buildWarning renders a warning for usage at warn or exceeded; categoryID nil means overall
func (s *BudgetStatusService) buildWarning(usage domain.BudgetUsage, categoryID *int32, categoryName string) (domain.Warning, bool) {
	if usage.Status != domain.StatusWarn && usage.Status != domain.StatusExceeded {
		return domain.Warning{}, false
	}

	exceeded := usage.Status == domain.StatusExceeded
	spent := s.money(usage.Spent)
	budget := s.money(*usage.Amount)
	pct := usage.PercentUsed.Mul(hundred).StringFixed(1)

	w := domain.Warning{
		CategoryID:   categoryID,
		PercentUsed:  *usage.PercentUsed,
		AmountSpent:  usage.Spent,
		BudgetAmount: *usage.Amount,
	}
	switch {
	case categoryID == nil && exceeded:
		w.Kind = domain.WarningBudgetExceeded
		w.Title = "Monthly budget exceeded"
		w.Message = fmt.Sprintf("You have spent %s of your %s monthly budget (%s%%).", spent, budget, pct)
	case categoryID == nil:
		w.Kind = domain.WarningBudgetWarning
		w.Title = "Approaching monthly budget"
		w.Message = fmt.Sprintf("You have used %s%% of your monthly budget (%s of %s).", pct, spent, budget)
	case exceeded:
		w.Kind = domain.WarningCategoryExceeded
		w.Title = fmt.Sprintf("%s budget exceeded", categoryName)
		w.Message = fmt.Sprintf("You have spent %s of your %s %s budget (%s%%).", spent, budget, categoryName, pct)
	default:
		w.Kind = domain.WarningCategoryWarning
		w.Title = fmt.Sprintf("%s budget warning", categoryName)
		w.Message = fmt.Sprintf("You have used %s%% of your %s budget (%s of %s).", pct, categoryName, spent, budget)
	}
	return w, true
}

func (s *BudgetStatusService) money(d decimal.Decimal) string {
	return s.currencySymbol + d.StringFixed(2)
}
