package service

import (
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summaryFixture struct {
	expenses *testutil.MockExpenseRepository
	incomes  *testutil.MockIncomeRepository
	budgets  *testutil.MockBudgetRepository
	monthly  *testutil.MockMonthlyBudgetRepository
	service  *SummaryService
}

func newSummaryFixture() *summaryFixture {
	f := &summaryFixture{
		expenses: testutil.NewMockExpenseRepository(),
		incomes:  testutil.NewMockIncomeRepository(),
		budgets:  testutil.NewMockBudgetRepository(),
		monthly:  testutil.NewMockMonthlyBudgetRepository(),
	}
	f.service = NewSummaryService(f.expenses, f.incomes, f.budgets, f.monthly)
	return f
}

func TestGetMonthEndSummary_IncomeFallback(t *testing.T) {
	f := newSummaryFixture()
	month := d(2026, 9, 1)
	f.incomes.AddIncome(&domain.Income{WorkspaceID: 1, Month: month, SourceName: "Salary", Amount: money("50000")})
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Date: d(2026, 9, 3), Amount: money("42000")})

	summary, err := f.service.GetMonthEndSummary(1, d(2026, 9, 30))
	require.NoError(t, err)

	assert.Equal(t, domain.BudgetSourceIncome, summary.BudgetSource)
	require.NotNil(t, summary.EffectiveBudget)
	assert.True(t, summary.EffectiveBudget.Equal(money("50000")))
	assert.True(t, summary.Savings.Equal(money("8000")))
	assert.True(t, summary.SavingsRate.Equal(money("16")), "rate %s", summary.SavingsRate)
	require.NotNil(t, summary.Compliant)
	assert.True(t, *summary.Compliant)
}

func TestGetMonthEndSummary_MonthlyBudgetWins(t *testing.T) {
	f := newSummaryFixture()
	month := d(2026, 9, 1)
	f.incomes.AddIncome(&domain.Income{WorkspaceID: 1, Month: month, Amount: money("50000")})
	f.monthly.AddMonthlyBudget(&domain.MonthlyBudget{WorkspaceID: 1, Month: month, TotalBudget: money("40000")})
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Date: d(2026, 9, 3), Amount: money("42000")})

	summary, err := f.service.GetMonthEndSummary(1, month)
	require.NoError(t, err)

	assert.Equal(t, domain.BudgetSourceMonthly, summary.BudgetSource)
	assert.True(t, summary.Savings.Equal(money("-2000")))
	assert.False(t, *summary.Compliant)
	assert.True(t, summary.TotalIncome.Equal(money("50000")))
}

func TestGetMonthEndSummary_NoIncomeFallsBackToZero(t *testing.T) {
	f := newSummaryFixture()
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Date: d(2026, 9, 3), Amount: money("100")})

	summary, err := f.service.GetMonthEndSummary(1, d(2026, 9, 1))
	require.NoError(t, err)

	assert.Equal(t, domain.BudgetSourceIncome, summary.BudgetSource)
	require.NotNil(t, summary.EffectiveBudget)
	assert.True(t, summary.EffectiveBudget.IsZero())
	require.NotNil(t, summary.Savings)
	assert.True(t, summary.Savings.Equal(money("-100")), "savings = %s", summary.Savings)
	require.NotNil(t, summary.Compliant)
	assert.False(t, *summary.Compliant)
	assert.Nil(t, summary.SavingsRate)
}

func TestGetMonthEndSummary_EmptyMonth(t *testing.T) {
	f := newSummaryFixture()

	summary, err := f.service.GetMonthEndSummary(1, d(2026, 9, 1))
	require.NoError(t, err)

	assert.Empty(t, summary.Categories)
	assert.True(t, summary.Savings.IsZero())
	assert.True(t, *summary.Compliant)
	assert.Nil(t, summary.SavingsRate)
}

func TestGetMonthEndSummary_ZeroMonthlyBudget(t *testing.T) {
	f := newSummaryFixture()
	month := d(2026, 9, 1)
	f.monthly.AddMonthlyBudget(&domain.MonthlyBudget{WorkspaceID: 1, Month: month, TotalBudget: money("0")})

	summary, err := f.service.GetMonthEndSummary(1, month)
	require.NoError(t, err)

	require.NotNil(t, summary.EffectiveBudget)
	assert.Nil(t, summary.SavingsRate)
	assert.True(t, *summary.Compliant)
}

func TestGetMonthEndSummary_IncludesUnbudgetedCategories(t *testing.T) {
	f := newSummaryFixture()
	month := d(2026, 9, 1)
	f.budgets.AddBudget(&domain.Budget{
		WorkspaceID: 1, Month: month, Scope: domain.BudgetScopeCategory, CategoryID: i32(1),
		Amount: money("1000"), WarnThreshold: money("0.8"),
	})
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Date: d(2026, 9, 2), Amount: money("900"), CategoryID: i32(1), CategoryName: strPtr("Food")})
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Date: d(2026, 9, 4), Amount: money("300"), CategoryID: i32(2), CategoryName: strPtr("Fun")})
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Date: d(2026, 9, 5), Amount: money("50")})

	summary, err := f.service.GetMonthEndSummary(1, month)
	require.NoError(t, err)

	require.Len(t, summary.Categories, 3)
	byName := map[string]domain.SummaryCategory{}
	for _, c := range summary.Categories {
		byName[c.CategoryName] = c
	}

	food := byName["Food"]
	assert.Equal(t, domain.StatusWarn, food.Status)
	assert.True(t, food.PercentUsed.Equal(money("0.9")))

	fun := byName["Fun"]
	assert.Nil(t, fun.Budget)
	assert.Nil(t, fun.PercentUsed)
	assert.Equal(t, domain.StatusNoBudget, fun.Status)

	uncategorized := byName[domain.UncategorizedName]
	assert.Nil(t, uncategorized.CategoryID)
	assert.Equal(t, domain.StatusNoBudget, uncategorized.Status)

	assert.True(t, summary.TotalSpent.Equal(money("1250")))
	// ordered by spend, largest first
	assert.Equal(t, "Food", summary.Categories[0].CategoryName)
}
