package handler

import (
	"net/http"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budgetFixture struct {
	budgets    *testutil.MockBudgetRepository
	monthly    *testutil.MockMonthlyBudgetRepository
	incomes    *testutil.MockIncomeRepository
	expenses   *testutil.MockExpenseRepository
	categories *testutil.MockCategoryRepository
	handler    *BudgetHandler
}

func newBudgetFixture() *budgetFixture {
	f := &budgetFixture{
		budgets:    testutil.NewMockBudgetRepository(),
		monthly:    testutil.NewMockMonthlyBudgetRepository(),
		incomes:    testutil.NewMockIncomeRepository(),
		expenses:   testutil.NewMockExpenseRepository(),
		categories: testutil.NewMockCategoryRepository(),
	}
	f.categories.AddCategory(&domain.Category{ID: 1, Name: "Food", IsSystem: true})
	f.handler = NewBudgetHandler(
		service.NewBudgetService(f.budgets, f.monthly, f.categories, f.incomes),
		service.NewBudgetStatusService(f.expenses, f.budgets, f.monthly, "$"),
	)
	return f
}

func TestSetBudget_CreateThenUpdate(t *testing.T) {
	f := newBudgetFixture()
	body := `{"month":"2026-03","scope":"category","categoryId":1,"amount":"100"}`

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodPost, "/api/v1/budgets", body)
	require.NoError(t, f.handler.SetBudget(c))
	expectStatus(t, rec, http.StatusCreated)

	var created BudgetResponse
	decodeBody(t, rec, &created)
	assert.Equal(t, "2026-03", created.Month)
	assert.Equal(t, "100.00", created.Amount)
	assert.Equal(t, "0.8", created.WarnThreshold)
	require.NotNil(t, created.CategoryName)
	assert.Equal(t, "Food", *created.CategoryName)

	body = `{"month":"2026-03-15","scope":"category","categoryId":1,"amount":"150","warnThreshold":"0.9"}`
	c, rec = newOwnerRequest(newTestEcho(), testOwner, http.MethodPost, "/api/v1/budgets", body)
	require.NoError(t, f.handler.SetBudget(c))
	expectStatus(t, rec, http.StatusOK)

	var updated BudgetResponse
	decodeBody(t, rec, &updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "150.00", updated.Amount)
	assert.Len(t, f.budgets.Budgets, 1)
}

func TestSetBudget_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad scope", `{"month":"2026-03","scope":"weekly","amount":"10"}`, "scope"},
		{"zero amount", `{"month":"2026-03","scope":"overall","amount":"0"}`, "amount"},
		{"threshold too high", `{"month":"2026-03","scope":"overall","amount":"10","warnThreshold":"1.5"}`, "warnThreshold"},
		{"category missing", `{"month":"2026-03","scope":"category","amount":"10"}`, "categoryId"},
		{"category on overall", `{"month":"2026-03","scope":"overall","categoryId":1,"amount":"10"}`, "categoryId"},
		{"bad month", `{"month":"March","scope":"overall","amount":"10"}`, "month"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBudgetFixture()
			c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodPost, "/api/v1/budgets", tt.body)

			require.NoError(t, f.handler.SetBudget(c))
			problem := expectProblem(t, rec, http.StatusBadRequest, ErrorTypeValidation)
			require.NotEmpty(t, problem.Errors)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
		})
	}
}

func TestGetBudgets_OverallFirst(t *testing.T) {
	f := newBudgetFixture()
	f.budgets.AddBudget(&domain.Budget{WorkspaceID: 1, Month: day(2026, 3, 1), Scope: domain.BudgetScopeCategory, CategoryID: int32Ptr(1), Amount: dec("100"), WarnThreshold: dec("0.8")})
	f.budgets.AddBudget(&domain.Budget{WorkspaceID: 1, Month: day(2026, 3, 1), Scope: domain.BudgetScopeOverall, Amount: dec("500"), WarnThreshold: dec("0.8")})
	f.budgets.AddBudget(&domain.Budget{WorkspaceID: 1, Month: day(2026, 4, 1), Scope: domain.BudgetScopeOverall, Amount: dec("500"), WarnThreshold: dec("0.8")})

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/budgets?month=2026-03", "")
	require.NoError(t, f.handler.GetBudgets(c))
	expectStatus(t, rec, http.StatusOK)

	var response []BudgetResponse
	decodeBody(t, rec, &response)
	require.Len(t, response, 2)
	assert.Equal(t, "overall", response[0].Scope)
}

func TestDeleteBudget_NotFound(t *testing.T) {
	f := newBudgetFixture()
	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodDelete, "/api/v1/budgets/9", "")
	setParam(c, "id", "9")

	require.NoError(t, f.handler.DeleteBudget(c))
	expectProblem(t, rec, http.StatusNotFound, ErrorTypeNotFound)
}

func TestMonthlyBudget_SetAndRead(t *testing.T) {
	f := newBudgetFixture()
	f.incomes.AddIncome(&domain.Income{WorkspaceID: 1, Month: day(2026, 3, 1), SourceName: "Salary", Amount: dec("3000")})
	f.budgets.AddBudget(&domain.Budget{WorkspaceID: 1, Month: day(2026, 3, 1), Scope: domain.BudgetScopeCategory, CategoryID: int32Ptr(1), Amount: dec("400"), WarnThreshold: dec("0.8")})

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/budgets/monthly?month=2026-03", "")
	require.NoError(t, f.handler.GetMonthlyBudget(c))
	expectStatus(t, rec, http.StatusOK)

	var before MonthlyBudgetResponse
	decodeBody(t, rec, &before)
	assert.Nil(t, before.TotalBudget)
	assert.Equal(t, "2600.00", before.Unallocated)

	c, rec = newOwnerRequest(newTestEcho(), testOwner, http.MethodPut, "/api/v1/budgets/monthly", `{"month":"2026-03","totalBudget":"2000"}`)
	require.NoError(t, f.handler.SetMonthlyBudget(c))
	expectStatus(t, rec, http.StatusCreated)

	var after MonthlyBudgetResponse
	decodeBody(t, rec, &after)
	require.NotNil(t, after.TotalBudget)
	assert.Equal(t, "2000.00", *after.TotalBudget)
	assert.Equal(t, "3000.00", after.TotalIncome)
	assert.Equal(t, "400.00", after.Allocated)
	assert.Equal(t, "1600.00", after.Unallocated)

	c, rec = newOwnerRequest(newTestEcho(), testOwner, http.MethodPut, "/api/v1/budgets/monthly", `{"month":"2026-03","totalBudget":"-1"}`)
	require.NoError(t, f.handler.SetMonthlyBudget(c))
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestGetBudgetStatusAndWarnings(t *testing.T) {
	f := newBudgetFixture()
	f.budgets.AddBudget(&domain.Budget{WorkspaceID: 1, Month: day(2026, 3, 1), Scope: domain.BudgetScopeOverall, Amount: dec("200"), WarnThreshold: dec("0.8")})
	f.budgets.AddBudget(&domain.Budget{WorkspaceID: 1, Month: day(2026, 3, 1), Scope: domain.BudgetScopeCategory, CategoryID: int32Ptr(1), CategoryName: stringPtr("Food"), Amount: dec("100"), WarnThreshold: dec("0.8")})
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("90"), Date: day(2026, 3, 4), Description: "x", CategoryID: int32Ptr(1), CategoryName: stringPtr("Food")})
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("10"), Date: day(2026, 3, 5), Description: "x"})

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/budgets/status?month=2026-03", "")
	require.NoError(t, f.handler.GetBudgetStatus(c))
	expectStatus(t, rec, http.StatusOK)

	var status BudgetStatusResponse
	decodeBody(t, rec, &status)
	assert.Equal(t, "100.00", status.Overall.Spent)
	assert.Equal(t, "ok", status.Overall.Status)
	assert.Equal(t, "10.00", status.UncategorizedSpent)
	require.Len(t, status.Categories, 1)
	assert.Equal(t, "warn", status.Categories[0].Status)
	require.NotNil(t, status.Categories[0].PercentUsed)
	assert.Equal(t, "0.9", *status.Categories[0].PercentUsed)

	c, rec = newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/budgets/warnings?month=2026-03", "")
	require.NoError(t, f.handler.GetBudgetWarnings(c))
	expectStatus(t, rec, http.StatusOK)

	var warnings BudgetWarningsResponse
	decodeBody(t, rec, &warnings)
	require.Len(t, warnings.Warnings, 1)
	assert.Equal(t, "category_warning", warnings.Warnings[0].Kind)
	assert.Contains(t, warnings.Warnings[0].Message, "90.0%")
}

func TestBudgetPercentUsed_KeepsFullPrecision(t *testing.T) {
	f := newBudgetFixture()
	f.budgets.AddBudget(&domain.Budget{WorkspaceID: 1, Month: day(2026, 3, 1), Scope: domain.BudgetScopeCategory, CategoryID: int32Ptr(1), CategoryName: stringPtr("Food"), Amount: dec("100000"), WarnThreshold: dec("0.8")})
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("99999.99"), Date: day(2026, 3, 4), Description: "x", CategoryID: int32Ptr(1), CategoryName: stringPtr("Food")})

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/budgets/status?month=2026-03", "")
	require.NoError(t, f.handler.GetBudgetStatus(c))
	expectStatus(t, rec, http.StatusOK)

	var status BudgetStatusResponse
	decodeBody(t, rec, &status)
	require.Len(t, status.Categories, 1)
	assert.Equal(t, "warn", status.Categories[0].Status)
	require.NotNil(t, status.Categories[0].PercentUsed)
	assert.Equal(t, "0.9999999", *status.Categories[0].PercentUsed)

	c, rec = newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/budgets/warnings?month=2026-03", "")
	require.NoError(t, f.handler.GetBudgetWarnings(c))
	expectStatus(t, rec, http.StatusOK)

	var warnings BudgetWarningsResponse
	decodeBody(t, rec, &warnings)
	require.Len(t, warnings.Warnings, 1)
	assert.Equal(t, "category_warning", warnings.Warnings[0].Kind)
	assert.Equal(t, "0.9999999", warnings.Warnings[0].PercentUsed)
}

func TestGetBudgetStatus_InvalidMonth(t *testing.T) {
	f := newBudgetFixture()
	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/budgets/status?month=13-2026", "")

	require.NoError(t, f.handler.GetBudgetStatus(c))
	expectProblem(t, rec, http.StatusBadRequest, ErrorTypeValidation)
}
