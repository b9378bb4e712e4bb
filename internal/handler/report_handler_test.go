package handler

import (
	"net/http"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportHandler(expenses *testutil.MockExpenseRepository, incomes *testutil.MockIncomeRepository, budgets *testutil.MockBudgetRepository, monthly *testutil.MockMonthlyBudgetRepository) *ReportHandler {
	clock := domain.FixedClock{T: day(2026, 3, 20)}
	return NewReportHandler(
		service.NewReportService(expenses),
		service.NewTrendService(expenses, clock),
		service.NewSummaryService(expenses, incomes, budgets, monthly),
	)
}

func newEmptyReportHandler(expenses *testutil.MockExpenseRepository) *ReportHandler {
	return newReportHandler(expenses, testutil.NewMockIncomeRepository(), testutil.NewMockBudgetRepository(), testutil.NewMockMonthlyBudgetRepository())
}

func seedReportExpenses(repo *testutil.MockExpenseRepository) {
	repo.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("30"), Date: day(2026, 3, 2), Description: "lunch", CategoryID: int32Ptr(1), CategoryName: stringPtr("Food")})
	repo.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("10"), Date: day(2026, 3, 3), Description: "bus"})
	repo.AddExpense(&domain.Expense{WorkspaceID: 2, Amount: dec("60"), Date: day(2026, 3, 3), Description: "rent", CategoryID: int32Ptr(2), CategoryName: stringPtr("Housing")})
}

func TestGetSummary_ScopedToWorkspace(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	seedReportExpenses(repo)
	h := newEmptyReportHandler(repo)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/reports/summary?start=2026-03-01&end=2026-03-10", "")
	require.NoError(t, h.GetSummary(c))
	expectStatus(t, rec, http.StatusOK)

	var response SummaryReportResponse
	decodeBody(t, rec, &response)
	assert.Equal(t, "40.00", response.Total)
	assert.Equal(t, "4.00", response.AveragePerDay)
	require.Len(t, response.ByCategory, 2)

	names := []string{response.ByCategory[0].CategoryName, response.ByCategory[1].CategoryName}
	assert.ElementsMatch(t, []string{"Food", domain.UncategorizedName}, names)
}

func TestGetSummary_AdminSeesAllWorkspaces(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	seedReportExpenses(repo)
	h := newEmptyReportHandler(repo)
	admin := domain.Owner{UserID: uuid.New(), WorkspaceID: 1, Role: domain.RoleAdmin}

	c, rec := newOwnerRequest(newTestEcho(), admin, http.MethodGet, "/api/v1/reports/summary?start=2026-03-01&end=2026-03-10", "")
	require.NoError(t, h.GetSummary(c))
	expectStatus(t, rec, http.StatusOK)

	var response SummaryReportResponse
	decodeBody(t, rec, &response)
	assert.Equal(t, "100.00", response.Total)
	assert.Len(t, response.ByCategory, 3)
}

func TestGetSummary_InvalidRange(t *testing.T) {
	h := newEmptyReportHandler(testutil.NewMockExpenseRepository())

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/reports/summary?start=2026-03-10&end=2026-03-01", "")
	require.NoError(t, h.GetSummary(c))
	expectProblem(t, rec, http.StatusBadRequest, ErrorTypeValidation)

	c, rec = newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/reports/summary?start=yesterday", "")
	require.NoError(t, h.GetSummary(c))
	problem := expectProblem(t, rec, http.StatusBadRequest, ErrorTypeValidation)
	require.NotEmpty(t, problem.Errors)
	assert.Equal(t, "start", problem.Errors[0].Field)
}

func TestGetMonthOverMonth(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	repo.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("100"), Date: day(2026, 2, 10), Description: "x"})
	repo.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("150"), Date: day(2026, 3, 10), Description: "x"})
	h := newEmptyReportHandler(repo)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/reports/trends?month=2026-03", "")
	require.NoError(t, h.GetMonthOverMonth(c))
	expectStatus(t, rec, http.StatusOK)

	var response MonthOverMonthResponse
	decodeBody(t, rec, &response)
	assert.Equal(t, "2026-02", response.PreviousMonth)
	assert.Equal(t, "50.00", response.Delta)
	require.NotNil(t, response.PercentChange)
	assert.Equal(t, "50.00", *response.PercentChange)
}

func TestGetTimeSeries_Buckets(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	seedReportExpenses(repo)
	h := newEmptyReportHandler(repo)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/reports/timeseries?start=2026-03-01&end=2026-03-05", "")
	require.NoError(t, h.GetTimeSeries(c))
	expectStatus(t, rec, http.StatusOK)

	var daily TimeSeriesResponse
	decodeBody(t, rec, &daily)
	assert.Equal(t, "daily", daily.Bucket)
	require.Len(t, daily.Points, 5)
	assert.Equal(t, "0.00", daily.Points[0].Total)
	assert.Equal(t, "30.00", daily.Points[1].Total)

	c, rec = newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/reports/timeseries?start=2026-03-01&end=2026-03-05&bucket=hourly", "")
	require.NoError(t, h.GetTimeSeries(c))
	problem := expectProblem(t, rec, http.StatusBadRequest, ErrorTypeValidation)
	require.NotEmpty(t, problem.Errors)
	assert.Equal(t, "bucket", problem.Errors[0].Field)
}

func TestGetSpendingTrends_NotEnoughData(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	seedReportExpenses(repo)
	h := newEmptyReportHandler(repo)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/reports/spending-trends", "")
	require.NoError(t, h.GetSpendingTrends(c))
	expectStatus(t, rec, http.StatusOK)

	var response SpendingTrendsResponse
	decodeBody(t, rec, &response)
	assert.False(t, response.HasData)
	assert.Equal(t, 30, response.Days)
	assert.Equal(t, 2, response.DaysWithData)
	assert.Nil(t, response.Projection)
}

func TestGetSpendingTrends_Computes(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	for d := 14; d <= 20; d++ {
		repo.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("20"), Date: day(2026, 3, d), Description: "x", CategoryID: int32Ptr(1), CategoryName: stringPtr("Food")})
	}
	h := newEmptyReportHandler(repo)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/reports/spending-trends?days=3", "")
	require.NoError(t, h.GetSpendingTrends(c))
	expectStatus(t, rec, http.StatusOK)

	var response SpendingTrendsResponse
	decodeBody(t, rec, &response)
	assert.True(t, response.HasData)
	assert.Equal(t, domain.MinTrendDays, response.Days)
	require.NotNil(t, response.Projection)
	require.NotNil(t, response.Velocity)
	require.Len(t, response.TopCategories, 1)
	assert.Equal(t, "Food", response.TopCategories[0].CategoryName)
}

func TestGetSpendingTrends_InvalidDays(t *testing.T) {
	h := newEmptyReportHandler(testutil.NewMockExpenseRepository())

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/reports/spending-trends?days=week", "")
	require.NoError(t, h.GetSpendingTrends(c))
	expectProblem(t, rec, http.StatusBadRequest, ErrorTypeValidation)
}

func TestGetMonthEndSummary(t *testing.T) {
	expenses := testutil.NewMockExpenseRepository()
	incomes := testutil.NewMockIncomeRepository()
	budgets := testutil.NewMockBudgetRepository()
	monthly := testutil.NewMockMonthlyBudgetRepository()
	incomes.AddIncome(&domain.Income{WorkspaceID: 1, Month: day(2026, 3, 1), SourceName: "Salary", Amount: dec("1000")})
	expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("250"), Date: day(2026, 3, 4), Description: "x", CategoryID: int32Ptr(1), CategoryName: stringPtr("Food")})
	h := newReportHandler(expenses, incomes, budgets, monthly)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/reports/month-end?month=2026-03", "")
	require.NoError(t, h.GetMonthEndSummary(c))
	expectStatus(t, rec, http.StatusOK)

	var response MonthEndSummaryResponse
	decodeBody(t, rec, &response)
	assert.Equal(t, "1000.00", response.TotalIncome)
	assert.Equal(t, domain.BudgetSourceIncome, response.BudgetSource)
	require.NotNil(t, response.Savings)
	assert.Equal(t, "750.00", *response.Savings)
	require.NotNil(t, response.Compliant)
	assert.True(t, *response.Compliant)
	require.Len(t, response.Categories, 1)
	assert.Nil(t, response.Categories[0].Budget)
}
