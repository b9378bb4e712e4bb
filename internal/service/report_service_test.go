package service

import (
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportFixture() (*ReportService, *testutil.MockExpenseRepository) {
	expenses := testutil.NewMockExpenseRepository()
	food, rent := i32(1), i32(2)
	add := func(ws int32, day int, amount string, cat *int32, name string) {
		e := &domain.Expense{WorkspaceID: ws, Amount: money(amount), Date: d(2026, 3, day), Description: "x", CategoryID: cat}
		if name != "" {
			e.CategoryName = strPtr(name)
		}
		expenses.AddExpense(e)
	}
	add(1, 2, "300", food, "Food")
	add(1, 3, "100", food, "Food")
	add(1, 9, "500", rent, "Rent")
	add(1, 10, "100", nil, "")
	add(2, 3, "999", food, "Food")
	return NewReportService(expenses), expenses
}

func TestGetSummary(t *testing.T) {
	svc, _ := newReportFixture()

	report, err := svc.GetSummary(domain.WorkspaceScope(1), d(2026, 3, 1), d(2026, 3, 10))
	require.NoError(t, err)

	assert.True(t, report.Total.Equal(money("1000")))
	assert.True(t, report.AveragePerDay.Equal(money("100")), "averaged over the ten days of the range")
	require.Len(t, report.ByCategory, 3)
	assert.Equal(t, "Rent", report.ByCategory[0].CategoryName)
	assert.True(t, report.ByCategory[0].Percent.Equal(money("50")))
	assert.Equal(t, "Food", report.ByCategory[1].CategoryName)
	assert.Equal(t, int64(2), report.ByCategory[1].Count)
	assert.Equal(t, domain.UncategorizedName, report.ByCategory[2].CategoryName)
}

func TestGetSummary_AllWorkspaces(t *testing.T) {
	svc, _ := newReportFixture()

	report, err := svc.GetSummary(domain.AllWorkspaces(), d(2026, 3, 1), d(2026, 3, 31))
	require.NoError(t, err)
	assert.True(t, report.Total.Equal(money("1999")))
}

func TestGetSummary_InvalidRange(t *testing.T) {
	svc, _ := newReportFixture()

	_, err := svc.GetSummary(domain.WorkspaceScope(1), d(2026, 3, 10), d(2026, 3, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestGetSummary_Empty(t *testing.T) {
	svc := NewReportService(testutil.NewMockExpenseRepository())

	report, err := svc.GetSummary(domain.WorkspaceScope(1), d(2026, 3, 1), d(2026, 3, 1))
	require.NoError(t, err)
	assert.True(t, report.Total.IsZero())
	assert.True(t, report.AveragePerDay.IsZero())
	assert.Empty(t, report.ByCategory)
}

func TestGetMonthOverMonth(t *testing.T) {
	svc, expenses := newReportFixture()
	expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: money("800"), Date: d(2026, 2, 14), Description: "x"})

	result, err := svc.GetMonthOverMonth(domain.WorkspaceScope(1), d(2026, 3, 20))
	require.NoError(t, err)
	assert.Equal(t, d(2026, 2, 1), result.PreviousMonth)
	assert.True(t, result.Delta.Equal(money("200")))
	require.NotNil(t, result.PercentChange)
	assert.True(t, result.PercentChange.Equal(money("25")))

	t.Run("no previous spend", func(t *testing.T) {
		result, err := svc.GetMonthOverMonth(domain.WorkspaceScope(1), d(2026, 2, 1))
		require.NoError(t, err)
		assert.Nil(t, result.PercentChange)
		assert.True(t, result.Previous.IsZero())
	})
}

func TestGetTimeSeries(t *testing.T) {
	svc, _ := newReportFixture()

	t.Run("daily fills gaps", func(t *testing.T) {
		series, err := svc.GetTimeSeries(domain.WorkspaceScope(1), d(2026, 3, 1), d(2026, 3, 4), "")
		require.NoError(t, err)
		assert.Equal(t, domain.BucketDaily, series.Bucket)
		require.Len(t, series.Points, 4)
		assert.True(t, series.Points[0].Total.IsZero())
		assert.True(t, series.Points[1].Total.Equal(money("300")))
		assert.True(t, series.Points[2].Total.Equal(money("100")))
	})

	t.Run("weekly starts on monday", func(t *testing.T) {
		// 2026-03-02 is a Monday
		series, err := svc.GetTimeSeries(domain.WorkspaceScope(1), d(2026, 3, 1), d(2026, 3, 15), domain.BucketWeekly)
		require.NoError(t, err)
		require.Len(t, series.Points, 3)
		assert.Equal(t, d(2026, 2, 23), series.Points[0].Start)
		assert.True(t, series.Points[1].Total.Equal(money("400")))
		assert.True(t, series.Points[2].Total.Equal(money("600")))
	})

	t.Run("unknown bucket", func(t *testing.T) {
		_, err := svc.GetTimeSeries(domain.WorkspaceScope(1), d(2026, 3, 1), d(2026, 3, 2), "monthly")
		assert.ErrorIs(t, err, domain.ErrInvalidBucket)
	})
}
