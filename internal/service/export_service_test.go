package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exportFixture struct {
	expenses *testutil.MockExpenseRepository
	store    *testutil.MockObjectStore
	service  *ExportService
}

func newExportFixture() *exportFixture {
	f := &exportFixture{
		expenses: testutil.NewMockExpenseRepository(),
		store:    testutil.NewMockObjectStore(),
	}
	categories := testutil.NewMockCategoryRepository()
	categories.AddCategory(&domain.Category{ID: 1, Name: "Food", IsSystem: true})
	categories.AddCategory(&domain.Category{ID: 2, Name: "Hobby", WorkspaceID: i32(2)})

	budgets := testutil.NewMockBudgetRepository()
	budgets.AddBudget(&domain.Budget{WorkspaceID: 1, Month: d(2026, 3, 1), Scope: domain.BudgetScopeOverall, Amount: money("100")})
	incomes := testutil.NewMockIncomeRepository()
	incomes.AddIncome(&domain.Income{WorkspaceID: 2, Month: d(2026, 3, 1), SourceName: "Salary", Amount: money("500")})

	created := time.Date(2026, 3, 5, 8, 30, 0, 0, time.UTC)
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: money("12.5"), Currency: "BDT", Date: d(2026, 3, 5),
		Description: "Tea, biscuits", CategoryID: i32(1), CategoryName: strPtr("Food"), CreatedAt: created})
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: money("40"), Currency: "BDT", Date: d(2026, 3, 1),
		Description: "Bus", CreatedAt: created})
	f.expenses.AddExpense(&domain.Expense{WorkspaceID: 2, Amount: money("99"), Currency: "BDT", Date: d(2026, 3, 2),
		Description: "Paint", CreatedAt: created})

	f.service = NewExportService(f.expenses, categories, budgets, testutil.NewMockMonthlyBudgetRepository(), incomes, f.store)
	return f
}

func TestWriteExpensesCSV(t *testing.T) {
	f := newExportFixture()

	var buf bytes.Buffer
	require.NoError(t, f.service.WriteExpensesCSV(&buf, domain.WorkspaceScope(1), nil, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "created_at", records[0][9])

	assert.Equal(t, "2026-03-01", records[1][1], "oldest first")
	assert.Equal(t, "", records[1][5])
	assert.Equal(t, "12.50", records[2][2])
	assert.Equal(t, "Tea, biscuits", records[2][4])
	assert.Equal(t, "Food", records[2][5])
	assert.Equal(t, "2026-03-05T08:30:00Z", records[2][9])
}

func TestWriteExpensesCSV_DateRange(t *testing.T) {
	f := newExportFixture()
	start, end := d(2026, 3, 2), d(2026, 3, 31)

	var buf bytes.Buffer
	require.NoError(t, f.service.WriteExpensesCSV(&buf, domain.AllWorkspaces(), &start, &end))
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"), "header plus two rows")

	err := f.service.WriteExpensesCSV(&buf, domain.AllWorkspaces(), &end, &start)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestGetBackup_Scope(t *testing.T) {
	f := newExportFixture()

	t.Run("user sees own workspace", func(t *testing.T) {
		backup, err := f.service.GetBackup(userOwner(1))
		require.NoError(t, err)
		assert.Len(t, backup.Expenses, 2)
		assert.Len(t, backup.Budgets, 1)
		assert.Empty(t, backup.Incomes)
		require.Len(t, backup.Categories, 1)
		assert.Equal(t, "Food", backup.Categories[0].Name)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		backup, err := f.service.GetBackup(domain.Owner{WorkspaceID: 1, Role: domain.RoleAdmin})
		require.NoError(t, err)
		assert.Len(t, backup.Expenses, 3)
		assert.Len(t, backup.Incomes, 1)
		assert.Len(t, backup.Categories, 2)
	})
}

func TestArchiveBackup(t *testing.T) {
	f := newExportFixture()

	archive, err := f.service.ArchiveBackup(context.Background(), userOwner(1))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(archive.Path, "backups/1/"))
	assert.Contains(t, archive.URL, archive.Path)
	assert.Equal(t, "application/json", f.store.Types[archive.Path])

	var stored Backup
	require.NoError(t, json.Unmarshal(f.store.Objects[archive.Path], &stored))
	assert.Len(t, stored.Expenses, 2)
}

func TestArchiveBackup_NoStorage(t *testing.T) {
	f := newExportFixture()
	f.service.store = nil

	_, err := f.service.ArchiveBackup(context.Background(), userOwner(1))
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)
}
