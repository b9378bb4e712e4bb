package handler

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/repository/storage"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExportHandler(expenses *testutil.MockExpenseRepository, store storage.ObjectStore) *ExportHandler {
	return NewExportHandler(service.NewExportService(
		expenses,
		testutil.NewMockCategoryRepository(),
		testutil.NewMockBudgetRepository(),
		testutil.NewMockMonthlyBudgetRepository(),
		testutil.NewMockIncomeRepository(),
		store,
	))
}

func TestExportExpensesCSV(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	repo.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("12.5"), Currency: "USD", Date: day(2026, 3, 2), Description: "lunch, with tea", CategoryID: int32Ptr(1), CategoryName: stringPtr("Food")})
	repo.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("4"), Currency: "USD", Date: day(2026, 4, 2), Description: "bus"})
	repo.AddExpense(&domain.Expense{WorkspaceID: 2, Amount: dec("99"), Currency: "USD", Date: day(2026, 3, 2), Description: "other"})
	h := newExportHandler(repo, nil)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/exports/expenses.csv?end=2026-03-31", "")
	require.NoError(t, h.ExportExpensesCSV(c))
	expectStatus(t, rec, http.StatusOK)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "12.50", records[1][2])
	assert.Equal(t, "lunch, with tea", records[1][4])
	assert.Equal(t, "Food", records[1][5])
}

func TestExportExpensesCSV_InvalidRange(t *testing.T) {
	h := newExportHandler(testutil.NewMockExpenseRepository(), nil)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/exports/expenses.csv?start=2026-04-01&end=2026-03-01", "")
	require.NoError(t, h.ExportExpensesCSV(c))
	expectProblem(t, rec, http.StatusBadRequest, ErrorTypeValidation)

	c, rec = newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/exports/expenses.csv?end=soon", "")
	require.NoError(t, h.ExportExpensesCSV(c))
	problem := expectProblem(t, rec, http.StatusBadRequest, ErrorTypeValidation)
	require.NotEmpty(t, problem.Errors)
	assert.Equal(t, "end", problem.Errors[0].Field)
}

func TestGetBackup(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	repo.AddExpense(&domain.Expense{WorkspaceID: 1, Amount: dec("5"), Date: day(2026, 3, 2), Description: "mine"})
	repo.AddExpense(&domain.Expense{WorkspaceID: 2, Amount: dec("5"), Date: day(2026, 3, 2), Description: "theirs"})
	h := newExportHandler(repo, nil)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/exports/backup.json", "")
	require.NoError(t, h.GetBackup(c))
	expectStatus(t, rec, http.StatusOK)

	var backup service.Backup
	decodeBody(t, rec, &backup)
	require.Len(t, backup.Expenses, 1)
	assert.Equal(t, "mine", backup.Expenses[0].Description)
}

func TestArchiveBackup(t *testing.T) {
	store := testutil.NewMockObjectStore()
	h := newExportHandler(testutil.NewMockExpenseRepository(), store)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodPost, "/api/v1/exports/backup/archive", "")
	require.NoError(t, h.ArchiveBackup(c))
	expectStatus(t, rec, http.StatusCreated)

	var archive service.BackupArchive
	decodeBody(t, rec, &archive)
	assert.True(t, strings.HasPrefix(archive.Path, "backups/1/"))
	assert.Contains(t, archive.URL, archive.Path)
	assert.Contains(t, store.Objects, archive.Path)
}

func TestArchiveBackup_StorageDisabled(t *testing.T) {
	h := newExportHandler(testutil.NewMockExpenseRepository(), nil)

	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodPost, "/api/v1/exports/backup/archive", "")
	require.NoError(t, h.ArchiveBackup(c))
	expectProblem(t, rec, http.StatusServiceUnavailable, ErrorTypeUnavailable)
}
