package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/repository/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const BackupURLExpiry = time.Hour

// expenseCSVHeader is the column order of the expenses export
var expenseCSVHeader = []string{
	"id",
	"date",
	"amount",
	"currency",
	"description",
	"category",
	"payment_method",
	"merchant",
	"notes",
	"created_at",
}

// Backup is the full JSON dump of everything in scope
type Backup struct {
	GeneratedAt    time.Time               `json:"generatedAt"`
	Categories     []*domain.Category      `json:"categories"`
	Budgets        []*domain.Budget        `json:"budgets"`
	MonthlyBudgets []*domain.MonthlyBudget `json:"monthlyBudgets"`
	Incomes        []*domain.Income        `json:"incomes"`
	Expenses       []*domain.Expense       `json:"expenses"`
}

// BackupArchive points at a backup stored in object storage
type BackupArchive struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportService produces CSV and JSON exports
type ExportService struct {
	expenseRepo       domain.ExpenseRepository
	categoryRepo      domain.CategoryRepository
	budgetRepo        domain.BudgetRepository
	monthlyBudgetRepo domain.MonthlyBudgetRepository
	incomeRepo        domain.IncomeRepository
	store             storage.ObjectStore
}

// NewExportService creates a new ExportService. store may be nil, which
// disables backup archives.
func NewExportService(
	expenseRepo domain.ExpenseRepository,
	categoryRepo domain.CategoryRepository,
	budgetRepo domain.BudgetRepository,
	monthlyBudgetRepo domain.MonthlyBudgetRepository,
	incomeRepo domain.IncomeRepository,
	store storage.ObjectStore,
) *ExportService {
	return &ExportService{
		expenseRepo:       expenseRepo,
		categoryRepo:      categoryRepo,
		budgetRepo:        budgetRepo,
		monthlyBudgetRepo: monthlyBudgetRepo,
		incomeRepo:        incomeRepo,
		store:             store,
	}
}

// WriteExpensesCSV writes the expenses in scope, oldest first, as CSV.
// start and end are optional inclusive bounds.
func (s *ExportService) WriteExpensesCSV(w io.Writer, scope domain.ReportScope, start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return domain.ErrInvalidDateRange
	}
	expenses, err := s.expenseRepo.ListForExport(scope, start, end)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(expenseCSVHeader); err != nil {
		return err
	}
	for _, e := range expenses {
		category := ""
		if e.CategoryName != nil {
			category = *e.CategoryName
		}
		record := []string{
			strconv.Itoa(int(e.ID)),
			e.Date.Format("2006-01-02"),
			e.Amount.StringFixed(2),
			e.Currency,
			e.Description,
			category,
			e.PaymentMethod,
			e.Merchant,
			e.Notes,
			e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// GetBackup collects everything in scope. Admins get every workspace.
func (s *ExportService) GetBackup(owner domain.Owner) (*Backup, error) {
	scope := domain.ScopeFor(owner)

	var categories []*domain.Category
	var err error
	if scope.WorkspaceID == nil {
		categories, err = s.categoryRepo.ListAll()
	} else {
		categories, err = s.categoryRepo.GetAllByWorkspace(*scope.WorkspaceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	budgets, err := s.budgetRepo.ListForExport(scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}
	monthly, err := s.monthlyBudgetRepo.ListForExport(scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly budgets: %w", err)
	}
	incomes, err := s.incomeRepo.ListForExport(scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load incomes: %w", err)
	}
	expenses, err := s.expenseRepo.ListForExport(scope, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	return &Backup{
		GeneratedAt:    time.Now().UTC(),
		Categories:     categories,
		Budgets:        budgets,
		MonthlyBudgets: monthly,
		Incomes:        incomes,
		Expenses:       expenses,
	}, nil
}

// ArchiveBackup stores the backup as JSON in object storage and returns a
// presigned link to it
func (s *ExportService) ArchiveBackup(ctx context.Context, owner domain.Owner) (*BackupArchive, error) {
	if s.store == nil {
		return nil, domain.ErrStorageNotConfigured
	}
	backup, err := s.GetBackup(owner)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(backup)
	if err != nil {
		return nil, err
	}

	objectPath := fmt.Sprintf("backups/%d/%s-%s.json",
		owner.WorkspaceID, backup.GeneratedAt.Format("20060102T150405Z"), uuid.New().String())
	path, err := s.store.Upload(ctx, objectPath, bytes.NewReader(body), "application/json", int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to upload backup: %w", err)
	}
	url, err := s.store.GeneratePresignedURL(ctx, path, BackupURLExpiry)
	if err != nil {
		return nil, err
	}

	log.Info().Int32("workspace_id", owner.WorkspaceID).Str("path", path).Msg("Backup archived")
	return &BackupArchive{Path: path, URL: url, ExpiresAt: time.Now().Add(BackupURLExpiry)}, nil
}
