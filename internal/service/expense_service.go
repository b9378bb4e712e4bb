package service

import (
	"strings"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseService handles expense business logic
type ExpenseService struct {
	expenseRepo    domain.ExpenseRepository
	categoryRepo   domain.CategoryRepository
	editWindow     time.Duration
	clock          domain.Clock
	listener       SpendListener
	eventPublisher websocket.EventPublisher
}

// NewExpenseService creates a new ExpenseService. Non-admins may change an
// expense only within editWindow of its creation.
func NewExpenseService(expenseRepo domain.ExpenseRepository, categoryRepo domain.CategoryRepository, editWindow time.Duration, clock domain.Clock) *ExpenseService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &ExpenseService{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		editWindow:   editWindow,
		clock:        clock,
	}
}

// SetSpendListener registers the component told about spend changes
func (s *ExpenseService) SetSpendListener(listener SpendListener) {
	s.listener = listener
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ExpenseService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

func (s *ExpenseService) spendChanged(workspaceID int32, dates ...time.Time) {
	if s.listener == nil {
		return
	}
	seen := make(map[time.Time]bool)
	for _, d := range dates {
		month := util.NormalizeMonth(d)
		if !seen[month] {
			seen[month] = true
			s.listener.SpendChanged(workspaceID, month)
		}
	}
}

// ExpenseInput holds the fields of an expense write
type ExpenseInput struct {
	CategoryID    *int32
	Amount        decimal.Decimal
	Currency      string
	Date          *time.Time
	Description   string
	PaymentMethod string
	Merchant      string
	Notes         string
}

func (s *ExpenseService) buildExpense(workspaceID int32, input ExpenseInput) (*domain.Expense, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domain.ErrDescriptionRequired
	}
	if len(description) > domain.MaxDescriptionLength {
		return nil, domain.ErrDescriptionTooLong
	}
	notes := strings.TrimSpace(input.Notes)
	if len(notes) > domain.MaxNotesLength {
		return nil, domain.ErrNotesTooLong
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	expense := &domain.Expense{
		WorkspaceID:   workspaceID,
		Amount:        input.Amount,
		Currency:      strings.ToUpper(strings.TrimSpace(input.Currency)),
		Date:          util.DateOf(s.clock.Now()),
		Description:   description,
		PaymentMethod: strings.TrimSpace(input.PaymentMethod),
		Merchant:      strings.TrimSpace(input.Merchant),
		Notes:         notes,
	}
	if expense.Currency == "" {
		expense.Currency = domain.DefaultCurrency
	}
	if input.Date != nil {
		expense.Date = util.DateOf(*input.Date)
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(workspaceID, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		expense.CategoryID = &category.ID
		expense.CategoryName = &category.Name
	}
	return expense, nil
}

// CreateExpense records a new expense dated today unless a date is given
func (s *ExpenseService) CreateExpense(workspaceID int32, input ExpenseInput) (*domain.Expense, error) {
	expense, err := s.buildExpense(workspaceID, input)
	if err != nil {
		return nil, err
	}

	created, err := s.expenseRepo.Create(expense)
	if err != nil {
		return nil, err
	}
	log.Info().Int32("workspace_id", workspaceID).Int32("expense_id", created.ID).Msg("Expense created")

	s.publishEvent(workspaceID, websocket.ExpenseCreated(created))
	s.spendChanged(workspaceID, created.Date)
	return created, nil
}

// GetExpenses lists expenses newest first with optional filters and pagination
func (s *ExpenseService) GetExpenses(workspaceID int32, filters *domain.ExpenseFilters) (*domain.PaginatedExpenses, error) {
	if filters == nil {
		filters = &domain.ExpenseFilters{}
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(*filters.EndDate) {
		return nil, domain.ErrInvalidDateRange
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}
	return s.expenseRepo.List(workspaceID, filters)
}

// GetExpenseByID retrieves an expense by ID within a workspace
func (s *ExpenseService) GetExpenseByID(workspaceID int32, id int32) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(workspaceID, id)
}

// editable loads the expense and enforces the edit window for non-admins
func (s *ExpenseService) editable(owner domain.Owner, id int32) (*domain.Expense, error) {
	existing, err := s.expenseRepo.GetByID(owner.WorkspaceID, id)
	if err != nil {
		return nil, err
	}
	if !owner.IsAdmin() && !existing.EditableAt(s.clock.Now(), s.editWindow) {
		return nil, domain.ErrEditWindowExpired
	}
	return existing, nil
}

// UpdateExpense replaces the editable fields of an expense
func (s *ExpenseService) UpdateExpense(owner domain.Owner, id int32, input ExpenseInput) (*domain.Expense, error) {
	existing, err := s.editable(owner, id)
	if err != nil {
		return nil, err
	}

	expense, err := s.buildExpense(owner.WorkspaceID, input)
	if err != nil {
		return nil, err
	}
	if input.Date == nil {
		expense.Date = existing.Date
	}
	expense.ID = existing.ID
	expense.ReceiptPath = existing.ReceiptPath

	updated, err := s.expenseRepo.Update(expense)
	if err != nil {
		return nil, err
	}
	log.Info().Int32("workspace_id", owner.WorkspaceID).Int32("expense_id", id).Msg("Expense updated")

	s.publishEvent(owner.WorkspaceID, websocket.ExpenseUpdated(updated))
	s.spendChanged(owner.WorkspaceID, existing.Date, updated.Date)
	return updated, nil
}

// DeleteExpense removes an expense
func (s *ExpenseService) DeleteExpense(owner domain.Owner, id int32) error {
	existing, err := s.editable(owner, id)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(owner.WorkspaceID, id); err != nil {
		return err
	}
	log.Info().Int32("workspace_id", owner.WorkspaceID).Int32("expense_id", id).Msg("Expense deleted")

	s.publishEvent(owner.WorkspaceID, websocket.ExpenseDeleted(map[string]int32{"id": id}))
	s.spendChanged(owner.WorkspaceID, existing.Date)
	return nil
}
