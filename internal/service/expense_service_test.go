package service

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	calls []time.Time
}

func (r *recordingListener) SpendChanged(workspaceID int32, month time.Time) {
	r.calls = append(r.calls, month)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
	ids    []int32
}

func (r *recordingPublisher) Publish(workspaceID int32, event websocket.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, workspaceID)
	r.events = append(r.events, event)
}

type expenseFixture struct {
	expenses   *testutil.MockExpenseRepository
	categories *testutil.MockCategoryRepository
	listener   *recordingListener
	publisher  *recordingPublisher
	now        time.Time
	service    *ExpenseService
}

func newExpenseFixture() *expenseFixture {
	f := &expenseFixture{
		expenses:   testutil.NewMockExpenseRepository(),
		categories: testutil.NewMockCategoryRepository(),
		listener:   &recordingListener{},
		publisher:  &recordingPublisher{},
		now:        time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.categories.AddCategory(&domain.Category{ID: 1, Name: "Food", IsSystem: true})
	f.service = NewExpenseService(f.expenses, f.categories, 72*time.Hour, domain.FixedClock{T: f.now})
	f.service.SetSpendListener(f.listener)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func userOwner(ws int32) domain.Owner {
	return domain.Owner{UserID: uuid.New(), WorkspaceID: ws, Role: domain.RoleUser}
}

func TestCreateExpense_Defaults(t *testing.T) {
	f := newExpenseFixture()

	expense, err := f.service.CreateExpense(1, ExpenseInput{
		Amount:      money("250.50"),
		Description: "  Lunch ",
		CategoryID:  i32(1),
	})
	require.NoError(t, err)

	assert.Equal(t, "Lunch", expense.Description)
	assert.Equal(t, domain.DefaultCurrency, expense.Currency)
	assert.Equal(t, d(2026, 3, 10), expense.Date)
	require.NotNil(t, expense.CategoryName)
	assert.Equal(t, "Food", *expense.CategoryName)

	require.Len(t, f.listener.calls, 1)
	assert.Equal(t, d(2026, 3, 1), f.listener.calls[0])
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "expense.created", f.publisher.events[0].Type)
}

func TestCreateExpense_Validation(t *testing.T) {
	f := newExpenseFixture()

	tests := []struct {
		name  string
		input ExpenseInput
		want  error
	}{
		{"missing description", ExpenseInput{Amount: money("1"), Description: " "}, domain.ErrDescriptionRequired},
		{"long description", ExpenseInput{Amount: money("1"), Description: strings.Repeat("x", 1001)}, domain.ErrDescriptionTooLong},
		{"long notes", ExpenseInput{Amount: money("1"), Description: "x", Notes: strings.Repeat("n", 1001)}, domain.ErrNotesTooLong},
		{"zero amount", ExpenseInput{Amount: money("0"), Description: "x"}, domain.ErrInvalidAmount},
		{"negative amount", ExpenseInput{Amount: money("-5"), Description: "x"}, domain.ErrInvalidAmount},
		{"unknown category", ExpenseInput{Amount: money("1"), Description: "x", CategoryID: i32(99)}, domain.ErrCategoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateExpense(1, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.listener.calls)
}

func TestGetExpenses_ClampsPaging(t *testing.T) {
	f := newExpenseFixture()
	for i := 0; i < 3; i++ {
		_, err := f.service.CreateExpense(1, ExpenseInput{Amount: money("10"), Description: "x"})
		require.NoError(t, err)
	}

	filters := &domain.ExpenseFilters{Page: 0, PageSize: 500}
	page, err := f.service.GetExpenses(1, filters)
	require.NoError(t, err)
	assert.Equal(t, int32(1), page.Page)
	assert.Equal(t, int32(domain.MaxPageSize), page.PageSize)
	assert.Equal(t, int64(3), page.TotalItems)

	start, end := d(2026, 3, 10), d(2026, 3, 1)
	_, err = f.service.GetExpenses(1, &domain.ExpenseFilters{StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestUpdateExpense_EditWindow(t *testing.T) {
	f := newExpenseFixture()
	fresh := &domain.Expense{WorkspaceID: 1, Amount: money("10"), Date: d(2026, 3, 9), Description: "fresh", CreatedAt: f.now.Add(-71 * time.Hour)}
	stale := &domain.Expense{WorkspaceID: 1, Amount: money("10"), Date: d(2026, 2, 20), Description: "stale", CreatedAt: f.now.Add(-73 * time.Hour)}
	f.expenses.AddExpense(fresh)
	f.expenses.AddExpense(stale)

	t.Run("inside window", func(t *testing.T) {
		updated, err := f.service.UpdateExpense(userOwner(1), fresh.ID, ExpenseInput{Amount: money("12"), Description: "fresh"})
		require.NoError(t, err)
		assert.True(t, updated.Amount.Equal(money("12")))
		assert.Equal(t, d(2026, 3, 9), updated.Date, "date kept when not supplied")
	})

	t.Run("outside window for users", func(t *testing.T) {
		_, err := f.service.UpdateExpense(userOwner(1), stale.ID, ExpenseInput{Amount: money("12"), Description: "stale"})
		assert.ErrorIs(t, err, domain.ErrEditWindowExpired)
	})

	t.Run("admins bypass the window", func(t *testing.T) {
		admin := domain.Owner{WorkspaceID: 1, Role: domain.RoleAdmin}
		_, err := f.service.UpdateExpense(admin, stale.ID, ExpenseInput{Amount: money("12"), Description: "stale"})
		assert.NoError(t, err)
	})

	t.Run("other workspace", func(t *testing.T) {
		_, err := f.service.UpdateExpense(userOwner(2), fresh.ID, ExpenseInput{Amount: money("12"), Description: "x"})
		assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
	})
}

func TestUpdateExpense_MovingMonthNotifiesBoth(t *testing.T) {
	f := newExpenseFixture()
	e := &domain.Expense{WorkspaceID: 1, Amount: money("10"), Date: d(2026, 3, 2), Description: "x", CreatedAt: f.now}
	f.expenses.AddExpense(e)

	moved := d(2026, 2, 27)
	_, err := f.service.UpdateExpense(userOwner(1), e.ID, ExpenseInput{Amount: money("10"), Description: "x", Date: &moved})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{d(2026, 3, 1), d(2026, 2, 1)}, f.listener.calls)
}

func TestDeleteExpense(t *testing.T) {
	f := newExpenseFixture()
	e := &domain.Expense{WorkspaceID: 1, Amount: money("10"), Date: d(2026, 3, 2), Description: "x", CreatedAt: f.now.Add(-time.Hour)}
	f.expenses.AddExpense(e)

	require.NoError(t, f.service.DeleteExpense(userOwner(1), e.ID))
	_, err := f.service.GetExpenseByID(1, e.ID)
	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
	assert.Equal(t, []time.Time{d(2026, 3, 1)}, f.listener.calls)
	assert.Equal(t, "expense.deleted", f.publisher.events[len(f.publisher.events)-1].Type)

	assert.ErrorIs(t, f.service.DeleteExpense(userOwner(1), e.ID), domain.ErrExpenseNotFound)
}

func TestWarningNotifier_PushesWarnings(t *testing.T) {
	f := newStatusFixture()
	month := d(2026, 3, 1)
	f.overall(1, month, "100", "0.8")
	f.spend(1, d(2026, 3, 4), "90", nil, "")

	publisher := &recordingPublisher{}
	queue := &recordingQueue{}
	notifier := NewWarningNotifier(f.service, publisher, queue)

	notifier.SpendChanged(1, d(2026, 3, 20))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "budget.warning", publisher.events[0].Type)
	alert, ok := publisher.events[0].Payload.(BudgetAlert)
	require.True(t, ok)
	assert.Equal(t, "2026-03", alert.Month)
	require.Len(t, alert.Warnings, 1)
	assert.Equal(t, domain.WarningBudgetWarning, alert.Warnings[0].Kind)

	require.Len(t, queue.messages, 1)
	assert.Equal(t, "budget.warning", queue.messages[0].Type)
	assert.Equal(t, int32(1), queue.messages[0].WorkspaceID)
}

func TestWarningNotifier_SilentWithoutWarnings(t *testing.T) {
	f := newStatusFixture()
	publisher := &recordingPublisher{}
	notifier := NewWarningNotifier(f.service, publisher, nil)

	notifier.SpendChanged(1, d(2026, 3, 1))
	assert.Empty(t, publisher.events)
}
