package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func inScope(scope domain.ReportScope, workspaceID int32) bool {
	return scope.WorkspaceID == nil || *scope.WorkspaceID == workspaceID
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(auth0ID, email string, name, pictureURL *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name, pictureURL)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
		Role:       domain.RoleUser,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	m.AddUser(user)
	return user, nil
}

// List returns users matching the filters ordered by email
func (m *MockUserRepository) List(filters domain.UserFilters) ([]*domain.User, error) {
	var users []*domain.User
	for _, u := range m.ByID {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		if filters.IsActive != nil && u.IsActive != *filters.IsActive {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(filters.Search)) {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// UpdateRole changes a user's role
func (m *MockUserRepository) UpdateRole(id uuid.UUID, role domain.Role) (*domain.User, error) {
	user, ok := m.ByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Role = role
	return user, nil
}

// SetActive toggles a user's active flag
func (m *MockUserRepository) SetActive(id uuid.UUID, active bool) (*domain.User, error) {
	user, ok := m.ByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.IsActive = active
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockWorkspaceRepository is a mock implementation of domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	Workspaces    map[int32]*domain.Workspace
	ByUserID      map[uuid.UUID]*domain.Workspace
	Inactive      map[int32]bool
	NextID        int32
	GetByUserIDFn func(userID uuid.UUID) (*domain.Workspace, error)
}

// NewMockWorkspaceRepository creates a new MockWorkspaceRepository
func NewMockWorkspaceRepository() *MockWorkspaceRepository {
	return &MockWorkspaceRepository{
		Workspaces: make(map[int32]*domain.Workspace),
		ByUserID:   make(map[uuid.UUID]*domain.Workspace),
		Inactive:   make(map[int32]bool),
		NextID:     1,
	}
}

// GetByID retrieves a workspace by ID
func (m *MockWorkspaceRepository) GetByID(id int32) (*domain.Workspace, error) {
	if ws, ok := m.Workspaces[id]; ok {
		return ws, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// GetByUserID retrieves a workspace by user ID
func (m *MockWorkspaceRepository) GetByUserID(userID uuid.UUID) (*domain.Workspace, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(userID)
	}
	if ws, ok := m.ByUserID[userID]; ok {
		return ws, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// Create creates a new workspace
func (m *MockWorkspaceRepository) Create(workspace *domain.Workspace) (*domain.Workspace, error) {
	workspace.ID = m.NextID
	m.NextID++
	m.AddWorkspace(workspace)
	return workspace, nil
}

// ListActiveIDs returns workspace IDs not marked inactive, ascending
func (m *MockWorkspaceRepository) ListActiveIDs() ([]int32, error) {
	var ids []int32
	for id := range m.Workspaces {
		if !m.Inactive[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// AddWorkspace adds a workspace to the mock repository (helper for tests)
func (m *MockWorkspaceRepository) AddWorkspace(workspace *domain.Workspace) {
	m.Workspaces[workspace.ID] = workspace
	m.ByUserID[workspace.UserID] = workspace
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	NextID     int32
	// Usage holds the aggregates ListSystem and UsageStats report per category
	Usage map[int32]*domain.UsageStats
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
		Usage:      make(map[int32]*domain.UsageStats),
	}
}

func (m *MockCategoryRepository) nameTaken(workspaceID *int32, name string, exceptID int32) bool {
	for _, c := range m.Categories {
		if c.ID == exceptID || !strings.EqualFold(c.Name, name) {
			continue
		}
		if (c.WorkspaceID == nil && workspaceID == nil) ||
			(c.WorkspaceID != nil && workspaceID != nil && *c.WorkspaceID == *workspaceID) {
			return true
		}
	}
	return false
}

// Create creates a new category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	if m.nameTaken(category.WorkspaceID, category.Name, 0) {
		return nil, domain.ErrCategoryNameExists
	}
	category.ID = m.NextID
	m.NextID++
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category visible to the workspace
func (m *MockCategoryRepository) GetByID(workspaceID int32, id int32) (*domain.Category, error) {
	c, ok := m.Categories[id]
	if !ok || !c.VisibleTo(workspaceID) {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

// GetAllByWorkspace retrieves system and workspace categories by name
func (m *MockCategoryRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Category, error) {
	var result []*domain.Category
	for _, c := range m.Categories {
		if c.VisibleTo(workspaceID) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Update updates a workspace category
func (m *MockCategoryRepository) Update(workspaceID int32, id int32, name, icon, colorToken string) (*domain.Category, error) {
	c, ok := m.Categories[id]
	if !ok || c.IsSystem || c.WorkspaceID == nil || *c.WorkspaceID != workspaceID {
		return nil, domain.ErrCategoryNotFound
	}
	if m.nameTaken(c.WorkspaceID, name, id) {
		return nil, domain.ErrCategoryNameExists
	}
	c.Name, c.Icon, c.ColorToken = name, icon, colorToken
	return c, nil
}

// Delete deletes a workspace category
func (m *MockCategoryRepository) Delete(workspaceID int32, id int32) error {
	c, ok := m.Categories[id]
	if !ok || c.IsSystem || c.WorkspaceID == nil || *c.WorkspaceID != workspaceID {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

// ListAll returns every category ordered by ID
func (m *MockCategoryRepository) ListAll() ([]*domain.Category, error) {
	var result []*domain.Category
	for _, c := range m.Categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockCategoryRepository) system(id int32) (*domain.Category, bool) {
	c, ok := m.Categories[id]
	return c, ok && c.IsSystem
}

// ListSystem returns system categories by name with their recorded usage
func (m *MockCategoryRepository) ListSystem() ([]*domain.SystemCategory, error) {
	result := []*domain.SystemCategory{}
	for _, c := range m.Categories {
		if !c.IsSystem {
			continue
		}
		sc := &domain.SystemCategory{Category: *c}
		if u, ok := m.Usage[c.ID]; ok {
			sc.UsageCount = u.TotalCount
			sc.TotalAmount = u.TotalAmount
		}
		result = append(result, sc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockCategoryRepository) UpdateSystem(id int32, name, icon, colorToken string) (*domain.Category, error) {
	c, ok := m.system(id)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	if m.nameTaken(nil, name, id) {
		return nil, domain.ErrCategoryNameExists
	}
	c.Name, c.Icon, c.ColorToken = name, icon, colorToken
	return c, nil
}

func (m *MockCategoryRepository) DeleteSystem(id int32) error {
	if _, ok := m.system(id); !ok {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	delete(m.Usage, id)
	return nil
}

// UsageStats returns the recorded usage, keeping only months from since on
func (m *MockCategoryRepository) UsageStats(id int32, since time.Time) (*domain.UsageStats, error) {
	if _, ok := m.system(id); !ok {
		return nil, domain.ErrCategoryNotFound
	}
	u, ok := m.Usage[id]
	if !ok {
		return &domain.UsageStats{}, nil
	}
	stats := *u
	stats.Monthly = nil
	for _, mu := range u.Monthly {
		if !mu.Month.Before(since) {
			stats.Monthly = append(stats.Monthly, mu)
		}
	}
	return &stats, nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.Categories[category.ID] = category
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
}

// MockIncomeSourceRepository is a mock implementation of domain.IncomeSourceRepository
type MockIncomeSourceRepository struct {
	Sources map[int32]*domain.IncomeSource
	NextID  int32
	// Usage holds the aggregates ListSystem and UsageStats report per source
	Usage map[int32]*domain.UsageStats
}

// NewMockIncomeSourceRepository creates a new MockIncomeSourceRepository
func NewMockIncomeSourceRepository() *MockIncomeSourceRepository {
	return &MockIncomeSourceRepository{
		Sources: make(map[int32]*domain.IncomeSource),
		NextID:  1,
		Usage:   make(map[int32]*domain.UsageStats),
	}
}

func (m *MockIncomeSourceRepository) nameTaken(workspaceID *int32, name string, exceptID int32) bool {
	for _, s := range m.Sources {
		if s.ID == exceptID || !strings.EqualFold(s.Name, name) {
			continue
		}
		if (s.WorkspaceID == nil && workspaceID == nil) ||
			(s.WorkspaceID != nil && workspaceID != nil && *s.WorkspaceID == *workspaceID) {
			return true
		}
	}
	return false
}

func (m *MockIncomeSourceRepository) Create(source *domain.IncomeSource) (*domain.IncomeSource, error) {
	if m.nameTaken(source.WorkspaceID, source.Name, 0) {
		return nil, domain.ErrIncomeSourceNameExists
	}
	source.ID = m.NextID
	m.NextID++
	source.CreatedAt = time.Now()
	source.UpdatedAt = source.CreatedAt
	m.Sources[source.ID] = source
	return source, nil
}

func (m *MockIncomeSourceRepository) GetByID(workspaceID int32, id int32) (*domain.IncomeSource, error) {
	s, ok := m.Sources[id]
	if !ok || !s.VisibleTo(workspaceID) {
		return nil, domain.ErrIncomeSourceNotFound
	}
	return s, nil
}

func (m *MockIncomeSourceRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.IncomeSource, error) {
	result := []*domain.IncomeSource{}
	for _, s := range m.Sources {
		if s.VisibleTo(workspaceID) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].IsSystem != result[j].IsSystem {
			return result[i].IsSystem
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *MockIncomeSourceRepository) owned(workspaceID int32, id int32) (*domain.IncomeSource, bool) {
	s, ok := m.Sources[id]
	return s, ok && !s.IsSystem && s.WorkspaceID != nil && *s.WorkspaceID == workspaceID
}

func (m *MockIncomeSourceRepository) Update(workspaceID int32, id int32, name string) (*domain.IncomeSource, error) {
	s, ok := m.owned(workspaceID, id)
	if !ok {
		return nil, domain.ErrIncomeSourceNotFound
	}
	if m.nameTaken(s.WorkspaceID, name, id) {
		return nil, domain.ErrIncomeSourceNameExists
	}
	s.Name = name
	return s, nil
}

func (m *MockIncomeSourceRepository) Delete(workspaceID int32, id int32) error {
	if _, ok := m.owned(workspaceID, id); !ok {
		return domain.ErrIncomeSourceNotFound
	}
	delete(m.Sources, id)
	return nil
}

func (m *MockIncomeSourceRepository) ListSystem() ([]*domain.SystemIncomeSource, error) {
	result := []*domain.SystemIncomeSource{}
	for _, s := range m.Sources {
		if !s.IsSystem {
			continue
		}
		ss := &domain.SystemIncomeSource{IncomeSource: *s}
		if u, ok := m.Usage[s.ID]; ok {
			ss.UsageCount = u.TotalCount
		}
		result = append(result, ss)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockIncomeSourceRepository) UpdateSystem(id int32, name string) (*domain.IncomeSource, error) {
	s, ok := m.Sources[id]
	if !ok || !s.IsSystem {
		return nil, domain.ErrIncomeSourceNotFound
	}
	if m.nameTaken(nil, name, id) {
		return nil, domain.ErrIncomeSourceNameExists
	}
	s.Name = name
	return s, nil
}

func (m *MockIncomeSourceRepository) DeleteSystem(id int32) error {
	s, ok := m.Sources[id]
	if !ok || !s.IsSystem {
		return domain.ErrIncomeSourceNotFound
	}
	delete(m.Sources, id)
	delete(m.Usage, id)
	return nil
}

func (m *MockIncomeSourceRepository) UsageStats(id int32) (*domain.UsageStats, error) {
	s, ok := m.Sources[id]
	if !ok || !s.IsSystem {
		return nil, domain.ErrIncomeSourceNotFound
	}
	if u, ok := m.Usage[id]; ok {
		stats := *u
		return &stats, nil
	}
	return &domain.UsageStats{}, nil
}

// AddSource adds a source to the mock repository (helper for tests)
func (m *MockIncomeSourceRepository) AddSource(source *domain.IncomeSource) {
	if source.ID == 0 {
		source.ID = m.NextID
	}
	if source.ID >= m.NextID {
		m.NextID = source.ID + 1
	}
	m.Sources[source.ID] = source
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository.
// Aggregations are computed from the stored expenses.
type MockExpenseRepository struct {
	Expenses map[int32]*domain.Expense
	NextID   int32
	// Err is returned by every read aggregation when set
	Err error
	// ListEventsCalls counts calls to ListEvents
	ListEventsCalls int
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[int32]*domain.Expense),
		NextID:   1,
	}
}

func (m *MockExpenseRepository) sorted() []*domain.Expense {
	result := make([]*domain.Expense, 0, len(m.Expenses))
	for _, e := range m.Expenses {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Create creates a new expense
func (m *MockExpenseRepository) Create(expense *domain.Expense) (*domain.Expense, error) {
	expense.ID = m.NextID
	m.NextID++
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}
	expense.UpdatedAt = expense.CreatedAt
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// GetByID retrieves an expense by ID
func (m *MockExpenseRepository) GetByID(workspaceID int32, id int32) (*domain.Expense, error) {
	e, ok := m.Expenses[id]
	if !ok || e.WorkspaceID != workspaceID {
		return nil, domain.ErrExpenseNotFound
	}
	return e, nil
}

// List returns a page of expenses, newest first
func (m *MockExpenseRepository) List(workspaceID int32, filters *domain.ExpenseFilters) (*domain.PaginatedExpenses, error) {
	var matched []*domain.Expense
	all := m.sorted()
	for i := len(all) - 1; i >= 0; i-- {
		e := all[i]
		if e.WorkspaceID != workspaceID {
			continue
		}
		if filters.StartDate != nil && e.Date.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && e.Date.After(*filters.EndDate) {
			continue
		}
		if filters.CategoryID != nil && (e.CategoryID == nil || *e.CategoryID != *filters.CategoryID) {
			continue
		}
		matched = append(matched, e)
	}

	page, pageSize := filters.Page, filters.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	start := int((page - 1) * pageSize)
	end := start + int(pageSize)
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	total := int64(len(matched))
	return &domain.PaginatedExpenses{
		Data:       matched[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: int32((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// Update updates an existing expense
func (m *MockExpenseRepository) Update(expense *domain.Expense) (*domain.Expense, error) {
	existing, ok := m.Expenses[expense.ID]
	if !ok || existing.WorkspaceID != expense.WorkspaceID {
		return nil, domain.ErrExpenseNotFound
	}
	expense.CreatedAt = existing.CreatedAt
	expense.UpdatedAt = time.Now()
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// Delete deletes an expense
func (m *MockExpenseRepository) Delete(workspaceID int32, id int32) error {
	e, ok := m.Expenses[id]
	if !ok || e.WorkspaceID != workspaceID {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// SetReceiptPath sets the receipt path of an expense
func (m *MockExpenseRepository) SetReceiptPath(workspaceID int32, id int32, path *string) error {
	e, ok := m.Expenses[id]
	if !ok || e.WorkspaceID != workspaceID {
		return domain.ErrExpenseNotFound
	}
	e.ReceiptPath = path
	return nil
}

// SumByCategory groups stored expenses by category, largest total first
func (m *MockExpenseRepository) SumByCategory(scope domain.ReportScope, start, end time.Time) ([]*domain.CategorySpend, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	groups := make(map[string]*domain.CategorySpend)
	for _, e := range m.sorted() {
		if !inScope(scope, e.WorkspaceID) || !inRange(e.Date, start, end) {
			continue
		}
		key := "none"
		if e.CategoryID != nil {
			key = fmt.Sprint(*e.CategoryID)
		}
		g, ok := groups[key]
		if !ok {
			g = &domain.CategorySpend{CategoryID: e.CategoryID}
			if e.CategoryName != nil {
				g.CategoryName = *e.CategoryName
			}
			groups[key] = g
		}
		g.Total = g.Total.Add(e.Amount)
		g.Count++
	}

	result := make([]*domain.CategorySpend, 0, len(groups))
	for _, g := range groups {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].CategoryName < result[j].CategoryName
	})
	return result, nil
}

// SumTotal sums stored expenses in the range
func (m *MockExpenseRepository) SumTotal(scope domain.ReportScope, start, end time.Time) (decimal.Decimal, error) {
	if m.Err != nil {
		return decimal.Zero, m.Err
	}
	total := decimal.Zero
	for _, e := range m.Expenses {
		if inScope(scope, e.WorkspaceID) && inRange(e.Date, start, end) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

// DailyTotals sums stored expenses per day
func (m *MockExpenseRepository) DailyTotals(scope domain.ReportScope, start, end time.Time) ([]*domain.DailyTotal, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*domain.DailyTotal
	for _, e := range m.sorted() {
		if !inScope(scope, e.WorkspaceID) || !inRange(e.Date, start, end) {
			continue
		}
		if n := len(result); n > 0 && result[n-1].Date.Equal(e.Date) {
			result[n-1].Total = result[n-1].Total.Add(e.Amount)
			continue
		}
		result = append(result, &domain.DailyTotal{Date: e.Date, Total: e.Amount})
	}
	return result, nil
}

// ListEvents returns the workspace's expenses in the range as events
func (m *MockExpenseRepository) ListEvents(workspaceID int32, start, end time.Time) ([]*domain.MonetaryEvent, error) {
	m.ListEventsCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	var events []*domain.MonetaryEvent
	for _, e := range m.sorted() {
		if e.WorkspaceID != workspaceID || !inRange(e.Date, start, end) {
			continue
		}
		ev := &domain.MonetaryEvent{Amount: e.Amount, Date: e.Date, CategoryID: e.CategoryID}
		if e.CategoryName != nil {
			ev.CategoryName = *e.CategoryName
		}
		events = append(events, ev)
	}
	return events, nil
}

// ListForExport returns expenses in scope and optional range
func (m *MockExpenseRepository) ListForExport(scope domain.ReportScope, start, end *time.Time) ([]*domain.Expense, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := []*domain.Expense{}
	for _, e := range m.sorted() {
		if !inScope(scope, e.WorkspaceID) {
			continue
		}
		if (start != nil && e.Date.Before(*start)) || (end != nil && e.Date.After(*end)) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

// AddExpense adds an expense to the mock repository (helper for tests)
func (m *MockExpenseRepository) AddExpense(expense *domain.Expense) {
	if expense.ID == 0 {
		expense.ID = m.NextID
	}
	if expense.ID >= m.NextID {
		m.NextID = expense.ID + 1
	}
	m.Expenses[expense.ID] = expense
}

// MockIncomeRepository is a mock implementation of domain.IncomeRepository
type MockIncomeRepository struct {
	Incomes map[int32]*domain.Income
	NextID  int32
}

// NewMockIncomeRepository creates a new MockIncomeRepository
func NewMockIncomeRepository() *MockIncomeRepository {
	return &MockIncomeRepository{Incomes: make(map[int32]*domain.Income), NextID: 1}
}

func (m *MockIncomeRepository) Create(income *domain.Income) (*domain.Income, error) {
	income.ID = m.NextID
	m.NextID++
	m.Incomes[income.ID] = income
	return income, nil
}

func (m *MockIncomeRepository) GetByMonth(workspaceID int32, month time.Time) ([]*domain.Income, error) {
	result := []*domain.Income{}
	for _, i := range m.sortedIncomes() {
		if i.WorkspaceID == workspaceID && i.Month.Equal(month) {
			result = append(result, i)
		}
	}
	return result, nil
}

func (m *MockIncomeRepository) SumByMonth(workspaceID int32, month time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, i := range m.Incomes {
		if i.WorkspaceID == workspaceID && i.Month.Equal(month) {
			total = total.Add(i.Amount)
		}
	}
	return total, nil
}

func (m *MockIncomeRepository) Delete(workspaceID int32, id int32) error {
	i, ok := m.Incomes[id]
	if !ok || i.WorkspaceID != workspaceID {
		return domain.ErrIncomeNotFound
	}
	delete(m.Incomes, id)
	return nil
}

func (m *MockIncomeRepository) ListForExport(scope domain.ReportScope) ([]*domain.Income, error) {
	result := []*domain.Income{}
	for _, i := range m.sortedIncomes() {
		if inScope(scope, i.WorkspaceID) {
			result = append(result, i)
		}
	}
	return result, nil
}

func (m *MockIncomeRepository) sortedIncomes() []*domain.Income {
	result := make([]*domain.Income, 0, len(m.Incomes))
	for _, i := range m.Incomes {
		result = append(result, i)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].ID < result[b].ID })
	return result
}

// AddIncome adds an income to the mock repository (helper for tests)
func (m *MockIncomeRepository) AddIncome(income *domain.Income) {
	if income.ID == 0 {
		income.ID = m.NextID
	}
	if income.ID >= m.NextID {
		m.NextID = income.ID + 1
	}
	m.Incomes[income.ID] = income
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[int32]*domain.Budget
	NextID  int32
	Err     error
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{Budgets: make(map[int32]*domain.Budget), NextID: 1}
}

func sameCategory(a, b *int32) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Upsert creates or updates a budget keyed by workspace, month, scope and category
func (m *MockBudgetRepository) Upsert(budget *domain.Budget) (*domain.Budget, bool, error) {
	for _, b := range m.Budgets {
		if b.WorkspaceID == budget.WorkspaceID && b.Month.Equal(budget.Month) &&
			b.Scope == budget.Scope && sameCategory(b.CategoryID, budget.CategoryID) {
			b.Amount = budget.Amount
			b.WarnThreshold = budget.WarnThreshold
			b.Rollover = budget.Rollover
			b.UpdatedAt = time.Now()
			return b, false, nil
		}
	}
	budget.ID = m.NextID
	m.NextID++
	m.Budgets[budget.ID] = budget
	return budget, true, nil
}

func (m *MockBudgetRepository) GetByID(workspaceID int32, id int32) (*domain.Budget, error) {
	b, ok := m.Budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return nil, domain.ErrBudgetNotFound
	}
	return b, nil
}

// GetByMonth returns the overall budget first, then category budgets by ID
func (m *MockBudgetRepository) GetByMonth(workspaceID int32, month time.Time) ([]*domain.Budget, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := []*domain.Budget{}
	for _, b := range m.Budgets {
		if b.WorkspaceID == workspaceID && b.Month.Equal(month) {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Scope != result[j].Scope {
			return result[i].Scope == domain.BudgetScopeOverall
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *MockBudgetRepository) Delete(workspaceID int32, id int32) error {
	b, ok := m.Budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	return nil
}

func (m *MockBudgetRepository) CountByMonth(month time.Time) (int64, error) {
	var count int64
	for _, b := range m.Budgets {
		if b.Month.Equal(month) {
			count++
		}
	}
	return count, nil
}

func (m *MockBudgetRepository) ListForExport(scope domain.ReportScope) ([]*domain.Budget, error) {
	result := []*domain.Budget{}
	for _, b := range m.Budgets {
		if inScope(scope, b.WorkspaceID) {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	if budget.ID == 0 {
		budget.ID = m.NextID
	}
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
	m.Budgets[budget.ID] = budget
}

// MockMonthlyBudgetRepository is a mock implementation of domain.MonthlyBudgetRepository
type MockMonthlyBudgetRepository struct {
	Budgets map[string]*domain.MonthlyBudget
	NextID  int32
}

// NewMockMonthlyBudgetRepository creates a new MockMonthlyBudgetRepository
func NewMockMonthlyBudgetRepository() *MockMonthlyBudgetRepository {
	return &MockMonthlyBudgetRepository{Budgets: make(map[string]*domain.MonthlyBudget), NextID: 1}
}

func monthKey(workspaceID int32, month time.Time) string {
	return fmt.Sprintf("%d-%s", workspaceID, month.Format("2006-01"))
}

func (m *MockMonthlyBudgetRepository) Upsert(budget *domain.MonthlyBudget) (*domain.MonthlyBudget, bool, error) {
	key := monthKey(budget.WorkspaceID, budget.Month)
	if existing, ok := m.Budgets[key]; ok {
		existing.TotalBudget = budget.TotalBudget
		existing.Notes = budget.Notes
		return existing, false, nil
	}
	budget.ID = m.NextID
	m.NextID++
	m.Budgets[key] = budget
	return budget, true, nil
}

func (m *MockMonthlyBudgetRepository) GetByMonth(workspaceID int32, month time.Time) (*domain.MonthlyBudget, error) {
	if b, ok := m.Budgets[monthKey(workspaceID, month)]; ok {
		return b, nil
	}
	return nil, domain.ErrBudgetNotFound
}

func (m *MockMonthlyBudgetRepository) ListForExport(scope domain.ReportScope) ([]*domain.MonthlyBudget, error) {
	result := []*domain.MonthlyBudget{}
	for _, b := range m.Budgets {
		if inScope(scope, b.WorkspaceID) {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// AddMonthlyBudget adds a monthly budget (helper for tests)
func (m *MockMonthlyBudgetRepository) AddMonthlyBudget(budget *domain.MonthlyBudget) {
	if budget.ID == 0 {
		budget.ID = m.NextID
		m.NextID++
	}
	m.Budgets[monthKey(budget.WorkspaceID, budget.Month)] = budget
}

// MockNotificationRepository is a mock implementation of domain.NotificationRepository
type MockNotificationRepository struct {
	Notifications map[int32]*domain.Notification
	NextID        int32
}

// NewMockNotificationRepository creates a new MockNotificationRepository
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{Notifications: make(map[int32]*domain.Notification), NextID: 1}
}

func (m *MockNotificationRepository) Create(n *domain.Notification) (*domain.Notification, error) {
	n.ID = m.NextID
	m.NextID++
	n.CreatedAt = time.Now()
	m.Notifications[n.ID] = n
	return n, nil
}

func (m *MockNotificationRepository) CreateForWorkspaces(workspaceIDs []int32, kind domain.NotificationKind, title, message string) (int64, error) {
	for _, ws := range workspaceIDs {
		_, _ = m.Create(&domain.Notification{WorkspaceID: ws, Kind: kind, Title: title, Message: message})
	}
	return int64(len(workspaceIDs)), nil
}

func (m *MockNotificationRepository) ListByWorkspace(workspaceID int32, unreadOnly bool) ([]*domain.Notification, error) {
	result := []*domain.Notification{}
	for _, n := range m.Notifications {
		if n.WorkspaceID == workspaceID && (!unreadOnly || !n.IsRead) {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *MockNotificationRepository) MarkRead(workspaceID int32, id int32) error {
	n, ok := m.Notifications[id]
	if !ok || n.WorkspaceID != workspaceID {
		return domain.ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

// Stats counts the stored notifications
func (m *MockNotificationRepository) Stats() (*domain.NotificationStats, error) {
	stats := &domain.NotificationStats{ByKind: []*domain.KindCount{}}
	counts := map[domain.NotificationKind]int64{}
	for _, n := range m.Notifications {
		stats.Total++
		if n.IsRead {
			stats.Read++
		} else {
			stats.Unread++
		}
		counts[n.Kind]++
	}
	for kind, count := range counts {
		stats.ByKind = append(stats.ByKind, &domain.KindCount{Kind: kind, Count: count})
	}
	sort.Slice(stats.ByKind, func(i, j int) bool {
		if stats.ByKind[i].Count != stats.ByKind[j].Count {
			return stats.ByKind[i].Count > stats.ByKind[j].Count
		}
		return stats.ByKind[i].Kind < stats.ByKind[j].Kind
	})
	return stats, nil
}

// MockAdminStatsRepository is a mock implementation of domain.AdminStatsRepository
type MockAdminStatsRepository struct {
	Counts       domain.UserCounts
	ExpenseCount int64
	Spenders     []*domain.SpenderTotal
	// Expenses backs ListExpenses and SummarizeExpenses
	Expenses []*domain.AdminExpense
	Err      error
}

func NewMockAdminStatsRepository() *MockAdminStatsRepository {
	return &MockAdminStatsRepository{}
}

func (m *MockAdminStatsRepository) CountUsers() (*domain.UserCounts, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	counts := m.Counts
	return &counts, nil
}

func (m *MockAdminStatsRepository) CountExpenses(start, end time.Time) (int64, error) {
	return m.ExpenseCount, m.Err
}

func (m *MockAdminStatsRepository) TopSpenders(start, end time.Time, limit int32) ([]*domain.SpenderTotal, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if int(limit) < len(m.Spenders) {
		return m.Spenders[:limit], nil
	}
	return m.Spenders, nil
}

func adminExpenseMatches(e *domain.AdminExpense, f domain.AdminExpenseFilters) bool {
	switch {
	case f.UserID != nil && e.UserID != *f.UserID:
		return false
	case f.CategoryID != nil && (e.CategoryID == nil || *e.CategoryID != *f.CategoryID):
		return false
	case f.StartDate != nil && e.Date.Before(*f.StartDate):
		return false
	case f.EndDate != nil && e.Date.After(*f.EndDate):
		return false
	case f.MinAmount != nil && e.Amount.LessThan(*f.MinAmount):
		return false
	case f.MaxAmount != nil && e.Amount.GreaterThan(*f.MaxAmount):
		return false
	}
	return true
}

func (m *MockAdminStatsRepository) matching(filters domain.AdminExpenseFilters) []*domain.AdminExpense {
	result := []*domain.AdminExpense{}
	for _, e := range m.Expenses {
		if adminExpenseMatches(e, filters) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (m *MockAdminStatsRepository) ListExpenses(filters domain.AdminExpenseFilters) (*domain.PaginatedAdminExpenses, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	all := m.matching(filters)
	total := int64(len(all))
	from := int((filters.Page - 1) * filters.PageSize)
	if from > len(all) {
		from = len(all)
	}
	to := from + int(filters.PageSize)
	if to > len(all) {
		to = len(all)
	}
	return &domain.PaginatedAdminExpenses{
		Data:       all[from:to],
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: int32((total + int64(filters.PageSize) - 1) / int64(filters.PageSize)),
	}, nil
}

func (m *MockAdminStatsRepository) SummarizeExpenses(filters domain.AdminExpenseFilters, limit int32) (*domain.AdminExpenseSummary, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	summary := &domain.AdminExpenseSummary{ByUser: []*domain.SpenderTotal{}, ByCategory: []*domain.CategorySpend{}}
	users := map[uuid.UUID]*domain.SpenderTotal{}
	categories := map[string]*domain.CategorySpend{}
	for _, e := range m.matching(filters) {
		summary.Total = summary.Total.Add(e.Amount)
		summary.Count++

		u, ok := users[e.UserID]
		if !ok {
			u = &domain.SpenderTotal{UserID: e.UserID, Email: e.UserEmail}
			users[e.UserID] = u
			summary.ByUser = append(summary.ByUser, u)
		}
		u.Total = u.Total.Add(e.Amount)
		u.Count++

		key := "none"
		if e.CategoryID != nil {
			key = fmt.Sprint(*e.CategoryID)
		}
		cs, ok := categories[key]
		if !ok {
			cs = &domain.CategorySpend{CategoryID: e.CategoryID}
			if e.CategoryName != nil {
				cs.CategoryName = *e.CategoryName
			}
			categories[key] = cs
			summary.ByCategory = append(summary.ByCategory, cs)
		}
		cs.Total = cs.Total.Add(e.Amount)
		cs.Count++
	}
	if summary.Count > 0 {
		summary.Average = summary.Total.Div(decimal.NewFromInt(summary.Count))
	}
	sort.SliceStable(summary.ByUser, func(i, j int) bool { return summary.ByUser[i].Total.GreaterThan(summary.ByUser[j].Total) })
	sort.SliceStable(summary.ByCategory, func(i, j int) bool {
		return summary.ByCategory[i].Total.GreaterThan(summary.ByCategory[j].Total)
	})
	if int(limit) < len(summary.ByUser) {
		summary.ByUser = summary.ByUser[:limit]
	}
	if int(limit) < len(summary.ByCategory) {
		summary.ByCategory = summary.ByCategory[:limit]
	}
	return summary, nil
}

// MockObjectStore is an in-memory storage.ObjectStore
type MockObjectStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Types     map[string]string
	UploadErr error
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{Objects: make(map[string][]byte), Types: make(map[string]string)}
}

func (m *MockObjectStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf.Bytes()
	m.Types[objectPath] = contentType
	return objectPath, nil
}

func (m *MockObjectStore) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	return nil
}

func (m *MockObjectStore) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}
