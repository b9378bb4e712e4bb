package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCannotModifySelf   = errors.New("admins cannot change their own role or status")
	ErrInvalidAmountRange = errors.New("minimum amount must not exceed maximum amount")
)

// Admin expense summaries rank at most this many users and categories
const AdminSummaryTopLimit = 10

// SpenderTotal is the spend of one user over a period
type SpenderTotal struct {
	UserID uuid.UUID
	Email  string
	Total  decimal.Decimal
	Count  int64
}

// AdminStats is the admin dashboard
type AdminStats struct {
	Month          time.Time
	TotalUsers     int64
	ActiveUsers    int64
	AdminUsers     int64
	ThisMonthTotal decimal.Decimal
	LastMonthTotal decimal.Decimal
	GrowthPercent  *decimal.Decimal
	TopCategories  []*CategorySpend
	TopSpenders    []*SpenderTotal
	ActiveBudgets  int64
	ExpenseCount   int64
}

type UserCounts struct {
	Total  int64
	Active int64
	Admins int64
}

// UsageStats describes how a system category or income source is used
// across every workspace. UniqueUsers counts distinct workspaces.
type UsageStats struct {
	TotalAmount decimal.Decimal
	TotalCount  int64
	AvgAmount   decimal.Decimal
	UniqueUsers int64
	Monthly     []*MonthlyUsage
}

type MonthlyUsage struct {
	Month time.Time
	Total decimal.Decimal
	Count int64
}

// AdminExpenseFilters narrows the cross-workspace expense listing. Nil fields match everything.
type AdminExpenseFilters struct {
	UserID     *uuid.UUID
	CategoryID *int32
	StartDate  *time.Time
	EndDate    *time.Time
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Page       int32
	PageSize   int32
}

// AdminExpense is an expense together with the user who owns it
type AdminExpense struct {
	Expense
	UserID    uuid.UUID
	UserEmail string
}

type PaginatedAdminExpenses struct {
	Data       []*AdminExpense
	Page       int32
	PageSize   int32
	TotalItems int64
	TotalPages int32
}

// AdminExpenseSummary aggregates the expenses matching a filter
type AdminExpenseSummary struct {
	Total      decimal.Decimal
	Count      int64
	Average    decimal.Decimal
	ByUser     []*SpenderTotal
	ByCategory []*CategorySpend
}

type AdminStatsRepository interface {
	CountUsers() (*UserCounts, error)
	CountExpenses(start, end time.Time) (int64, error)
	TopSpenders(start, end time.Time, limit int32) ([]*SpenderTotal, error)
	// ListExpenses pages through every workspace's expenses, newest first.
	// Page and PageSize are already normalized.
	ListExpenses(filters AdminExpenseFilters) (*PaginatedAdminExpenses, error)
	SummarizeExpenses(filters AdminExpenseFilters, limit int32) (*AdminExpenseSummary, error)
}
