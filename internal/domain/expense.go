package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrDescriptionRequired  = errors.New("description is required")
	ErrDescriptionTooLong   = errors.New("description must be 1000 characters or less")
	ErrNotesTooLong         = errors.New("notes must be 1000 characters or less")
	ErrEditWindowExpired    = errors.New("expense can no longer be edited or deleted")
	ErrReceiptNotFound      = errors.New("expense has no receipt")
	ErrStorageNotConfigured = errors.New("object storage not configured")
)

// DefaultCurrency is applied when an expense is created without one
const DefaultCurrency = "BDT"

type Expense struct {
	ID            int32           `json:"id"`
	WorkspaceID   int32           `json:"workspaceId"`
	CategoryID    *int32          `json:"categoryId,omitempty"`
	CategoryName  *string         `json:"categoryName,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	PaymentMethod string          `json:"paymentMethod"`
	Merchant      string          `json:"merchant"`
	Notes         string          `json:"notes"`
	ReceiptPath   *string         `json:"receiptPath,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// EditableAt reports whether a non-admin may still change the expense at the given instant
func (e *Expense) EditableAt(now time.Time, window time.Duration) bool {
	return !e.CreatedAt.Before(now.Add(-window))
}

type ExpenseFilters struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *int32
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedExpenses struct {
	Data       []*Expense `json:"data"`
	Page       int32      `json:"page"`
	PageSize   int32      `json:"pageSize"`
	TotalItems int64      `json:"totalItems"`
	TotalPages int32      `json:"totalPages"`
}

// MonetaryEvent is the read-only projection of an expense used by the analytics engines
type MonetaryEvent struct {
	Amount       decimal.Decimal
	Date         time.Time
	CategoryID   *int32
	CategoryName string
}

// CategorySpend is the summed spend of one category (nil CategoryID = uncategorized)
type CategorySpend struct {
	CategoryID   *int32
	CategoryName string
	Total        decimal.Decimal
	Count        int64
}

// DailyTotal is the summed spend for one calendar day
type DailyTotal struct {
	Date  time.Time
	Total decimal.Decimal
}

type ExpenseRepository interface {
	Create(expense *Expense) (*Expense, error)
	GetByID(workspaceID int32, id int32) (*Expense, error)
	List(workspaceID int32, filters *ExpenseFilters) (*PaginatedExpenses, error)
	Update(expense *Expense) (*Expense, error)
	Delete(workspaceID int32, id int32) error
	SetReceiptPath(workspaceID int32, id int32, path *string) error

	// Aggregations. Date bounds are inclusive calendar dates.
	SumByCategory(scope ReportScope, start, end time.Time) ([]*CategorySpend, error)
	SumTotal(scope ReportScope, start, end time.Time) (decimal.Decimal, error)
	DailyTotals(scope ReportScope, start, end time.Time) ([]*DailyTotal, error)
	ListEvents(workspaceID int32, start, end time.Time) ([]*MonetaryEvent, error)
	ListForExport(scope ReportScope, start, end *time.Time) ([]*Expense, error)
}
