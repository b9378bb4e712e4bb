package domain

import (
	"github.com/shopspring/decimal"
)

type WarningKind string

const (
	WarningBudgetWarning    WarningKind = "budget_warning"
	WarningBudgetExceeded   WarningKind = "budget_exceeded"
	WarningCategoryWarning  WarningKind = "category_warning"
	WarningCategoryExceeded WarningKind = "category_exceeded"
)

// Warning is a user-facing alert about a budget at or past its threshold
type Warning struct {
	Kind         WarningKind     `json:"kind"`
	Title        string          `json:"title"`
	Message      string          `json:"message"`
	CategoryID   *int32          `json:"categoryId,omitempty"`
	PercentUsed  decimal.Decimal `json:"percentUsed"`
	AmountSpent  decimal.Decimal `json:"amountSpent"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
}

// IsCategory reports whether the warning is about a single category
func (w Warning) IsCategory() bool {
	return w.Kind == WarningCategoryWarning || w.Kind == WarningCategoryExceeded
}
