package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetStatusKind classifies spend against a budget
type BudgetStatusKind string

const (
	StatusNoBudget BudgetStatusKind = "no_budget"
	StatusOK       BudgetStatusKind = "ok"
	StatusWarn     BudgetStatusKind = "warn"
	StatusExceeded BudgetStatusKind = "exceeded"
)

// Rank orders statuses from least to most severe. no_budget ranks lowest.
func (k BudgetStatusKind) Rank() int {
	switch k {
	case StatusOK:
		return 1
	case StatusWarn:
		return 2
	case StatusExceeded:
		return 3
	default:
		return 0
	}
}

// BudgetUsage is spend compared with an optional budget. Amount, Remaining and
// PercentUsed are nil when no budget is configured; PercentUsed is also nil for
// a zero budget.
type BudgetUsage struct {
	Amount        *decimal.Decimal
	WarnThreshold *decimal.Decimal
	Spent         decimal.Decimal
	Remaining     *decimal.Decimal
	PercentUsed   *decimal.Decimal
	Status        BudgetStatusKind
}

// NewBudgetUsage classifies spent against amount. A nil warn threshold never
// produces StatusWarn.
func NewBudgetUsage(spent decimal.Decimal, amount, warn *decimal.Decimal) BudgetUsage {
	usage := BudgetUsage{Spent: spent, Status: StatusNoBudget}
	if amount == nil {
		return usage
	}
	a := *amount
	remaining := a.Sub(spent)
	usage.Amount = &a
	usage.Remaining = &remaining
	usage.WarnThreshold = warn
	usage.Status = StatusOK
	if a.IsZero() {
		return usage
	}

	pct := spent.Div(a)
	usage.PercentUsed = &pct
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(1)):
		usage.Status = StatusExceeded
	case warn != nil && pct.GreaterThanOrEqual(*warn):
		usage.Status = StatusWarn
	}
	return usage
}

// NewLimitUsage classifies spent against an optional BudgetLimit
func NewLimitUsage(spent decimal.Decimal, limit *BudgetLimit) BudgetUsage {
	if limit == nil {
		return NewBudgetUsage(spent, nil, nil)
	}
	amount, warn := limit.Amount, limit.WarnThreshold
	return NewBudgetUsage(spent, &amount, &warn)
}

// CategoryUsage is the usage of one budgeted category
type CategoryUsage struct {
	CategoryID   int32
	CategoryName string
	BudgetUsage
}

// BudgetStatus is the budget position of a workspace for one month.
// Overall.Spent always equals the sum of Categories' spend plus
// UncategorizedSpent plus UnbudgetedSpent.
type BudgetStatus struct {
	Month              time.Time
	Overall            BudgetUsage
	Categories         []CategoryUsage
	UncategorizedSpent decimal.Decimal
	UnbudgetedSpent    decimal.Decimal
}
