package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrBudgetNotFound           = errors.New("budget not found")
	ErrInvalidBudgetScope       = errors.New("scope must be one of: overall, category")
	ErrBudgetCategoryRequired   = errors.New("category is required for category budgets")
	ErrBudgetCategoryNotAllowed = errors.New("category must be empty for overall budgets")
	ErrInvalidWarnThreshold     = errors.New("warn threshold must be greater than 0 and less than 1.01")
	ErrNegativeTotalBudget      = errors.New("total budget cannot be negative")
)

// BudgetScope says whether a budget caps total spend or a single category
type BudgetScope string

const (
	BudgetScopeOverall  BudgetScope = "overall"
	BudgetScopeCategory BudgetScope = "category"
)

func (s BudgetScope) IsValid() bool {
	return s == BudgetScopeOverall || s == BudgetScopeCategory
}

var (
	// DefaultWarnThreshold applies when a budget does not set its own
	DefaultWarnThreshold = decimal.RequireFromString("0.8")
	maxWarnThreshold     = decimal.RequireFromString("1.01")
)

// ValidateWarnThreshold checks 0 < t < 1.01
func ValidateWarnThreshold(t decimal.Decimal) error {
	if !t.IsPositive() || t.GreaterThanOrEqual(maxWarnThreshold) {
		return ErrInvalidWarnThreshold
	}
	return nil
}

// Budget is a scoped spending cap for one month. At most one exists per
// (workspace, month, scope, category).
type Budget struct {
	ID            int32           `json:"id"`
	WorkspaceID   int32           `json:"workspaceId"`
	Month         time.Time       `json:"month"`
	Scope         BudgetScope     `json:"scope"`
	CategoryID    *int32          `json:"categoryId,omitempty"`
	CategoryName  *string         `json:"categoryName,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	WarnThreshold decimal.Decimal `json:"warnThreshold"`
	Rollover      bool            `json:"rollover"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Validate checks the invariants shared by every write path
func (b *Budget) Validate() error {
	if !b.Scope.IsValid() {
		return ErrInvalidBudgetScope
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := ValidateWarnThreshold(b.WarnThreshold); err != nil {
		return err
	}
	if b.Scope == BudgetScopeCategory && b.CategoryID == nil {
		return ErrBudgetCategoryRequired
	}
	if b.Scope == BudgetScopeOverall && b.CategoryID != nil {
		return ErrBudgetCategoryNotAllowed
	}
	return nil
}

// MonthlyBudget is the total amount a workspace plans to spend in a month
type MonthlyBudget struct {
	ID          int32           `json:"id"`
	WorkspaceID int32           `json:"workspaceId"`
	Month       time.Time       `json:"month"`
	TotalBudget decimal.Decimal `json:"totalBudget"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// MonthlyBudgetOverview is a monthly budget with its read-only derived figures
type MonthlyBudgetOverview struct {
	Month       time.Time
	Budget      *MonthlyBudget
	TotalIncome decimal.Decimal
	Allocated   decimal.Decimal
	Unallocated decimal.Decimal
}

type BudgetRepository interface {
	// Upsert creates or updates the budget keyed by (workspace, month, scope, category)
	// and reports whether a new row was created
	Upsert(budget *Budget) (*Budget, bool, error)
	GetByID(workspaceID int32, id int32) (*Budget, error)
	GetByMonth(workspaceID int32, month time.Time) ([]*Budget, error)
	Delete(workspaceID int32, id int32) error
	CountByMonth(month time.Time) (int64, error)
	ListForExport(scope ReportScope) ([]*Budget, error)
}

type MonthlyBudgetRepository interface {
	Upsert(budget *MonthlyBudget) (*MonthlyBudget, bool, error)
	GetByMonth(workspaceID int32, month time.Time) (*MonthlyBudget, error)
	ListForExport(scope ReportScope) ([]*MonthlyBudget, error)
}

// BudgetLimit is an amount with the fraction at which warnings start
type BudgetLimit struct {
	Amount        decimal.Decimal
	WarnThreshold decimal.Decimal
}

// BudgetConfig is everything configured for one workspace and month
type BudgetConfig struct {
	Overall      *BudgetLimit
	ByCategory   map[int32]BudgetLimit
	MonthlyTotal *decimal.Decimal
}

// OverallBudgetSource names where a resolved overall budget came from
type OverallBudgetSource string

const (
	OverallSourceNone          OverallBudgetSource = "none"
	OverallSourceMonthlyBudget OverallBudgetSource = "monthly_budget"
	OverallSourceScopedBudget  OverallBudgetSource = "scoped_budget"
)

// ResolvedOverall is the single overall budget used for warnings
type ResolvedOverall struct {
	Amount        decimal.Decimal
	WarnThreshold decimal.Decimal
	Source        OverallBudgetSource
}

// ResolveOverallBudget picks the overall budget in priority order: a monthly
// total first (with the default threshold), then the scope=overall budget with
// its own threshold. Returns nil when neither exists.
func ResolveOverallBudget(cfg BudgetConfig) *ResolvedOverall {
	if cfg.MonthlyTotal != nil {
		return &ResolvedOverall{
			Amount:        *cfg.MonthlyTotal,
			WarnThreshold: DefaultWarnThreshold,
			Source:        OverallSourceMonthlyBudget,
		}
	}
	if cfg.Overall != nil {
		warn := cfg.Overall.WarnThreshold
		if warn.IsZero() {
			warn = DefaultWarnThreshold
		}
		return &ResolvedOverall{
			Amount:        cfg.Overall.Amount,
			WarnThreshold: warn,
			Source:        OverallSourceScopedBudget,
		}
	}
	return nil
}

// BuildBudgetConfig folds stored budgets into a BudgetConfig
func BuildBudgetConfig(budgets []*Budget, monthly *MonthlyBudget) BudgetConfig {
	cfg := BudgetConfig{ByCategory: make(map[int32]BudgetLimit)}
	for _, b := range budgets {
		limit := BudgetLimit{Amount: b.Amount, WarnThreshold: b.WarnThreshold}
		switch {
		case b.Scope == BudgetScopeOverall:
			cfg.Overall = &limit
		case b.CategoryID != nil:
			cfg.ByCategory[*b.CategoryID] = limit
		}
	}
	if monthly != nil {
		total := monthly.TotalBudget
		cfg.MonthlyTotal = &total
	}
	return cfg
}
