package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UncategorizedName labels spend without a category
const UncategorizedName = "Uncategorized"

type SummaryCategory struct {
	CategoryID   *int32
	CategoryName string
	Spent        decimal.Decimal
	Budget       *decimal.Decimal
	PercentUsed  *decimal.Decimal
	Status       BudgetStatusKind
}

// MonthEndSummary composes income, budget and spend for one month. The effective
// budget is the monthly budget when one is set, else the month's income.
// SavingsRate is nil when the effective budget is zero.
type MonthEndSummary struct {
	Month           time.Time
	TotalIncome     decimal.Decimal
	EffectiveBudget *decimal.Decimal
	BudgetSource    string
	TotalSpent      decimal.Decimal
	Categories      []SummaryCategory
	Savings         *decimal.Decimal
	SavingsRate     *decimal.Decimal
	Compliant       *bool
}

const (
	BudgetSourceMonthly = "monthly_budget"
	BudgetSourceIncome  = "income"
)
