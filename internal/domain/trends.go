package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultTrendDays = 30
	MinTrendDays     = 7
	MaxTrendDays     = 365

	// MinDaysWithData is the number of distinct spending days needed before
	// trend statistics are computed
	MinDaysWithData  = 7
	TopCategoryLimit = 5
)

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// Clock supplies "today" to time-dependent calculations
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

type PeriodTotal struct {
	Start time.Time
	Total decimal.Decimal
}

type Velocity struct {
	RecentTotal   decimal.Decimal
	PreviousTotal decimal.Decimal
	ChangePercent *decimal.Decimal
	Trend         TrendDirection
}

type CategoryTotal struct {
	CategoryID   *int32
	CategoryName string
	Total        decimal.Decimal
}

type Projection struct {
	MonthToDate       decimal.Decimal
	DaysPassed        int
	DaysRemaining     int
	ProjectedTotal    decimal.Decimal
	AverageDailySpend decimal.Decimal
}

// SpendingTrends is the result of the trend engine. When HasData is false only
// Days, AsOf and DaysWithData are set.
type SpendingTrends struct {
	HasData           bool
	Days              int
	AsOf              time.Time
	DaysWithData      int
	TotalSpent        decimal.Decimal
	AverageDailySpend decimal.Decimal
	Daily             []PeriodTotal
	Weekly            []PeriodTotal
	Velocity          Velocity
	TopCategories     []CategoryTotal
	Projection        Projection
}
