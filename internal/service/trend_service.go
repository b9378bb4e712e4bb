package service

import (
	"sort"
	"strconv"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/shopspring/decimal"
)

var trendBand = decimal.NewFromInt(10)

// TrendService computes spending trends and the month-end projection
type TrendService struct {
	expenseRepo domain.ExpenseRepository
	clock       domain.Clock
}

// NewTrendService creates a new TrendService. A nil clock uses the system clock.
func NewTrendService(expenseRepo domain.ExpenseRepository, clock domain.Clock) *TrendService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &TrendService{expenseRepo: expenseRepo, clock: clock}
}

// ClampTrendDays applies the default and bounds to a requested lookback
func ClampTrendDays(days int) int {
	switch {
	case days <= 0:
		return domain.DefaultTrendDays
	case days < domain.MinTrendDays:
		return domain.MinTrendDays
	case days > domain.MaxTrendDays:
		return domain.MaxTrendDays
	}
	return days
}

// GetSpendingTrends summarizes the last `days` days of spending up to today
func (s *TrendService) GetSpendingTrends(workspaceID int32, days int) (*domain.SpendingTrends, error) {
	days = ClampTrendDays(days)
	today := util.DateOf(s.clock.Now())

	windowStart := today.AddDate(0, 0, -(days - 1))
	previousStart := today.AddDate(0, 0, -13)
	monthStart := util.NormalizeMonth(today)

	// one fetch covers the window, both velocity weeks and month-to-date
	fetchStart := windowStart
	for _, d := range []time.Time{previousStart, monthStart} {
		if d.Before(fetchStart) {
			fetchStart = d
		}
	}

	events, err := s.expenseRepo.ListEvents(workspaceID, fetchStart, today)
	if err != nil {
		return nil, err
	}

	daily := make(map[time.Time]decimal.Decimal)
	for _, ev := range events {
		d := util.DateOf(ev.Date)
		daily[d] = daily[d].Add(ev.Amount)
	}

	result := &domain.SpendingTrends{Days: days, AsOf: today}

	// window aggregates
	var windowDays []time.Time
	weekly := make(map[time.Time]decimal.Decimal)
	categories := make(map[string]*domain.CategoryTotal)
	for _, ev := range events {
		d := util.DateOf(ev.Date)
		if d.Before(windowStart) {
			continue
		}
		result.TotalSpent = result.TotalSpent.Add(ev.Amount)
		week := util.WeekStart(d)
		weekly[week] = weekly[week].Add(ev.Amount)

		key := categoryKey(ev.CategoryID)
		ct, ok := categories[key]
		if !ok {
			name := ev.CategoryName
			if ev.CategoryID == nil {
				name = domain.UncategorizedName
			}
			ct = &domain.CategoryTotal{CategoryID: ev.CategoryID, CategoryName: name}
			categories[key] = ct
		}
		ct.Total = ct.Total.Add(ev.Amount)
	}
	for d := range daily {
		if !d.Before(windowStart) {
			windowDays = append(windowDays, d)
		}
	}
	sort.Slice(windowDays, func(i, j int) bool { return windowDays[i].Before(windowDays[j]) })

	result.DaysWithData = len(windowDays)
	if result.DaysWithData < domain.MinDaysWithData {
		return &domain.SpendingTrends{Days: days, AsOf: today, DaysWithData: result.DaysWithData}, nil
	}
	result.HasData = true

	for _, d := range windowDays {
		result.Daily = append(result.Daily, domain.PeriodTotal{Start: d, Total: daily[d]})
	}
	for week, total := range weekly {
		result.Weekly = append(result.Weekly, domain.PeriodTotal{Start: week, Total: total})
	}
	sort.Slice(result.Weekly, func(i, j int) bool { return result.Weekly[i].Start.Before(result.Weekly[j].Start) })

	result.AverageDailySpend = result.TotalSpent.Div(decimal.NewFromInt(int64(result.DaysWithData)))
	result.Velocity = velocity(daily, today)
	result.TopCategories = topCategories(categories, domain.TopCategoryLimit)
	result.Projection = projection(daily, today, result.AverageDailySpend)
	return result, nil
}

func velocity(daily map[time.Time]decimal.Decimal, today time.Time) domain.Velocity {
	var v domain.Velocity
	for i := 0; i < 7; i++ {
		v.RecentTotal = v.RecentTotal.Add(daily[today.AddDate(0, 0, -i)])
		v.PreviousTotal = v.PreviousTotal.Add(daily[today.AddDate(0, 0, -(i + 7))])
	}

	v.Trend = domain.TrendStable
	if !v.PreviousTotal.IsPositive() {
		return v
	}
	change := v.RecentTotal.Sub(v.PreviousTotal).Div(v.PreviousTotal).Mul(hundred)
	v.ChangePercent = &change
	switch {
	case change.GreaterThan(trendBand):
		v.Trend = domain.TrendIncreasing
	case change.LessThan(trendBand.Neg()):
		v.Trend = domain.TrendDecreasing
	}
	return v
}

// topCategories returns the largest totals first; ties have no defined order
func topCategories(categories map[string]*domain.CategoryTotal, limit int) []domain.CategoryTotal {
	all := make([]domain.CategoryTotal, 0, len(categories))
	for _, ct := range categories {
		all = append(all, *ct)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Total.GreaterThan(all[j].Total) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

func projection(daily map[time.Time]decimal.Decimal, today time.Time, avg decimal.Decimal) domain.Projection {
	p := domain.Projection{
		DaysPassed:        today.Day(),
		DaysRemaining:     util.DaysInMonth(today) - today.Day(),
		AverageDailySpend: avg,
	}
	for d := util.NormalizeMonth(today); !d.After(today); d = d.AddDate(0, 0, 1) {
		p.MonthToDate = p.MonthToDate.Add(daily[d])
	}
	p.ProjectedTotal = p.MonthToDate.Add(avg.Mul(decimal.NewFromInt(int64(p.DaysRemaining))))
	return p
}

func categoryKey(id *int32) string {
	if id == nil {
		return "uncategorized"
	}
	return strconv.Itoa(int(*id))
}
