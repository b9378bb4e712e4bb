package service

import (
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/shopspring/decimal"
)

// ReportService builds spending reports over arbitrary date ranges
type ReportService struct {
	expenseRepo domain.ExpenseRepository
}

// NewReportService creates a new ReportService
func NewReportService(expenseRepo domain.ExpenseRepository) *ReportService {
	return &ReportService{expenseRepo: expenseRepo}
}

func checkRange(start, end time.Time) (time.Time, time.Time, error) {
	start, end = util.DateOf(start), util.DateOf(end)
	if start.After(end) {
		return start, end, domain.ErrInvalidDateRange
	}
	return start, end, nil
}

// GetSummary totals spend in [start, end] with a per-category breakdown.
// The daily average divides by the length of the range, not by days with spend.
func (s *ReportService) GetSummary(scope domain.ReportScope, start, end time.Time) (*domain.SummaryReport, error) {
	start, end, err := checkRange(start, end)
	if err != nil {
		return nil, err
	}
	rows, err := s.expenseRepo.SumByCategory(scope, start, end)
	if err != nil {
		return nil, err
	}

	report := &domain.SummaryReport{Start: start, End: end, ByCategory: []domain.CategoryShare{}}
	for _, row := range rows {
		report.Total = report.Total.Add(row.Total)
	}
	for _, row := range rows {
		share := domain.CategoryShare{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Total:        row.Total,
			Count:        row.Count,
		}
		if share.CategoryID == nil {
			share.CategoryName = domain.UncategorizedName
		}
		if report.Total.IsPositive() {
			share.Percent = row.Total.Div(report.Total).Mul(hundred).Round(2)
		}
		report.ByCategory = append(report.ByCategory, share)
	}

	days := decimal.NewFromInt(int64(util.DaysBetween(start, end)))
	report.AveragePerDay = report.Total.Div(days).Round(2)
	return report, nil
}

// GetMonthOverMonth compares the spend of month with the month before it
func (s *ReportService) GetMonthOverMonth(scope domain.ReportScope, month time.Time) (*domain.MonthOverMonth, error) {
	month = util.NormalizeMonth(month)
	previous := util.PreviousMonthStart(month)

	start, end := util.MonthBounds(month)
	current, err := s.expenseRepo.SumTotal(scope, start, end)
	if err != nil {
		return nil, err
	}
	start, end = util.MonthBounds(previous)
	before, err := s.expenseRepo.SumTotal(scope, start, end)
	if err != nil {
		return nil, err
	}

	result := &domain.MonthOverMonth{
		Month:         month,
		PreviousMonth: previous,
		Current:       current,
		Previous:      before,
		Delta:         current.Sub(before),
	}
	if before.IsPositive() {
		pct := result.Delta.Div(before).Mul(hundred).Round(2)
		result.PercentChange = &pct
	}
	return result, nil
}

// GetTimeSeries buckets spend in [start, end] by day or by ISO week (Monday start).
// Buckets without spend are present with a zero total.
func (s *ReportService) GetTimeSeries(scope domain.ReportScope, start, end time.Time, bucket domain.TimeBucket) (*domain.TimeSeries, error) {
	if bucket == "" {
		bucket = domain.BucketDaily
	}
	if !bucket.IsValid() {
		return nil, domain.ErrInvalidBucket
	}
	start, end, err := checkRange(start, end)
	if err != nil {
		return nil, err
	}
	daily, err := s.expenseRepo.DailyTotals(scope, start, end)
	if err != nil {
		return nil, err
	}

	keyOf := util.DateOf
	step := func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	if bucket == domain.BucketWeekly {
		keyOf = util.WeekStart
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	}

	totals := make(map[time.Time]decimal.Decimal)
	for _, row := range daily {
		key := keyOf(row.Date)
		totals[key] = totals[key].Add(row.Total)
	}

	series := &domain.TimeSeries{Bucket: bucket, Start: start, End: end, Points: []domain.PeriodTotal{}}
	for t := keyOf(start); !t.After(end); t = step(t) {
		series.Points = append(series.Points, domain.PeriodTotal{Start: t, Total: totals[t]})
	}
	return series, nil
}
