package handler

import (
	"net/http"
	"strconv"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ReportHandler serves spending reports and analytics
type ReportHandler struct {
	reportService  *service.ReportService
	trendService   *service.TrendService
	summaryService *service.SummaryService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService, trendService *service.TrendService, summaryService *service.SummaryService) *ReportHandler {
	return &ReportHandler{
		reportService:  reportService,
		trendService:   trendService,
		summaryService: summaryService,
	}
}

// CategoryShareResponse is one category's part of a period's spend
type CategoryShareResponse struct {
	CategoryID   *int32 `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Total        string `json:"total"`
	Count        int64  `json:"count"`
	Percent      string `json:"percent"`
}

// SummaryReportResponse summarizes spend over a date range
type SummaryReportResponse struct {
	Start         string                  `json:"start"`
	End           string                  `json:"end"`
	Total         string                  `json:"total"`
	AveragePerDay string                  `json:"averagePerDay"`
	ByCategory    []CategoryShareResponse `json:"byCategory"`
}

// MonthOverMonthResponse compares a month with the one before it
type MonthOverMonthResponse struct {
	Month         string  `json:"month"`
	PreviousMonth string  `json:"previousMonth"`
	Current       string  `json:"current"`
	Previous      string  `json:"previous"`
	Delta         string  `json:"delta"`
	PercentChange *string `json:"percentChange"`
}

// PeriodTotalResponse is the spend of one day or week
type PeriodTotalResponse struct {
	Start string `json:"start"`
	Total string `json:"total"`
}

// TimeSeriesResponse is spend bucketed by day or week
type TimeSeriesResponse struct {
	Bucket string                `json:"bucket"`
	Start  string                `json:"start"`
	End    string                `json:"end"`
	Points []PeriodTotalResponse `json:"points"`
}

// CategoryTotalResponse is a category with its total
type CategoryTotalResponse struct {
	CategoryID   *int32 `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Total        string `json:"total"`
}

// VelocityResponse compares the last seven days with the seven before
type VelocityResponse struct {
	RecentTotal   string  `json:"recentTotal"`
	PreviousTotal string  `json:"previousTotal"`
	ChangePercent *string `json:"changePercent"`
	Trend         string  `json:"trend"`
}

// ProjectionResponse projects the current month's total
type ProjectionResponse struct {
	MonthToDate       string `json:"monthToDate"`
	DaysPassed        int    `json:"daysPassed"`
	DaysRemaining     int    `json:"daysRemaining"`
	ProjectedTotal    string `json:"projectedTotal"`
	AverageDailySpend string `json:"averageDailySpend"`
}

// SpendingTrendsResponse is the trend analysis of recent spending. Only
// days, asOf, daysWithData and hasData are set when there is too little data.
type SpendingTrendsResponse struct {
	HasData           bool                    `json:"hasData"`
	Days              int                     `json:"days"`
	AsOf              string                  `json:"asOf"`
	DaysWithData      int                     `json:"daysWithData"`
	TotalSpent        string                  `json:"totalSpent,omitempty"`
	AverageDailySpend string                  `json:"averageDailySpend,omitempty"`
	Daily             []PeriodTotalResponse   `json:"daily,omitempty"`
	Weekly            []PeriodTotalResponse   `json:"weekly,omitempty"`
	Velocity          *VelocityResponse       `json:"velocity,omitempty"`
	TopCategories     []CategoryTotalResponse `json:"topCategories,omitempty"`
	Projection        *ProjectionResponse     `json:"projection,omitempty"`
}

// SummaryCategoryResponse is one category in the month-end summary
type SummaryCategoryResponse struct {
	CategoryID   *int32  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Spent        string  `json:"spent"`
	Budget       *string `json:"budget"`
	PercentUsed  *string `json:"percentUsed"`
	Status       string  `json:"status"`
}

// MonthEndSummaryResponse is income, budget and spend for a month
type MonthEndSummaryResponse struct {
	Month           string                    `json:"month"`
	TotalIncome     string                    `json:"totalIncome"`
	EffectiveBudget *string                   `json:"effectiveBudget"`
	BudgetSource    string                    `json:"budgetSource"`
	TotalSpent      string                    `json:"totalSpent"`
	Categories      []SummaryCategoryResponse `json:"categories"`
	Savings         *string                   `json:"savings"`
	SavingsRate     *string                   `json:"savingsRate"`
	Compliant       *bool                     `json:"compliant"`
}

func toPeriodResponses(periods []domain.PeriodTotal) []PeriodTotalResponse {
	out := make([]PeriodTotalResponse, len(periods))
	for i, p := range periods {
		out[i] = PeriodTotalResponse{Start: formatDate(p.Start), Total: formatMoney(p.Total)}
	}
	return out
}

// reportScope gives admins every workspace and users their own
func reportScope(c echo.Context) (domain.ReportScope, bool) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		return domain.ReportScope{}, false
	}
	return domain.ScopeFor(owner), true
}

// GetSummary godoc
// @Summary Spending summary for a date range
// @Description Admins see every workspace, users their own. Defaults to the current month.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} SummaryReportResponse
// @Failure 400 {object} ProblemDetails
// @Router /reports/summary [get]
func (h *ReportHandler) GetSummary(c echo.Context) error {
	scope, ok := reportScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Workspace required")
	}

	start, end, field, err := dateRangeQuery(c)
	if err != nil {
		return dateValidationError(c, field)
	}

	report, err := h.reportService.GetSummary(scope, start, end)
	if err != nil {
		return respondError(c, err, "Failed to build summary report")
	}

	byCategory := make([]CategoryShareResponse, len(report.ByCategory))
	for i, s := range report.ByCategory {
		byCategory[i] = CategoryShareResponse{
			CategoryID:   s.CategoryID,
			CategoryName: s.CategoryName,
			Total:        formatMoney(s.Total),
			Count:        s.Count,
			Percent:      s.Percent.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, SummaryReportResponse{
		Start:         formatDate(report.Start),
		End:           formatDate(report.End),
		Total:         formatMoney(report.Total),
		AveragePerDay: formatMoney(report.AveragePerDay),
		ByCategory:    byCategory,
	})
}

// GetMonthOverMonth handles GET /api/v1/reports/trends?month=YYYY-MM
// @Summary Month-over-month comparison
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {object} MonthOverMonthResponse
// @Failure 400 {object} ProblemDetails
// @Router /reports/trends [get]
func (h *ReportHandler) GetMonthOverMonth(c echo.Context) error {
	scope, ok := reportScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Workspace required")
	}

	month, err := monthQuery(c)
	if err != nil {
		return monthValidationError(c)
	}

	mom, err := h.reportService.GetMonthOverMonth(scope, month)
	if err != nil {
		return respondError(c, err, "Failed to build month-over-month report")
	}

	var pct *string
	if mom.PercentChange != nil {
		s := mom.PercentChange.StringFixed(2)
		pct = &s
	}
	return c.JSON(http.StatusOK, MonthOverMonthResponse{
		Month:         formatMonth(mom.Month),
		PreviousMonth: formatMonth(mom.PreviousMonth),
		Current:       formatMoney(mom.Current),
		Previous:      formatMoney(mom.Previous),
		Delta:         formatMoney(mom.Delta),
		PercentChange: pct,
	})
}

// GetTimeSeries handles GET /api/v1/reports/timeseries?start=&end=&bucket=daily|weekly
// @Summary Spending time series
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Param bucket query string false "daily or weekly"
// @Success 200 {object} TimeSeriesResponse
// @Failure 400 {object} ProblemDetails
// @Router /reports/timeseries [get]
func (h *ReportHandler) GetTimeSeries(c echo.Context) error {
	scope, ok := reportScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Workspace required")
	}

	start, end, field, err := dateRangeQuery(c)
	if err != nil {
		return dateValidationError(c, field)
	}

	series, err := h.reportService.GetTimeSeries(scope, start, end, domain.TimeBucket(c.QueryParam("bucket")))
	if err != nil {
		return respondError(c, err, "Failed to build time series")
	}

	return c.JSON(http.StatusOK, TimeSeriesResponse{
		Bucket: string(series.Bucket),
		Start:  formatDate(series.Start),
		End:    formatDate(series.End),
		Points: toPeriodResponses(series.Points),
	})
}

// GetSpendingTrends godoc
// @Summary Spending trends and month-end projection
// @Description Daily and weekly totals, velocity, top categories and a projection over the last N days
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (7-365)" default(30)
// @Success 200 {object} SpendingTrendsResponse
// @Router /reports/spending-trends [get]
func (h *ReportHandler) GetSpendingTrends(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	days := 0
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return NewValidationError(c, "Invalid days", []ValidationError{
				{Field: "days", Message: "Must be a whole number"},
			})
		}
		days = parsed
	}

	trends, err := h.trendService.GetSpendingTrends(workspaceID, days)
	if err != nil {
		return respondError(c, err, "Failed to compute spending trends")
	}

	response := SpendingTrendsResponse{
		HasData:      trends.HasData,
		Days:         trends.Days,
		AsOf:         formatDate(trends.AsOf),
		DaysWithData: trends.DaysWithData,
	}
	if !trends.HasData {
		return c.JSON(http.StatusOK, response)
	}

	response.TotalSpent = formatMoney(trends.TotalSpent)
	response.AverageDailySpend = formatMoney(trends.AverageDailySpend)
	response.Daily = toPeriodResponses(trends.Daily)
	response.Weekly = toPeriodResponses(trends.Weekly)

	velocity := &VelocityResponse{
		RecentTotal:   formatMoney(trends.Velocity.RecentTotal),
		PreviousTotal: formatMoney(trends.Velocity.PreviousTotal),
		Trend:         string(trends.Velocity.Trend),
	}
	if trends.Velocity.ChangePercent != nil {
		s := trends.Velocity.ChangePercent.StringFixed(2)
		velocity.ChangePercent = &s
	}
	response.Velocity = velocity

	response.TopCategories = make([]CategoryTotalResponse, len(trends.TopCategories))
	for i, ct := range trends.TopCategories {
		response.TopCategories[i] = CategoryTotalResponse{
			CategoryID:   ct.CategoryID,
			CategoryName: ct.CategoryName,
			Total:        formatMoney(ct.Total),
		}
	}

	p := trends.Projection
	response.Projection = &ProjectionResponse{
		MonthToDate:       formatMoney(p.MonthToDate),
		DaysPassed:        p.DaysPassed,
		DaysRemaining:     p.DaysRemaining,
		ProjectedTotal:    formatMoney(p.ProjectedTotal),
		AverageDailySpend: formatMoney(p.AverageDailySpend),
	}
	return c.JSON(http.StatusOK, response)
}

// GetMonthEndSummary godoc
// @Summary Month-end summary
// @Description Income, effective budget, spend per category, savings and compliance for a month
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {object} MonthEndSummaryResponse
// @Router /reports/month-end [get]
func (h *ReportHandler) GetMonthEndSummary(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	month, err := monthQuery(c)
	if err != nil {
		return monthValidationError(c)
	}

	summary, err := h.summaryService.GetMonthEndSummary(workspaceID, month)
	if err != nil {
		return respondError(c, err, "Failed to build month-end summary")
	}

	categories := make([]SummaryCategoryResponse, len(summary.Categories))
	for i, sc := range summary.Categories {
		categories[i] = SummaryCategoryResponse{
			CategoryID:   sc.CategoryID,
			CategoryName: sc.CategoryName,
			Spent:        formatMoney(sc.Spent),
			Budget:       formatMoneyPtr(sc.Budget),
			Status:       string(sc.Status),
		}
		if sc.PercentUsed != nil {
			s := sc.PercentUsed.String()
			categories[i].PercentUsed = &s
		}
	}

	response := MonthEndSummaryResponse{
		Month:           formatMonth(summary.Month),
		TotalIncome:     formatMoney(summary.TotalIncome),
		EffectiveBudget: formatMoneyPtr(summary.EffectiveBudget),
		BudgetSource:    summary.BudgetSource,
		TotalSpent:      formatMoney(summary.TotalSpent),
		Categories:      categories,
		Savings:         formatMoneyPtr(summary.Savings),
		Compliant:       summary.Compliant,
	}
	if summary.SavingsRate != nil {
		s := summary.SavingsRate.StringFixed(4)
		response.SavingsRate = &s
	}
	return c.JSON(http.StatusOK, response)
}
