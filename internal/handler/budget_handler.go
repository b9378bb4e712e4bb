package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budgets, the monthly total budget and budget status
type BudgetHandler struct {
	budgetService *service.BudgetService
	statusService *service.BudgetStatusService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, statusService *service.BudgetStatusService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, statusService: statusService}
}

// SetBudgetRequest is the body of POST /budgets
type SetBudgetRequest struct {
	Month         string  `json:"month" validate:"required"`
	Scope         string  `json:"scope" validate:"required,oneof=overall category"`
	CategoryID    *int32  `json:"categoryId"`
	Amount        string  `json:"amount" validate:"required"`
	WarnThreshold *string `json:"warnThreshold"`
	Rollover      bool    `json:"rollover"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID            int32   `json:"id"`
	Month         string  `json:"month"`
	Scope         string  `json:"scope"`
	CategoryID    *int32  `json:"categoryId"`
	CategoryName  *string `json:"categoryName"`
	Amount        string  `json:"amount"`
	WarnThreshold string  `json:"warnThreshold"`
	Rollover      bool    `json:"rollover"`
}

// SetMonthlyBudgetRequest is the body of PUT /budgets/monthly
type SetMonthlyBudgetRequest struct {
	Month       string `json:"month" validate:"required"`
	TotalBudget string `json:"totalBudget" validate:"required"`
	Notes       string `json:"notes" validate:"max=1000"`
}

// MonthlyBudgetResponse is a month's total budget with its derived figures.
// TotalBudget is null when no total budget is set.
type MonthlyBudgetResponse struct {
	Month       string  `json:"month"`
	TotalBudget *string `json:"totalBudget"`
	Notes       string  `json:"notes"`
	TotalIncome string  `json:"totalIncome"`
	Allocated   string  `json:"allocated"`
	Unallocated string  `json:"unallocated"`
}

// BudgetUsageResponse is spend measured against an optional budget
type BudgetUsageResponse struct {
	Budget        *string `json:"budget"`
	WarnThreshold *string `json:"warnThreshold"`
	Spent         string  `json:"spent"`
	Remaining     *string `json:"remaining"`
	PercentUsed   *string `json:"percentUsed"`
	Status        string  `json:"status"`
}

// CategoryUsageResponse is the usage of one budgeted category
type CategoryUsageResponse struct {
	CategoryID   int32  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	BudgetUsageResponse
}

// BudgetStatusResponse is the budget position for a month
type BudgetStatusResponse struct {
	Month              string                  `json:"month"`
	Overall            BudgetUsageResponse     `json:"overall"`
	Categories         []CategoryUsageResponse `json:"categories"`
	UncategorizedSpent string                  `json:"uncategorizedSpent"`
	UnbudgetedSpent    string                  `json:"unbudgetedSpent"`
}

// WarningResponse is a budget warning
type WarningResponse struct {
	Kind         string `json:"kind"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	CategoryID   *int32 `json:"categoryId"`
	PercentUsed  string `json:"percentUsed"`
	AmountSpent  string `json:"amountSpent"`
	BudgetAmount string `json:"budgetAmount"`
}

// BudgetWarningsResponse lists the warnings for a month
type BudgetWarningsResponse struct {
	Month    string            `json:"month"`
	Warnings []WarningResponse `json:"warnings"`
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:            b.ID,
		Month:         formatMonth(b.Month),
		Scope:         string(b.Scope),
		CategoryID:    b.CategoryID,
		CategoryName:  b.CategoryName,
		Amount:        formatMoney(b.Amount),
		WarnThreshold: b.WarnThreshold.String(),
		Rollover:      b.Rollover,
	}
}

func toUsageResponse(u domain.BudgetUsage) BudgetUsageResponse {
	resp := BudgetUsageResponse{
		Budget:    formatMoneyPtr(u.Amount),
		Spent:     formatMoney(u.Spent),
		Remaining: formatMoneyPtr(u.Remaining),
		Status:    string(u.Status),
	}
	if u.WarnThreshold != nil {
		s := u.WarnThreshold.String()
		resp.WarnThreshold = &s
	}
	if u.PercentUsed != nil {
		s := u.PercentUsed.String()
		resp.PercentUsed = &s
	}
	return resp
}

func toWarningResponse(w domain.Warning) WarningResponse {
	return WarningResponse{
		Kind:         string(w.Kind),
		Title:        w.Title,
		Message:      w.Message,
		CategoryID:   w.CategoryID,
		PercentUsed:  w.PercentUsed.String(),
		AmountSpent:  formatMoney(w.AmountSpent),
		BudgetAmount: formatMoney(w.BudgetAmount),
	}
}

// GetBudgets handles GET /api/v1/budgets?month=YYYY-MM
// @Summary List a month's budgets
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {array} BudgetResponse
// @Router /budgets [get]
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	month, err := monthQuery(c)
	if err != nil {
		return monthValidationError(c)
	}

	budgets, err := h.budgetService.GetBudgets(workspaceID, month)
	if err != nil {
		return respondError(c, err, "Failed to get budgets")
	}

	response := make([]BudgetResponse, len(budgets))
	for i, b := range budgets {
		response[i] = toBudgetResponse(b)
	}
	return c.JSON(http.StatusOK, response)
}

// SetBudget godoc
// @Summary Create or update a budget
// @Description Updates the budget with the same month, scope and category if one exists
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetBudgetRequest true "Budget"
// @Success 200 {object} BudgetResponse "Updated"
// @Success 201 {object} BudgetResponse "Created"
// @Failure 400 {object} ProblemDetails
// @Router /budgets [post]
func (h *BudgetHandler) SetBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req SetBudgetRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}

	month, err := util.ParseMonth(req.Month)
	if err != nil {
		return monthValidationError(c)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}
	var warn *decimal.Decimal
	if req.WarnThreshold != nil && *req.WarnThreshold != "" {
		parsed, err := decimal.NewFromString(*req.WarnThreshold)
		if err != nil {
			return NewValidationError(c, "Invalid warnThreshold", []ValidationError{
				{Field: "warnThreshold", Message: "Must be a valid decimal number"},
			})
		}
		warn = &parsed
	}

	budget, created, err := h.budgetService.SetBudget(workspaceID, service.BudgetInput{
		Month:         month,
		Scope:         domain.BudgetScope(req.Scope),
		CategoryID:    req.CategoryID,
		Amount:        amount,
		WarnThreshold: warn,
		Rollover:      req.Rollover,
	})
	if err != nil {
		return respondError(c, err, "Failed to save budget")
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, toBudgetResponse(budget))
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
// @Summary Delete a category budget
// @Tags budgets
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(workspaceID, id); err != nil {
		return respondError(c, err, "Failed to delete budget")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetMonthlyBudget handles GET /api/v1/budgets/monthly?month=YYYY-MM
// @Summary Monthly budget overview
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {object} MonthlyBudgetResponse
// @Failure 400 {object} ProblemDetails
// @Router /budgets/monthly [get]
func (h *BudgetHandler) GetMonthlyBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	month, err := monthQuery(c)
	if err != nil {
		return monthValidationError(c)
	}

	overview, err := h.budgetService.GetMonthlyBudgetOverview(workspaceID, month)
	if err != nil {
		return respondError(c, err, "Failed to get monthly budget")
	}
	return c.JSON(http.StatusOK, toMonthlyBudgetResponse(overview))
}

// SetMonthlyBudget godoc
// @Summary Set the month's total budget
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetMonthlyBudgetRequest true "Monthly budget"
// @Success 200 {object} MonthlyBudgetResponse
// @Success 201 {object} MonthlyBudgetResponse
// @Failure 400 {object} ProblemDetails
// @Router /budgets/monthly [put]
func (h *BudgetHandler) SetMonthlyBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req SetMonthlyBudgetRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}

	month, err := util.ParseMonth(req.Month)
	if err != nil {
		return monthValidationError(c)
	}
	total, err := decimal.NewFromString(req.TotalBudget)
	if err != nil {
		return NewValidationError(c, "Invalid totalBudget", []ValidationError{
			{Field: "totalBudget", Message: "Must be a valid decimal number"},
		})
	}

	_, created, err := h.budgetService.SetMonthlyBudget(workspaceID, month, total, req.Notes)
	if err != nil {
		return respondError(c, err, "Failed to save monthly budget")
	}

	overview, err := h.budgetService.GetMonthlyBudgetOverview(workspaceID, month)
	if err != nil {
		return respondError(c, err, "Failed to get monthly budget")
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, toMonthlyBudgetResponse(overview))
}

func toMonthlyBudgetResponse(o *domain.MonthlyBudgetOverview) MonthlyBudgetResponse {
	resp := MonthlyBudgetResponse{
		Month:       formatMonth(o.Month),
		TotalIncome: formatMoney(o.TotalIncome),
		Allocated:   formatMoney(o.Allocated),
		Unallocated: formatMoney(o.Unallocated),
	}
	if o.Budget != nil {
		resp.TotalBudget = formatMoneyPtr(&o.Budget.TotalBudget)
		resp.Notes = o.Budget.Notes
	}
	return resp
}

// GetBudgetStatus godoc
// @Summary Budget status for a month
// @Description Overall and per-category spend against budgets
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {object} BudgetStatusResponse
// @Router /budgets/status [get]
func (h *BudgetHandler) GetBudgetStatus(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	month, err := monthQuery(c)
	if err != nil {
		return monthValidationError(c)
	}

	status, err := h.statusService.GetBudgetStatus(workspaceID, month)
	if err != nil {
		return respondError(c, err, "Failed to get budget status")
	}

	categories := make([]CategoryUsageResponse, len(status.Categories))
	for i, cu := range status.Categories {
		categories[i] = CategoryUsageResponse{
			CategoryID:          cu.CategoryID,
			CategoryName:        cu.CategoryName,
			BudgetUsageResponse: toUsageResponse(cu.BudgetUsage),
		}
	}
	return c.JSON(http.StatusOK, BudgetStatusResponse{
		Month:              formatMonth(status.Month),
		Overall:            toUsageResponse(status.Overall),
		Categories:         categories,
		UncategorizedSpent: formatMoney(status.UncategorizedSpent),
		UnbudgetedSpent:    formatMoney(status.UnbudgetedSpent),
	})
}

// GetBudgetWarnings handles GET /api/v1/budgets/warnings?month=YYYY-MM
// @Summary Budget warnings for a month
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {object} BudgetWarningsResponse
// @Failure 400 {object} ProblemDetails
// @Router /budgets/warnings [get]
func (h *BudgetHandler) GetBudgetWarnings(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	month, err := monthQuery(c)
	if err != nil {
		return monthValidationError(c)
	}

	warnings, err := h.statusService.GetBudgetWarnings(workspaceID, month)
	if err != nil {
		return respondError(c, err, "Failed to get budget warnings")
	}

	response := BudgetWarningsResponse{
		Month:    formatMonth(month),
		Warnings: make([]WarningResponse, len(warnings)),
	}
	for i, w := range warnings {
		response.Warnings[i] = toWarningResponse(w)
	}
	return c.JSON(http.StatusOK, response)
}
