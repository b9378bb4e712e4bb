package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ExpenseRequest is the body of expense create and update
type ExpenseRequest struct {
	CategoryID    *int32  `json:"categoryId"`
	Amount        string  `json:"amount" validate:"required"`
	Currency      string  `json:"currency" validate:"omitempty,len=3"`
	Date          *string `json:"date"`
	Description   string  `json:"description" validate:"required,max=1000"`
	PaymentMethod string  `json:"paymentMethod" validate:"max=50"`
	Merchant      string  `json:"merchant" validate:"max=255"`
	Notes         string  `json:"notes" validate:"max=1000"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID            int32   `json:"id"`
	CategoryID    *int32  `json:"categoryId"`
	CategoryName  *string `json:"categoryName"`
	Amount        string  `json:"amount"`
	Currency      string  `json:"currency"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	PaymentMethod string  `json:"paymentMethod"`
	Merchant      string  `json:"merchant"`
	Notes         string  `json:"notes"`
	HasReceipt    bool    `json:"hasReceipt"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// PaginatedExpensesResponse represents a page of expenses
type PaginatedExpensesResponse struct {
	Data       []ExpenseResponse `json:"data"`
	Page       int32             `json:"page"`
	PageSize   int32             `json:"pageSize"`
	TotalItems int64             `json:"totalItems"`
	TotalPages int32             `json:"totalPages"`
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		CategoryID:    e.CategoryID,
		CategoryName:  e.CategoryName,
		Amount:        formatMoney(e.Amount),
		Currency:      e.Currency,
		Date:          formatDate(e.Date),
		Description:   e.Description,
		PaymentMethod: e.PaymentMethod,
		Merchant:      e.Merchant,
		Notes:         e.Notes,
		HasReceipt:    e.ReceiptPath != nil,
		CreatedAt:     e.CreatedAt.Format(timeLayout),
		UpdatedAt:     e.UpdatedAt.Format(timeLayout),
	}
}

// toInput parses the string fields of the request. A non-nil error response
// has already been written when ok is false.
func (req *ExpenseRequest) toInput(c echo.Context) (service.ExpenseInput, bool, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return service.ExpenseInput{}, false, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := util.ParseDate(*req.Date)
		if err != nil {
			return service.ExpenseInput{}, false, dateValidationError(c, "date")
		}
		date = &parsed
	}

	return service.ExpenseInput{
		CategoryID:    req.CategoryID,
		Amount:        amount,
		Currency:      req.Currency,
		Date:          date,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Merchant:      req.Merchant,
		Notes:         req.Notes,
	}, true, nil
}

// CreateExpense godoc
// @Summary Create an expense
// @Description Record an expense. The date defaults to today.
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "Expense"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req ExpenseRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	input, ok, err := req.toInput(c)
	if !ok {
		return err
	}

	expense, err := h.expenseService.CreateExpense(workspaceID, input)
	if err != nil {
		return respondError(c, err, "Failed to create expense")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("expense_id", expense.ID).Str("amount", expense.Amount.String()).Msg("Expense recorded")
	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// GetExpenses godoc
// @Summary List expenses
// @Description Newest first, with optional date range and category filters
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param categoryId query int false "Filter by category ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} PaginatedExpensesResponse
// @Failure 400 {object} ProblemDetails
// @Router /expenses [get]
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	filters := &domain.ExpenseFilters{}

	start, err := optionalDateQuery(c, "startDate")
	if err != nil {
		return dateValidationError(c, "startDate")
	}
	filters.StartDate = start

	end, err := optionalDateQuery(c, "endDate")
	if err != nil {
		return dateValidationError(c, "endDate")
	}
	filters.EndDate = end

	if raw := c.QueryParam("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return NewValidationError(c, "Invalid categoryId", []ValidationError{
				{Field: "categoryId", Message: "Must be a number"},
			})
		}
		categoryID := int32(id)
		filters.CategoryID = &categoryID
	}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return NewValidationError(c, "Invalid page", nil)
		}
		filters.Page = int32(page)
	}
	if raw := c.QueryParam("pageSize"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return NewValidationError(c, "Invalid pageSize", nil)
		}
		filters.PageSize = int32(size)
	}

	result, err := h.expenseService.GetExpenses(workspaceID, filters)
	if err != nil {
		return respondError(c, err, "Failed to get expenses")
	}

	data := make([]ExpenseResponse, len(result.Data))
	for i, e := range result.Data {
		data[i] = toExpenseResponse(e)
	}
	return c.JSON(http.StatusOK, PaginatedExpensesResponse{
		Data:       data,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// GetExpense handles GET /api/v1/expenses/:id
// @Summary Get an expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} ExpenseResponse
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	expense, err := h.expenseService.GetExpenseByID(workspaceID, id)
	if err != nil {
		return respondError(c, err, "Failed to get expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// UpdateExpense godoc
// @Summary Update an expense
// @Description Users may edit an expense only within the edit window after creating it
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param request body ExpenseRequest true "Expense"
// @Success 200 {object} ExpenseResponse
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	var req ExpenseRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	input, ok, err := req.toInput(c)
	if !ok {
		return err
	}

	expense, err := h.expenseService.UpdateExpense(owner, id, input)
	if err != nil {
		return respondError(c, err, "Failed to update expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
// @Summary Delete an expense
// @Tags expenses
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.expenseService.DeleteExpense(owner, id); err != nil {
		return respondError(c, err, "Failed to delete expense")
	}
	return c.NoContent(http.StatusNoContent)
}
