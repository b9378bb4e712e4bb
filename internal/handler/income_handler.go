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

// IncomeHandler handles income HTTP requests
type IncomeHandler struct {
	incomeService *service.IncomeService
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService *service.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// CreateIncomeRequest is the body of POST /incomes
type CreateIncomeRequest struct {
	Month      string `json:"month" validate:"required"`
	SourceID   *int32 `json:"sourceId"`
	SourceName string `json:"sourceName" validate:"required_without=SourceID,max=80"`
	Amount     string `json:"amount" validate:"required"`
	Notes      string `json:"notes" validate:"max=1000"`
}

// IncomeResponse represents an income in API responses
type IncomeResponse struct {
	ID         int32  `json:"id"`
	Month      string `json:"month"`
	SourceID   *int32 `json:"sourceId"`
	SourceName string `json:"sourceName"`
	Amount     string `json:"amount"`
	Notes      string `json:"notes"`
	CreatedAt  string `json:"createdAt"`
}

// MonthIncomeResponse lists a month's incomes with their total
type MonthIncomeResponse struct {
	Month   string           `json:"month"`
	Total   string           `json:"total"`
	Incomes []IncomeResponse `json:"incomes"`
}

func toIncomeResponse(in *domain.Income) IncomeResponse {
	return IncomeResponse{
		ID:         in.ID,
		Month:      formatMonth(in.Month),
		SourceID:   in.SourceID,
		SourceName: in.SourceName,
		Amount:     formatMoney(in.Amount),
		Notes:      in.Notes,
		CreatedAt:  in.CreatedAt.Format(timeLayout),
	}
}

// GetIncomes handles GET /api/v1/incomes?month=YYYY-MM
// @Summary List a month's income
// @Tags incomes
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM), defaults to the current month"
// @Success 200 {object} MonthIncomeResponse
// @Router /incomes [get]
func (h *IncomeHandler) GetIncomes(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	month, err := monthQuery(c)
	if err != nil {
		return monthValidationError(c)
	}

	result, err := h.incomeService.GetIncomes(workspaceID, month)
	if err != nil {
		return respondError(c, err, "Failed to get incomes")
	}

	incomes := make([]IncomeResponse, len(result.Incomes))
	for i, in := range result.Incomes {
		incomes[i] = toIncomeResponse(in)
	}
	return c.JSON(http.StatusOK, MonthIncomeResponse{
		Month:   formatMonth(result.Month),
		Total:   formatMoney(result.Total),
		Incomes: incomes,
	})
}

// CreateIncome handles POST /api/v1/incomes
// @Summary Record income
// @Description sourceId links a system or own income source and takes its name; otherwise sourceName is required
// @Tags incomes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIncomeRequest true "Income"
// @Success 201 {object} IncomeResponse
// @Failure 400 {object} ProblemDetails
// @Router /incomes [post]
func (h *IncomeHandler) CreateIncome(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateIncomeRequest
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

	income, err := h.incomeService.CreateIncome(workspaceID, service.IncomeInput{
		Month:      month,
		SourceID:   req.SourceID,
		SourceName: req.SourceName,
		Amount:     amount,
		Notes:      req.Notes,
	})
	if err != nil {
		return respondError(c, err, "Failed to create income")
	}
	return c.JSON(http.StatusCreated, toIncomeResponse(income))
}

// DeleteIncome handles DELETE /api/v1/incomes/:id
// @Summary Delete an income
// @Tags incomes
// @Security BearerAuth
// @Param id path int true "Income ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /incomes/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	if err := h.incomeService.DeleteIncome(workspaceID, id); err != nil {
		return respondError(c, err, "Failed to delete income")
	}
	return c.NoContent(http.StatusNoContent)
}
