package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves admin management of system categories and income sources
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// SystemCategoryResponse is a system category with its use across workspaces
type SystemCategoryResponse struct {
	CategoryResponse
	UsageCount  int64  `json:"usageCount"`
	TotalAmount string `json:"totalAmount"`
}

// SystemIncomeSourceResponse is a system income source with its use across workspaces
type SystemIncomeSourceResponse struct {
	IncomeSourceResponse
	UsageCount int64 `json:"usageCount"`
}

// MonthlyUsageResponse is one month of a system category's use
type MonthlyUsageResponse struct {
	Month string `json:"month"`
	Total string `json:"total"`
	Count int64  `json:"count"`
}

// UsageStatsResponse describes how a system category or income source is used
type UsageStatsResponse struct {
	TotalAmount  string                 `json:"totalAmount"`
	TotalCount   int64                  `json:"totalCount"`
	AvgAmount    string                 `json:"avgAmount"`
	UniqueUsers  int64                  `json:"uniqueUsers"`
	MonthlyUsage []MonthlyUsageResponse `json:"monthlyUsage,omitempty"`
}

func toUsageStatsResponse(stats *domain.UsageStats) UsageStatsResponse {
	response := UsageStatsResponse{
		TotalAmount: formatMoney(stats.TotalAmount),
		TotalCount:  stats.TotalCount,
		AvgAmount:   formatMoney(stats.AvgAmount),
		UniqueUsers: stats.UniqueUsers,
	}
	for _, m := range stats.Monthly {
		response.MonthlyUsage = append(response.MonthlyUsage, MonthlyUsageResponse{
			Month: formatMonth(m.Month),
			Total: formatMoney(m.Total),
			Count: m.Count,
		})
	}
	return response
}

// ListCategories godoc
// @Summary List system categories
// @Description Every system category by name, with its expense count and total across workspaces
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} SystemCategoryResponse
// @Failure 403 {object} ProblemDetails
// @Router /admin/categories [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalogService.ListSystemCategories()
	if err != nil {
		return respondError(c, err, "Failed to list system categories")
	}

	response := make([]SystemCategoryResponse, len(categories))
	for i, sc := range categories {
		response[i] = SystemCategoryResponse{
			CategoryResponse: toCategoryResponse(&sc.Category),
			UsageCount:       sc.UsageCount,
			TotalAmount:      formatMoney(sc.TotalAmount),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// CreateCategory godoc
// @Summary Create a system category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /admin/categories [post]
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}

	category, err := h.catalogService.CreateSystemCategory(service.CategoryInput{
		Name:       req.Name,
		Icon:       req.Icon,
		ColorToken: req.ColorToken,
	})
	if err != nil {
		return respondError(c, err, "Failed to create system category")
	}
	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// UpdateCategory godoc
// @Summary Update a system category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} CategoryResponse
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /admin/categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req CategoryRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}

	category, err := h.catalogService.UpdateSystemCategory(id, service.CategoryInput{
		Name:       req.Name,
		Icon:       req.Icon,
		ColorToken: req.ColorToken,
	})
	if err != nil {
		return respondError(c, err, "Failed to update system category")
	}
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory godoc
// @Summary Delete a system category
// @Description Expenses in the category become uncategorized
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /admin/categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	if err := h.catalogService.DeleteSystemCategory(id); err != nil {
		return respondError(c, err, "Failed to delete system category")
	}
	return c.NoContent(http.StatusNoContent)
}

// CategoryUsage godoc
// @Summary System category usage
// @Description Totals across every workspace plus the last six months, oldest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} UsageStatsResponse
// @Failure 404 {object} ProblemDetails
// @Router /admin/categories/{id}/usage [get]
func (h *CatalogHandler) CategoryUsage(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	stats, err := h.catalogService.SystemCategoryUsage(id)
	if err != nil {
		return respondError(c, err, "Failed to load category usage")
	}
	return c.JSON(http.StatusOK, toUsageStatsResponse(stats))
}

// ListIncomeSources godoc
// @Summary List system income sources
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} SystemIncomeSourceResponse
// @Failure 403 {object} ProblemDetails
// @Router /admin/income-sources [get]
func (h *CatalogHandler) ListIncomeSources(c echo.Context) error {
	sources, err := h.catalogService.ListSystemIncomeSources()
	if err != nil {
		return respondError(c, err, "Failed to list system income sources")
	}

	response := make([]SystemIncomeSourceResponse, len(sources))
	for i, s := range sources {
		response[i] = SystemIncomeSourceResponse{
			IncomeSourceResponse: toIncomeSourceResponse(&s.IncomeSource),
			UsageCount:           s.UsageCount,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// CreateIncomeSource godoc
// @Summary Create a system income source
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body IncomeSourceRequest true "Income source"
// @Success 201 {object} IncomeSourceResponse
// @Failure 409 {object} ProblemDetails
// @Router /admin/income-sources [post]
func (h *CatalogHandler) CreateIncomeSource(c echo.Context) error {
	var req IncomeSourceRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}

	source, err := h.catalogService.CreateSystemIncomeSource(req.Name)
	if err != nil {
		return respondError(c, err, "Failed to create system income source")
	}
	return c.JSON(http.StatusCreated, toIncomeSourceResponse(source))
}

// UpdateIncomeSource godoc
// @Summary Rename a system income source
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Income source ID"
// @Param request body IncomeSourceRequest true "Income source"
// @Success 200 {object} IncomeSourceResponse
// @Failure 404 {object} ProblemDetails
// @Router /admin/income-sources/{id} [put]
func (h *CatalogHandler) UpdateIncomeSource(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid income source ID", nil)
	}

	var req IncomeSourceRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}

	source, err := h.catalogService.UpdateSystemIncomeSource(id, req.Name)
	if err != nil {
		return respondError(c, err, "Failed to update system income source")
	}
	return c.JSON(http.StatusOK, toIncomeSourceResponse(source))
}

// DeleteIncomeSource godoc
// @Summary Delete a system income source
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Income source ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /admin/income-sources/{id} [delete]
func (h *CatalogHandler) DeleteIncomeSource(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid income source ID", nil)
	}

	if err := h.catalogService.DeleteSystemIncomeSource(id); err != nil {
		return respondError(c, err, "Failed to delete system income source")
	}
	return c.NoContent(http.StatusNoContent)
}

// IncomeSourceUsage godoc
// @Summary System income source usage
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Income source ID"
// @Success 200 {object} UsageStatsResponse
// @Failure 404 {object} ProblemDetails
// @Router /admin/income-sources/{id}/usage [get]
func (h *CatalogHandler) IncomeSourceUsage(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid income source ID", nil)
	}

	stats, err := h.catalogService.SystemIncomeSourceUsage(id)
	if err != nil {
		return respondError(c, err, "Failed to load income source usage")
	}
	return c.JSON(http.StatusOK, toUsageStatsResponse(stats))
}
