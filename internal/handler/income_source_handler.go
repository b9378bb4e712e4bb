package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// IncomeSourceHandler handles income source HTTP requests
type IncomeSourceHandler struct {
	sourceService *service.IncomeSourceService
}

// NewIncomeSourceHandler creates a new IncomeSourceHandler
func NewIncomeSourceHandler(sourceService *service.IncomeSourceService) *IncomeSourceHandler {
	return &IncomeSourceHandler{sourceService: sourceService}
}

// IncomeSourceRequest is the body of income source create and update
type IncomeSourceRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

// IncomeSourceResponse represents an income source in API responses
type IncomeSourceResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	IsSystem  bool   `json:"isSystem"`
	CreatedAt string `json:"createdAt"`
}

func toIncomeSourceResponse(s *domain.IncomeSource) IncomeSourceResponse {
	return IncomeSourceResponse{
		ID:        s.ID,
		Name:      s.Name,
		IsSystem:  s.IsSystem,
		CreatedAt: s.CreatedAt.Format(timeLayout),
	}
}

// GetSources godoc
// @Summary List income sources
// @Description System sources followed by the workspace's own
// @Tags income-sources
// @Produce json
// @Security BearerAuth
// @Success 200 {array} IncomeSourceResponse
// @Router /income-sources [get]
func (h *IncomeSourceHandler) GetSources(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	sources, err := h.sourceService.GetSources(workspaceID)
	if err != nil {
		return respondError(c, err, "Failed to get income sources")
	}

	response := make([]IncomeSourceResponse, len(sources))
	for i, s := range sources {
		response[i] = toIncomeSourceResponse(s)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateSource godoc
// @Summary Create an income source
// @Tags income-sources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body IncomeSourceRequest true "Income source"
// @Success 201 {object} IncomeSourceResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /income-sources [post]
func (h *IncomeSourceHandler) CreateSource(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req IncomeSourceRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}

	source, err := h.sourceService.CreateSource(workspaceID, req.Name)
	if err != nil {
		return respondError(c, err, "Failed to create income source")
	}
	return c.JSON(http.StatusCreated, toIncomeSourceResponse(source))
}

// UpdateSource godoc
// @Summary Rename an income source
// @Tags income-sources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Income source ID"
// @Param request body IncomeSourceRequest true "Income source"
// @Success 200 {object} IncomeSourceResponse
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /income-sources/{id} [put]
func (h *IncomeSourceHandler) UpdateSource(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid income source ID", nil)
	}

	var req IncomeSourceRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}

	source, err := h.sourceService.UpdateSource(workspaceID, id, req.Name)
	if err != nil {
		return respondError(c, err, "Failed to update income source")
	}
	return c.JSON(http.StatusOK, toIncomeSourceResponse(source))
}

// DeleteSource handles DELETE /api/v1/income-sources/:id
// @Summary Delete an income source
// @Tags income-sources
// @Security BearerAuth
// @Param id path int true "Income source ID"
// @Success 204
// @Failure 403 {object} ProblemDetails
// @Router /income-sources/{id} [delete]
func (h *IncomeSourceHandler) DeleteSource(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid income source ID", nil)
	}

	if err := h.sourceService.DeleteSource(workspaceID, id); err != nil {
		return respondError(c, err, "Failed to delete income source")
	}
	return c.NoContent(http.StatusNoContent)
}
