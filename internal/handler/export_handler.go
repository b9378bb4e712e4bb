package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ExportHandler serves CSV and JSON exports
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportExpensesCSV godoc
// @Summary Export expenses as CSV
// @Description Admins export every workspace, users their own. Both bounds are optional.
// @Tags exports
// @Produce text/csv
// @Security BearerAuth
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /exports/expenses.csv [get]
func (h *ExportHandler) ExportExpensesCSV(c echo.Context) error {
	scope, ok := reportScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Workspace required")
	}

	start, err := optionalDateQuery(c, "start")
	if err != nil {
		return dateValidationError(c, "start")
	}
	end, err := optionalDateQuery(c, "end")
	if err != nil {
		return dateValidationError(c, "end")
	}

	// buffered so a failed query still gets a problem response
	var buf bytes.Buffer
	if err := h.exportService.WriteExpensesCSV(&buf, scope, start, end); err != nil {
		return respondError(c, err, "Failed to export expenses")
	}

	filename := fmt.Sprintf("expenses-%s.csv", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GetBackup godoc
// @Summary Download a JSON backup
// @Tags exports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Backup
// @Failure 429 {object} ProblemDetails
// @Router /exports/backup.json [get]
func (h *ExportHandler) GetBackup(c echo.Context) error {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Workspace required")
	}

	backup, err := h.exportService.GetBackup(owner)
	if err != nil {
		return respondError(c, err, "Failed to build backup")
	}

	filename := fmt.Sprintf("backup-%s.json", backup.GeneratedAt.Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.JSON(http.StatusOK, backup)
}

// ArchiveBackup godoc
// @Summary Store a JSON backup in object storage
// @Description Returns a presigned link that expires after an hour
// @Tags exports
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.BackupArchive
// @Failure 503 {object} ProblemDetails
// @Router /exports/backup/archive [post]
func (h *ExportHandler) ArchiveBackup(c echo.Context) error {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Workspace required")
	}

	archive, err := h.exportService.ArchiveBackup(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err, "Failed to archive backup")
	}
	return c.JSON(http.StatusCreated, archive)
}
