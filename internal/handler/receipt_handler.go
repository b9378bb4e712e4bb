package handler

import (
	"io"
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReceiptHandler handles expense receipt uploads and downloads
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// ReceiptResponse is a short-lived download link for a receipt
type ReceiptResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

// UploadReceipt godoc
// @Summary Attach a receipt image
// @Description JPEG or PNG up to 5MB. Wide images are scaled down to 1200px.
// @Tags expenses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param file formData file true "Receipt image"
// @Success 201 {object} ReceiptResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id}/receipt [post]
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded receipt")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	// one byte past the limit is enough to reject oversized uploads
	data, err := io.ReadAll(io.LimitReader(src, service.MaxReceiptSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded receipt")
		return NewInternalError(c, "Failed to read file")
	}

	if _, err := h.receiptService.UploadReceipt(c.Request().Context(), workspaceID, id, data, file.Filename); err != nil {
		return respondError(c, err, "Failed to upload receipt")
	}

	link, err := h.receiptService.GetReceiptURL(c.Request().Context(), workspaceID, id)
	if err != nil {
		return respondError(c, err, "Failed to sign receipt URL")
	}
	return c.JSON(http.StatusCreated, ReceiptResponse{
		URL:       link.URL,
		ExpiresAt: link.ExpiresAt.Format(timeLayout),
	})
}

// GetReceipt handles GET /api/v1/expenses/:id/receipt
// @Summary Signed receipt download link
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} ReceiptResponse
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id}/receipt [get]
func (h *ReceiptHandler) GetReceipt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipts are disabled (storage not configured)")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	link, err := h.receiptService.GetReceiptURL(c.Request().Context(), workspaceID, id)
	if err != nil {
		return respondError(c, err, "Failed to sign receipt URL")
	}
	return c.JSON(http.StatusOK, ReceiptResponse{
		URL:       link.URL,
		ExpiresAt: link.ExpiresAt.Format(timeLayout),
	})
}
