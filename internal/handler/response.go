package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://spendwise.app/errors/validation"
	ErrorTypeNotFound     = "https://spendwise.app/errors/not-found"
	ErrorTypeUnauthorized = "https://spendwise.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://spendwise.app/errors/forbidden"
	ErrorTypeConflict     = "https://spendwise.app/errors/conflict"
	ErrorTypeUnavailable  = "https://spendwise.app/errors/unavailable"
	ErrorTypeInternal     = "https://spendwise.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewServiceUnavailableError reports a feature whose backing service is not configured
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldErrors maps input errors raised by services to the request field at fault
var fieldErrors = []struct {
	err   error
	field string
}{
	{domain.ErrNameRequired, "name"},
	{domain.ErrNameTooLong, "name"},
	{domain.ErrInvalidAmount, "amount"},
	{domain.ErrDescriptionRequired, "description"},
	{domain.ErrDescriptionTooLong, "description"},
	{domain.ErrNotesTooLong, "notes"},
	{domain.ErrIncomeSourceMissing, "sourceName"},
	{domain.ErrUnknownIncomeSource, "sourceId"},
	{domain.ErrInvalidAmountRange, "minAmount"},
	{domain.ErrInvalidBudgetScope, "scope"},
	{domain.ErrBudgetCategoryRequired, "categoryId"},
	{domain.ErrBudgetCategoryNotAllowed, "categoryId"},
	{domain.ErrInvalidWarnThreshold, "warnThreshold"},
	{domain.ErrNegativeTotalBudget, "totalBudget"},
	{domain.ErrInvalidMonth, "month"},
	{util.ErrInvalidMonth, "month"},
	{domain.ErrInvalidDateRange, "start"},
	{domain.ErrInvalidBucket, "bucket"},
	{domain.ErrInvalidRole, "role"},
	{domain.ErrTitleRequired, "title"},
	{domain.ErrMessageRequired, "message"},
	{service.ErrReceiptTooLarge, "receipt"},
	{service.ErrInvalidReceiptType, "receipt"},
	{service.ErrInvalidImageData, "receipt"},
}

var notFoundErrors = []error{
	domain.ErrCategoryNotFound,
	domain.ErrExpenseNotFound,
	domain.ErrIncomeNotFound,
	domain.ErrIncomeSourceNotFound,
	domain.ErrBudgetNotFound,
	domain.ErrNotificationNotFound,
	domain.ErrUserNotFound,
	domain.ErrWorkspaceNotFound,
	domain.ErrReceiptNotFound,
}

var forbiddenErrors = []error{
	domain.ErrSystemCategory,
	domain.ErrSystemIncomeSource,
	domain.ErrEditWindowExpired,
	domain.ErrCannotModifySelf,
	domain.ErrUserInactive,
}

// respondError turns a service error into a problem response. Errors the
// caller cannot fix are logged and answered with 500 and msg.
func respondError(c echo.Context, err error, msg string) error {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return NewValidationError(c, err.Error(), []ValidationError{
				{Field: fe.field, Message: err.Error()},
			})
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return NewNotFoundError(c, err.Error())
		}
	}
	for _, target := range forbiddenErrors {
		if errors.Is(err, target) {
			return NewForbiddenError(c, err.Error())
		}
	}
	switch {
	case errors.Is(err, domain.ErrCategoryNameExists), errors.Is(err, domain.ErrIncomeSourceNameExists):
		return NewConflictError(c, err.Error())
	case errors.Is(err, domain.ErrStorageNotConfigured):
		return NewServiceUnavailableError(c, err.Error())
	}

	log.Error().
		Err(err).
		Int32("workspace_id", middleware.GetWorkspaceID(c)).
		Str("path", c.Request().URL.Path).
		Msg(msg)
	return NewInternalError(c, msg)
}
