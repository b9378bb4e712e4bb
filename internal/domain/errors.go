package domain

import "errors"

// Errors shared by more than one aggregate. Entity-specific errors live next
// to their entity; handler.respondError maps both onto problem responses.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserInactive      = errors.New("user account is deactivated")
	ErrWorkspaceNotFound = errors.New("workspace not found")

	ErrNameRequired  = errors.New("name is required")
	ErrNameTooLong   = errors.New("name exceeds maximum length")
	ErrInvalidAmount = errors.New("amount must be positive")

	ErrInvalidMonth     = errors.New("month must be in YYYY-MM or YYYY-MM-DD format")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
)

// Input length limits, in characters
const (
	MaxCategoryNameLength = 80
	MaxDescriptionLength  = 1000
	MaxNotesLength        = 1000
)
