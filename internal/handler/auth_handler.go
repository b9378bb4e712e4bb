package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SessionResponse describes who the caller is and which workspace they act in
type SessionResponse struct {
	User      UserResponse      `json:"user"`
	Workspace WorkspaceResponse `json:"workspace"`
	IsAdmin   bool              `json:"isAdmin"`
	IsNewUser bool              `json:"isNewUser,omitempty"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Name       *string `json:"name"`
	PictureURL *string `json:"pictureUrl"`
	Role       string  `json:"role"`
	IsActive   bool    `json:"isActive"`
	CreatedAt  string  `json:"createdAt"`
}

// WorkspaceResponse represents a workspace in API responses
type WorkspaceResponse struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Email:      u.Email,
		Name:       u.Name,
		PictureURL: u.PictureURL,
		Role:       string(u.Role),
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt.Format(timeLayout),
	}
}

func newSessionResponse(u *domain.User, w *domain.Workspace) SessionResponse {
	return SessionResponse{
		User:      toUserResponse(u),
		Workspace: WorkspaceResponse{ID: w.ID, Name: w.Name},
		IsAdmin:   u.IsAdmin(),
	}
}

// signInProfile is the identity Auth0 puts in the access token
type signInProfile struct {
	auth0ID string
	email   string
	name    *string
	picture *string
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func profileFromContext(c echo.Context) signInProfile {
	p := signInProfile{auth0ID: middleware.GetAuth0ID(c)}
	if claims := middleware.GetCustomClaims(c); claims != nil {
		p.email = claims.Email
		p.name = optional(claims.Name)
		p.picture = optional(claims.Picture)
	}
	return p
}

// Callback registers or signs in the caller after Auth0 login. It runs behind
// ValidateOnly because the workspace may not exist yet.
// @Summary Complete sign-in
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SessionResponse
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /auth/callback [post]
func (h *AuthHandler) Callback(c echo.Context) error {
	profile := profileFromContext(c)
	if profile.auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	if profile.email == "" {
		log.Warn().Str("auth0_id", profile.auth0ID).Msg("Sign-in token carries no email claim")
		return NewValidationError(c, "Email is required for authentication", []ValidationError{
			{Field: "email", Message: "Email claim is missing from token"},
		})
	}

	result, err := h.authService.AuthenticateUser(profile.auth0ID, profile.email, profile.name, profile.picture)
	if err != nil {
		return respondError(c, err, "Failed to authenticate user")
	}

	response := newSessionResponse(result.User, result.Workspace)
	response.IsNewUser = result.IsNewUser
	return c.JSON(http.StatusOK, response)
}

// Me returns the current user and workspace
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SessionResponse
// @Failure 401 {object} ProblemDetails
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.authService.GetUserByID(owner.UserID)
	if err != nil {
		return respondError(c, err, "Failed to get user")
	}
	workspace, err := h.authService.GetWorkspaceByID(owner.WorkspaceID)
	if err != nil {
		return respondError(c, err, "Failed to get workspace")
	}
	return c.JSON(http.StatusOK, newSessionResponse(user, workspace))
}
