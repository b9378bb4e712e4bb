package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// Auth0IDKey is the context key for the Auth0 user ID (subject)
	Auth0IDKey contextKey = "auth0_id"
	// OwnerKey is the context key for the resolved domain.Owner
	OwnerKey contextKey = "owner"
)

// OwnerProvider resolves the user, workspace and role behind a token subject
type OwnerProvider interface {
	GetOwnerByAuth0ID(auth0ID string) (domain.Owner, error)
}

// TokenValidator validates a raw bearer token. *validator.Validator satisfies it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator     TokenValidator
	ownerProvider OwnerProvider
}

// NewAuth0Validator builds an RS256 validator backed by the tenant's cached JWKS
func NewAuth0Validator(auth0Domain, audience string) (*validator.Validator, error) {
	issuerURL, err := url.Parse("https://" + auth0Domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	return validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// NewAuthMiddleware creates a new AuthMiddleware with Auth0 configuration
func NewAuthMiddleware(auth0Domain, audience string, ownerProvider OwnerProvider) (*AuthMiddleware, error) {
	jwtValidator, err := NewAuth0Validator(auth0Domain, audience)
	if err != nil {
		return nil, err
	}
	return NewAuthMiddlewareWithValidator(jwtValidator, ownerProvider), nil
}

// NewAuthMiddlewareWithValidator builds the middleware around an existing validator
func NewAuthMiddlewareWithValidator(tokenValidator TokenValidator, ownerProvider OwnerProvider) *AuthMiddleware {
	return &AuthMiddleware{
		validator:     tokenValidator,
		ownerProvider: ownerProvider,
	}
}

// validate checks the bearer token and stores its claims in the request
// context. A non-empty failure is the reason the token was rejected.
func (m *AuthMiddleware) validate(c echo.Context) (auth0ID string, failure string) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", "missing authorization header"
	}

	// Check Bearer prefix
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", "invalid authorization header format"
	}

	claims, err := m.validator.ValidateToken(c.Request().Context(), parts[1])
	if err != nil {
		log.Debug().Err(err).Msg("Token validation failed")
		return "", "invalid token"
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return "", "invalid claims"
	}

	auth0ID = validatedClaims.RegisteredClaims.Subject
	ctx := context.WithValue(c.Request().Context(), ClaimsKey, validatedClaims)
	ctx = context.WithValue(ctx, Auth0IDKey, auth0ID)
	c.SetRequest(c.Request().WithContext(ctx))
	return auth0ID, ""
}

// ValidateOnly checks the token without resolving a workspace. It guards the
// login callback, which runs before the user's workspace exists.
func (m *AuthMiddleware) ValidateOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, failure := m.validate(c); failure != "" {
				return unauthorizedError(c, failure)
			}
			return next(c)
		}
	}
}

// Authenticate validates the token and attaches the caller's Owner to the context
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth0ID, failure := m.validate(c)
			if failure != "" {
				return unauthorizedError(c, failure)
			}

			owner, err := m.ownerProvider.GetOwnerByAuth0ID(auth0ID)
			if err != nil {
				log.Debug().Err(err).Str("auth0_id", auth0ID).Msg("Owner lookup failed")
				if errors.Is(err, domain.ErrUserInactive) {
					return forbiddenError(c, "account is deactivated")
				}
				return unauthorizedError(c, "workspace not found")
			}

			WithOwner(c, owner)
			return next(c)
		}
	}
}

// RequireAdmin rejects callers without the admin role. It must run after Authenticate.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			owner, ok := GetOwner(c)
			if !ok {
				return unauthorizedError(c, "not authenticated")
			}
			if !owner.IsAdmin() {
				return forbiddenError(c, "admin role required")
			}
			return next(c)
		}
	}
}

// GetAuth0ID extracts the Auth0 user ID from the context
func GetAuth0ID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(Auth0IDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims extracts the custom claims from the context
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom
	}
	return nil
}

// GetOwner extracts the authenticated owner from the context
func GetOwner(c echo.Context) (domain.Owner, bool) {
	owner, ok := c.Request().Context().Value(OwnerKey).(domain.Owner)
	return owner, ok
}

// GetWorkspaceID extracts the workspace ID from the context
func GetWorkspaceID(c echo.Context) int32 {
	if owner, ok := GetOwner(c); ok {
		return owner.WorkspaceID
	}
	return 0
}

// WithOwner attaches owner to the request context
func WithOwner(c echo.Context, owner domain.Owner) {
	ctx := context.WithValue(c.Request().Context(), OwnerKey, owner)
	c.SetRequest(c.Request().WithContext(ctx))
}
