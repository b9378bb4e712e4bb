package websocket

import (
	"context"
	"errors"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrNoWorkspace   = errors.New("no workspace for token subject")
	ErrAccountLocked = errors.New("account is deactivated")
)

// JWTValidator checks a raw access token; *validator.Validator satisfies it
type JWTValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// OwnerLookup resolves the workspace a token subject acts as
type OwnerLookup interface {
	GetOwnerByAuth0ID(auth0ID string) (domain.Owner, error)
}

// TokenAuthenticator resolves the access token a browser passes in the
// upgrade URL to the workspace whose events it may receive
type TokenAuthenticator struct {
	jwt     JWTValidator
	owners  OwnerLookup
	timeout time.Duration
}

// NewTokenAuthenticator shares the HTTP API's JWT validator
func NewTokenAuthenticator(jwt JWTValidator, owners OwnerLookup) *TokenAuthenticator {
	return &TokenAuthenticator{jwt: jwt, owners: owners, timeout: 5 * time.Second}
}

// ValidateToken returns the caller's workspace ID
func (a *TokenAuthenticator) ValidateToken(token string) (int32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	raw, err := a.jwt.ValidateToken(ctx, token)
	if err != nil {
		return 0, ErrInvalidToken
	}
	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return 0, ErrInvalidToken
	}

	owner, err := a.owners.GetOwnerByAuth0ID(claims.RegisteredClaims.Subject)
	switch {
	case errors.Is(err, domain.ErrUserInactive):
		return 0, ErrAccountLocked
	case err != nil:
		return 0, ErrNoWorkspace
	}
	return owner.WorkspaceID, nil
}
