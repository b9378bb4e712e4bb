package service

import (
	"errors"
	"sync"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultWorkspaceName = "Personal"
	ownerCacheTTL        = 30 * time.Second
)

// AuthService provisions accounts on sign-in and resolves the Owner every
// authenticated request acts as
type AuthService struct {
	userRepo      domain.UserRepository
	workspaceRepo domain.WorkspaceRepository

	now    func() time.Time
	mu     sync.Mutex
	owners map[string]cachedOwner
}

type cachedOwner struct {
	owner   domain.Owner
	expires time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, workspaceRepo domain.WorkspaceRepository) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
		now:           time.Now,
		owners:        make(map[string]cachedOwner),
	}
}

// AuthResult is what the login callback reports back to the client
type AuthResult struct {
	User      *domain.User
	Workspace *domain.Workspace
	IsNewUser bool
}

// AuthenticateUser upserts the user behind an Auth0 login and makes sure they
// own a workspace. Deactivated users are refused before anything is created.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to upsert user")
		return nil, err
	}
	if !user.IsActive {
		log.Warn().Str("user_id", user.ID.String()).Msg("Deactivated user attempted to sign in")
		return nil, domain.ErrUserInactive
	}

	workspace, created, err := s.ensureWorkspace(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to resolve workspace")
		return nil, err
	}

	s.remember(auth0ID, domain.Owner{UserID: user.ID, WorkspaceID: workspace.ID, Role: user.Role})
	log.Info().
		Str("user_id", user.ID.String()).
		Int32("workspace_id", workspace.ID).
		Bool("new_user", created).
		Msg("User signed in")
	return &AuthResult{User: user, Workspace: workspace, IsNewUser: created}, nil
}

func (s *AuthService) ensureWorkspace(userID uuid.UUID) (*domain.Workspace, bool, error) {
	workspace, err := s.workspaceRepo.GetByUserID(userID)
	if err == nil {
		return workspace, false, nil
	}
	if !errors.Is(err, domain.ErrWorkspaceNotFound) {
		return nil, false, err
	}
	workspace, err = s.workspaceRepo.Create(&domain.Workspace{UserID: userID, Name: defaultWorkspaceName})
	if err != nil {
		return nil, false, err
	}
	return workspace, true, nil
}

// GetOwnerByAuth0ID resolves the identity a request acts as. Results are
// cached briefly; ForgetUser drops an entry after a role or status change.
func (s *AuthService) GetOwnerByAuth0ID(auth0ID string) (domain.Owner, error) {
	if owner, ok := s.cached(auth0ID); ok {
		return owner, nil
	}

	user, err := s.userRepo.GetByAuth0ID(auth0ID)
	if err != nil {
		return domain.Owner{}, err
	}
	if !user.IsActive {
		return domain.Owner{}, domain.ErrUserInactive
	}
	workspace, err := s.workspaceRepo.GetByUserID(user.ID)
	if err != nil {
		return domain.Owner{}, err
	}

	owner := domain.Owner{UserID: user.ID, WorkspaceID: workspace.ID, Role: user.Role}
	s.remember(auth0ID, owner)
	return owner, nil
}

func (s *AuthService) cached(auth0ID string) (domain.Owner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.owners[auth0ID]
	if !ok {
		return domain.Owner{}, false
	}
	if s.now().After(entry.expires) {
		delete(s.owners, auth0ID)
		return domain.Owner{}, false
	}
	return entry.owner, true
}

func (s *AuthService) remember(auth0ID string, owner domain.Owner) {
	s.mu.Lock()
	s.owners[auth0ID] = cachedOwner{owner: owner, expires: s.now().Add(ownerCacheTTL)}
	s.mu.Unlock()
}

// ForgetUser drops the cached Owner for auth0ID
func (s *AuthService) ForgetUser(auth0ID string) {
	s.mu.Lock()
	delete(s.owners, auth0ID)
	s.mu.Unlock()
}

func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

func (s *AuthService) GetWorkspaceByID(id int32) (*domain.Workspace, error) {
	return s.workspaceRepo.GetByID(id)
}
