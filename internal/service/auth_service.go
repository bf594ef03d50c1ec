package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and account administration.
// It also serves as the IdentityProvider for routing.
type AuthService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	teams       repository.TeamRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	logger      *zap.Logger
	now         func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	TeamRepo       repository.TeamRepository
	Logger         *zap.Logger
	Clock          func() time.Time
}

// RegisterInput describes a self-service signup.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	DepartmentID *string
}

// AccountUpdate is an admin change to role and placement; nil fields keep their value.
type AccountUpdate struct {
	Role            *domain.Role
	DepartmentID    *string
	ClearDepartment bool
	TeamID          *string
	ClearTeam       bool
	Active          *bool
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AuthService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		teams:       deps.TeamRepo,
		tokenMgr:    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:  cfg.BcryptCost,
		logger:      logger,
		now:         clock,
	}
}

// Register creates a USER account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	user, err := s.CreateAccount(ctx, input, domain.RoleUser)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, errorutil.NewInternalError(err)
	}
	return user, token, exp, nil
}

// CreateAccount persists an account with the given role. Seeding uses it for
// the bootstrap administrator.
func (s *AuthService) CreateAccount(ctx context.Context, input RegisterInput, role domain.Role) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, errorutil.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, errorutil.NewInternalError(err)
	}
	if input.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *input.DepartmentID); err != nil {
			return nil, referenceError(err, "department", map[string]any{"department_id": *input.DepartmentID})
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		DepartmentID: copyOptional(input.DepartmentID),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(err, "user", map[string]any{"email": email})
	}
	s.logger.Info("account created", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Login authenticates an account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, errorutil.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, errorutil.NewInternalError(err)
	}
	if !user.Active {
		return nil, "", time.Time{}, errorutil.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errorutil.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, errorutil.NewInternalError(err)
	}
	return user, token, exp, nil
}

// GetUser returns the profile for id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", map[string]any{"user_id": id})
	}
	return user, nil
}

// UpdateAccount applies an admin change of role, department, team or active flag.
// A Clear flag wins over an id given in the same update.
func (s *AuthService) UpdateAccount(ctx context.Context, userID string, update AccountUpdate) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, errorutil.NewValidationError("unknown role", map[string]any{"role": string(*update.Role)})
		}
		user.Role = *update.Role
	}
	switch {
	case update.ClearDepartment:
		user.DepartmentID = nil
	case update.DepartmentID != nil:
		if _, err := s.departments.GetByID(ctx, *update.DepartmentID); err != nil {
			return nil, referenceError(err, "department", map[string]any{"department_id": *update.DepartmentID})
		}
		user.DepartmentID = copyOptional(update.DepartmentID)
	}
	switch {
	case update.ClearTeam:
		user.TeamID = nil
	case update.TeamID != nil:
		if _, err := s.teams.GetByID(ctx, *update.TeamID); err != nil {
			return nil, referenceError(err, "team", map[string]any{"team_id": *update.TeamID})
		}
		user.TeamID = copyOptional(update.TeamID)
	}
	if update.Active != nil {
		user.Active = *update.Active
	}
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user", map[string]any{"user_id": userID})
	}
	return user, nil
}

// UserExists implements IdentityProvider.
func (s *AuthService) UserExists(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, nil
	}
	_, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// UserDepartment implements IdentityProvider.
func (s *AuthService) UserDepartment(ctx context.Context, id string) (*string, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.DepartmentID, nil
}

// UserTeam implements IdentityProvider.
func (s *AuthService) UserTeam(ctx context.Context, id string) (*string, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.TeamID, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
