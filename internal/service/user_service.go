package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/mapper"
	"github.com/geocon-eng/pipeline-api/internal/repository"
)

var ErrEmailDomainNotAllowed = errors.New("email domain is not allowed")

// UserService handles login and user administration
type UserService struct {
	userRepo  *repository.UserRepository
	jwt       *auth.JWTValidator
	authCfg   *config.AuthConfig
	directory *config.DirectoryConfig
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo *repository.UserRepository,
	jwt *auth.JWTValidator,
	authCfg *config.AuthConfig,
	directory *config.DirectoryConfig,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwt:       jwt,
		authCfg:   authCfg,
		directory: directory,
		logger:    logger,
	}
}

// Login provisions the user on first sign-in and returns a signed token.
// Roles assigned by an admin are preserved across logins; newly provisioned
// users get a role derived from the staff directory.
func (s *UserService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	displayName := strings.TrimSpace(req.DisplayName)

	if s.authCfg.AllowedEmailDomain != "" &&
		!strings.HasSuffix(email, "@"+strings.ToLower(s.authCfg.AllowedEmailDomain)) {
		return nil, ErrEmailDomainNotAllowed
	}

	now := time.Now()
	user := &domain.User{
		Email:       email,
		DisplayName: displayName,
		Role:        s.deriveRole(email, displayName),
		TeamNumber:  s.directory.TeamNumberFor(displayName),
		IsActive:    true,
		LastLoginAt: &now,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	stored, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user after login: %w", err)
	}

	token, err := s.jwt.IssueToken(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("email", stored.Email),
		zap.String("role", string(stored.Role)))

	return &domain.LoginResponse{
		Token: token,
		User:  mapper.ToUserDTO(stored),
	}, nil
}

// GetCurrent returns the profile of the authenticated user
func (s *UserService) GetCurrent(ctx context.Context) (*domain.UserDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	user, err := s.userRepo.GetByEmail(ctx, userCtx.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// List returns all users, admin only
func (s *UserService) List(ctx context.Context) ([]domain.UserDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}
	if userCtx.Role != domain.RoleAdmin {
		return nil, ErrPermissionDenied
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	return dtos, nil
}

// UpdateRole changes a user's role, admin only
func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, req *domain.UpdateUserRoleRequest) (*domain.UserDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}
	if userCtx.Role != domain.RoleAdmin {
		return nil, ErrPermissionDenied
	}
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role %q", ErrInvalidInput, req.Role)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = req.Role
	if req.TeamNumber != nil {
		user.TeamNumber = *req.TeamNumber
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user role updated",
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
		zap.String("updatedBy", userCtx.Email))

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// deriveRole maps a new user onto a role from the staff directory.
// PMs on the picklist become project managers, analytics allowlist
// members get the analytics role, everyone else is standard.
func (s *UserService) deriveRole(email, displayName string) domain.UserRole {
	for _, pm := range s.directory.ProjectManagers {
		if strings.EqualFold(pm, displayName) {
			return domain.RoleProjectManager
		}
	}
	for _, a := range s.directory.AnalyticsUsers {
		if strings.EqualFold(a, email) || strings.EqualFold(a, displayName) {
			return domain.RoleAnalytics
		}
	}
	return domain.RoleStandard
}
