package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mybglist/mybglist-server/internal/auth"
	"github.com/mybglist/mybglist-server/internal/domain"
	domainerrors "github.com/mybglist/mybglist-server/internal/errors"
	"github.com/mybglist/mybglist-server/internal/id"
	"github.com/mybglist/mybglist-server/internal/store"
	"github.com/mybglist/mybglist-server/internal/validation"
)

// AccountService registers users and issues access tokens.
type AccountService struct {
	users     store.UserStore
	hasher    *auth.PasswordHasher
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewAccountService creates a new account service.
func NewAccountService(
	users store.UserStore,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	v *validation.Validator,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		validator: v,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRequest contains the new account's credentials.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Register creates an account without roles. Roles are granted by an
// administrator or through the bootstrap account.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	user, err := s.create(ctx, req.Email, req.Password, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords fail the same way.
func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, storageError(err)
	}
	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	user.LastLoginAt = s.now()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		// Log but don't fail login
		s.logger.Warn("failed to update last login time", "user_id", user.ID, "error", err)
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// EnsureAdmin makes sure an account with email exists and holds the
// Administrator role. An existing account keeps its password.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := s.validator.Validate(RegisterRequest{Email: email, Password: password}); err != nil {
			return fmt.Errorf("bootstrap administrator: %w", err)
		}
		user, err = s.create(ctx, email, password, []domain.Role{domain.RoleAdministrator, domain.RoleModerator})
		if err != nil {
			return err
		}
		s.logger.Info("administrator created", "user_id", user.ID)
		return nil
	case err != nil:
		return storageError(err)
	}

	if slices.Contains(user.Roles, domain.RoleAdministrator) {
		return nil
	}
	user.Roles = append(user.Roles, domain.RoleAdministrator)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return storageError(err)
	}
	s.logger.Info("administrator role granted", "user_id", user.ID)
	return nil
}

func (s *AccountService) create(ctx context.Context, email, password string, roles []domain.Role) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, storageError(err)
	}
	return user, nil
}
