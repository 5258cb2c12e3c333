package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aujren/auth-service/internal/auth"
	"github.com/aujren/auth-service/internal/domain"
	"github.com/aujren/auth-service/internal/event"
	"github.com/aujren/auth-service/internal/repository"
	"github.com/aujren/auth-service/internal/token"
	apperrors "github.com/aujren/auth-service/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// Password length bounds.
const (
	minPasswordLength = 10
	maxPasswordLength = 256
)

// AccountService implements the business logic for account and session
// operations.
type AccountService struct {
	userRepo repository.UserRepository
	tokens   *token.Manager
	signer   *auth.Signer
	producer *event.Producer
	logger   *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	userRepo repository.UserRepository,
	tokens *token.Manager,
	signer *auth.Signer,
	producer *event.Producer,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		tokens:   tokens,
		signer:   signer,
		producer: producer,
		logger:   logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	GivenName  string
	FamilyName string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Username string
	Password string
}

// UpdateInput holds the parameters for updating a user. Nil fields are left
// unchanged.
type UpdateInput struct {
	Username   *string
	Email      *string
	Password   *string
	GivenName  *string
	FamilyName *string
}

// Session holds the credentials produced by a successful login or refresh.
type Session struct {
	User         *domain.User
	AccessToken  string
	RefreshToken *domain.RefreshToken
}

// Register creates a new user account with a bcrypt-hashed password.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		GivenName:    input.GivenName,
		FamilyName:   input.FamilyName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login authenticates a user with username and password. On success it signs
// an access token and issues a fresh refresh token bound to the caller's IP.
// Unknown usernames and wrong passwords produce the same error so the
// response does not reveal which one failed.
func (s *AccountService) Login(ctx context.Context, input LoginInput, ip string) (*Session, error) {
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if input.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	session, err := s.newSession(ctx, user, ip)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return session, nil
}

// Refresh rotates the presented refresh token and signs a new access token.
// The presented token must be active; a replayed or revoked token is
// rejected.
func (s *AccountService) Refresh(ctx context.Context, refreshToken, ip string) (*Session, error) {
	newToken, err := s.tokens.Rotate(ctx, refreshToken, ip)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, newToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user for token refresh: %w", err)
	}

	accessToken, err := s.signer.Sign(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.InfoContext(ctx, "session refreshed",
		slog.String("user_id", user.ID),
	)

	return &Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newToken,
	}, nil
}

// Logout revokes the presented refresh token. Revoking an already revoked
// token succeeds quietly.
func (s *AccountService) Logout(ctx context.Context, refreshToken, ip string) error {
	if err := s.tokens.Revoke(ctx, refreshToken, ip); err != nil {
		return err
	}

	return nil
}

// GetUser retrieves a user by ID.
func (s *AccountService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies the given changes to a user. Changing the password revokes
// every outstanding refresh token so stolen sessions die with the old
// credential.
func (s *AccountService) Update(ctx context.Context, id string, input UpdateInput, ip string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.GivenName != nil {
		user.GivenName = *input.GivenName
	}
	if input.FamilyName != nil {
		user.FamilyName = *input.FamilyName
	}

	passwordChanged := false
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
		passwordChanged = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if passwordChanged {
		if err := s.tokens.RevokeAllForUser(ctx, user.ID, ip); err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke refresh tokens after password change",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		if err := s.producer.PublishTokenRevoked(ctx, user.ID, "password_changed"); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish token.revoked event",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.producer.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// DeleteUser removes a user account and all of its refresh tokens.
func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	if err := s.tokens.DeleteForUser(ctx, id); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.producer.PublishUserDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.deleted event",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id),
	)

	return nil
}

// newSession signs an access token and issues a refresh token for the user.
func (s *AccountService) newSession(ctx context.Context, user *domain.User, ip string) (*Session, error) {
	accessToken, err := s.signer.Sign(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.tokens.Issue(ctx, user.ID, ip)
	if err != nil {
		return nil, err
	}

	return &Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// validatePassword enforces the password length bounds.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at most %d characters", maxPasswordLength))
	}
	return nil
}
