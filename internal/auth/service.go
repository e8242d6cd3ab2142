// Package auth owns user identity, session tokens and the role predicate.
// Every expense mutation is authorized against the acting user resolved here;
// there is no ambient "current user" state anywhere in the process.
package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"expenseflow/internal/models"
	"expenseflow/pkg/utils"
)

// UserStore is the persistence surface the auth service needs
type UserStore interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

// Service authenticates users and answers authorization queries
type Service struct {
	users      UserStore
	tokens     *TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewService creates a new auth service
func NewService(users UserStore, tokens *TokenManager, bcryptCost int, logger *zap.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// RegisterInput is the candidate account for Register
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       models.Role
	Department string
}

// Authenticate verifies the email/password pair and issues a session token.
// The same ErrInvalidCredentials covers both unknown email and wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User authenticated",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role.String()))

	return user, token, nil
}

// EndSession revokes the session token. Idempotent: unknown or already
// revoked tokens are ignored.
func (s *Service) EndSession(ctx context.Context, token string) {
	_, tokenID, err := s.tokens.Verify(token)
	if err != nil {
		return
	}
	s.tokens.Revoke(tokenID)
}

// UserFromToken resolves the acting user behind a session token
func (s *Service) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	userID, _, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Token outlived the account
		return nil, ErrInvalidSession
	}

	return user, nil
}

// HasAnyRole reports whether the actor holds one of the given roles.
// A nil actor (no active session) never does.
func (s *Service) HasAnyRole(actor *models.User, roles ...models.Role) bool {
	return actor.HasAnyRole(roles...)
}

// Register creates a new account. The email must not already be registered;
// the comparison is exact, "Alice@x.com" and "alice@x.com" are distinct.
// Registration does not authenticate the new user.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := s.validateRegistration(input); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateIdentity, input.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = models.RoleEmployee
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         utils.SanitizeString(strings.TrimSpace(input.Name)),
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		Department:   utils.SanitizeString(strings.TrimSpace(input.Department)),
		AvatarURL:    defaultAvatarURL(input.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role.String()))

	return user, nil
}

func (s *Service) validateRegistration(input RegisterInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if err := utils.ValidateEmail(input.Email); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if len(input.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidationFailed)
	}
	if input.Role != "" && !input.Role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidationFailed, input.Role)
	}
	return nil
}

func defaultAvatarURL(name string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/initials/svg?seed=%s", url.QueryEscape(name))
}
