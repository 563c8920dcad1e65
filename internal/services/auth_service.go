package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskflow-dev/taskflow-api/internal/activity"
	"github.com/taskflow-dev/taskflow-api/internal/constants"
	"github.com/taskflow-dev/taskflow-api/internal/models"
	"github.com/taskflow-dev/taskflow-api/internal/ratelimit"
	"github.com/taskflow-dev/taskflow-api/internal/repository"
)

var (
	ErrEmailRequired        = errors.New("email is required")
	ErrEmailTaken           = errors.New("email already registered")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrTooManyAttempts      = errors.New("too many failed login attempts")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// RequestMeta carries client attributes captured at the HTTP boundary and
// forwarded into the audit trail.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	limiter  ratelimit.AttemptLimiter
	recorder activity.Sink
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, limiter ratelimit.AttemptLimiter, recorder activity.Sink) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		limiter:  limiter,
		recorder: recorder,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email    string
	Password string
	Name     string
	Meta     RequestMeta
}

// Signup creates a new user account.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), constants.BcryptCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(input.Name),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.UserActivity(activity.UserActivityEntry{
		UserID: user.ID,
		Action: models.ActionSignup,
		Metadata: models.Metadata{
			"email": user.Email,
			"name":  user.Name,
		},
		IPAddress: input.Meta.ClientIP,
		UserAgent: input.Meta.UserAgent,
	})

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
	Meta     RequestMeta
}

// Login verifies credentials and returns the authenticated user. It fails
// closed on unknown or soft-deleted accounts, an unset password hash, or a
// bcrypt mismatch, and consults the attempt limiter before touching storage.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)

	if !s.limiter.Allow(ctx, input.Meta.ClientIP, email) {
		return nil, ErrTooManyAttempts
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.limiter.Fail(ctx, input.Meta.ClientIP, email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.PasswordHash == "" {
		s.limiter.Fail(ctx, input.Meta.ClientIP, email)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.limiter.Fail(ctx, input.Meta.ClientIP, email)
		return nil, ErrInvalidCredentials
	}

	s.limiter.Reset(ctx, input.Meta.ClientIP, email)

	s.recorder.UserActivity(activity.UserActivityEntry{
		UserID:    user.ID,
		Action:    models.ActionLogin,
		Metadata:  models.Metadata{"email": user.Email},
		IPAddress: input.Meta.ClientIP,
		UserAgent: input.Meta.UserAgent,
	})

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// NormalizeEmail lowercases and trims an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
