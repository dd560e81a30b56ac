package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/earth-fighter-api/internal/authz"
	"github.com/yukikurage/earth-fighter-api/internal/constants"
	"github.com/yukikurage/earth-fighter-api/internal/metrics"
	"github.com/yukikurage/earth-fighter-api/internal/models"
	"github.com/yukikurage/earth-fighter-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameRequired   = authz.BadRequest("username is required")
	ErrUsernameTooLong    = authz.BadRequest("username is too long")
	ErrUsernameTaken      = authz.Conflict("username already exists")
	ErrPasswordTooShort   = authz.BadRequest("password too short")
	ErrUserNotFound       = authz.NotFound("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	metrics  *metrics.Metrics
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, m *metrics.Metrics) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		metrics:  m,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Password string
}

// Signup creates a new user. No organization is created on the user's behalf.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr("check username", err)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, ErrUsernameTaken
		}
		return nil, storeErr("create user", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordLogin(false)
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.metrics.RecordLogin(false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLogin(true)
	return user, nil
}

// GetUser retrieves a live user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}

	return user, nil
}

func normalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username == "" {
		return "", ErrUsernameRequired
	}
	if utf8.RuneCountInString(username) > constants.MaxUsernameLength {
		return "", ErrUsernameTooLong
	}
	return username, nil
}

func checkPassword(password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", storeErr("hash password", err)
	}
	return string(hashed), nil
}
