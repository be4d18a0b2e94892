package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/creditos-api/internal/config"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/sjperalta/creditos-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Authenticator verifies operator credentials. Handlers depend on this
// interface so another provider can replace the local users table.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

var _ Authenticator = (*AuthService)(nil)

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      models.UserResponse `json:"user"`
}

// Authenticate checks a username and password against the users table
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, ErrInactiveAccount
	}

	if !VerifyPassword(password, user.EncryptedPassword) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates an operator and returns a signed session token
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(time.Duration(s.cfg.SessionHours) * time.Hour)
	token, err := s.generateJWT(user, expiresAt)
	if err != nil {
		return nil, errors.New("error al generar token")
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToResponse(),
	}, nil
}

// EnsureOperator seeds the configured operator when no user exists yet
func (s *AuthService) EnsureOperator(ctx context.Context) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(s.cfg.AppPass)
	if err != nil {
		return err
	}
	user := &models.User{
		Username:          s.cfg.AppUser,
		EncryptedPassword: hash,
		Status:            models.StatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	logger.Info("Seeded operator account", "username", user.Username)
	return nil
}

// generateJWT creates the session token for a user
func (s *AuthService) generateJWT(user *models.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      expiresAt.Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.AppSecret))
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword compares a password with a hash
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
