package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
	"github.com/noah-isme/dsbe-portal-api/internal/validation"
)

const (
	adminSubject      = "admin"
	minPasswordLength = 6
)

var (
	// ErrInvalidCredentials indicates the email and password pair was rejected.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAuthFieldsMissing indicates a registration field was left blank.
	ErrAuthFieldsMissing = errors.New("all fields are required")
	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrPasswordTooShort indicates the password is below the minimum length.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrEmailTaken indicates the email already belongs to an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound indicates the token subject no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// AuthConfig carries the credentials and signing settings for the auth service.
type AuthConfig struct {
	Secret        string
	TTL           time.Duration
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// AuthService authenticates the board administrator and registered students.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	Me(ctx context.Context, email, role string) (dto.UserResponse, error)
}

type authService struct {
	users  repository.UserRepository
	cfg    AuthConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, cfg AuthConfig, logger zerolog.Logger) AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if strings.TrimSpace(cfg.AdminName) == "" {
		cfg.AdminName = "Administrator"
	}
	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	return &authService{
		users:  users,
		cfg:    cfg,
		logger: logger.With().Str("component", "auth_service").Logger(),
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return dto.AuthResponse{}, ErrAuthFieldsMissing
	}
	if !validation.IsLooseEmail(email) {
		return dto.AuthResponse{}, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return dto.AuthResponse{}, ErrPasswordTooShort
	}
	if email == s.cfg.AdminEmail {
		return dto.AuthResponse{}, ErrEmailTaken
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Name: name, Email: email, PasswordHash: string(hash), Role: models.RoleStudent}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Str("email", maskEmail(email)).Msg("student account registered")
	return s.issue(toUserResponse(user))
}

func adminPasswordMatches(given, configured string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(configured)) == 1
}

// Login checks the configured administrator first, then registered accounts.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	if email == s.cfg.AdminEmail {
		if !adminPasswordMatches(req.Password, s.cfg.AdminPassword) {
			s.logger.Warn().Str("email", maskEmail(email)).Msg("admin login rejected")
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return s.issue(s.adminUser())
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(toUserResponse(user))
}

func (s *authService) Me(ctx context.Context, email, role string) (dto.UserResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if role == models.RoleAdmin && email == s.cfg.AdminEmail {
		return s.adminUser(), nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *authService) adminUser() dto.UserResponse {
	return dto.UserResponse{ID: adminSubject, Name: s.cfg.AdminName, Email: s.cfg.AdminEmail, Role: models.RoleAdmin}
}

func (s *authService) issue(user dto.UserResponse) (dto.AuthResponse, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.cfg.TTL)

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("sign token: %w", err)
	}

	return dto.AuthResponse{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiresAt, User: user}, nil
}

func toUserResponse(user models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    strconv.FormatUint(uint64(user.ID), 10),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
