package services

import (
	"errors"
	"fmt"
	"time"

	"tasknotes/backend/database"
	"tasknotes/backend/models"
	"tasknotes/backend/utils/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceInterface interface {
	Register(db *database.Database, input RegisterInput) (models.User, string, error)
	Login(db *database.Database, input LoginInput) (models.User, string, error)
	GenerateToken(userID uuid.UUID) (string, error)
	ValidateToken(tokenString string) (uuid.UUID, error)
	GetCurrentUser(db *database.Database, userID uuid.UUID) (models.User, error)
	HashPassword(password string) (string, error)
	ComparePasswords(hashedPassword, password string) error
}

type AuthConfig struct {
	Secret        string
	SigningMethod string
	Expiration    time.Duration
	BcryptCost    int
}

type AuthService struct {
	users         UserServiceInterface
	jwtSecret     []byte
	signingMethod *jwt.SigningMethodHMAC
	jwtExpiration time.Duration
	bcryptCost    int
}

func NewAuthService(cfg AuthConfig, users UserServiceInterface) (*AuthService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}
	method, err := token.SigningMethod(cfg.SigningMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingSigningKey, err)
	}
	if cfg.Expiration <= 0 {
		return nil, fmt.Errorf("token expiration must be positive, got %s", cfg.Expiration)
	}

	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &AuthService{
		users:         users,
		jwtSecret:     []byte(cfg.Secret),
		signingMethod: method,
		jwtExpiration: cfg.Expiration,
		bcryptCost:    cost,
	}, nil
}

func (s *AuthService) Register(db *database.Database, input RegisterInput) (models.User, string, error) {
	if err := validateStruct(input); err != nil {
		return models.User{}, "", err
	}

	_, err := s.users.GetUserByEmail(db, input.Email)
	switch {
	case err == nil:
		return models.User{}, "", ErrUserExists
	case !errors.Is(err, ErrUserNotFound):
		return models.User{}, "", err
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return models.User{}, "", err
	}

	name := input.Name
	if name != nil && *name == "" {
		name = nil
	}

	user, err := s.users.CreateUser(db, models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         name,
	})
	if err != nil {
		return models.User{}, "", err
	}

	tokenString, err := s.GenerateToken(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, tokenString, nil
}

func (s *AuthService) Login(db *database.Database, input LoginInput) (models.User, string, error) {
	if err := validateStruct(input); err != nil {
		return models.User{}, "", err
	}

	user, err := s.users.GetUserByEmail(db, input.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, "", ErrInvalidCredentials
		}
		return models.User{}, "", err
	}

	if err := s.ComparePasswords(user.PasswordHash, input.Password); err != nil {
		return models.User{}, "", ErrInvalidCredentials
	}

	tokenString, err := s.GenerateToken(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, tokenString, nil
}

func (s *AuthService) GenerateToken(userID uuid.UUID) (string, error) {
	return token.GenerateToken(userID, s.signingMethod, s.jwtSecret, s.jwtExpiration)
}

func (s *AuthService) ValidateToken(tokenString string) (uuid.UUID, error) {
	userID, err := token.ValidateToken(tokenString, s.signingMethod, s.jwtSecret)
	switch {
	case errors.Is(err, token.ErrExpiredToken):
		return uuid.Nil, ErrExpiredToken
	case err != nil:
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (s *AuthService) GetCurrentUser(db *database.Database, userID uuid.UUID) (models.User, error) {
	return s.users.GetUserById(db, userID)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", newValidationError("password", "must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePasswords runs in constant time with respect to the password.
func (s *AuthService) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
