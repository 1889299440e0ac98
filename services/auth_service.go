package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasklist/backend/models"
	"tasklist/backend/utils/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Use the JWTClaims from token package
type JWTClaims = token.JWTClaims

// TokenPair is what a successful login or registration hands back.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AuthServiceInterface interface {
	Register(ctx context.Context, input RegisterInput) (models.User, TokenPair, error)
	Login(ctx context.Context, username, password string) (models.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
}

type AuthService struct {
	users             UserStore
	jwtSecret         []byte
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
	bcryptCost        int
}

func NewAuthService(users UserStore, jwtSecret string, jwtExpirationHours, refreshExpirationHours int) *AuthService {
	return &AuthService{
		users:             users,
		jwtSecret:         []byte(jwtSecret),
		jwtExpiration:     time.Duration(jwtExpirationHours) * time.Hour,
		refreshExpiration: time.Duration(refreshExpirationHours) * time.Hour,
		bcryptCost:        bcrypt.DefaultCost,
	}
}

// Register creates an account and logs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, TokenPair, error) {
	if err := validateRegistration(&input); err != nil {
		return models.User{}, TokenPair{}, err
	}

	exists, err := s.users.UsernameExists(ctx, input.Username)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	if exists {
		return models.User{}, TokenPair{}, usernameTaken()
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return models.User{}, TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return models.User{}, TokenPair{}, usernameTaken()
		}
		return models.User{}, TokenPair{}, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	return user, tokens, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (models.User, TokenPair, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return models.User{}, TokenPair{}, err
	}

	if err := s.ComparePasswords(user.PasswordHash, password); err != nil {
		return models.User{}, TokenPair{}, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	return user, tokens, nil
}

// Refresh exchanges a refresh token for a new access token. The account must
// still exist.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := token.ValidateToken(refreshToken, s.jwtSecret, token.Refresh)
	if err != nil {
		return "", ErrInvalidToken
	}

	user, err := s.users.GetUserById(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	return token.GenerateToken(user.ID, user.Username, token.Access, s.jwtSecret, s.jwtExpiration)
}

// ValidateToken resolves an access token to its claims.
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims, err := token.ValidateToken(tokenString, s.jwtSecret, token.Access)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (s *AuthService) issueTokens(user models.User) (TokenPair, error) {
	access, err := token.GenerateToken(user.ID, user.Username, token.Access, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := token.GenerateToken(user.ID, user.Username, token.Refresh, s.jwtSecret, s.refreshExpiration)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func usernameTaken() error {
	verr := &ValidationError{}
	verr.Add("username", "A user with that username already exists.")
	return verr
}
