package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stylesync/internal/metrics"
	"stylesync/internal/models"
	"stylesync/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is the bcrypt work factor for stored passwords.
const passwordHashCost = 10

// maxPasswordBytes is bcrypt's input limit. It counts bytes, not runes.
const maxPasswordBytes = 72

// DefaultRole is assigned when registration does not name one.
const DefaultRole = "user"

// dummyHash is compared against when the email is unknown so that both
// login failure paths take the same time.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("stylesync-timing-equalizer"), passwordHashCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy bcrypt hash: %v", err))
	}
	return h
})

// TokenClaims are the claims carried by an access token.
type TokenClaims struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService issuing tokens valid for tokenTTL.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// RegisterUser hashes the password and stores a new user. A taken email is
// reported by the repository and returned as ErrConflict; a password bcrypt
// cannot hash is ErrBadRequest.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	if len(in.Password) > maxPasswordBytes {
		metrics.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		return nil, fmt.Errorf("password is longer than %d bytes: %w", maxPasswordBytes, ErrBadRequest)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = DefaultRole
	}
	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
			return nil, fmt.Errorf("email %s: %w", in.Email, ErrConflict)
		}
		metrics.AuthAttempts.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	return user, nil
}

// LoginUser authenticates a user and returns a signed JWT on success.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("login", "error").Inc()
			return "", fmt.Errorf("failed to look up user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return "", ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return "", ErrUnauthorized
	}

	token, err := s.issueToken(user)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "error").Inc()
		return "", err
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	slog.DebugContext(ctx, "user logged in", "user_id", user.ID)
	return token, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Email:  user.Email,
		Role:   user.Role,
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT, returning its claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w: %w", ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", ErrUnauthorized)
	}
	return claims, nil
}
