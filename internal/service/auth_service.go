package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gamesense/app/internal/auth"
	"gamesense/app/internal/domain"
	"gamesense/app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("invalid credentials or user does not exist")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrMissingCredentials   = errors.New("email and password are required")
)

const tokenIssuer = "gamesense"

// AuthService registers players and issues tokens.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	hasher        *auth.Hasher
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, hasher *auth.Hasher, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		hasher:        hasher,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// Register creates a Free account with a hashed password.
func (s *authService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Printf("ERROR: hashing password for %s: %v", email, err)
		return nil, ErrHashingFailed
	}

	account := domain.Account{
		PasswordHash: hash,
		Membership:   domain.MembershipFree,
		CreatedAt:    domain.Now(),
	}
	if err := s.userRepo.Create(ctx, email, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	user := &domain.User{Email: email, Account: account}
	user.PasswordHash = ""
	return user, nil
}

// Login runs the credential check and issues a token. Records that the check
// rewrote (migrated, upgraded or repaired) are saved before returning.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrMissingCredentials
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	outcome, err := s.hasher.Verify(password, &user.Account)
	if err != nil {
		log.Printf("ERROR: verifying credentials for %s: %v", email, err)
		return "", nil, ErrAuthenticationFailed
	}
	if !outcome.Accepted() {
		return "", nil, ErrAuthenticationFailed
	}
	if outcome.Changed() {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return "", nil, err
		}
		log.Printf("INFO: credential record for %s %s", email, outcome)
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// Claims is the JWT payload. The subject is the account email.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
