package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"travelog/internal/domain"
	"travelog/internal/repository"
)

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User        domain.PublicUser
	AccessToken string
}

// AuthService describes account lifecycle and session token operations.
type AuthService interface {
	Register(ctx context.Context, fullName, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ValidateToken(token string) (string, error)
	GetProfile(ctx context.Context, userID string) (domain.PublicUser, error)
}

// AuthConfig tunes hashing and token issuance.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	// Now overrides the clock used for token timestamps.
	Now func() time.Time
}

type authService struct {
	users  repository.UserRepository
	tokens *TokenIssuer
	cost   int
}

func NewAuthService(users repository.UserRepository, cfg AuthConfig) AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &authService{
		users:  users,
		tokens: NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, cfg.Now),
		cost:   cost,
	}
}

func (s *authService) Register(ctx context.Context, fullName, email, password string) (*AuthResult, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" || password == "" {
		return nil, domain.ValidationError("All fields are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ConflictError("User already exists", domain.ErrDuplicateEmail)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent registration won the unique constraint
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ConflictError("User already exists", err)
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundError("User not found", err)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.UnauthorizedError("Invalid password")
	}

	return s.issue(user)
}

func (s *authService) ValidateToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.UnauthorizedError("Access token required")
	}
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return "", domain.ForbiddenError("Invalid token", err)
	}
	return userID, nil
}

func (s *authService) GetProfile(ctx context.Context, userID string) (domain.PublicUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PublicUser{}, domain.NotFoundError("User not found", err)
		}
		return domain.PublicUser{}, fmt.Errorf("get user: %w", err)
	}
	return user.Public(), nil
}

func (s *authService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.Public(), AccessToken: token}, nil
}
