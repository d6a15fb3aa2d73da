// ABOUTME: Account registration, login, and refresh token rotation
// ABOUTME: Access tokens are short-lived JWTs; refresh tokens live in the store and rotate on use

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Bonte-Project/bonte-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned for a bad email/password pair. The
	// two cases are deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRole is returned when registering with a role other than
	// user or trainer.
	ErrInvalidRole = errors.New("invalid role")
)

// TokenPair is what a successful login or refresh hands to the client.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Service implements account lifecycle on top of the store and JWT signer.
type Service struct {
	store      store.Store
	verifier   *JWTVerifier
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
}

// NewService creates an auth service.
func NewService(st store.Store, verifier *JWTVerifier, accessTTL, refreshTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      st,
		verifier:   verifier,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger.With("component", "auth"),
	}
}

// Register creates an account and returns it with a fresh token pair.
// Trainer registrations also get an empty coaching profile. Returns
// store.ErrDuplicateUser when the email is taken.
func (s *Service) Register(ctx context.Context, email, password, fullName, role string) (*store.User, *TokenPair, error) {
	if role != store.RoleUser && role != store.RoleTrainer {
		return nil, nil, ErrInvalidRole
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &store.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	if role == store.RoleTrainer {
		tr := &store.Trainer{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			IsActive:  true,
			CreatedAt: time.Now(),
		}
		if err := s.store.CreateTrainer(ctx, tr); err != nil {
			return nil, nil, fmt.Errorf("creating trainer profile: %w", err)
		}
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, pair, nil
}

// Login verifies credentials and returns the account with a fresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, *TokenPair, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrWrongPassword) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token is consumed even when expired, so a stolen stale token is useless.
// Returns ErrExpiredToken for an expired token and ErrInvalidToken for an
// unknown one.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.store.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := s.store.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("consuming refresh token: %w", err)
	}

	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrExpiredToken
	}

	user, err := s.store.GetUser(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("looking up token owner: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes a refresh token. Revoking an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	err := s.store.DeleteRefreshToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user *store.User) (*TokenPair, error) {
	access, err := s.verifier.Generate(user.ID, user.Role, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	now := time.Now()
	refresh := &store.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.store.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("saving refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresAt:    now.Add(s.accessTTL),
	}, nil
}
