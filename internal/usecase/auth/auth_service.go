package auth

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/internal/domain/repositories"
	"github.com/johnquangdev/minutes360/pkg/jwt"
)

const minPasswordLength = 6

// IdentityProvider verifies and creates email/password accounts
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*entities.User, error)
	SignIn(ctx context.Context, email, password string) (*entities.User, error)
}

// EventType identifies an authentication state change
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// AuthEvent is delivered to subscribers on every sign-in and sign-out
type AuthEvent struct {
	Type EventType
	User *entities.User
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User        *entities.User `json:"user"`
	AccessToken string         `json:"access_token"`
	ExpiresIn   int64          `json:"expires_in"`
}

// AuthService handles email/password authentication and API sessions
type AuthService struct {
	provider   IdentityProvider
	tokenRepo  repositories.TokenRepository
	jwtManager *jwt.Manager
	logger     *zap.Logger

	mu          sync.RWMutex
	subscribers map[int]func(AuthEvent)
	nextID      int
}

// NewAuthService creates a new auth service
func NewAuthService(
	provider IdentityProvider,
	tokenRepo repositories.TokenRepository,
	jwtManager *jwt.Manager,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		provider:    provider,
		tokenRepo:   tokenRepo,
		jwtManager:  jwtManager,
		logger:      logger,
		subscribers: make(map[int]func(AuthEvent)),
	}
}

// SignUp creates an account and signs it in
func (s *AuthService) SignUp(ctx context.Context, email, password, displayName string) (*AuthResponse, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	user, err := s.provider.SignUp(ctx, email, password, strings.TrimSpace(displayName))
	if err != nil {
		s.logger.Warn("Sign-up failed", zap.Error(err))
		return nil, err
	}
	return s.issue(user)
}

// SignIn verifies credentials and starts an API session
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Info("Sign-in failed", zap.Error(err))
		return nil, err
	}
	return s.issue(user)
}

// SignOut revokes the session token for the rest of its lifetime
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return errors.ErrInvalidToken()
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.tokenRepo.Revoke(ctx, claims.ID, ttl); err != nil {
		return errors.ErrInternal(err)
	}

	user := entities.NewUser(claims.UserID, claims.Email, claims.DisplayName)
	s.logger.Info("User signed out", zap.String("user_id", user.ID))
	s.publish(AuthEvent{Type: EventSignedOut, User: user})
	return nil
}

// ValidateSession validates a session token and returns its user
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, errors.ErrInvalidToken()
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	if revoked {
		return nil, errors.ErrInvalidToken()
	}

	return entities.NewUser(claims.UserID, claims.Email, claims.DisplayName), nil
}

// Subscribe registers fn for auth state changes and returns a function that unregisters it
func (s *AuthService) Subscribe(fn func(AuthEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *AuthService) issue(user *entities.User) (*AuthResponse, error) {
	accessToken, _, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.DisplayName)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}

	s.logger.Info("User signed in", zap.String("user_id", user.ID))
	s.publish(AuthEvent{Type: EventSignedIn, User: user})

	return &AuthResponse{
		User:        user,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtManager.GetAccessExpiry().Seconds()),
	}, nil
}

func (s *AuthService) publish(event AuthEvent) {
	s.mu.RLock()
	handlers := make([]func(AuthEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		handlers = append(handlers, fn)
	}
	s.mu.RUnlock()

	for _, fn := range handlers {
		fn(event)
	}
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return errors.ErrValidation(entities.ErrInvalidEmail.Error())
	}
	if len(password) < minPasswordLength {
		return errors.ErrValidation(entities.ErrInvalidPassword.Error())
	}
	return nil
}
