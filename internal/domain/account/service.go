// internal/domain/account/service.go
package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/berkelium/storefront/internal/config"
	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/berkelium/storefront/internal/pkg/auth"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrSessionExpired     = errors.New("session expired, please log in again")
)

const sessionKeyPrefix = "account:session:"

// Backend is the part of the commerce Store API that owns customers
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	RegisterIdentity(ctx context.Context, email, password string) (string, error)
	CreateCustomer(ctx context.Context, registrationToken string, input commerce.RegisterInput) (*commerce.Customer, error)
	RetrieveCustomer(ctx context.Context, token string) (*commerce.Customer, error)
	ListOrders(ctx context.Context, token string) ([]commerce.Order, error)
}

// SessionStore keeps account sessions
type SessionStore interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service handles customer accounts on top of the commerce backend
type Service struct {
	backend    Backend
	sessions   SessionStore
	jwtManager *auth.JWTManager
	ttl        time.Duration
	logger     *logrus.Logger
	now        func() time.Time
}

// NewService creates a new account service
func NewService(cfg *config.Config, backend Backend, sessions SessionStore, jwtManager *auth.JWTManager, logger *logrus.Logger) *Service {
	return &Service{
		backend:    backend,
		sessions:   sessions,
		jwtManager: jwtManager,
		ttl:        cfg.JWT.AccessTokenExpiry,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates the auth identity and the customer, then logs in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	email := normalizeEmail(req.Email)

	regToken, err := s.backend.RegisterIdentity(ctx, email, req.Password)
	if err != nil {
		if isExistingIdentity(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register identity: %w", err)
	}

	customer, err := s.backend.CreateCustomer(ctx, regToken, commerce.RegisterInput{
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	token, err := s.backend.Login(ctx, email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to log in new customer: %w", err)
	}

	s.logger.WithField("customer_id", customer.ID).Info("customer registered")
	return s.startSession(ctx, customer, token)
}

// Login authenticates against the commerce backend and opens a session
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	token, err := s.backend.Login(ctx, email, req.Password)
	if err != nil {
		var apiErr *commerce.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	customer, err := s.backend.RetrieveCustomer(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	return s.startSession(ctx, customer, token)
}

// Me returns the customer of the session
func (s *Service) Me(ctx context.Context, sessionID string) (*commerce.Customer, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	customer, err := s.backend.RetrieveCustomer(ctx, sess.RemoteToken)
	if err != nil {
		return nil, s.remoteFailure(ctx, sessionID, err)
	}
	return customer, nil
}

// Orders returns the order history of the session's customer
func (s *Service) Orders(ctx context.Context, sessionID string) ([]commerce.Order, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	orders, err := s.backend.ListOrders(ctx, sess.RemoteToken)
	if err != nil {
		return nil, s.remoteFailure(ctx, sessionID, err)
	}
	if orders == nil {
		orders = []commerce.Order{}
	}
	return orders, nil
}

// Logout forgets the session. Unknown sessions are not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Del(ctx, sessionKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Service) startSession(ctx context.Context, customer *commerce.Customer, remoteToken string) (*AuthResponse, error) {
	sess := Session{
		ID:          uuid.NewString(),
		CustomerID:  customer.ID,
		Email:       customer.Email,
		RemoteToken: remoteToken,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.sessions.SetJSON(ctx, sessionKeyPrefix+sess.ID, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(sess.ID, customer.ID, customer.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		Customer:    customer,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.ttl.Seconds()),
	}, nil
}

func (s *Service) session(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrSessionExpired
	}
	var sess Session
	if err := s.sessions.GetJSON(ctx, sessionKeyPrefix+sessionID, &sess); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &sess, nil
}

// remoteFailure drops the session when the backend no longer accepts its token
func (s *Service) remoteFailure(ctx context.Context, sessionID string, err error) error {
	var apiErr *commerce.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		if delErr := s.Logout(ctx, sessionID); delErr != nil {
			s.logger.WithError(delErr).Warn("failed to drop expired session")
		}
		return ErrSessionExpired
	}
	return err
}

func isExistingIdentity(err error) bool {
	var apiErr *commerce.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "already exists")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
