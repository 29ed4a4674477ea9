// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoCart           = errors.New("no cart")
	ErrInvalidToken     = errors.New("cart token is invalid")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrVariantRequired  = errors.New("variant_id is required")
	ErrLineItemRequired = errors.New("line item id is required")
)

// Backend is the part of the commerce Store API the cart needs
type Backend interface {
	CreateCart(ctx context.Context) (*commerce.Cart, error)
	RetrieveCart(ctx context.Context, cartID, fields string) (*commerce.Cart, error)
	AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*commerce.Cart, error)
	UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*commerce.Cart, error)
	DeleteLineItem(ctx context.Context, cartID, lineItemID string) error
}

// Service handles cart business logic
type Service struct {
	backend Backend
	logger  *logrus.Logger
}

// NewService creates a new cart service
func NewService(backend Backend, logger *logrus.Logger) *Service {
	return &Service{
		backend: backend,
		logger:  logger,
	}
}

// Refresh re-reads the whole cart for token. An empty token yields no cart
// and no error. A token the backend cannot resolve yields ErrInvalidToken,
// and the caller must forget it.
func (s *Service) Refresh(ctx context.Context, token Token) (*commerce.Cart, error) {
	if token.IsZero() {
		return nil, nil
	}

	c, err := s.backend.RetrieveCart(ctx, token.String(), commerce.CartItemFields)
	if err != nil {
		s.logger.WithError(err).WithField("cart_id", token).Warn("cart refresh failed, discarding token")
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return c, nil
}

// GetOrCreate returns token, creating a remote cart when the client has none
func (s *Service) GetOrCreate(ctx context.Context, token Token) (Token, error) {
	if !token.IsZero() {
		return token, nil
	}

	c, err := s.backend.CreateCart(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create cart: %w", err)
	}
	if c == nil || c.ID == "" {
		return "", errors.New("failed to create cart: empty cart id")
	}

	s.logger.WithField("cart_id", c.ID).Info("cart created")
	return Token(c.ID), nil
}

// AddItem adds quantity units of variantID, creating the cart lazily.
// A zero quantity means one. The returned token may be new.
func (s *Service) AddItem(ctx context.Context, token Token, variantID string, quantity int) (Token, *commerce.Cart, error) {
	if variantID == "" {
		return token, nil, ErrVariantRequired
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return token, nil, ErrInvalidQuantity
	}

	token, err := s.GetOrCreate(ctx, token)
	if err != nil {
		return "", nil, err
	}

	if _, err := s.backend.AddLineItem(ctx, token.String(), variantID, quantity); err != nil {
		return token, nil, err
	}

	c, err := s.Refresh(ctx, token)
	return token, c, err
}

// UpdateItem sets the quantity of a line item. Zero removes it.
func (s *Service) UpdateItem(ctx context.Context, token Token, lineItemID string, quantity int) (*commerce.Cart, error) {
	if token.IsZero() {
		return nil, ErrNoCart
	}
	if lineItemID == "" {
		return nil, ErrLineItemRequired
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, token, lineItemID)
	}

	if _, err := s.backend.UpdateLineItem(ctx, token.String(), lineItemID, quantity); err != nil {
		return nil, err
	}
	return s.Refresh(ctx, token)
}

// RemoveItem deletes a line item
func (s *Service) RemoveItem(ctx context.Context, token Token, lineItemID string) (*commerce.Cart, error) {
	if token.IsZero() {
		return nil, ErrNoCart
	}
	if lineItemID == "" {
		return nil, ErrLineItemRequired
	}

	if err := s.backend.DeleteLineItem(ctx, token.String(), lineItemID); err != nil {
		return nil, err
	}
	return s.Refresh(ctx, token)
}
