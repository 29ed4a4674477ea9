// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/sirupsen/logrus"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrAccessDenied  = errors.New("access denied")
)

// Backend is the part of the commerce Store API that serves orders
type Backend interface {
	RetrieveOrder(ctx context.Context, orderID string) (*commerce.Order, error)
}

// Service handles order lookups for the confirmation page and receipts
type Service struct {
	backend Backend
	logger  *logrus.Logger
}

// NewService creates a new order service
func NewService(backend Backend, logger *logrus.Logger) *Service {
	return &Service{
		backend: backend,
		logger:  logger,
	}
}

// GetOrder retrieves an order by id
func (s *Service) GetOrder(ctx context.Context, orderID string) (*commerce.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrOrderNotFound
	}

	o, err := s.backend.RetrieveOrder(ctx, orderID)
	if err != nil {
		if commerce.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		s.logger.WithError(err).WithField("order_id", orderID).Error("failed to retrieve order")
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return o, nil
}

// GetReceipt returns the display form of an order. When email is set the
// order must belong to it.
func (s *Service) GetReceipt(ctx context.Context, orderID, email string) (*Receipt, error) {
	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if email != "" && !strings.EqualFold(o.Email, email) {
		return nil, ErrAccessDenied
	}
	return NewReceipt(o), nil
}
