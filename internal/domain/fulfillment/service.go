// internal/domain/fulfillment/service.go
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/berkelium/storefront/internal/infrastructure/events"
	"github.com/berkelium/storefront/internal/pkg/metrics"
	"github.com/sirupsen/logrus"
)

var ErrFulfillmentIDRequired = errors.New("fulfillment id is required")

// CreateRequest is what the order-management system sends to ship an order
type CreateRequest struct {
	Data        Data                `json:"data"`
	Items       []commerce.LineItem `json:"items"`
	Order       Order               `json:"order"`
	Fulfillment Fulfillment         `json:"fulfillment"`
}

// Service exposes a provider to the order-management system and keeps a
// record of every fulfillment it created.
type Service struct {
	provider  Provider
	repo      Repository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	now       func() time.Time
}

// NewService creates a new fulfillment service
func NewService(provider Provider, repo Repository, publisher events.Publisher, m *metrics.Metrics, logger *logrus.Logger) *Service {
	return &Service{
		provider:  provider,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) ListOptions(ctx context.Context) ([]Option, error) {
	return s.provider.ListOptions(ctx)
}

func (s *Service) Validate(ctx context.Context, optionData, data Data) (Data, error) {
	return s.provider.Validate(ctx, optionData, data)
}

func (s *Service) ValidateOption(ctx context.Context, data Data) (bool, error) {
	return s.provider.ValidateOption(ctx, data)
}

func (s *Service) CanCalculate() bool {
	return s.provider.SupportsDynamicPricing()
}

func (s *Service) CalculatePrice(ctx context.Context, optionData, data Data) (int64, error) {
	if !s.provider.SupportsDynamicPricing() {
		return 0, ErrUnsupportedOperation
	}
	return s.provider.CalculatePrice(ctx, optionData, data)
}

// Create hands the order to the provider and records the outcome. A record
// that fails to persist is logged; the provider result still stands. Without
// a fulfillment id there is nothing to key a record on, so the order is
// submitted but neither recorded nor published.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Result, error) {
	result, err := s.provider.CreateFulfillment(ctx, req.Data, req.Items, req.Order, req.Fulfillment)
	if err != nil {
		s.metrics.FulfillmentEvent("create", "error")
		s.logger.WithError(err).WithFields(logrus.Fields{
			"fulfillment_id": req.Fulfillment.ID,
			"order_id":       req.Order.ID,
		}).Error("fulfillment creation failed")
		return nil, err
	}

	externalID := ExternalOrderID(result.Data)
	status, _ := result.Data[statusKey].(string)
	mock := IsMockOrderID(externalID)
	outcome := "ok"
	if mock {
		outcome = "mock"
	}

	if req.Fulfillment.ID == "" {
		s.logger.WithFields(logrus.Fields{
			"order_id":          req.Order.ID,
			"external_order_id": externalID,
		}).Warn("fulfillment created without an id, not recorded")
		s.metrics.FulfillmentEvent("create", outcome)
		return result, nil
	}

	record := &Record{
		FulfillmentID:   req.Fulfillment.ID,
		OrderID:         req.Order.ID,
		Provider:        s.provider.Identifier(),
		ExternalOrderID: externalID,
		ExternalStatus:  status,
		Mock:            mock,
		ItemCount:       len(req.Items),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.WithError(err).WithField("fulfillment_id", req.Fulfillment.ID).Error("failed to record fulfillment")
	}

	s.publish(ctx, events.FulfillmentCreated, record)

	s.metrics.FulfillmentEvent("create", outcome)
	return result, nil
}

// Cancel cancels a fulfillment. When the caller sends no provider data the
// stored external order id is used.
func (s *Service) Cancel(ctx context.Context, f Fulfillment) (Data, error) {
	if f.ID == "" {
		return nil, ErrFulfillmentIDRequired
	}

	record, err := s.repo.FindByFulfillmentID(ctx, f.ID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		s.logger.WithError(err).WithField("fulfillment_id", f.ID).Warn("failed to load fulfillment record")
	}

	if ExternalOrderID(f.Data) == "" && record != nil && record.ExternalOrderID != "" {
		if f.Data == nil {
			f.Data = Data{}
		}
		f.Data[orderIDKey] = record.ExternalOrderID
	}

	data, err := s.provider.CancelFulfillment(ctx, f)
	if err != nil {
		s.metrics.FulfillmentEvent("cancel", "error")
		return nil, err
	}

	if record != nil {
		if err := s.repo.MarkCancelled(ctx, f.ID, s.now().UTC()); err != nil {
			s.logger.WithError(err).WithField("fulfillment_id", f.ID).Warn("failed to mark fulfillment cancelled")
		}
		s.publish(ctx, events.FulfillmentCancelled, record)
	}

	s.metrics.FulfillmentEvent("cancel", "ok")
	return data, nil
}

// CreateReturn delegates to the provider
func (s *Service) CreateReturn(ctx context.Context, f Fulfillment) (*Result, error) {
	result, err := s.provider.CreateReturnFulfillment(ctx, f)
	if err != nil {
		s.metrics.FulfillmentEvent("return", "error")
		return nil, err
	}
	s.metrics.FulfillmentEvent("return", "ok")
	return result, nil
}

// Get returns the stored record of a fulfillment
func (s *Service) Get(ctx context.Context, fulfillmentID string) (*Record, error) {
	return s.repo.FindByFulfillmentID(ctx, fulfillmentID)
}

// ListByOrder returns the stored records of an order
func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]Record, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *Service) publish(ctx context.Context, eventType string, record *Record) {
	payload := map[string]any{
		"fulfillment_id":    record.FulfillmentID,
		"order_id":          record.OrderID,
		"provider":          record.Provider,
		"external_order_id": record.ExternalOrderID,
		"external_status":   record.ExternalStatus,
		"mock":              record.Mock,
	}
	if err := s.publisher.Publish(ctx, eventType, record.FulfillmentID, payload); err != nil {
		s.logger.WithError(err).WithField("event", eventType).Warn(fmt.Sprintf("failed to publish %s", eventType))
	}
}
