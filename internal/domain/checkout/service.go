// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/berkelium/storefront/internal/config"
	"github.com/berkelium/storefront/internal/domain/cart"
	"github.com/berkelium/storefront/internal/domain/payment"
	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/berkelium/storefront/internal/infrastructure/events"
	"github.com/berkelium/storefront/internal/pkg/metrics"
	"github.com/berkelium/storefront/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// Backend is the part of the commerce Store API checkout drives
type Backend interface {
	RetrieveCart(ctx context.Context, cartID, fields string) (*commerce.Cart, error)
	UpdateCart(ctx context.Context, cartID string, input commerce.UpdateCartInput) (*commerce.Cart, error)
	ListCartShippingOptions(ctx context.Context, cartID string) ([]commerce.ShippingOption, error)
	AddShippingMethod(ctx context.Context, cartID, optionID string) (*commerce.Cart, error)
	InitiatePaymentSession(ctx context.Context, c *commerce.Cart, providerID string) (*commerce.PaymentCollection, error)
	CompleteCart(ctx context.Context, cartID string) (*commerce.Order, error)
}

// Service drives a cart through contact, shipping and payment
type Service struct {
	carts      *cart.Service
	backend    Backend
	sessions   SessionStore
	verifier   payment.Verifier
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     *logrus.Logger
	providerID string
	grace      time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
}

// NewService creates a new checkout service
func NewService(
	cfg *config.Config,
	carts *cart.Service,
	backend Backend,
	sessions SessionStore,
	verifier payment.Verifier,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *Service {
	return &Service{
		carts:      carts,
		backend:    backend,
		sessions:   sessions,
		verifier:   verifier,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		providerID: cfg.Payment.ProviderID,
		grace:      cfg.Checkout.EmptyCartGrace,
		sleep:      sleepContext,
		now:        time.Now,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Begin opens or resumes the checkout of the cart behind token. A cart with
// no items gets one grace window to hydrate before ErrEmptyCart is returned.
func (s *Service) Begin(ctx context.Context, token cart.Token) (*View, error) {
	if token.IsZero() {
		return nil, ErrEmptyCart
	}

	c, err := s.carts.Refresh(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmptyCart, err)
	}

	if cart.ItemCount(c) == 0 {
		if err := s.sleep(ctx, s.grace); err != nil {
			return nil, err
		}
		c, err = s.carts.Refresh(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEmptyCart, err)
		}
		if cart.ItemCount(c) == 0 {
			return nil, ErrEmptyCart
		}
	}

	session, err := s.session(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.view(session, c), nil
}

// State returns the current checkout view without side effects on the cart
func (s *Service) State(ctx context.Context, token cart.Token) (*View, error) {
	session, c, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.view(session, c), nil
}

// SubmitContact saves the email on the cart and moves to shipping
func (s *Service) SubmitContact(ctx context.Context, token cart.Token, email string) (*View, error) {
	session, c, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Step != StepContact || !CanTransitionTo(session.Step, StepShipping) {
		return nil, ErrIllegalTransition
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	if _, err := s.backend.UpdateCart(ctx, c.ID, commerce.UpdateCartInput{Email: email}); err != nil {
		s.fail(StepContact, c.ID, err)
		return nil, err
	}

	c, err = s.carts.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}

	session.Email = email
	session.Step = StepShipping
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.CheckoutEvent(StepContact.String(), "ok")
	return s.view(session, c), nil
}

// SubmitShipping saves the address, binds the first shipping option, moves
// to payment and opens exactly one payment session. A failure aborts the
// sequence where it happened; earlier remote writes are kept.
func (s *Service) SubmitShipping(ctx context.Context, token cart.Token, address commerce.Address) (*View, error) {
	session, c, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Step != StepShipping || !CanTransitionTo(session.Step, StepPayment) {
		return nil, ErrIllegalTransition
	}

	address, err = normalizeAddress(address)
	if err != nil {
		return nil, err
	}

	shipping, billing := address, address
	input := commerce.UpdateCartInput{ShippingAddress: &shipping, BillingAddress: &billing}
	if _, err := s.backend.UpdateCart(ctx, c.ID, input); err != nil {
		s.fail(StepShipping, c.ID, err)
		return nil, err
	}

	options, err := s.backend.ListCartShippingOptions(ctx, c.ID)
	if err != nil {
		s.fail(StepShipping, c.ID, err)
		return nil, err
	}

	session.ShippingOptions = options
	session.SelectedOptionID = ""
	session.ClientSecret = ""
	if len(options) > 0 {
		first := options[0]
		if _, err := s.backend.AddShippingMethod(ctx, c.ID, first.ID); err != nil {
			s.fail(StepShipping, c.ID, err)
			return nil, err
		}
		session.SelectedOptionID = first.ID
	}

	c, err = s.carts.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}

	session.Step = StepPayment
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	if _, err := s.backend.InitiatePaymentSession(ctx, c, s.providerID); err != nil {
		s.fail(StepPayment, c.ID, err)
		return nil, err
	}

	withSessions, err := s.backend.RetrieveCart(ctx, c.ID, commerce.PaymentSessionFields)
	if err != nil {
		s.fail(StepPayment, c.ID, err)
		return nil, err
	}
	if ps, ok := withSessions.PaymentCollection.SessionFor(s.providerID); ok {
		session.ClientSecret = ps.ClientSecret()
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	c, err = s.carts.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}

	s.metrics.CheckoutEvent(StepShipping.String(), "ok")
	return s.view(session, c), nil
}

// SelectShippingOption rebinds the shipping method while in payment.
// The existing payment session is kept.
func (s *Service) SelectShippingOption(ctx context.Context, token cart.Token, optionID string) (*View, error) {
	session, c, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Step != StepPayment {
		return nil, ErrIllegalTransition
	}
	if !session.hasOption(optionID) {
		return nil, ErrUnknownShippingOption
	}

	if _, err := s.backend.AddShippingMethod(ctx, c.ID, optionID); err != nil {
		s.fail(StepPayment, c.ID, err)
		return nil, err
	}

	c, err = s.carts.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}

	session.SelectedOptionID = optionID
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session, c), nil
}

// GoTo navigates back to an earlier step. Staying on the current step is a no-op.
func (s *Service) GoTo(ctx context.Context, token cart.Token, step Step) (*View, error) {
	session, c, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	if step != session.Step {
		if !step.Before(session.Step) || !CanTransitionTo(session.Step, step) {
			return nil, ErrIllegalTransition
		}
		session.Step = step
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
	}
	return s.view(session, c), nil
}

// Complete places the order once the payment was confirmed. On success the
// checkout session is gone and the caller must forget the cart token; on
// failure nothing changes.
func (s *Service) Complete(ctx context.Context, token cart.Token) (*Completion, error) {
	session, c, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Step != StepPayment {
		return nil, ErrIllegalTransition
	}
	if session.ClientSecret == "" {
		return nil, ErrNoClientSecret
	}

	if err := s.verifier.Verify(ctx, session.ClientSecret); err != nil {
		s.fail("complete", c.ID, err)
		return nil, err
	}

	order, err := s.backend.CompleteCart(ctx, c.ID)
	if err != nil {
		s.fail("complete", c.ID, err)
		return nil, err
	}

	if err := s.sessions.Delete(ctx, c.ID); err != nil {
		s.logger.WithError(err).WithField("cart_id", c.ID).Warn("failed to delete checkout session")
	}

	payload := map[string]any{
		"cart_id":  c.ID,
		"order_id": order.ID,
		"email":    order.Email,
		"total":    order.Total,
		"currency": order.CurrencyCode,
	}
	if err := s.publisher.Publish(ctx, events.CartCompleted, order.ID, payload); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish checkout event")
	}

	s.metrics.CheckoutEvent("complete", "ok")
	s.logger.WithFields(logrus.Fields{
		"cart_id":  c.ID,
		"order_id": order.ID,
	}).Info("order placed")

	return &Completion{
		OrderID:  order.ID,
		CartID:   c.ID,
		Redirect: "/order/confirmed?id=" + url.QueryEscape(order.ID),
	}, nil
}

// load resolves the cart and its session, starting a fresh session when
// none exists or the stored one expired. A cart without items never gets
// past this point: every step answers ErrEmptyCart.
func (s *Service) load(ctx context.Context, token cart.Token) (*Session, *commerce.Cart, error) {
	if token.IsZero() {
		return nil, nil, cart.ErrNoCart
	}

	c, err := s.carts.Refresh(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if cart.ItemCount(c) == 0 {
		return nil, nil, ErrEmptyCart
	}

	session, err := s.session(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	return session, c, nil
}

func (s *Service) session(ctx context.Context, c *commerce.Cart) (*Session, error) {
	session, err := s.sessions.Get(ctx, c.ID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	session = &Session{
		CartID:    c.ID,
		Step:      StepContact,
		Email:     c.Email,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) save(ctx context.Context, session *Session) error {
	session.UpdatedAt = s.now().UTC()
	return s.sessions.Save(ctx, session)
}

func (s *Service) fail(step Step, cartID string, err error) {
	s.metrics.CheckoutEvent(step.String(), "error")
	s.logger.WithError(err).WithFields(logrus.Fields{
		"cart_id": cartID,
		"step":    step,
	}).Warn("checkout step failed")
}

func (s *Service) view(session *Session, c *commerce.Cart) *View {
	v := &View{
		Step:             session.Step,
		Email:            session.Email,
		ShippingOptions:  make([]ShippingOptionView, 0, len(session.ShippingOptions)),
		SelectedOptionID: session.SelectedOptionID,
		ClientSecret:     session.ClientSecret,
		PaymentReady:     session.Step == StepPayment && session.ClientSecret != "",
		Cart:             cart.Summarize(c),
	}

	currency := ""
	if c != nil {
		currency = c.CurrencyCode
	}
	for _, o := range session.ShippingOptions {
		v.ShippingOptions = append(v.ShippingOptions, ShippingOptionView{
			ID:          o.ID,
			Name:        o.Name,
			Amount:      o.Amount,
			Description: o.Description(),
			Formatted:   money.Format(o.Amount, currency),
		})
	}
	return v
}
