// internal/domain/payment/verifier.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var (
	ErrMissingClientSecret = errors.New("payment client secret is missing")
	ErrPaymentNotConfirmed = errors.New("payment has not been confirmed")
)

// Verifier checks that the payment behind a client secret was confirmed
// by the customer before the order is placed.
type Verifier interface {
	Verify(ctx context.Context, clientSecret string) error
}

type intentGetter interface {
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeVerifier looks the PaymentIntent up with the secret key
type StripeVerifier struct {
	intents intentGetter
	logger  *logrus.Logger
}

// NewVerifier returns a Stripe verifier when secretKey is set, and a
// TrustingVerifier otherwise.
func NewVerifier(secretKey string, logger *logrus.Logger) Verifier {
	if secretKey == "" {
		logger.Warn("no stripe secret key configured, payment confirmation is trusted")
		return TrustingVerifier{}
	}

	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeVerifier{intents: sc.PaymentIntents, logger: logger}
}

// Verify requires the PaymentIntent to be succeeded or authorized for capture
func (v *StripeVerifier) Verify(ctx context.Context, clientSecret string) error {
	id, err := IntentID(clientSecret)
	if err != nil {
		return err
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := v.intents.Get(id, params)
	if err != nil {
		return fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture:
		return nil
	default:
		v.logger.WithFields(logrus.Fields{
			"payment_intent": id,
			"status":         pi.Status,
		}).Warn("payment intent not confirmed")
		return fmt.Errorf("%w: status %s", ErrPaymentNotConfirmed, pi.Status)
	}
}

// IntentID extracts "pi_123" from "pi_123_secret_abc"
func IntentID(clientSecret string) (string, error) {
	if clientSecret == "" {
		return "", ErrMissingClientSecret
	}
	id, _, found := strings.Cut(clientSecret, "_secret_")
	if !found || id == "" {
		return "", fmt.Errorf("malformed client secret")
	}
	return id, nil
}

// TrustingVerifier accepts any non-empty client secret. Confirmation then
// rests with the browser-side payment element and the commerce backend.
type TrustingVerifier struct{}

func (TrustingVerifier) Verify(_ context.Context, clientSecret string) error {
	if clientSecret == "" {
		return ErrMissingClientSecret
	}
	return nil
}
