// internal/domain/fulfillment/provider.go
package fulfillment

import (
	"context"
	"errors"
	"strings"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
)

var (
	ErrUnsupportedOperation  = errors.New("operation not supported by fulfillment provider")
	ErrMissingVariantMapping = errors.New("line item has no fulfillment variant mapping")
	ErrRecordNotFound        = errors.New("fulfillment record not found")
)

// Data is the provider-specific payload stored on a fulfillment
type Data map[string]any

// Option is a shipping service tier offered by a provider
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Order is the part of an order a provider needs to ship it
type Order struct {
	ID              string            `json:"id"`
	Email           string            `json:"email"`
	ShippingAddress *commerce.Address `json:"shipping_address"`
}

// Fulfillment identifies a fulfillment and carries its stored data
type Fulfillment struct {
	ID   string `json:"id"`
	Data Data   `json:"data"`
}

// Label is a shipping label produced by a provider
type Label struct {
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
	LabelURL       string `json:"label_url"`
}

// Result is the outcome of creating a fulfillment or a return
type Result struct {
	Data   Data    `json:"data"`
	Labels []Label `json:"labels"`
}

// Provider is a fulfillment backend the order-management system can call
type Provider interface {
	Identifier() string
	ListOptions(ctx context.Context) ([]Option, error)
	Validate(ctx context.Context, optionData, data Data) (Data, error)
	ValidateOption(ctx context.Context, data Data) (bool, error)
	SupportsDynamicPricing() bool
	CalculatePrice(ctx context.Context, optionData, data Data) (int64, error)
	CreateFulfillment(ctx context.Context, data Data, items []commerce.LineItem, order Order, f Fulfillment) (*Result, error)
	CancelFulfillment(ctx context.Context, f Fulfillment) (Data, error)
	CreateReturnFulfillment(ctx context.Context, f Fulfillment) (*Result, error)
}

// MissingVariantError names the line items without a provider variant id
type MissingVariantError struct {
	ItemIDs []string
}

func (e *MissingVariantError) Error() string {
	return ErrMissingVariantMapping.Error() + ": " + strings.Join(e.ItemIDs, ", ")
}

func (e *MissingVariantError) Is(target error) bool {
	return target == ErrMissingVariantMapping
}
