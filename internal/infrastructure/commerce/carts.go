// internal/infrastructure/commerce/carts.go
package commerce

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// Field expansions requested from the Store API
const (
	CartItemFields       = "+items,+items.variant,+items.variant.product,+items.thumbnail"
	PaymentSessionFields = "+payment_collection.payment_sessions"
)

type cartEnvelope struct {
	Cart *Cart `json:"cart"`
}

// CreateCart creates an empty cart in the configured region
func (c *Client) CreateCart(ctx context.Context) (*Cart, error) {
	body := map[string]any{}
	if c.regionID != "" {
		body["region_id"] = c.regionID
	}

	var env cartEnvelope
	if err := c.do(ctx, http.MethodPost, "/store/carts", nil, body, &env, ""); err != nil {
		return nil, err
	}
	return env.Cart, nil
}

// RetrieveCart fetches a cart with the given field expansion
func (c *Client) RetrieveCart(ctx context.Context, cartID, fields string) (*Cart, error) {
	var query url.Values
	if fields != "" {
		query = url.Values{"fields": {fields}}
	}

	var env cartEnvelope
	if err := c.do(ctx, http.MethodGet, "/store/carts/"+url.PathEscape(cartID), query, nil, &env, ""); err != nil {
		return nil, err
	}
	if env.Cart == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Type: "not_found", Message: "cart not found"}
	}
	return env.Cart, nil
}

// UpdateCart sets email, region or addresses on a cart
func (c *Client) UpdateCart(ctx context.Context, cartID string, input UpdateCartInput) (*Cart, error) {
	var env cartEnvelope
	if err := c.do(ctx, http.MethodPost, "/store/carts/"+url.PathEscape(cartID), nil, input, &env, ""); err != nil {
		return nil, err
	}
	return env.Cart, nil
}

// AddLineItem adds quantity units of a variant
func (c *Client) AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*Cart, error) {
	body := map[string]any{"variant_id": variantID, "quantity": quantity}

	var env cartEnvelope
	if err := c.do(ctx, http.MethodPost, "/store/carts/"+url.PathEscape(cartID)+"/line-items", nil, body, &env, ""); err != nil {
		return nil, err
	}
	return env.Cart, nil
}

// UpdateLineItem sets the quantity of a line item
func (c *Client) UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*Cart, error) {
	body := map[string]any{"quantity": quantity}
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineItemID)

	var env cartEnvelope
	if err := c.do(ctx, http.MethodPost, path, nil, body, &env, ""); err != nil {
		return nil, err
	}
	return env.Cart, nil
}

// DeleteLineItem removes a line item
func (c *Client) DeleteLineItem(ctx context.Context, cartID, lineItemID string) error {
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineItemID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, "")
}

// ListCartShippingOptions returns the shipping options available to a cart
func (c *Client) ListCartShippingOptions(ctx context.Context, cartID string) ([]ShippingOption, error) {
	var env struct {
		ShippingOptions []ShippingOption `json:"shipping_options"`
	}
	query := url.Values{"cart_id": {cartID}}
	if err := c.do(ctx, http.MethodGet, "/store/shipping-options", query, nil, &env, ""); err != nil {
		return nil, err
	}
	return env.ShippingOptions, nil
}

// AddShippingMethod binds a shipping option to the cart
func (c *Client) AddShippingMethod(ctx context.Context, cartID, optionID string) (*Cart, error) {
	body := map[string]any{"option_id": optionID}

	var env cartEnvelope
	if err := c.do(ctx, http.MethodPost, "/store/carts/"+url.PathEscape(cartID)+"/shipping-methods", nil, body, &env, ""); err != nil {
		return nil, err
	}
	return env.Cart, nil
}

type paymentCollectionEnvelope struct {
	PaymentCollection *PaymentCollection `json:"payment_collection"`
}

// InitiatePaymentSession starts a payment session for providerID,
// creating the cart's payment collection first when it has none.
func (c *Client) InitiatePaymentSession(ctx context.Context, cart *Cart, providerID string) (*PaymentCollection, error) {
	collection := cart.PaymentCollection
	if collection == nil || collection.ID == "" {
		var created paymentCollectionEnvelope
		body := map[string]any{"cart_id": cart.ID}
		if err := c.do(ctx, http.MethodPost, "/store/payment-collections", nil, body, &created, ""); err != nil {
			return nil, err
		}
		if created.PaymentCollection == nil {
			return nil, errors.New("commerce backend returned no payment collection")
		}
		collection = created.PaymentCollection
	}

	var env paymentCollectionEnvelope
	path := "/store/payment-collections/" + url.PathEscape(collection.ID) + "/payment-sessions"
	body := map[string]any{"provider_id": providerID}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &env, ""); err != nil {
		return nil, err
	}
	return env.PaymentCollection, nil
}

// CompleteCart turns the cart into an order. A "cart" answer means the
// backend refused completion and carries the reason.
func (c *Client) CompleteCart(ctx context.Context, cartID string) (*Order, error) {
	var env struct {
		Type  string    `json:"type"`
		Order *Order    `json:"order"`
		Cart  *Cart     `json:"cart"`
		Error *APIError `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/store/carts/"+url.PathEscape(cartID)+"/complete", nil, nil, &env, ""); err != nil {
		return nil, err
	}

	if env.Type == "order" && env.Order != nil {
		return env.Order, nil
	}

	apiErr := &APIError{StatusCode: http.StatusUnprocessableEntity, Type: "cart_incomplete", Message: "order could not be placed"}
	if env.Error != nil && env.Error.Message != "" {
		apiErr.Message = env.Error.Message
		if env.Error.Type != "" {
			apiErr.Type = env.Error.Type
		}
	}
	return nil, apiErr
}
