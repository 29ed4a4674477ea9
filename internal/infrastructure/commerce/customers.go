// internal/infrastructure/commerce/customers.go
package commerce

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

type tokenEnvelope struct {
	Token string `json:"token"`
}

type customerEnvelope struct {
	Customer *Customer `json:"customer"`
}

// Login exchanges email and password for a customer token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}

	var env tokenEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/customer/emailpass", nil, body, &env, ""); err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", errors.New("commerce backend returned no token")
	}
	return env.Token, nil
}

// RegisterIdentity creates the auth identity and returns a registration token
func (c *Client) RegisterIdentity(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}

	var env tokenEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/customer/emailpass/register", nil, body, &env, ""); err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", errors.New("commerce backend returned no token")
	}
	return env.Token, nil
}

// CreateCustomer creates the customer record for a freshly registered identity
func (c *Client) CreateCustomer(ctx context.Context, registrationToken string, input RegisterInput) (*Customer, error) {
	var env customerEnvelope
	if err := c.do(ctx, http.MethodPost, "/store/customers", nil, input, &env, registrationToken); err != nil {
		return nil, err
	}
	return env.Customer, nil
}

// RetrieveCustomer returns the customer owning token
func (c *Client) RetrieveCustomer(ctx context.Context, token string) (*Customer, error) {
	var env customerEnvelope
	if err := c.do(ctx, http.MethodGet, "/store/customers/me", nil, nil, &env, token); err != nil {
		return nil, err
	}
	if env.Customer == nil {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Type: "unauthorized", Message: "customer not found"}
	}
	return env.Customer, nil
}

// ListOrders returns the orders of the customer owning token
func (c *Client) ListOrders(ctx context.Context, token string) ([]Order, error) {
	var env struct {
		Orders []Order `json:"orders"`
	}
	query := url.Values{"order": {"-created_at"}}
	if err := c.do(ctx, http.MethodGet, "/store/orders", query, nil, &env, token); err != nil {
		return nil, err
	}
	return env.Orders, nil
}
