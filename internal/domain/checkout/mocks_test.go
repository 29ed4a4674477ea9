package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
)

// MockCommerce implements both cart.Backend and Backend over one cart map
type MockCommerce struct {
	Carts   map[string]*commerce.Cart
	Options []commerce.ShippingOption

	UpdateErr   error
	OptionsErr  error
	ShippingErr error
	InitErr     error
	CompleteErr error

	Updates         []commerce.UpdateCartInput
	ShippingMethods []string
	InitiateCalls   []string
	CompleteCalls   int
}

func NewMockCommerce() *MockCommerce {
	return &MockCommerce{
		Carts: map[string]*commerce.Cart{
			"cart_1": {
				ID:           "cart_1",
				CurrencyCode: "usd",
				Items:        []commerce.LineItem{{ID: "li_1", Title: "Tee", Quantity: 2, UnitPrice: 3800}},
				Subtotal:     7600,
				Total:        7600,
			},
			"cart_empty": {ID: "cart_empty", CurrencyCode: "usd", Items: []commerce.LineItem{}},
		},
		Options: []commerce.ShippingOption{
			{ID: "so_standard", Name: "Standard", Amount: 500, Type: &commerce.ShippingOptionType{Description: "5-7 business days"}},
			{ID: "so_express", Name: "Express", Amount: 1500},
		},
	}
}

func (m *MockCommerce) CreateCart(context.Context) (*commerce.Cart, error) {
	return nil, errors.New("not used")
}

func (m *MockCommerce) RetrieveCart(_ context.Context, cartID, _ string) (*commerce.Cart, error) {
	c, ok := m.Carts[cartID]
	if !ok {
		return nil, &commerce.APIError{StatusCode: 404, Message: "Cart not found"}
	}
	cp := *c
	return &cp, nil
}

func (m *MockCommerce) AddLineItem(context.Context, string, string, int) (*commerce.Cart, error) {
	return nil, errors.New("not used")
}

func (m *MockCommerce) UpdateLineItem(context.Context, string, string, int) (*commerce.Cart, error) {
	return nil, errors.New("not used")
}

func (m *MockCommerce) DeleteLineItem(context.Context, string, string) error {
	return errors.New("not used")
}

func (m *MockCommerce) UpdateCart(_ context.Context, cartID string, input commerce.UpdateCartInput) (*commerce.Cart, error) {
	m.Updates = append(m.Updates, input)
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	c := m.Carts[cartID]
	if input.Email != "" {
		c.Email = input.Email
	}
	if input.ShippingAddress != nil {
		c.ShippingAddress = input.ShippingAddress
	}
	if input.BillingAddress != nil {
		c.BillingAddress = input.BillingAddress
	}
	return c, nil
}

func (m *MockCommerce) ListCartShippingOptions(context.Context, string) ([]commerce.ShippingOption, error) {
	if m.OptionsErr != nil {
		return nil, m.OptionsErr
	}
	return m.Options, nil
}

func (m *MockCommerce) AddShippingMethod(_ context.Context, cartID, optionID string) (*commerce.Cart, error) {
	m.ShippingMethods = append(m.ShippingMethods, optionID)
	if m.ShippingErr != nil {
		return nil, m.ShippingErr
	}
	c := m.Carts[cartID]
	for _, o := range m.Options {
		if o.ID == optionID {
			c.ShippingMethods = []commerce.ShippingMethod{{ShippingOptionID: o.ID, Amount: o.Amount}}
			c.ShippingTotal = o.Amount
			c.Total = c.Subtotal + o.Amount
		}
	}
	return c, nil
}

func (m *MockCommerce) InitiatePaymentSession(_ context.Context, c *commerce.Cart, providerID string) (*commerce.PaymentCollection, error) {
	m.InitiateCalls = append(m.InitiateCalls, providerID)
	if m.InitErr != nil {
		return nil, m.InitErr
	}
	pc := &commerce.PaymentCollection{
		ID: "pc_" + c.ID,
		PaymentSessions: []commerce.PaymentSession{{
			ID:         "ps_1",
			ProviderID: providerID,
			Data:       map[string]any{"client_secret": "pi_1_secret_abc"},
		}},
	}
	m.Carts[c.ID].PaymentCollection = pc
	return pc, nil
}

func (m *MockCommerce) CompleteCart(_ context.Context, cartID string) (*commerce.Order, error) {
	m.CompleteCalls++
	if m.CompleteErr != nil {
		return nil, m.CompleteErr
	}
	c := m.Carts[cartID]
	return &commerce.Order{ID: "order_" + cartID, Email: c.Email, Total: c.Total, CurrencyCode: c.CurrencyCode}, nil
}

// MemoryStore is an in-memory SessionStore
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]Session{}}
}

func (s *MemoryStore) Get(_ context.Context, cartID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[cartID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *MemoryStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.CartID] = *session
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, cartID)
	return nil
}

// MockVerifier records verification calls
type MockVerifier struct {
	Err     error
	Secrets []string
}

func (v *MockVerifier) Verify(_ context.Context, clientSecret string) error {
	v.Secrets = append(v.Secrets, clientSecret)
	return v.Err
}

// MockPublisher records published events
type MockPublisher struct {
	Events []string
}

func (p *MockPublisher) Publish(_ context.Context, eventType, key string, _ any) error {
	p.Events = append(p.Events, fmt.Sprintf("%s:%s", eventType, key))
	return nil
}

func (p *MockPublisher) Close() error { return nil }
