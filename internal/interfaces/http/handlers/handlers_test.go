package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/berkelium/storefront/internal/config"
	"github.com/berkelium/storefront/internal/domain/cart"
	"github.com/berkelium/storefront/internal/domain/checkout"
	"github.com/berkelium/storefront/internal/domain/payment"
	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	redisstore "github.com/berkelium/storefront/internal/infrastructure/database/redis"
	"github.com/berkelium/storefront/internal/infrastructure/events"
	"github.com/berkelium/storefront/internal/pkg/logger"
)

const cookieName = "bk_cart_id"

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeCommerce is an in-memory Store API covering carts and checkout
type fakeCommerce struct {
	mu      sync.Mutex
	carts   map[string]*commerce.Cart
	next    int
	initErr error
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{carts: map[string]*commerce.Cart{}}
}

func (f *fakeCommerce) put(c *commerce.Cart) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[c.ID] = c
}

func (f *fakeCommerce) CreateCart(context.Context) (*commerce.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	c := &commerce.Cart{ID: fmt.Sprintf("cart_%d", f.next), CurrencyCode: "usd", Items: []commerce.LineItem{}}
	f.carts[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeCommerce) RetrieveCart(_ context.Context, cartID, _ string) (*commerce.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[cartID]
	if !ok {
		return nil, &commerce.APIError{StatusCode: http.StatusNotFound, Message: "Cart not found"}
	}
	cp := *c
	cp.Items = append([]commerce.LineItem(nil), c.Items...)
	return &cp, nil
}

func (f *fakeCommerce) AddLineItem(_ context.Context, cartID, variantID string, quantity int) (*commerce.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.carts[cartID]
	c.Items = append(c.Items, commerce.LineItem{
		ID:        fmt.Sprintf("li_%d", len(c.Items)+1),
		Title:     "Tee",
		Quantity:  quantity,
		UnitPrice: 2500,
		VariantID: variantID,
	})
	retotal(c)
	return c, nil
}

func (f *fakeCommerce) UpdateLineItem(_ context.Context, cartID, lineItemID string, quantity int) (*commerce.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.carts[cartID]
	for i := range c.Items {
		if c.Items[i].ID == lineItemID {
			c.Items[i].Quantity = quantity
		}
	}
	retotal(c)
	return c, nil
}

func (f *fakeCommerce) DeleteLineItem(_ context.Context, cartID, lineItemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.carts[cartID]
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != lineItemID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	retotal(c)
	return nil
}

func (f *fakeCommerce) UpdateCart(_ context.Context, cartID string, input commerce.UpdateCartInput) (*commerce.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.carts[cartID]
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

func (f *fakeCommerce) ListCartShippingOptions(context.Context, string) ([]commerce.ShippingOption, error) {
	return []commerce.ShippingOption{
		{ID: "so_standard", Name: "Standard", Amount: 500},
		{ID: "so_express", Name: "Express", Amount: 1500},
	}, nil
}

func (f *fakeCommerce) AddShippingMethod(_ context.Context, cartID, optionID string) (*commerce.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.carts[cartID]
	amount := int64(500)
	if optionID == "so_express" {
		amount = 1500
	}
	c.ShippingMethods = []commerce.ShippingMethod{{ShippingOptionID: optionID, Amount: amount}}
	c.ShippingTotal = amount
	retotal(c)
	return c, nil
}

func (f *fakeCommerce) InitiatePaymentSession(_ context.Context, c *commerce.Cart, providerID string) (*commerce.PaymentCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr != nil {
		return nil, f.initErr
	}
	pc := &commerce.PaymentCollection{
		ID: "pc_" + c.ID,
		PaymentSessions: []commerce.PaymentSession{{
			ID:         "ps_1",
			ProviderID: providerID,
			Data:       map[string]any{"client_secret": "pi_1_secret_abc"},
		}},
	}
	f.carts[c.ID].PaymentCollection = pc
	return pc, nil
}

func (f *fakeCommerce) CompleteCart(_ context.Context, cartID string) (*commerce.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.carts[cartID]
	return &commerce.Order{ID: "order_" + cartID, Email: c.Email, Total: c.Total, CurrencyCode: c.CurrencyCode}, nil
}

func retotal(c *commerce.Cart) {
	var subtotal int64
	for _, item := range c.Items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	c.Subtotal = subtotal
	c.Total = subtotal + c.ShippingTotal
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:            "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry: time.Hour,
			ServiceTokenTTL:   time.Hour,
		},
		Payment: config.PaymentConfig{ProviderID: "pp_stripe_stripe", PublishableKey: "pk_test_123"},
		Checkout: config.CheckoutConfig{
			SessionTTL:     time.Hour,
			CartCookieName: cookieName,
			CartCookieTTL:  24 * time.Hour,
		},
	}
}

// newStorefrontRouter mounts the cart and checkout handlers over a fake backend
func newStorefrontRouter(t *testing.T) (*gin.Engine, *fakeCommerce) {
	t.Helper()

	cfg := testConfig()
	log := logger.Discard()
	backend := newFakeCommerce()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	carts := cart.NewService(backend, log)
	store := checkout.NewRedisSessionStore(redisstore.Wrap(rdb), cfg.Checkout.SessionTTL)
	checkouts := checkout.NewService(cfg, carts, backend, store, payment.TrustingVerifier{}, events.NoopPublisher{}, nil, log)

	cartHandler := NewCartHandler(carts, cfg)
	checkoutHandler := NewCheckoutHandler(checkouts, cfg)

	r := gin.New()
	r.GET("/cart", cartHandler.GetCart)
	r.POST("/cart/items", cartHandler.AddItem)
	r.PATCH("/cart/items/:id", cartHandler.UpdateItem)
	r.DELETE("/cart/items/:id", cartHandler.RemoveItem)

	r.GET("/checkout/config", checkoutHandler.GetConfig)
	r.POST("/checkout", checkoutHandler.Begin)
	r.GET("/checkout", checkoutHandler.GetState)
	r.POST("/checkout/contact", checkoutHandler.SubmitContact)
	r.POST("/checkout/shipping", checkoutHandler.SubmitShipping)
	r.POST("/checkout/shipping-option", checkoutHandler.SelectShippingOption)
	r.POST("/checkout/step", checkoutHandler.GoTo)
	r.POST("/checkout/complete", checkoutHandler.Complete)

	return r, backend
}

type requestOption func(*http.Request)

func withCookie(value string) requestOption {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: value})
	}
}

func withBearer(token string) requestOption {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func perform(r http.Handler, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope is the {"message","data"} / {"error"} response shape
type envelope struct {
	Message  string          `json:"message"`
	Error    string          `json:"error"`
	Redirect string          `json:"redirect"`
	Missing  []string        `json:"missing"`
	Data     json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
