package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkelium/storefront/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Commerce: config.CommerceConfig{
		BaseURL:        srv.URL + "/",
		PublishableKey: "pk_test",
		RegionID:       "reg_1",
	}}
	return NewClient(cfg, srv.Client())
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestRetrieveCart_SendsKeyAndFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/store/carts/cart_1", r.URL.Path)
		assert.Equal(t, "pk_test", r.Header.Get("x-publishable-api-key"))
		assert.Equal(t, CartItemFields, r.URL.Query().Get("fields"))

		writeJSON(t, w, http.StatusOK, map[string]any{"cart": map[string]any{
			"id":            "cart_1",
			"currency_code": "usd",
			"subtotal":      7600,
			"total":         7600,
			"items": []map[string]any{
				{"id": "li_1", "title": "Tee", "quantity": 2, "unit_price": 3800},
			},
		}})
	})

	cart, err := c.RetrieveCart(context.Background(), "cart_1", CartItemFields)
	require.NoError(t, err)

	want := &Cart{
		ID:           "cart_1",
		CurrencyCode: "usd",
		Subtotal:     7600,
		Total:        7600,
		Items:        []LineItem{{ID: "li_1", Title: "Tee", Quantity: 2, UnitPrice: 3800}},
	}
	assert.Empty(t, cmp.Diff(want, cart))
}

func TestDo_DecodesErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]any{"type": "invalid_data", "message": "Invalid email"})
	})

	_, err := c.UpdateCart(context.Background(), "cart_1", UpdateCartInput{Email: "nope"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid_data", apiErr.Type)
	assert.Equal(t, "Invalid email", err.Error())
}

func TestDo_ErrorWithoutBodyUsesStatusText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.RetrieveCart(context.Background(), "gone", "")
	require.Error(t, err)
	assert.Equal(t, "Not Found", err.Error())
	assert.True(t, IsNotFound(err))
}

func TestCreateCart_UsesRegion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "reg_1", body["region_id"])

		writeJSON(t, w, http.StatusOK, map[string]any{"cart": map[string]any{"id": "cart_new"}})
	})

	cart, err := c.CreateCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cart_new", cart.ID)
}

func TestInitiatePaymentSession_CreatesCollection(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)

		switch r.URL.Path {
		case "/store/payment-collections":
			writeJSON(t, w, http.StatusOK, map[string]any{"payment_collection": map[string]any{"id": "pc_1"}})
		case "/store/payment-collections/pc_1/payment-sessions":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "pp_stripe_stripe", body["provider_id"])

			writeJSON(t, w, http.StatusOK, map[string]any{"payment_collection": map[string]any{
				"id": "pc_1",
				"payment_sessions": []map[string]any{
					{"id": "ps_1", "provider_id": "pp_stripe_stripe", "data": map[string]any{"client_secret": "pi_1_secret_x"}},
				},
			}})
		default:
			t.Errorf("unexpected call %s", r.URL.Path)
		}
	})

	pc, err := c.InitiatePaymentSession(context.Background(), &Cart{ID: "cart_1"}, "pp_stripe_stripe")
	require.NoError(t, err)

	session, ok := pc.SessionFor("pp_stripe_stripe")
	require.True(t, ok)
	assert.Equal(t, "pi_1_secret_x", session.ClientSecret())
	assert.Equal(t, []string{
		"POST /store/payment-collections",
		"POST /store/payment-collections/pc_1/payment-sessions",
	}, calls)
}

func TestCompleteCart(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/store/carts/cart_1/complete", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]any{"type": "order", "order": map[string]any{"id": "order_1"}})
		})

		order, err := c.CompleteCart(context.Background(), "cart_1")
		require.NoError(t, err)
		assert.Equal(t, "order_1", order.ID)
	})

	t.Run("refused", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"type":  "cart",
				"cart":  map[string]any{"id": "cart_1"},
				"error": map[string]any{"message": "Payment authorization failed", "type": "payment_authorization_error"},
			})
		})

		_, err := c.CompleteCart(context.Background(), "cart_1")
		require.Error(t, err)
		assert.Equal(t, "Payment authorization failed", err.Error())
	})
}

func TestLoginAndRetrieveCustomer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/customer/emailpass":
			writeJSON(t, w, http.StatusOK, map[string]any{"token": "cust_token"})
		case "/store/customers/me":
			assert.Equal(t, "Bearer cust_token", r.Header.Get("Authorization"))
			writeJSON(t, w, http.StatusOK, map[string]any{"customer": map[string]any{"id": "cus_1", "email": "ada@example.com"}})
		}
	})

	token, err := c.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)

	customer, err := c.RetrieveCustomer(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "cus_1", customer.ID)
}

func TestListProducts_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "12", q.Get("limit"))
		assert.Equal(t, "cat_1", q.Get("category_id[]"))
		assert.Equal(t, "reg_1", q.Get("region_id"))

		writeJSON(t, w, http.StatusOK, map[string]any{"products": []map[string]any{{"id": "prod_1", "handle": "tee"}}, "count": 1})
	})

	list, err := c.ListProducts(context.Background(), ProductQuery{Limit: 12, CategoryID: "cat_1"})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "tee", list.Products[0].Handle)
}
