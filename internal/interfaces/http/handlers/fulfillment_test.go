package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkelium/storefront/internal/domain/fulfillment"
	"github.com/berkelium/storefront/internal/infrastructure/events"
	"github.com/berkelium/storefront/internal/interfaces/http/middleware"
	"github.com/berkelium/storefront/internal/pkg/auth"
	"github.com/berkelium/storefront/internal/pkg/logger"
)

type memoryRecords struct {
	mu      sync.Mutex
	records map[string]fulfillment.Record
}

func (m *memoryRecords) Save(_ context.Context, record *fulfillment.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.FulfillmentID] = *record
	return nil
}

func (m *memoryRecords) FindByFulfillmentID(_ context.Context, id string) (*fulfillment.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, fulfillment.ErrRecordNotFound
	}
	return &r, nil
}

func (m *memoryRecords) ListByOrder(_ context.Context, orderID string) ([]fulfillment.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []fulfillment.Record
	for _, r := range m.records {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRecords) MarkCancelled(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return fulfillment.ErrRecordNotFound
	}
	r.CancelledAt = &at
	m.records[id] = r
	return nil
}

// printfulStub records the requests it serves
type printfulStub struct {
	mu       sync.Mutex
	requests []string
	status   int
	body     string
}

func (s *printfulStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodDelete {
		_, _ = w.Write([]byte(`{"code":200,"result":{}}`))
		return
	}
	w.WriteHeader(s.status)
	_, _ = w.Write([]byte(s.body))
}

func (s *printfulStub) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

type fulfillmentFixture struct {
	router       *gin.Engine
	stub         *printfulStub
	records      *memoryRecords
	serviceToken string
	accessToken  string
}

func newFulfillmentFixture(t *testing.T) *fulfillmentFixture {
	t.Helper()

	stub := &printfulStub{
		status: http.StatusOK,
		body:   `{"code":200,"result":{"id":98765,"status":"draft"}}`,
	}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.Fulfillment.BaseURL = srv.URL
	cfg.Fulfillment.APIKey = "live-key"

	log := logger.Discard()
	records := &memoryRecords{records: map[string]fulfillment.Record{}}
	provider := fulfillment.NewPrintfulProvider(cfg, srv.Client(), log)
	svc := fulfillment.NewService(provider, records, events.NoopPublisher{}, nil, log)
	h := NewFulfillmentHandler(svc, log)

	jwtManager := auth.NewJWTManager(cfg)
	serviceToken, err := jwtManager.GenerateServiceToken("oms")
	require.NoError(t, err)
	accessToken, err := jwtManager.GenerateAccessToken("sess_1", "cus_1", "ada@example.com")
	require.NoError(t, err)

	r := gin.New()
	f := r.Group("/fulfillment", middleware.ServiceAuth(jwtManager))
	f.GET("/options", h.ListOptions)
	f.POST("/options/validate", h.ValidateOption)
	f.POST("/validate", h.Validate)
	f.GET("/can-calculate", h.CanCalculate)
	f.POST("/calculate", h.Calculate)
	f.POST("/fulfillments", h.CreateFulfillment)
	f.GET("/fulfillments/:id", h.GetFulfillment)
	f.POST("/fulfillments/:id/cancel", h.CancelFulfillment)
	f.GET("/orders/:order_id/fulfillments", h.ListByOrder)
	f.POST("/returns", h.CreateReturn)

	return &fulfillmentFixture{
		router:       r,
		stub:         stub,
		records:      records,
		serviceToken: serviceToken,
		accessToken:  accessToken,
	}
}

func createRequest(fulfillmentID string, variantMetadata map[string]any) map[string]any {
	return map[string]any{
		"fulfillment": map[string]any{"id": fulfillmentID},
		"order": map[string]any{
			"id":    "order_1",
			"email": "ada@example.com",
			"shipping_address": map[string]any{
				"first_name":   "Ada",
				"last_name":    "Lovelace",
				"address_1":    "12 Analytical Way",
				"city":         "Portland",
				"province":     "OR",
				"postal_code":  "97201",
				"country_code": "us",
			},
		},
		"items": []map[string]any{
			{"id": "li_1", "title": "Tee", "quantity": 2, "metadata": variantMetadata},
		},
	}
}

func TestFulfillment_RequiresServiceToken(t *testing.T) {
	f := newFulfillmentFixture(t)

	assert.Equal(t, http.StatusUnauthorized, perform(f.router, http.MethodGet, "/fulfillment/options", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		perform(f.router, http.MethodGet, "/fulfillment/options", nil, withBearer(f.accessToken)).Code,
		"customer tokens are not service tokens")
	assert.Equal(t, http.StatusOK,
		perform(f.router, http.MethodGet, "/fulfillment/options", nil, withBearer(f.serviceToken)).Code)
}

func TestFulfillment_StaticOperations(t *testing.T) {
	f := newFulfillmentFixture(t)
	token := withBearer(f.serviceToken)

	var options []fulfillment.Option
	w := perform(f.router, http.MethodGet, "/fulfillment/options", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &options)
	assert.Equal(t, []fulfillment.Option{{ID: "printful-standard"}, {ID: "printful-express"}}, options)

	var data fulfillment.Data
	w = perform(f.router, http.MethodPost, "/fulfillment/validate", map[string]any{"data": map[string]any{"k": "v"}}, token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &data)
	assert.Equal(t, fulfillment.Data{"k": "v"}, data)

	var valid map[string]bool
	w = perform(f.router, http.MethodPost, "/fulfillment/options/validate", map[string]any{"data": map[string]any{}}, token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &valid)
	assert.True(t, valid["valid"])

	var can map[string]bool
	w = perform(f.router, http.MethodGet, "/fulfillment/can-calculate", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &can)
	assert.False(t, can["can_calculate"])

	w = perform(f.router, http.MethodPost, "/fulfillment/calculate", map[string]any{}, token)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = perform(f.router, http.MethodPost, "/fulfillment/returns", map[string]any{"id": "ful_1"}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, f.stub.calls())
}

func TestFulfillment_CreateThenCancel(t *testing.T) {
	f := newFulfillmentFixture(t)
	token := withBearer(f.serviceToken)

	w := perform(f.router, http.MethodPost, "/fulfillment/fulfillments",
		createRequest("ful_1", map[string]any{"printful_variant_id": 4012}), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result fulfillment.Result
	decode(t, w, &result)
	assert.Equal(t, "98765", result.Data["printful_order_id"])
	assert.Equal(t, "draft", result.Data["printful_status"])
	assert.Empty(t, result.Labels)

	var record fulfillment.Record
	w = perform(f.router, http.MethodGet, "/fulfillment/fulfillments/ful_1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &record)
	assert.Equal(t, "98765", record.ExternalOrderID)
	assert.Equal(t, "order_1", record.OrderID)
	assert.False(t, record.Mock)

	w = perform(f.router, http.MethodPost, "/fulfillment/fulfillments/ful_1/cancel", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, []string{"POST /orders", "DELETE /orders/98765"}, f.stub.calls())

	stored, err := f.records.FindByFulfillmentID(context.Background(), "ful_1")
	require.NoError(t, err)
	assert.True(t, stored.IsCancelled())
}

func TestFulfillment_MissingVariantMappingIsRejectedLocally(t *testing.T) {
	f := newFulfillmentFixture(t)

	w := perform(f.router, http.MethodPost, "/fulfillment/fulfillments",
		createRequest("ful_2", map[string]any{}), withBearer(f.serviceToken))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w, nil).Error, "li_1")
	assert.Empty(t, f.stub.calls())
}

func TestFulfillment_ProviderErrorIsBadGateway(t *testing.T) {
	f := newFulfillmentFixture(t)
	f.stub.status = http.StatusBadRequest
	f.stub.body = `{"code":400,"error":{"message":"Invalid recipient"}}`

	w := perform(f.router, http.MethodPost, "/fulfillment/fulfillments",
		createRequest("ful_3", map[string]any{"printful_variant_id": "4012"}), withBearer(f.serviceToken))

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "printful API error: Invalid recipient", decode(t, w, nil).Error)

	_, err := f.records.FindByFulfillmentID(context.Background(), "ful_3")
	assert.ErrorIs(t, err, fulfillment.ErrRecordNotFound)
}

func TestFulfillment_CreateWithoutIDIsNotRecorded(t *testing.T) {
	f := newFulfillmentFixture(t)

	w := perform(f.router, http.MethodPost, "/fulfillment/fulfillments",
		createRequest("", map[string]any{"printful_variant_id": 4012}), withBearer(f.serviceToken))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result fulfillment.Result
	decode(t, w, &result)
	assert.Equal(t, "98765", result.Data["printful_order_id"])
	assert.Equal(t, []string{"POST /orders"}, f.stub.calls())
	assert.Empty(t, f.records.records)
}

func TestFulfillment_GetUnknownRecord(t *testing.T) {
	f := newFulfillmentFixture(t)

	w := perform(f.router, http.MethodGet, "/fulfillment/fulfillments/ful_missing", nil, withBearer(f.serviceToken))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFulfillment_ListByOrder(t *testing.T) {
	f := newFulfillmentFixture(t)
	token := withBearer(f.serviceToken)

	w := perform(f.router, http.MethodPost, "/fulfillment/fulfillments",
		createRequest("ful_1", map[string]any{"printful_variant_id": 4012}), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var records []fulfillment.Record
	w = perform(f.router, http.MethodGet, "/fulfillment/orders/order_1/fulfillments", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "ful_1", records[0].FulfillmentID)
	assert.Equal(t, "98765", records[0].ExternalOrderID)

	w = perform(f.router, http.MethodGet, "/fulfillment/orders/order_none/fulfillments", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decode(t, w, nil).Data))
}
