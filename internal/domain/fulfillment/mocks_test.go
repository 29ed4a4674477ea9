package fulfillment

import (
	"context"
	"sync"
	"time"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
)

// MockProvider records calls and returns canned results
type MockProvider struct {
	Result    *Result
	CreateErr error
	CancelErr error

	CancelledWith []Fulfillment
}

func (m *MockProvider) Identifier() string { return "mock" }

func (m *MockProvider) ListOptions(context.Context) ([]Option, error) {
	return []Option{{ID: "mock-standard"}}, nil
}

func (m *MockProvider) Validate(_ context.Context, _, data Data) (Data, error) { return data, nil }

func (m *MockProvider) ValidateOption(context.Context, Data) (bool, error) { return true, nil }

func (m *MockProvider) SupportsDynamicPricing() bool { return false }

func (m *MockProvider) CalculatePrice(context.Context, Data, Data) (int64, error) {
	return 0, ErrUnsupportedOperation
}

func (m *MockProvider) CreateFulfillment(context.Context, Data, []commerce.LineItem, Order, Fulfillment) (*Result, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Result, nil
}

func (m *MockProvider) CancelFulfillment(_ context.Context, f Fulfillment) (Data, error) {
	m.CancelledWith = append(m.CancelledWith, f)
	if m.CancelErr != nil {
		return nil, m.CancelErr
	}
	return Data{}, nil
}

func (m *MockProvider) CreateReturnFulfillment(context.Context, Fulfillment) (*Result, error) {
	return &Result{Data: Data{}, Labels: []Label{}}, nil
}

// MemoryRepository keeps records in a map keyed by fulfillment id
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]*Record
	SaveErr error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: map[string]*Record{}}
}

func (m *MemoryRepository) Save(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := *record
	m.records[record.FulfillmentID] = &cp
	return nil
}

func (m *MemoryRepository) FindByFulfillmentID(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryRepository) ListByOrder(_ context.Context, orderID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, r := range m.records {
		if r.OrderID == orderID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *MemoryRepository) MarkCancelled(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	if r.CancelledAt == nil {
		r.CancelledAt = &at
	}
	return nil
}

type publishedEvent struct {
	Type    string
	Key     string
	Payload any
}

// MockPublisher collects published events
type MockPublisher struct {
	mu     sync.Mutex
	Events []publishedEvent
}

func (m *MockPublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, publishedEvent{Type: eventType, Key: key, Payload: payload})
	return nil
}

func (m *MockPublisher) Close() error { return nil }
