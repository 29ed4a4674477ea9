package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
)

var errNotFound = &commerce.APIError{StatusCode: 404, Message: "Cart not found"}

// MockBackend is an in-memory Backend keyed by cart id
type MockBackend struct {
	Carts     map[string]*commerce.Cart
	Variants  map[string]int64 // variant id -> unit price
	CreateErr error
	AddErr    error
	Calls     []string
	nextID    int
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		Carts:    map[string]*commerce.Cart{},
		Variants: map[string]int64{"variant_tee": 3800, "variant_mug": 1500},
	}
}

func (m *MockBackend) CreateCart(_ context.Context) (*commerce.Cart, error) {
	m.Calls = append(m.Calls, "create")
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	c := &commerce.Cart{ID: fmt.Sprintf("cart_%d", m.nextID), CurrencyCode: "usd", Items: []commerce.LineItem{}}
	m.Carts[c.ID] = c
	return c, nil
}

func (m *MockBackend) RetrieveCart(_ context.Context, cartID, fields string) (*commerce.Cart, error) {
	m.Calls = append(m.Calls, "retrieve:"+fields)
	c, ok := m.Carts[cartID]
	if !ok {
		return nil, errNotFound
	}
	cp := *c
	cp.Items = append([]commerce.LineItem(nil), c.Items...)
	return &cp, nil
}

func (m *MockBackend) AddLineItem(_ context.Context, cartID, variantID string, quantity int) (*commerce.Cart, error) {
	m.Calls = append(m.Calls, "add")
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	c, ok := m.Carts[cartID]
	if !ok {
		return nil, errNotFound
	}
	price, ok := m.Variants[variantID]
	if !ok {
		return nil, &commerce.APIError{StatusCode: 400, Message: "Variant does not exist"}
	}
	c.Items = append(c.Items, commerce.LineItem{
		ID:        fmt.Sprintf("li_%d", len(c.Items)+1),
		Title:     variantID,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: price,
	})
	m.recalc(c)
	return c, nil
}

func (m *MockBackend) UpdateLineItem(_ context.Context, cartID, lineItemID string, quantity int) (*commerce.Cart, error) {
	m.Calls = append(m.Calls, "update")
	c, ok := m.Carts[cartID]
	if !ok {
		return nil, errNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == lineItemID {
			c.Items[i].Quantity = quantity
			m.recalc(c)
			return c, nil
		}
	}
	return nil, errors.New("line item not found")
}

func (m *MockBackend) DeleteLineItem(_ context.Context, cartID, lineItemID string) error {
	m.Calls = append(m.Calls, "delete")
	c, ok := m.Carts[cartID]
	if !ok {
		return errNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == lineItemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			m.recalc(c)
			return nil
		}
	}
	return errors.New("line item not found")
}

func (m *MockBackend) recalc(c *commerce.Cart) {
	var subtotal int64
	for _, item := range c.Items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	c.Subtotal = subtotal
	c.Total = subtotal + c.ShippingTotal + c.TaxTotal
}
