// internal/infrastructure/commerce/orders.go
package commerce

import (
	"context"
	"net/http"
	"net/url"
)

const orderFields = "*items,*items.variant,+shipping_address,*shipping_methods"

// RetrieveOrder fetches a placed order by id
func (c *Client) RetrieveOrder(ctx context.Context, orderID string) (*Order, error) {
	var env struct {
		Order *Order `json:"order"`
	}
	query := url.Values{"fields": {orderFields}}
	if err := c.do(ctx, http.MethodGet, "/store/orders/"+url.PathEscape(orderID), query, nil, &env, ""); err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Type: "not_found", Message: "order not found"}
	}
	return env.Order, nil
}
