// internal/infrastructure/commerce/catalog.go
package commerce

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const productFields = "*variants.calculated_price,+variants.metadata"

// ListProducts returns a page of products
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*ProductList, error) {
	query := url.Values{"fields": {productFields}}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.CategoryID != "" {
		query.Add("category_id[]", q.CategoryID)
	}
	if q.Handle != "" {
		query.Set("handle", q.Handle)
	}

	regionID := q.RegionID
	if regionID == "" {
		regionID = c.regionID
	}
	if regionID != "" {
		query.Set("region_id", regionID)
	}

	var list ProductList
	if err := c.do(ctx, http.MethodGet, "/store/products", query, nil, &list, ""); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListCategories returns all product categories
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var env struct {
		Categories []Category `json:"product_categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/store/product-categories", nil, nil, &env, ""); err != nil {
		return nil, err
	}
	return env.Categories, nil
}
