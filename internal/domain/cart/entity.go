// internal/domain/cart/entity.go
package cart

import (
	"strings"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/berkelium/storefront/internal/pkg/money"
)

// Token is the client-held cart identifier. An empty token means "no cart";
// a non-empty token is only valid while the commerce backend resolves it.
type Token string

// ParseToken normalizes a raw cookie value
func ParseToken(raw string) Token {
	return Token(strings.TrimSpace(raw))
}

// IsZero reports whether the client holds no cart
func (t Token) IsZero() bool {
	return t == ""
}

func (t Token) String() string {
	return string(t)
}

// ItemSummary is a display-ready line item
type ItemSummary struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	VariantID          string `json:"variant_id,omitempty"`
	VariantTitle       string `json:"variant_title,omitempty"`
	ProductHandle      string `json:"product_handle,omitempty"`
	Thumbnail          string `json:"thumbnail,omitempty"`
	Quantity           int    `json:"quantity"`
	UnitPrice          int64  `json:"unit_price"`
	LineTotal          int64  `json:"line_total"`
	FormattedUnitPrice string `json:"formatted_unit_price"`
	FormattedLineTotal string `json:"formatted_line_total"`
}

// Summary is a display-ready view of a cart. Amounts are minor units as
// reported by the commerce backend.
type Summary struct {
	CartID        string          `json:"cart_id"`
	Email         string          `json:"email,omitempty"`
	CurrencyCode  string          `json:"currency_code"`
	ItemCount     int             `json:"item_count"`
	Items         []ItemSummary   `json:"items"`
	Subtotal      int64           `json:"subtotal"`
	ShippingTotal int64           `json:"shipping_total"`
	TaxTotal      int64           `json:"tax_total"`
	Total         int64           `json:"total"`
	Formatted     FormattedTotals `json:"formatted"`
}

// FormattedTotals holds the totals rendered with their currency
type FormattedTotals struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// ItemCount sums line item quantities
func ItemCount(c *commerce.Cart) int {
	if c == nil {
		return 0
	}
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Summarize builds the display view of c. A nil cart yields an empty summary.
func Summarize(c *commerce.Cart) Summary {
	if c == nil {
		return Summary{Items: []ItemSummary{}}
	}

	total := c.Total
	if total == 0 {
		total = c.Subtotal
	}

	s := Summary{
		CartID:        c.ID,
		Email:         c.Email,
		CurrencyCode:  c.CurrencyCode,
		ItemCount:     ItemCount(c),
		Items:         make([]ItemSummary, 0, len(c.Items)),
		Subtotal:      c.Subtotal,
		ShippingTotal: c.ShippingTotal,
		TaxTotal:      c.TaxTotal,
		Total:         total,
		Formatted: FormattedTotals{
			Subtotal: money.Format(c.Subtotal, c.CurrencyCode),
			Shipping: money.Format(c.ShippingTotal, c.CurrencyCode),
			Tax:      money.Format(c.TaxTotal, c.CurrencyCode),
			Total:    money.Format(total, c.CurrencyCode),
		},
	}

	for _, item := range c.Items {
		s.Items = append(s.Items, summarizeItem(item, c.CurrencyCode))
	}
	return s
}

func summarizeItem(item commerce.LineItem, currencyCode string) ItemSummary {
	line := item.UnitPrice * int64(item.Quantity)

	out := ItemSummary{
		ID:                 item.ID,
		Title:              item.Title,
		VariantID:          item.VariantID,
		Thumbnail:          item.Thumbnail,
		Quantity:           item.Quantity,
		UnitPrice:          item.UnitPrice,
		LineTotal:          line,
		FormattedUnitPrice: money.Format(item.UnitPrice, currencyCode),
		FormattedLineTotal: money.Format(line, currencyCode),
	}

	if v := item.Variant; v != nil {
		out.VariantTitle = v.Title
		if out.VariantID == "" {
			out.VariantID = v.ID
		}
		if p := v.Product; p != nil {
			if p.Title != "" {
				out.Title = p.Title
			}
			out.ProductHandle = p.Handle
			if out.Thumbnail == "" {
				out.Thumbnail = p.Thumbnail
			}
		}
	}
	return out
}
