// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/berkelium/storefront/internal/pkg/money"
)

// Receipt is a placed order prepared for display and printing
type Receipt struct {
	OrderID         string            `json:"order_id"`
	Number          string            `json:"number"`
	Email           string            `json:"email"`
	Status          string            `json:"status"`
	PlacedAt        time.Time         `json:"placed_at"`
	CurrencyCode    string            `json:"currency_code"`
	Lines           []ReceiptLine     `json:"lines"`
	ShippingAddress *commerce.Address `json:"shipping_address,omitempty"`
	ShippingMethod  string            `json:"shipping_method,omitempty"`
	Subtotal        string            `json:"subtotal"`
	Shipping        string            `json:"shipping"`
	Tax             string            `json:"tax"`
	Total           string            `json:"total"`
}

// ReceiptLine is one purchased item
type ReceiptLine struct {
	Title     string `json:"title"`
	Variant   string `json:"variant,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// NewReceipt formats o for display
func NewReceipt(o *commerce.Order) *Receipt {
	code := o.CurrencyCode
	r := &Receipt{
		OrderID:         o.ID,
		Number:          orderNumber(o),
		Email:           o.Email,
		Status:          o.Status,
		PlacedAt:        o.CreatedAt,
		CurrencyCode:    code,
		Lines:           make([]ReceiptLine, 0, len(o.Items)),
		ShippingAddress: o.ShippingAddress,
		Subtotal:        money.Format(o.Subtotal, code),
		Shipping:        money.Format(o.ShippingTotal, code),
		Tax:             money.Format(o.TaxTotal, code),
		Total:           money.Format(o.Total, code),
	}
	if len(o.ShippingMethods) > 0 {
		r.ShippingMethod = o.ShippingMethods[0].Name
	}

	for _, item := range o.Items {
		line := ReceiptLine{
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: money.Format(item.UnitPrice, code),
		}
		total := item.Total
		if total == 0 {
			total = item.UnitPrice * int64(item.Quantity)
		}
		line.Total = money.Format(total, code)
		if item.Variant != nil {
			line.Variant = item.Variant.Title
			line.SKU = item.Variant.SKU
		}
		r.Lines = append(r.Lines, line)
	}
	return r
}

func orderNumber(o *commerce.Order) string {
	if o.DisplayID > 0 {
		return fmt.Sprintf("#%d", o.DisplayID)
	}
	return o.ID
}
