// internal/infrastructure/commerce/types.go
package commerce

import "time"

// Cart is the remote cart resource. The commerce backend owns all totals.
type Cart struct {
	ID                string             `json:"id"`
	Email             string             `json:"email,omitempty"`
	RegionID          string             `json:"region_id,omitempty"`
	CurrencyCode      string             `json:"currency_code"`
	Items             []LineItem         `json:"items"`
	Subtotal          int64              `json:"subtotal"`
	ShippingTotal     int64              `json:"shipping_total"`
	TaxTotal          int64              `json:"tax_total"`
	Total             int64              `json:"total"`
	ShippingAddress   *Address           `json:"shipping_address,omitempty"`
	BillingAddress    *Address           `json:"billing_address,omitempty"`
	ShippingMethods   []ShippingMethod   `json:"shipping_methods,omitempty"`
	PaymentCollection *PaymentCollection `json:"payment_collection,omitempty"`
}

// LineItem is one row of a cart or order
type LineItem struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Quantity  int            `json:"quantity"`
	UnitPrice int64          `json:"unit_price"`
	Subtotal  int64          `json:"subtotal,omitempty"`
	Total     int64          `json:"total,omitempty"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	VariantID string         `json:"variant_id,omitempty"`
	Variant   *Variant       `json:"variant,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Variant is a purchasable product variant
type Variant struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	SKU             string           `json:"sku,omitempty"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
	Product         *Product         `json:"product,omitempty"`
	CalculatedPrice *CalculatedPrice `json:"calculated_price,omitempty"`
}

// CalculatedPrice is the region-specific price of a variant
type CalculatedPrice struct {
	CalculatedAmount int64  `json:"calculated_amount"`
	OriginalAmount   int64  `json:"original_amount"`
	CurrencyCode     string `json:"currency_code"`
}

// Product is a catalog product
type Product struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle,omitempty"`
	Handle      string     `json:"handle"`
	Description string     `json:"description,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Images      []Image    `json:"images,omitempty"`
	Variants    []Variant  `json:"variants,omitempty"`
	Categories  []Category `json:"categories,omitempty"`
}

// Image is a product image
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Category is a product category
type Category struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Handle           string `json:"handle"`
	Description      string `json:"description,omitempty"`
	ParentCategoryID string `json:"parent_category_id,omitempty"`
}

// Address is a postal address as accepted by the Store API
type Address struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company,omitempty"`
	Address1    string `json:"address_1"`
	Address2    string `json:"address_2,omitempty"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone,omitempty"`
}

// ShippingOption is a delivery choice offered for a cart
type ShippingOption struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Amount int64               `json:"amount"`
	Type   *ShippingOptionType `json:"type,omitempty"`
}

// ShippingOptionType carries the human-readable label of an option
type ShippingOptionType struct {
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Code        string `json:"code,omitempty"`
}

// Description returns the option type description, if any
func (o ShippingOption) Description() string {
	if o.Type == nil {
		return ""
	}
	return o.Type.Description
}

// ShippingMethod is a shipping option bound to a cart
type ShippingMethod struct {
	ID               string `json:"id"`
	ShippingOptionID string `json:"shipping_option_id"`
	Name             string `json:"name,omitempty"`
	Amount           int64  `json:"amount"`
}

// PaymentCollection groups the payment sessions of a cart
type PaymentCollection struct {
	ID              string           `json:"id"`
	Status          string           `json:"status,omitempty"`
	PaymentSessions []PaymentSession `json:"payment_sessions,omitempty"`
}

// PaymentSession is a provider-specific payment attempt
type PaymentSession struct {
	ID         string         `json:"id"`
	ProviderID string         `json:"provider_id"`
	Status     string         `json:"status,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// ClientSecret returns data.client_secret when the provider supplied one
func (s PaymentSession) ClientSecret() string {
	secret, _ := s.Data["client_secret"].(string)
	return secret
}

// SessionFor returns the session for providerID, if present
func (c *PaymentCollection) SessionFor(providerID string) (PaymentSession, bool) {
	if c == nil {
		return PaymentSession{}, false
	}
	for _, s := range c.PaymentSessions {
		if s.ProviderID == providerID {
			return s, true
		}
	}
	return PaymentSession{}, false
}

// Order is a completed order
type Order struct {
	ID              string           `json:"id"`
	DisplayID       int              `json:"display_id"`
	Email           string           `json:"email"`
	Status          string           `json:"status"`
	CurrencyCode    string           `json:"currency_code"`
	Items           []LineItem       `json:"items"`
	Subtotal        int64            `json:"subtotal"`
	ShippingTotal   int64            `json:"shipping_total"`
	TaxTotal        int64            `json:"tax_total"`
	Total           int64            `json:"total"`
	ShippingAddress *Address         `json:"shipping_address,omitempty"`
	ShippingMethods []ShippingMethod `json:"shipping_methods,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Customer is a registered storefront customer
type Customer struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// UpdateCartInput is the body of a cart update. Empty fields are left untouched.
type UpdateCartInput struct {
	Email           string   `json:"email,omitempty"`
	RegionID        string   `json:"region_id,omitempty"`
	ShippingAddress *Address `json:"shipping_address,omitempty"`
	BillingAddress  *Address `json:"billing_address,omitempty"`
}

// ProductQuery filters a product listing
type ProductQuery struct {
	Limit      int
	Offset     int
	CategoryID string
	Handle     string
	RegionID   string
}

// ProductList is a page of products
type ProductList struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
	Offset   int       `json:"offset"`
	Limit    int       `json:"limit"`
}

// RegisterInput is the data needed to create a customer account
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"-"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}
