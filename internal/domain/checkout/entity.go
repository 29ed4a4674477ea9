// internal/domain/checkout/entity.go
package checkout

import (
	"errors"
	"strings"
	"time"

	"github.com/berkelium/storefront/internal/domain/cart"
	"github.com/berkelium/storefront/internal/infrastructure/commerce"
)

var (
	ErrIllegalTransition     = errors.New("illegal transition of checkout step")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrEmailRequired         = errors.New("email is required")
	ErrIncompleteAddress     = errors.New("shipping address is incomplete")
	ErrUnknownShippingOption = errors.New("shipping option is not available for this cart")
	ErrNoClientSecret        = errors.New("payment session has not been initialized")
	ErrSessionNotFound       = errors.New("checkout session not found")
)

// CartRedirect is where the UI goes when checkout cannot start
const CartRedirect = "/cart"

// Session is the server-side checkout record of one cart
type Session struct {
	CartID           string                    `json:"cart_id"`
	Step             Step                      `json:"step"`
	Email            string                    `json:"email,omitempty"`
	ShippingOptions  []commerce.ShippingOption `json:"shipping_options,omitempty"`
	SelectedOptionID string                    `json:"selected_option_id,omitempty"`
	ClientSecret     string                    `json:"client_secret,omitempty"`
	StartedAt        time.Time                 `json:"started_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

func (s *Session) hasOption(optionID string) bool {
	for _, o := range s.ShippingOptions {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// ShippingOptionView is a display-ready shipping option
type ShippingOptionView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
	Formatted   string `json:"formatted_amount"`
}

// View is what the UI needs to render the checkout
type View struct {
	Step             Step                 `json:"step"`
	Email            string               `json:"email,omitempty"`
	ShippingOptions  []ShippingOptionView `json:"shipping_options"`
	SelectedOptionID string               `json:"selected_option_id,omitempty"`
	ClientSecret     string               `json:"client_secret,omitempty"`
	PaymentReady     bool                 `json:"payment_ready"`
	Cart             cart.Summary         `json:"cart"`
}

// Completion is the outcome of a placed order
type Completion struct {
	OrderID  string `json:"order_id"`
	CartID   string `json:"cart_id"`
	Redirect string `json:"redirect"`
}

// IncompleteAddressError lists the missing address fields
type IncompleteAddressError struct {
	Missing []string
}

func (e *IncompleteAddressError) Error() string {
	return "missing required address fields: " + strings.Join(e.Missing, ", ")
}

func (e *IncompleteAddressError) Is(target error) bool {
	return target == ErrIncompleteAddress
}

// normalizeAddress trims the address, defaults the country to "us" and
// reports every missing required field.
func normalizeAddress(a commerce.Address) (commerce.Address, error) {
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.Address1 = strings.TrimSpace(a.Address1)
	a.Address2 = strings.TrimSpace(a.Address2)
	a.City = strings.TrimSpace(a.City)
	a.Province = strings.TrimSpace(a.Province)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.CountryCode = strings.ToLower(strings.TrimSpace(a.CountryCode))
	if a.CountryCode == "" {
		a.CountryCode = "us"
	}

	required := []struct {
		name  string
		value string
	}{
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"address_1", a.Address1},
		{"city", a.City},
		{"province", a.Province},
		{"postal_code", a.PostalCode},
	}

	var missing []string
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return a, &IncompleteAddressError{Missing: missing}
	}
	return a, nil
}
