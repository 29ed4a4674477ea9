// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/berkelium/storefront/internal/domain/account"
	"github.com/berkelium/storefront/internal/domain/cart"
	"github.com/berkelium/storefront/internal/domain/catalog"
	"github.com/berkelium/storefront/internal/domain/checkout"
	"github.com/berkelium/storefront/internal/domain/fulfillment"
	"github.com/berkelium/storefront/internal/domain/order"
	"github.com/berkelium/storefront/internal/domain/payment"
	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/berkelium/storefront/internal/pkg/httpclient"
	"github.com/gin-gonic/gin"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{cart.ErrNoCart, http.StatusNotFound},
	{cart.ErrInvalidQuantity, http.StatusBadRequest},
	{cart.ErrVariantRequired, http.StatusBadRequest},
	{cart.ErrLineItemRequired, http.StatusBadRequest},

	// empty cart before invalid token: both may be wrapped together
	{checkout.ErrEmptyCart, http.StatusConflict},
	{cart.ErrInvalidToken, http.StatusNotFound},
	{checkout.ErrIllegalTransition, http.StatusConflict},
	{checkout.ErrNoClientSecret, http.StatusConflict},
	{checkout.ErrEmailRequired, http.StatusBadRequest},
	{checkout.ErrIncompleteAddress, http.StatusUnprocessableEntity},
	{checkout.ErrUnknownShippingOption, http.StatusUnprocessableEntity},

	{payment.ErrMissingClientSecret, http.StatusConflict},
	{payment.ErrPaymentNotConfirmed, http.StatusPaymentRequired},

	{fulfillment.ErrUnsupportedOperation, http.StatusNotImplemented},
	{fulfillment.ErrMissingVariantMapping, http.StatusUnprocessableEntity},
	{fulfillment.ErrRecordNotFound, http.StatusNotFound},
	{fulfillment.ErrFulfillmentIDRequired, http.StatusBadRequest},

	{account.ErrPasswordMismatch, http.StatusBadRequest},
	{account.ErrInvalidCredentials, http.StatusUnauthorized},
	{account.ErrEmailTaken, http.StatusConflict},
	{account.ErrSessionExpired, http.StatusUnauthorized},

	{order.ErrOrderNotFound, http.StatusNotFound},
	{order.ErrAccessDenied, http.StatusForbidden},
	{catalog.ErrProductNotFound, http.StatusNotFound},

	{httpclient.ErrUnavailable, http.StatusServiceUnavailable},
}

// statusFor maps a domain error to an HTTP status and the message shown to
// the caller. Remote failures keep their own message.
func statusFor(err error) (int, string) {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			if s.status == http.StatusUnprocessableEntity || s.status == http.StatusBadRequest {
				return s.status, err.Error()
			}
			return s.status, s.err.Error()
		}
	}

	var providerErr *fulfillment.ProviderError
	if errors.As(err, &providerErr) {
		return http.StatusBadGateway, providerErr.Error()
	}

	var apiErr *commerce.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return http.StatusNotFound, apiErr.Error()
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			return http.StatusUnprocessableEntity, apiErr.Error()
		default:
			return http.StatusBadGateway, apiErr.Error()
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return http.StatusBadGateway, urlErr.Error()
	}

	return http.StatusInternalServerError, "Internal server error"
}

// respondError writes {"error": msg} with the status mapped from err
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)

	body := gin.H{"error": msg}
	if errors.Is(err, checkout.ErrEmptyCart) {
		body["redirect"] = checkout.CartRedirect
	}
	var incomplete *checkout.IncompleteAddressError
	if errors.As(err, &incomplete) {
		body["missing"] = incomplete.Missing
	}
	c.JSON(status, body)
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
