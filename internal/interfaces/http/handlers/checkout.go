// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/berkelium/storefront/internal/config"
	"github.com/berkelium/storefront/internal/domain/cart"
	"github.com/berkelium/storefront/internal/domain/checkout"
	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	cookies         cartCookie
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		cookies:         newCartCookie(cfg),
		config:          cfg,
	}
}

// ContactRequest is the body of POST /checkout/contact
type ContactRequest struct {
	Email string `json:"email"`
}

// ShippingRequest is the body of POST /checkout/shipping
type ShippingRequest struct {
	Address commerce.Address `json:"address"`
}

// ShippingOptionRequest is the body of POST /checkout/shipping-option
type ShippingOptionRequest struct {
	OptionID string `json:"option_id" binding:"required"`
}

// StepRequest is the body of POST /checkout/step
type StepRequest struct {
	Step string `json:"step" binding:"required"`
}

// Begin handles POST /checkout. An empty or unknown cart answers 409 with a
// redirect to the cart page.
func (h *CheckoutHandler) Begin(c *gin.Context) {
	view, err := h.checkoutService.Begin(c.Request.Context(), h.cookies.read(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, "Checkout started", view)
}

// GetState handles GET /checkout
func (h *CheckoutHandler) GetState(c *gin.Context) {
	view, err := h.checkoutService.State(c.Request.Context(), h.cookies.read(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, "Checkout retrieved successfully", view)
}

// SubmitContact handles POST /checkout/contact
func (h *CheckoutHandler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.checkoutService.SubmitContact(c.Request.Context(), h.cookies.read(c), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, "Contact saved", view)
}

// SubmitShipping handles POST /checkout/shipping
func (h *CheckoutHandler) SubmitShipping(c *gin.Context) {
	var req ShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.checkoutService.SubmitShipping(c.Request.Context(), h.cookies.read(c), req.Address)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, "Shipping saved", view)
}

// SelectShippingOption handles POST /checkout/shipping-option
func (h *CheckoutHandler) SelectShippingOption(c *gin.Context) {
	var req ShippingOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.checkoutService.SelectShippingOption(c.Request.Context(), h.cookies.read(c), req.OptionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, "Shipping option selected", view)
}

// GoTo handles POST /checkout/step
func (h *CheckoutHandler) GoTo(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	step, err := checkout.ParseStep(req.Step)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.checkoutService.GoTo(c.Request.Context(), h.cookies.read(c), step)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, "Checkout step changed", view)
}

// Complete handles POST /checkout/complete. The cart cookie is cleared once
// the order exists.
func (h *CheckoutHandler) Complete(c *gin.Context) {
	completion, err := h.checkoutService.Complete(c.Request.Context(), h.cookies.read(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.cookies.clear(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Order placed successfully",
		"data":    completion,
	})
}

// GetConfig handles GET /checkout/config
func (h *CheckoutHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout configuration retrieved successfully",
		"data": gin.H{
			"payment_provider_id": h.config.Payment.ProviderID,
			"publishable_key":     h.config.Payment.PublishableKey,
		},
	})
}

func (h *CheckoutHandler) respond(c *gin.Context, message string, view *checkout.View) {
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    view,
	})
}

func (h *CheckoutHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, cart.ErrInvalidToken) {
		h.cookies.clear(c)
	}
	respondError(c, err)
}
