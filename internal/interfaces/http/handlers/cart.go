// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/berkelium/storefront/internal/config"
	"github.com/berkelium/storefront/internal/domain/cart"
	"github.com/gin-gonic/gin"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	cookies     cartCookie
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		cookies:     newCartCookie(cfg),
	}
}

// AddItemRequest is the body of POST /cart/items
type AddItemRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the body of PATCH /cart/items/:id
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart handles GET /cart. A stale token is dropped and an empty cart returned.
func (h *CartHandler) GetCart(c *gin.Context) {
	token := h.cookies.read(c)

	remote, err := h.cartService.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, cart.ErrInvalidToken) {
			h.cookies.clear(c)
			c.JSON(http.StatusOK, gin.H{
				"message": "Cart retrieved successfully",
				"data":    cart.Summarize(nil),
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cart.Summarize(remote),
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, remote, err := h.cartService.AddItem(c.Request.Context(), h.cookies.read(c), req.VariantID, req.Quantity)
	if !token.IsZero() {
		h.cookies.set(c, token)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cart.Summarize(remote),
	})
}

// UpdateItem handles PATCH /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	remote, err := h.cartService.UpdateItem(c.Request.Context(), h.cookies.read(c), c.Param("id"), *req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cart.Summarize(remote),
	})
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	remote, err := h.cartService.RemoveItem(c.Request.Context(), h.cookies.read(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    cart.Summarize(remote),
	})
}

func (h *CartHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, cart.ErrInvalidToken) {
		h.cookies.clear(c)
	}
	respondError(c, err)
}

// cartCookie reads and writes the cart token cookie
type cartCookie struct {
	name   string
	maxAge int
	secure bool
}

func newCartCookie(cfg *config.Config) cartCookie {
	return cartCookie{
		name:   cfg.Checkout.CartCookieName,
		maxAge: int(cfg.Checkout.CartCookieTTL.Seconds()),
		secure: cfg.Security.CookieSecure,
	}
}

func (k cartCookie) read(c *gin.Context) cart.Token {
	raw, err := c.Cookie(k.name)
	if err != nil {
		return ""
	}
	return cart.ParseToken(raw)
}

func (k cartCookie) set(c *gin.Context, token cart.Token) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(k.name, token.String(), k.maxAge, "/", "", k.secure, true)
}

func (k cartCookie) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(k.name, "", -1, "/", "", k.secure, true)
}
