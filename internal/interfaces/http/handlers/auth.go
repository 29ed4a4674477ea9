// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/berkelium/storefront/internal/domain/account"
	"github.com/berkelium/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles customer authentication and account endpoints
type AuthHandler struct {
	accountService *account.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accountService *account.Service) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.accountService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"data":    resp,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.accountService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    resp,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)
	if err := h.accountService.Logout(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetProfile handles GET /account/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	customer, err := h.accountService.Me(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    customer,
	})
}

// GetOrders handles GET /account/orders
func (h *AuthHandler) GetOrders(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	orders, err := h.accountService.Orders(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}
