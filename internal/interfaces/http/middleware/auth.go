// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/berkelium/storefront/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

const (
	ctxSessionID  = "session_id"
	ctxCustomerID = "customer_id"
	ctxEmail      = "customer_email"
	ctxService    = "service"
	ctxClaims     = "token_claims"
)

// AuthMiddleware requires a valid customer access token
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		setCustomer(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the customer when a valid token is sent
// and lets anonymous requests through.
func OptionalAuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		if claims, err := jwtManager.ValidateAccessToken(tokenString); err == nil {
			setCustomer(c, claims)
		}
		c.Next()
	}
}

// ServiceAuth requires a service token, as issued to the order-management system
func ServiceAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Service token required",
			})
			return
		}

		claims, err := jwtManager.ValidateServiceToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired service token",
			})
			return
		}

		c.Set(ctxService, claims.Service)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

func setCustomer(c *gin.Context, claims *auth.Claims) {
	c.Set(ctxSessionID, claims.SessionID)
	c.Set(ctxCustomerID, claims.CustomerID)
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxClaims, claims)
}

// GetSessionIDFromContext extracts the account session id from gin context
func GetSessionIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(ctxSessionID)
	return id, id != ""
}

// GetCustomerIDFromContext extracts the customer id from gin context
func GetCustomerIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(ctxCustomerID)
	return id, id != ""
}

// GetCustomerEmailFromContext extracts the customer email from gin context
func GetCustomerEmailFromContext(c *gin.Context) (string, bool) {
	email := c.GetString(ctxEmail)
	return email, email != ""
}

// GetServiceFromContext returns the calling service name
func GetServiceFromContext(c *gin.Context) string {
	return c.GetString(ctxService)
}
