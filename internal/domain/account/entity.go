// internal/domain/account/entity.go
package account

import (
	"time"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
)

// Session binds a storefront login to the commerce backend's customer token.
// The remote token never leaves the server.
type Session struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	Email       string    `json:"email"`
	RemoteToken string    `json:"remote_token"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegisterRequest represents customer registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone"`
}

// LoginRequest represents customer login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Customer    *commerce.Customer `json:"customer"`
	AccessToken string             `json:"access_token"`
	ExpiresIn   int64              `json:"expires_in"`
}
