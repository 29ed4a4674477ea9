// internal/interfaces/http/handlers/order.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/berkelium/storefront/internal/domain/order"
	"github.com/berkelium/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ReceiptRenderer turns a receipt into a PDF
type ReceiptRenderer interface {
	GenerateReceipt(receipt *order.Receipt) (*bytes.Buffer, error)
}

// OrderHandler handles order confirmation and receipt endpoints
type OrderHandler struct {
	orderService *order.Service
	renderer     ReceiptRenderer
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, renderer ReceiptRenderer) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		renderer:     renderer,
	}
}

// GetOrder handles GET /orders/:id, the order confirmation view
func (h *OrderHandler) GetOrder(c *gin.Context) {
	receipt, err := h.receipt(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    receipt,
	})
}

// GetReceipt handles GET /orders/:id/receipt
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.receipt(c)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.renderer.GenerateReceipt(receipt)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate receipt",
		})
		return
	}

	name := "receipt-" + strings.TrimPrefix(receipt.Number, "#")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", name))
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// receipt loads the order; logged-in customers only see their own orders
func (h *OrderHandler) receipt(c *gin.Context) (*order.Receipt, error) {
	email, _ := middleware.GetCustomerEmailFromContext(c)
	return h.orderService.GetReceipt(c.Request.Context(), c.Param("id"), email)
}
