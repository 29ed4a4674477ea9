// internal/interfaces/http/handlers/fulfillment.go
package handlers

import (
	"net/http"

	"github.com/berkelium/storefront/internal/domain/fulfillment"
	"github.com/berkelium/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FulfillmentHandler exposes the fulfillment provider to the order-management system
type FulfillmentHandler struct {
	fulfillmentService *fulfillment.Service
	logger             *logrus.Logger
}

// NewFulfillmentHandler creates a new fulfillment handler
func NewFulfillmentHandler(fulfillmentService *fulfillment.Service, logger *logrus.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{
		fulfillmentService: fulfillmentService,
		logger:             logger,
	}
}

// ValidateRequest is the body of POST /fulfillment/validate and /fulfillment/calculate
type ValidateRequest struct {
	OptionData fulfillment.Data `json:"option_data"`
	Data       fulfillment.Data `json:"data"`
}

// OptionRequest is the body of POST /fulfillment/options/validate
type OptionRequest struct {
	Data fulfillment.Data `json:"data"`
}

// CancelRequest is the optional body of POST /fulfillment/fulfillments/:id/cancel
type CancelRequest struct {
	Data fulfillment.Data `json:"data"`
}

// ListOptions handles GET /fulfillment/options
func (h *FulfillmentHandler) ListOptions(c *gin.Context) {
	options, err := h.fulfillmentService.ListOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Fulfillment options retrieved successfully",
		"data":    options,
	})
}

// Validate handles POST /fulfillment/validate
func (h *FulfillmentHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	data, err := h.fulfillmentService.Validate(c.Request.Context(), req.OptionData, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Fulfillment data is valid",
		"data":    data,
	})
}

// ValidateOption handles POST /fulfillment/options/validate
func (h *FulfillmentHandler) ValidateOption(c *gin.Context) {
	var req OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	valid, err := h.fulfillmentService.ValidateOption(c.Request.Context(), req.Data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Fulfillment option validated",
		"data":    gin.H{"valid": valid},
	})
}

// CanCalculate handles GET /fulfillment/can-calculate
func (h *FulfillmentHandler) CanCalculate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Pricing capability retrieved successfully",
		"data":    gin.H{"can_calculate": h.fulfillmentService.CanCalculate()},
	})
}

// Calculate handles POST /fulfillment/calculate
func (h *FulfillmentHandler) Calculate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	amount, err := h.fulfillmentService.CalculatePrice(c.Request.Context(), req.OptionData, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Price calculated",
		"data":    gin.H{"amount": amount},
	})
}

// CreateFulfillment handles POST /fulfillment/fulfillments
func (h *FulfillmentHandler) CreateFulfillment(c *gin.Context) {
	var req fulfillment.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.fulfillmentService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"fulfillment_id": req.Fulfillment.ID,
		"caller":         middleware.GetServiceFromContext(c),
	}).Info("fulfillment created")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Fulfillment created successfully",
		"data":    result,
	})
}

// CancelFulfillment handles POST /fulfillment/fulfillments/:id/cancel
func (h *FulfillmentHandler) CancelFulfillment(c *gin.Context) {
	var req CancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	data, err := h.fulfillmentService.Cancel(c.Request.Context(), fulfillment.Fulfillment{
		ID:   c.Param("id"),
		Data: req.Data,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Fulfillment cancelled successfully",
		"data":    data,
	})
}

// CreateReturn handles POST /fulfillment/returns
func (h *FulfillmentHandler) CreateReturn(c *gin.Context) {
	var req fulfillment.Fulfillment
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.fulfillmentService.CreateReturn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return fulfillment created",
		"data":    result,
	})
}

// GetFulfillment handles GET /fulfillment/fulfillments/:id
func (h *FulfillmentHandler) GetFulfillment(c *gin.Context) {
	record, err := h.fulfillmentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Fulfillment retrieved successfully",
		"data":    record,
	})
}

// ListByOrder handles GET /fulfillment/orders/:order_id/fulfillments
func (h *FulfillmentHandler) ListByOrder(c *gin.Context) {
	records, err := h.fulfillmentService.ListByOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []fulfillment.Record{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Fulfillments retrieved successfully",
		"data":    records,
	})
}
