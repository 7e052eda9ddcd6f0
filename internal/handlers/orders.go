package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yishak-cs/cafe_order/internal/models"
)

// PlaceOrder checks out a cart, or an explicit list of items
func (h *APIHandler) PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "place order")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder returns an order by id
func (h *APIHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.Get(c.Param("orderId"))
	if err != nil {
		respondError(c, err, "get order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// TrackOrder returns the public status of an order by its tracking number
func (h *APIHandler) TrackOrder(c *gin.Context) {
	order, err := h.orderService.GetByNumber(c.Param("number"))
	if err != nil {
		respondError(c, err, "track order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"number":      order.Number,
		"status":      order.Status,
		"items":       order.Items,
		"total":       order.Total,
		"pickup_time": order.PickupTime,
		"history":     order.StatusHistory,
		"updated_at":  order.UpdatedAt,
	})
}

// ListOrders returns orders for staff, optionally filtered by ?status= and ?customer=
func (h *APIHandler) ListOrders(c *gin.Context) {
	filter := models.OrderFilter{
		Status:   models.OrderStatus(c.Query("status")),
		Customer: c.Query("customer"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	orders := h.orderService.List(filter)
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpdateOrderStatus moves an order along its lifecycle
func (h *APIHandler) UpdateOrderStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("orderId"), req.Status)
	if err != nil {
		respondError(c, err, "update order status")
		return
	}
	c.JSON(http.StatusOK, order)
}
