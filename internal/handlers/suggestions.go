package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yishak-cs/cafe_order/internal/models"
)

// suggestionRequest is a preference set plus an optional id of one of the
// caller's orders. The order's customer is used to look up favorites, so
// favorites are only shown to someone holding an order id.
type suggestionRequest struct {
	models.PreferenceInput
	OrderID string `json:"order_id" binding:"omitempty,uuid"`
}

// Suggest handles drink suggestion requests. An empty body uses every default.
func (h *APIHandler) Suggest(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	var customerKey string
	if req.OrderID != "" {
		order, err := h.orderService.Get(req.OrderID)
		if err != nil {
			respondError(c, err, "load order for suggestions")
			return
		}
		customerKey = order.Customer.Key()
	}

	result := h.recommendationService.Suggest(c.Request.Context(), req.PreferenceInput, customerKey)
	c.JSON(http.StatusOK, gin.H{
		"top":          result.Top,
		"alternatives": result.Alternatives,
		"preferences":  req.PreferenceInput.WithDefaults(),
	})
}
