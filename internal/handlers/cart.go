package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yishak-cs/cafe_order/internal/models"
)

// cartResponse adds the computed subtotal to a cart
func cartResponse(cart models.Cart) gin.H {
	return gin.H{
		"cart":     cart,
		"subtotal": cart.Subtotal(),
	}
}

// CreateCart starts a new empty cart
func (h *APIHandler) CreateCart(c *gin.Context) {
	cart, err := h.cartService.Create()
	if err != nil {
		respondError(c, err, "create cart")
		return
	}
	c.JSON(http.StatusCreated, cartResponse(cart))
}

// GetCart returns a cart with its subtotal
func (h *APIHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.Get(c.Param("cartId"))
	if err != nil {
		respondError(c, err, "get cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

// AddCartItem adds a menu item to a cart
func (h *APIHandler) AddCartItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, err := h.cartService.AddItem(c.Param("cartId"), req)
	if err != nil {
		respondError(c, err, "add item to cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

// UpdateCartItem changes the quantity of one cart line
func (h *APIHandler) UpdateCartItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line index"})
		return
	}

	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, err := h.cartService.UpdateItem(c.Param("cartId"), index, *req.Quantity)
	if err != nil {
		respondError(c, err, "update cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

// RemoveCartItem deletes one cart line
func (h *APIHandler) RemoveCartItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line index"})
		return
	}

	cart, err := h.cartService.RemoveItem(c.Param("cartId"), index)
	if err != nil {
		respondError(c, err, "update cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

// DeleteCart discards a cart
func (h *APIHandler) DeleteCart(c *gin.Context) {
	if err := h.cartService.Delete(c.Param("cartId")); err != nil {
		respondError(c, err, "delete cart")
		return
	}
	c.Status(http.StatusNoContent)
}
