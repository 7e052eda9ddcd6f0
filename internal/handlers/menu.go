package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yishak-cs/cafe_order/internal/models"
)

// ListMenu handles requests for the menu, optionally filtered by
// ?category=, ?featured=true and ?available=true
func (h *APIHandler) ListMenu(c *gin.Context) {
	var filter models.MenuFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu filter"})
		return
	}

	items := h.menuService.List(filter)
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// ListCategories handles requests for the distinct menu categories
func (h *APIHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.menuService.Categories()})
}

// GetMenuItem handles requests for a single menu item
func (h *APIHandler) GetMenuItem(c *gin.Context) {
	item, err := h.menuService.Get(c.Param("itemId"))
	if err != nil {
		respondError(c, err, "get menu item")
		return
	}
	c.JSON(http.StatusOK, item)
}
