package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yishak-cs/cafe_order/internal/cache"
	"github.com/yishak-cs/cafe_order/internal/logging"
	"github.com/yishak-cs/cafe_order/internal/services"
)

// ERPControl exposes the order sync worker to admin endpoints
type ERPControl interface {
	RetryFailed() int
}

// BreakerState reports the state of the ERP circuit breaker
type BreakerState interface {
	State() string
}

// GraphStatus reports node counts of the order-history graph
type GraphStatus interface {
	Status(ctx context.Context) (map[string]int, error)
}

// Config holds the optional collaborators and settings of the API.
// Nil collaborators are reported as disabled.
type Config struct {
	AdminToken         string
	OrderRatePerMinute int
	Cache              *cache.Cache
	ERP                ERPControl
	Breaker            BreakerState
	Graph              GraphStatus
}

// APIHandler handles all API requests
type APIHandler struct {
	menuService           *services.MenuService
	cartService           *services.CartService
	orderService          *services.OrderService
	recommendationService *services.RecommendationService

	cfg          Config
	orderLimiter *RateLimiter
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(
	menuService *services.MenuService,
	cartService *services.CartService,
	orderService *services.OrderService,
	recommendationService *services.RecommendationService,
	cfg Config,
) *APIHandler {
	useJSONFieldNames()

	h := &APIHandler{
		menuService:           menuService,
		cartService:           cartService,
		orderService:          orderService,
		recommendationService: recommendationService,
		cfg:                   cfg,
	}
	if cfg.OrderRatePerMinute > 0 {
		h.orderLimiter = NewRateLimiter(cfg.OrderRatePerMinute, time.Minute)
	}
	return h
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/health", h.Health)

		api.GET("/menu", h.ListMenu)
		api.GET("/menu/categories", h.ListCategories)
		api.GET("/menu/:itemId", h.GetMenuItem)

		api.POST("/cart", h.CreateCart)
		api.GET("/cart/:cartId", h.GetCart)
		api.POST("/cart/:cartId/items", h.AddCartItem)
		api.PATCH("/cart/:cartId/items/:index", h.UpdateCartItem)
		api.DELETE("/cart/:cartId/items/:index", h.RemoveCartItem)
		api.DELETE("/cart/:cartId", h.DeleteCart)

		api.POST("/orders", RateLimit(h.orderLimiter), h.PlaceOrder)
		api.GET("/orders/:orderId", h.GetOrder)
		api.GET("/orders/track/:number", h.TrackOrder)

		api.POST("/suggestions", h.Suggest)
	}

	admin := router.Group("/api", AdminAuth(h.cfg.AdminToken))
	{
		admin.GET("/orders", h.ListOrders)
		admin.PATCH("/orders/:orderId/status", h.UpdateOrderStatus)
		admin.POST("/admin/erp/retry", h.RetryERPSync)
	}
}

// Close releases background resources held by the handler
func (h *APIHandler) Close() {
	if h.orderLimiter != nil {
		h.orderLimiter.Stop()
	}
}

// Health reports service liveness and the state of optional integrations
func (h *APIHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":     "ok",
		"menu_items": len(h.menuService.All()),
	}

	if h.cfg.Cache != nil {
		body["cache"] = h.cfg.Cache.Stats()
	}

	if h.cfg.Graph != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		counts, err := h.cfg.Graph.Status(ctx)
		if err != nil {
			logging.Warn().Err(err).Msg("Order graph health check failed")
			body["status"] = "degraded"
			body["graph"] = gin.H{"enabled": true, "error": "unreachable"}
		} else {
			body["graph"] = gin.H{"enabled": true, "counts": counts}
		}
	} else {
		body["graph"] = gin.H{"enabled": false}
	}

	if h.cfg.Breaker != nil {
		body["erp"] = gin.H{"enabled": true, "breaker": h.cfg.Breaker.State()}
	} else {
		body["erp"] = gin.H{"enabled": false}
	}

	c.JSON(http.StatusOK, body)
}

// RetryERPSync re-enqueues every order whose ERP sync failed
func (h *APIHandler) RetryERPSync(c *gin.Context) {
	if h.cfg.ERP == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ERP integration is not configured"})
		return
	}

	n := h.cfg.ERP.RetryFailed()
	logging.Info().Int("orders", n).Msg("Retrying failed ERP syncs")
	c.JSON(http.StatusAccepted, gin.H{"scheduled": n})
}
