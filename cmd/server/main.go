package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yishak-cs/cafe_order/internal/cache"
	"github.com/yishak-cs/cafe_order/internal/database"
	"github.com/yishak-cs/cafe_order/internal/erp"
	"github.com/yishak-cs/cafe_order/internal/handlers"
	"github.com/yishak-cs/cafe_order/internal/logging"
	"github.com/yishak-cs/cafe_order/internal/models"
	"github.com/yishak-cs/cafe_order/internal/services"
	"github.com/yishak-cs/cafe_order/pkg/helper"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	config := helper.LoadConfigFromEnv()
	logging.Init(config.Log)
	if envErr != nil {
		logging.Debug().Err(envErr).Msg("No .env file loaded")
	}
	gin.SetMode(config.GinMode)

	responseCache := cache.New(config.CacheTTL)
	defer responseCache.Stop()

	// Load the menu catalog
	items, err := database.LoadMenu(config.MenuFile)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load menu")
	}
	logging.Info().Int("items", len(items)).Msg("Menu loaded")

	menuService := services.NewMenuService(items, responseCache)

	cartService, err := services.NewCartService(config.DataDir, menuService)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open cart store")
	}
	orderRepo, err := database.NewOrderRepository(config.DataDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open order store")
	}

	// Optional order-history graph
	var (
		history   services.HistoryRecorder
		favorites services.FavoritesProvider = services.NewOrderHistoryFavorites(orderRepo)
		graph     handlers.GraphStatus
	)
	if config.Neo4j.Enabled() {
		neo4jClient, orderGraph := connectGraph(config.Neo4j, items)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := neo4jClient.Close(ctx); err != nil {
				logging.Error().Err(err).Msg("Error closing Neo4j connection")
			}
		}()
		history, favorites, graph = orderGraph, orderGraph, orderGraph
	} else {
		logging.Info().Msg("NEO4J_URI not set, favorites computed from the order store")
	}

	// Optional Odoo sync
	var (
		syncer  services.OrderSyncer
		erpCtl  handlers.ERPControl
		breaker handlers.BreakerState
	)
	if config.Odoo.Enabled() {
		gateway := erp.NewBreakerGateway("odoo", erp.NewClient(config.Odoo))
		orderSync := erp.NewSyncer(gateway, orderRepo, 100, config.Odoo.Timeout*2)
		orderSync.Start(context.Background())
		defer orderSync.Stop()

		// Pick up orders left unsynced by the previous run.
		for _, o := range orderRepo.BySyncStatus(models.SyncPending) {
			orderSync.Enqueue(o.ID)
		}
		orderSync.RetryFailed()

		syncer, erpCtl, breaker = orderSync, orderSync, gateway
		logging.Info().Str("url", config.Odoo.URL).Msg("Odoo sync enabled")
	}

	// Initialize services
	orderService := services.NewOrderService(orderRepo, cartService, menuService, history, syncer, responseCache)
	recommendationService := services.NewRecommendationService(menuService, favorites, responseCache)

	// Initialize API handlers
	apiHandler := handlers.NewAPIHandler(menuService, cartService, orderService, recommendationService, handlers.Config{
		AdminToken:         config.AdminToken,
		OrderRatePerMinute: config.OrderRatePerMinute,
		Cache:              responseCache,
		ERP:                erpCtl,
		Breaker:            breaker,
		Graph:              graph,
	})
	defer apiHandler.Close()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestLogger(), handlers.CORS())

	apiHandler.SetupRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.File("./web/static/index.html")
	})

	// Create server with graceful shutdown
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", config.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
	}

	logging.Info().Msg("Server exited properly")
}

// connectGraph opens Neo4j, prepares the schema and mirrors the menu as Item nodes
func connectGraph(cfg database.Config, items []models.MenuItem) (*database.Neo4jClient, *database.OrderGraph) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.NewNeo4jClient(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to Neo4j")
	}

	graph := database.NewOrderGraph(client)
	if err := graph.EnsureSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create graph schema")
	}
	if err := graph.SyncMenu(ctx, items); err != nil {
		logging.Fatal().Err(err).Msg("Failed to sync menu into graph")
	}

	return client, graph
}
