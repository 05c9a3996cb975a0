package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog/log"

	"stationsupply/internal/caching"
	"stationsupply/internal/config"
	"stationsupply/internal/handlers"
	"stationsupply/internal/jobs"
	"stationsupply/internal/jobs/background"
	"stationsupply/internal/middleware"
	"stationsupply/internal/repositories"
	"stationsupply/internal/services"
	"stationsupply/pkg/database"
	"stationsupply/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	logger.Init(os.Getenv("DEBUG") == "true")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // development only
		log.Warn().Msg("JWT_SECRET not set, using a generated secret")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil {
			redisDB = db
		}
	}

	cfg := config.DefaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to load config")
		}
	}

	// Repositories
	itemRepo := repositories.NewItemRepo(pool)
	locationRepo := repositories.NewLocationRepo(pool)
	inventoryRepo := repositories.NewInventoryRepo(pool)
	lotRepo := repositories.NewLotRepo(pool)
	movementRepo := repositories.NewMovementRepo(pool)
	parLevelRepo := repositories.NewParLevelRepo(pool)
	vendorRepo := repositories.NewVendorRepo(pool)
	ruleRepo := repositories.NewAutoOrderRuleRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr, Password: redisPassword, DB: redisDB})

	// Services
	ledgerSvc := services.NewLedgerService(pool, itemRepo, locationRepo, inventoryRepo, lotRepo, movementRepo, cfg.Transfers, cacheSvc)
	inventorySvc := services.NewInventoryService(inventoryRepo, movementRepo, cacheSvc)
	lotSvc := services.NewLotService(lotRepo, ledgerSvc)
	reorderSvc := services.NewReorderService(pool, itemRepo, inventoryRepo, parLevelRepo, ruleRepo, vendorRepo, orderRepo, cfg.Reorder, cacheSvc)
	parLevelSvc := services.NewParLevelService(pool, parLevelRepo, itemRepo, locationRepo)
	catalogSvc := services.NewCatalogService(itemRepo, locationRepo, cacheSvc)
	vendorSvc := services.NewVendorService(vendorRepo, ruleRepo, itemRepo)
	orderSvc := services.NewOrderService(pool, orderRepo, ledgerSvc)

	// Background jobs
	alertSvc := jobs.NewStockAlertService(inventorySvc, lotSvc)
	scheduler, err := background.NewJobScheduler(alertSvc, reorderSvc, cfg.Alerts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create job scheduler")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Handlers
	inventoryHandlers := handlers.NewInventoryHandlers(inventorySvc, ledgerSvc)
	lotHandlers := handlers.NewLotHandlers(lotSvc)
	reorderHandlers := handlers.NewReorderHandlers(reorderSvc)
	parLevelHandlers := handlers.NewParLevelHandlers(parLevelSvc)
	itemHandlers := handlers.NewItemHandlers(catalogSvc)
	locationHandlers := handlers.NewLocationHandlers(catalogSvc)
	vendorHandlers := handlers.NewVendorHandlers(vendorSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, redisClient)

	e := echo.New()
	e.HideBanner = true

	e.Use(logger.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadyCheck)

	v1 := e.Group("/v1")

	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}))
	protected.Use(middleware.ActorContext())

	// Catalog routes
	protected.GET("/items", itemHandlers.List)
	protected.POST("/items", itemHandlers.Create)
	protected.GET("/items/:id", itemHandlers.Get)
	protected.GET("/items/code/:code", itemHandlers.GetByCode)
	protected.PUT("/items/:id", itemHandlers.Update)
	protected.DELETE("/items/:id", itemHandlers.Deactivate)

	protected.GET("/locations", locationHandlers.List)
	protected.POST("/locations", locationHandlers.Create)
	protected.GET("/locations/:id", locationHandlers.Get)
	protected.GET("/locations/:id/children", locationHandlers.ListChildren)
	protected.PUT("/locations/:id", locationHandlers.Update)
	protected.DELETE("/locations/:id", locationHandlers.Deactivate)

	// Inventory routes
	protected.GET("/inventory/current", inventoryHandlers.ListCurrent)
	protected.GET("/inventory/current/:itemID/:locationID", inventoryHandlers.GetCurrent)
	protected.GET("/inventory/movements", inventoryHandlers.ListMovements)
	protected.GET("/inventory/low-stock", inventoryHandlers.LowStock)
	protected.POST("/inventory/receive", inventoryHandlers.Receive)
	protected.POST("/inventory/transfer", inventoryHandlers.Transfer)
	protected.POST("/inventory/use", inventoryHandlers.Use)
	protected.POST("/inventory/dispose", inventoryHandlers.Dispose)
	protected.POST("/inventory/allocate", inventoryHandlers.Allocate)
	protected.POST("/inventory/release", inventoryHandlers.Release)
	protected.POST("/inventory/count", inventoryHandlers.Count)

	// Lot routes
	protected.POST("/lots", lotHandlers.Register)
	protected.POST("/lots/bulk", lotHandlers.BulkRegister)
	protected.GET("/lots/expiring", lotHandlers.ListExpiring)
	protected.GET("/lots/expired", lotHandlers.ListExpired)
	protected.POST("/lots/expired/dispose", lotHandlers.DisposeExpired)
	protected.GET("/lots/:tag", lotHandlers.GetByTag)

	// Par level routes
	protected.PUT("/par-levels", parLevelHandlers.Set)
	protected.POST("/par-levels/bulk", parLevelHandlers.BulkSet)
	protected.GET("/par-levels/item/:itemID", parLevelHandlers.ListByItem)
	protected.GET("/par-levels/:itemID/:locationID", parLevelHandlers.Get)
	protected.DELETE("/par-levels/:itemID/:locationID", parLevelHandlers.Delete)

	// Reorder routes
	protected.GET("/reorder/suggestions", reorderHandlers.Suggestions)
	protected.POST("/reorder/purchase-orders", reorderHandlers.CreateOrders)

	// Vendor and rule routes
	protected.GET("/vendors", vendorHandlers.List)
	protected.POST("/vendors", vendorHandlers.Create)
	protected.GET("/vendors/:id", vendorHandlers.Get)
	protected.PUT("/vendors/:id", vendorHandlers.Update)
	protected.GET("/auto-order-rules", vendorHandlers.ListRules)
	protected.PUT("/auto-order-rules", vendorHandlers.SetRule)
	protected.GET("/auto-order-rules/:itemID", vendorHandlers.GetRule)
	protected.DELETE("/auto-order-rules/:itemID", vendorHandlers.DeleteRule)

	// Purchase order routes
	protected.GET("/orders", orderHandlers.List)
	protected.GET("/orders/:id", orderHandlers.Get)
	protected.POST("/orders/:id/ordered", orderHandlers.MarkOrdered)
	protected.POST("/orders/:id/receive", orderHandlers.ReceiveLine)
	protected.POST("/orders/:id/cancel", orderHandlers.Cancel)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := e.Start(":" + port); err != nil {
			log.Info().Err(err).Msg("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
