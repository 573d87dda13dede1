package main

import (
	"log"
	"net/http"

	"recovery-engine/internal/api"
	"recovery-engine/internal/catalog"
	"recovery-engine/internal/comps"
	"recovery-engine/internal/config"
	"recovery-engine/internal/database"
	"recovery-engine/internal/ebay"
	"recovery-engine/internal/engine"
	"recovery-engine/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	nLog, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalln("Failed to create logger:", err)
	}

	if cfg.EbayAppID == "" {
		nLog.Warn("EBAY_APP_ID not configured, batch runs will be degraded to manifest-only reports")
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	store := catalog.NewStore(db)

	tokens := ebay.NewTokenSource(cfg.EbayAppID, cfg.EbayCertID, cfg.EbayTokenURL)
	cache := comps.NewCache(cfg.CompCacheTTL)
	client := ebay.NewClient(cfg.EbayAPIURL, tokens, cache, ebay.RetryPolicy{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.RetryBaseDelay,
	}, cfg.IncludeShipping, nLog)

	policy := engine.Policy{
		FeeRate:               cfg.MarketplaceFeeRate,
		RecoveryThreshold:     cfg.RecoveryThreshold,
		DefaultRecoveryRate:   cfg.DefaultRecoveryRate,
		WholesaleRecoveryRate: cfg.WholesaleRecoveryRate,
	}
	eng := engine.New(store, client, policy, cfg.RequestDelay, cfg.QueryLimit, nLog)

	hub := api.NewProgressHub(nLog)
	eng.SetProgressFunc(hub.Publish)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Live batch progress for the dashboard
	r.GET("/ws/progress", hub.HandleWS)

	// API routes
	api.SetupRoutes(r.Group("/api"), eng, store, nLog)

	nLog.Info("recovery engine listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
