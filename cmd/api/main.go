package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"casino401k-backend/internal/audit"
	"casino401k-backend/internal/config"
	"casino401k-backend/internal/handlers"
	"casino401k-backend/internal/ledger"
	"casino401k-backend/internal/middleware"
	"casino401k-backend/internal/rounds"
	"casino401k-backend/internal/services"
	"casino401k-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisStore, err := store.NewRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisStore.Close()

	auditLog, err := audit.Open(cfg.AuditDBPath)
	if err != nil {
		log.Fatalf("Failed to open audit log: %v", err)
	}
	defer auditLog.Close()

	jwtService := services.NewJWTService(cfg)
	tokenLedger := ledger.New(redisStore)

	wsHandler := handlers.NewWebSocketHandler(tokenLedger)
	engine := rounds.NewEngine(tokenLedger, redisStore, auditLog, wsHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settler := rounds.NewSettler(tokenLedger, redisStore, 15*time.Second)
	go settler.Run(ctx)

	userHandler := handlers.NewUserHandler(tokenLedger, jwtService, auditLog)
	walletHandler := handlers.NewWalletHandler(tokenLedger)
	gameHandler := handlers.NewGameHandler(engine)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/session", userHandler.CreateSession)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(redisStore))
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.GET("/sessions", userHandler.GetGameSessions)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		wallet := protected.Group("/wallet")
		{
			wallet.GET("/balance", walletHandler.GetBalance)
			wallet.GET("/history", walletHandler.GetHistory)
			wallet.POST("/reset", walletHandler.ResetAccount)
			wallet.GET("/export", walletHandler.ExportCSV)
		}

		games := protected.Group("/games")
		{
			blackjack := games.Group("/blackjack")
			{
				blackjack.GET("/state", gameHandler.BlackjackState)
				blackjack.POST("/bet", gameHandler.BlackjackBet)
				blackjack.POST("/hit", gameHandler.BlackjackHit)
				blackjack.POST("/stand", gameHandler.BlackjackStand)
				blackjack.POST("/new", gameHandler.BlackjackNewRound)
			}

			highlow := games.Group("/highlow")
			{
				highlow.GET("/state", gameHandler.HighLowState)
				highlow.POST("/bet", gameHandler.HighLowBet)
				highlow.POST("/choose", gameHandler.HighLowChoose)
			}

			slots := games.Group("/slots")
			{
				slots.GET("/state", gameHandler.SlotsState)
				slots.GET("/paytable", gameHandler.SlotsPaytable)
				slots.POST("/spin", gameHandler.SlotsSpin)
			}

			roulette := games.Group("/roulette")
			{
				roulette.GET("/state", gameHandler.RouletteState)
				roulette.POST("/spin", gameHandler.RouletteSpin)
			}
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
