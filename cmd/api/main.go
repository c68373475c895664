package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"givetrace/donor-portal/donor-portal-backend/internal/auth"
	"givetrace/donor-portal/donor-portal-backend/internal/causes"
	"givetrace/donor-portal/donor-portal-backend/internal/config"
	"givetrace/donor-portal/donor-portal-backend/internal/donations"
	"givetrace/donor-portal/donor-portal-backend/internal/evidence"
	"givetrace/donor-portal/donor-portal-backend/internal/ledger"
	"givetrace/donor-portal/donor-portal-backend/internal/notifications"
	ws "givetrace/donor-portal/donor-portal-backend/internal/notifications/websocket"
	"givetrace/donor-portal/donor-portal-backend/internal/release"
	"givetrace/donor-portal/donor-portal-backend/internal/settings"
	"givetrace/donor-portal/donor-portal-backend/internal/tasks"
	"givetrace/donor-portal/donor-portal-backend/internal/transactions"
	"givetrace/donor-portal/donor-portal-backend/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseDSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&auth.User{},
		&causes.Cause{},
		&donations.Donation{},
		&tasks.Task{},
		&transactions.LedgerRecord{},
		&notifications.SentNotification{},
		&settings.UserProfile{},
		&settings.NotificationPreferences{},
	); err != nil {
		log.Fatal("failed to run migrations: ", err)
	}

	feePercent, err := decimal.NewFromString(cfg.Fees.PlatformFeePercent)
	if err != nil {
		log.Fatal("invalid platform fee percent: ", err)
	}
	minAmount, err := decimal.NewFromString(cfg.Fees.MinimumAmount)
	if err != nil {
		log.Fatal("invalid minimum amount: ", err)
	}

	gateway, err := ledger.NewStellarGateway(&ledger.StellarGatewayConfig{
		HorizonURL:       cfg.Stellar.HorizonURL,
		Network:          cfg.Stellar.Network,
		FundingSecretKey: cfg.Stellar.FundingSecretKey,
	})
	if err != nil {
		log.Fatal("failed to initialize ledger gateway: ", err)
	}

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	chainCache := transactions.NewChainHistoryCache(redisClient, cfg.Redis.ChainHistoryTTL)

	s3Client, err := storage.NewS3Client(ctx, cfg.Storage.Region)
	if err != nil {
		log.Fatal("failed to initialize object storage: ", err)
	}
	proofStore := evidence.NewS3ProofStore(s3Client, cfg.Storage.ProofBucket)

	// Email delivery is optional; without a sender address only WebSocket
	// notifications go out.
	var emailSender notifications.EmailSender
	senderAddr := os.Getenv("NOTIFY_EMAIL_SENDER")
	if senderAddr != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
		if err != nil {
			log.Fatal("failed to load AWS config: ", err)
		}
		emailSender = sesv2.NewFromConfig(awsCfg)
	}

	settingsRepo := settings.NewRepository(db)
	settingsService := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(settingsService)

	wsManager := ws.NewManager()
	notifyService := notifications.NewService(db, wsManager, emailSender, senderAddr, settingsService)

	authService := auth.NewService(db, cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	authHandler := auth.NewHandler(authService)

	causeRepo := causes.NewRepository(db)
	causeService := causes.NewService(causeRepo)
	causeHandler := causes.NewHandler(causeService)

	txRepo := transactions.NewRepository(db)
	txService := transactions.NewService(txRepo, causeRepo, gateway, chainCache)
	txHandler := transactions.NewHandler(txService)

	donationRepo := donations.NewRepository(db)
	donationService := donations.NewService(donationRepo, txService, feePercent, minAmount)
	donationHandler := donations.NewHandler(donationService, notifyService)

	taskRepo := tasks.NewRepository(db)
	taskService := tasks.NewService(taskRepo, txService, feePercent, minAmount)
	taskHandler := tasks.NewHandler(taskService, notifyService)

	authority := release.NewAuthority(donationRepo, taskRepo, causeRepo, gateway, txService, notifyService)
	releaseHandler := release.NewHandler(authority)

	evidenceHandler := evidence.NewHandler(proofStore)

	r := gin.Default()
	r.Use(corsMiddleware())

	auth.RegisterRoutes(r, authHandler, authService)

	api := r.Group("/api/v1")
	api.Use(auth.Middleware(authService))
	{
		causes.RegisterRoutes(api.Group("/causes"), causeHandler)
		donations.RegisterRoutes(api.Group("/donations"), donationHandler)
		tasks.RegisterRoutes(api.Group("/tasks"), taskHandler)
		transactions.RegisterRoutes(api.Group("/transactions"), txHandler)
		evidence.RegisterRoutes(api.Group("/evidence"), evidenceHandler)
		settings.RegisterRoutes(api.Group("/settings"), settingsHandler)

		releaseGroup := api.Group("/release")
		releaseGroup.Use(auth.RequireRole(auth.RoleAdmin))
		release.RegisterRoutes(releaseGroup, releaseHandler)

		api.GET("/ws", wsManager.HandleConnection)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen: ", err)
		}
	}()
	log.Printf("Server running on %s", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown: ", err)
	}
	log.Println("Server exiting")
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
