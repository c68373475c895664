package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"givetrace/donor-portal/donor-portal-backend/internal/causes"
	"givetrace/donor-portal/donor-portal-backend/internal/config"
	"givetrace/donor-portal/donor-portal-backend/internal/ledger"
	"givetrace/donor-portal/donor-portal-backend/internal/transactions"
)

// chainsync keeps the cached chain history for every cause wallet warm so
// the unified transaction view does not pay a Horizon round trip per
// request.
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

	gateway, err := ledger.NewStellarGateway(&ledger.StellarGatewayConfig{
		HorizonURL:       cfg.Stellar.HorizonURL,
		Network:          cfg.Stellar.Network,
		FundingSecretKey: cfg.Stellar.FundingSecretKey,
	})
	if err != nil {
		log.Fatal("failed to initialize ledger gateway: ", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	chainCache := transactions.NewChainHistoryCache(redisClient, cfg.Redis.ChainHistoryTTL)

	causeRepo := causes.NewRepository(db)
	txRepo := transactions.NewRepository(db)
	txService := transactions.NewService(txRepo, causeRepo, gateway, chainCache)

	schedule := os.Getenv("CHAINSYNC_SCHEDULE")
	if schedule == "" {
		schedule = "@every 1m"
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		syncAll(causeRepo, txService)
	}); err != nil {
		log.Fatal("invalid chainsync schedule: ", err)
	}
	c.Start()
	log.Printf("chainsync running, schedule %q", schedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Println("chainsync exiting")
}

func syncAll(causeRepo causes.Repository, txService *transactions.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	list, err := causeRepo.List(ctx)
	if err != nil {
		log.Printf("chainsync: failed to list causes: %v", err)
		return
	}

	for _, cause := range list {
		if cause.WalletAddress == "" {
			continue
		}
		if err := txService.RefreshChainHistory(ctx, cause.WalletAddress); err != nil {
			log.Printf("chainsync: refresh failed for %s: %v", cause.WalletAddress, err)
		}
	}
}
