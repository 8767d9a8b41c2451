package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lottery/cache"
	"lottery/chain"
	"lottery/config"
	"lottery/database"
	"lottery/games"
	"lottery/jobs"
	"lottery/routes"
	"lottery/services"
	tasks "lottery/task"
	"lottery/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

const balanceCacheTTL = 24 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("🟡 No .env file loaded:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: 5,
			Compress:   true,
		}))
	}

	catalog := games.Default()
	if cfg.GameCatalogFile != "" {
		if catalog, err = games.LoadFile(cfg.GameCatalogFile); err != nil {
			log.Fatalf("❌ Failed to load game catalog: %v", err)
		}
		log.Println("✅ Game catalog loaded from", cfg.GameCatalogFile)
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	if err := database.SeedGameTypes(db, catalog); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	snapshots := services.Snapshots{services.SessionSnapshot{DB: db}}
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		defer rdb.Close()
		snapshots = append(snapshots, cache.NewBalanceCache(rdb, balanceCacheTTL))
		log.Println("✅ Connected to redis")
	}

	var sealer *wallet.Sealer
	if cfg.WalletSealKey != nil {
		sealer = wallet.NewSealer(*cfg.WalletSealKey)
	}

	svc := routes.NewServices(db, catalog, chain.NewBscScan(cfg.BscScan), wallet.NewGenerator(sealer), snapshots)

	app := fiber.New()
	routes.Setup(app, db, svc)

	watcher := &jobs.DepositWatcher{
		Deposits:    svc.Deposits,
		Interval:    cfg.DepositWatchInterval,
		Window:      cfg.DepositWatchWindow,
		Concurrency: cfg.DepositWatchConcurrency,
	}
	watcher.Start(ctx)
	tasks.StartSessionCleanup(ctx, db, cfg.SessionCleanupInterval)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	log.Println("Server running at", addr)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Panicf("Failed to start server: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Gracefully shutting down...")
	stop()
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited cleanly")
}
