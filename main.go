package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/codetesla51/kvstate/cache"
	"github.com/codetesla51/kvstate/config"
	"github.com/codetesla51/kvstate/monitor"
	"github.com/codetesla51/kvstate/store"
)

func main() {
	// Optional .env for local runs
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := buildLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	s, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("build store: %v", err)
	}

	client := cache.New(s,
		cache.WithLogger(logger),
		cache.WithObserver(monitor.New(cfg.Monitoring, logger)),
		cache.WithDefaultExpirationDelta(cfg.DefaultExpiration),
	)

	ctx := context.Background()

	// Fixed-window detector: fire on the 3rd occurrence inside an hour.
	for i := 0; i < 5; i++ {
		fired, err := client.EvaluateThreshold(ctx, "demo.errors.user123", 3, 3600)
		if err != nil {
			log.Fatalf("evaluate threshold: %v", err)
		}
		if fired {
			fmt.Println("Occurrence", i+1, "fired the threshold for user123")
		} else {
			fmt.Println("Occurrence", i+1, "recorded for user123")
		}
	}

	// First-seen tracking via string sets.
	seen, err := client.AddToStringSet(ctx, "demo.seen_accounts", nil, "acct-42")
	if err != nil {
		log.Fatalf("add to string set: %v", err)
	}
	fmt.Println("Seen accounts:", seen)

	known, err := client.CheckAccountAge(ctx, "demo.seen_accounts")
	if err != nil {
		log.Fatalf("check account age: %v", err)
	}
	fmt.Println("acct-42 previously seen:", known)
}

func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		return store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case config.BackendDatabase:
		return store.NewDatabaseStore(cfg.Database.DSN)
	default:
		return store.NewMemoryStore(), nil
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}
