package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"agriprice-service/internal/application"
	"agriprice-service/internal/config"
	"agriprice-service/internal/infrastructure/httpx"
	"agriprice-service/internal/infrastructure/logx"
	"agriprice-service/internal/infrastructure/pg"
	"agriprice-service/internal/infrastructure/provider"
	redisstore "agriprice-service/internal/infrastructure/redis"

	"github.com/redis/go-redis/v9"
)

// devFakePrice is the flat quote the fake provider reports for every pair.
const devFakePrice = 1000

// BuildDB connects to Postgres and applies migrations.
func BuildDB(ctx context.Context, cfg config.Config) (*pg.DB, func(), error) {
	log := logx.L()
	if cfg.DatabaseURL == "" {
		return nil, func() {}, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

// BuildProviders assembles the providers selected by PROVIDER. The fake
// provider lets the service run end-to-end without upstream credentials.
// In live mode an absent key silently disables that provider; an empty
// slice is valid and leaves the aggregator on the baseline fallback.
func BuildProviders(cfg config.Config) []application.PriceProvider {
	if cfg.Provider == "fake" {
		return []application.PriceProvider{provider.NewFake(devFakePrice)}
	}
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	var providers []application.PriceProvider
	if cfg.AgmarknetAPIKey != "" {
		providers = append(providers, &provider.Agmarknet{
			BaseURL: cfg.AgmarknetAPIBase,
			APIKey:  cfg.AgmarknetAPIKey,
			Client:  &httpx.Client{HTTP: httpClient},
		})
	}
	if cfg.CommoditiesAPIKey != "" {
		providers = append(providers, &provider.CommoditiesAPI{
			BaseURL: cfg.CommoditiesAPIBase,
			APIKey:  cfg.CommoditiesAPIKey,
			Client:  &httpx.Client{HTTP: httpClient},
		})
	}
	return providers
}

// BuildSyncLock returns the Redis-backed lock when enabled, a noop otherwise.
func BuildSyncLock(cfg config.Config) (application.SyncLock, func()) {
	if cfg.LockBackend != "redis" {
		return application.NoopLock{}, func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return redisstore.New(rdb, cfg.SyncLockTTL), func() { _ = rdb.Close() }
}

// BuildReconciler wires the full acquisition pipeline.
func BuildReconciler(db *pg.DB, lock application.SyncLock, cfg config.Config) (*application.Reconciler, application.PriceRepo) {
	log := logx.L()
	repo := pg.NewPriceRepo(db)
	agg := application.NewAggregator(BuildProviders(cfg),
		application.WithProviderTimeout(cfg.ProviderTimeout),
		application.WithAggregatorLogger(log),
	)
	recon := application.NewReconciler(repo, agg, lock,
		application.WithReconcilerLogger(log),
	)
	return recon, repo
}
