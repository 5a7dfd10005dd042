package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	DatabaseURL string
	CronSecret  string
	// Providers
	Provider           string
	AgmarknetAPIBase   string
	AgmarknetAPIKey    string
	CommoditiesAPIBase string
	CommoditiesAPIKey  string
	ProviderTimeout    time.Duration
	// Worker
	SyncCron   string
	RunOnStart bool
	// Redis (sync lock)
	LockBackend   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SyncLockTTL   time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CronSecret:         getEnv("CRON_SECRET", ""),
		Provider:           getEnv("PROVIDER", "live"),
		AgmarknetAPIBase:   getEnv("AGMARKNET_API_BASE", "https://api.agmarknet.gov.in"),
		AgmarknetAPIKey:    getEnv("AGMARKNET_API_KEY", ""),
		CommoditiesAPIBase: getEnv("COMMODITIES_API_BASE", "https://commodities-api.com"),
		CommoditiesAPIKey:  getEnv("COMMODITIES_API_KEY", ""),
		ProviderTimeout:    time.Duration(atoiDef(getEnv("PROVIDER_TIMEOUT_MS", "8000"), 8000)) * time.Millisecond,
		SyncCron:           getEnv("SYNC_CRON", "0 30 6 * * *"),
		RunOnStart:         boolDef(getEnv("RUN_ON_START", "false"), false),
		LockBackend:        getEnv("LOCK_BACKEND", "none"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
		SyncLockTTL:        time.Duration(atoiDef(getEnv("SYNC_LOCK_TTL_MS", "60000"), 60000)) * time.Millisecond,
	}
}
