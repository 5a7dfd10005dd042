package config

import "time"

const (
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultHistoryDays     = 30
	MaxHistoryDays         = 365
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1
)
