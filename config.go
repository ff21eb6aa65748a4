package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// serverConfig collects everything main needs to wire the process. Values
// come from an optional .env file plus the process environment; flags
// override both.
type serverConfig struct {
	Addr         string
	CatalogPath  string
	DatabasePath string
	EventLogPath string
	WorldSeed    int64
	Verbose      bool
}

func loadConfig() serverConfig {
	// Missing .env files are fine; the environment may be set directly.
	_ = godotenv.Load()

	return serverConfig{
		Addr:         envOr("STRANDED_ADDR", ":8080"),
		CatalogPath:  os.Getenv("STRANDED_ITEM_CATALOG"),
		DatabasePath: os.Getenv("STRANDED_DB_PATH"),
		EventLogPath: os.Getenv("STRANDED_EVENT_LOG"),
		WorldSeed:    envInt64("STRANDED_SEED", 0),
		Verbose:      envBool("STRANDED_VERBOSE"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string) bool {
	parsed, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && parsed
}
