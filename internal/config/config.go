package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-wide runtime configuration, loaded once at startup.
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTTTL        time.Duration
	InternalToken string
	CORSOrigins   []string

	// RetentionDays controls how long read notifications are kept
	// before the cleanup job removes them.
	RetentionDays int
}

// Load reads .env (if present) and the environment. JWT_SECRET is the only
// hard requirement; everything else has a development default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}

	cfg := &Config{
		Port:          envOr("PORT", "8080"),
		DatabaseURL:   envOr("DATABASE_URL", "billsplit.db"),
		JWTSecret:     secret,
		JWTTTL:        envDuration("JWT_TTL", 24*time.Hour),
		InternalToken: os.Getenv("INTERNAL_TOKEN"),
		RetentionDays: envInt("NOTIFICATION_RETENTION_DAYS", 90),
	}

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, v)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, v)
		return fallback
	}
	return d
}
