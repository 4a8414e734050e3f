package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// Relational store. DatabaseURL wins when set; otherwise the DSN is
	// assembled from the individual fields.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBName      string
	DBUser      string
	DBPassword  string

	// Artifact store holding the two regression models.
	ModelStoreEndpoint  string
	ModelStoreAccessKey string
	ModelStoreSecretKey string
	ModelStoreBucket    string
	ModelStoreUseSSL    bool
	ModelTempMaxKey     string
	ModelTempMinKey     string

	// Station-based historical provider.
	AEMETAPIKey string

	// Optional Google geocoding fallback.
	GeocoderAPIKey string

	// Observation sync job. Empty SyncLocations disables it.
	SyncLocations []string
	SyncInterval  time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment with sensible defaults. All
// secrets come from the environment; none have defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DBHost = getenvDefault("DB_HOST", "localhost")
	cfg.DBPort = getenvDefault("DB_PORT", "5432")
	cfg.DBName = getenvDefault("DB_NAME", "clima")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")

	cfg.ModelStoreEndpoint = os.Getenv("MODEL_STORE_ENDPOINT")
	cfg.ModelStoreAccessKey = os.Getenv("MODEL_STORE_ACCESS_KEY")
	cfg.ModelStoreSecretKey = os.Getenv("MODEL_STORE_SECRET_KEY")
	cfg.ModelStoreBucket = getenvDefault("MODEL_STORE_BUCKET", "clima-models")
	cfg.ModelStoreUseSSL = getenvBool("MODEL_STORE_USE_SSL", true)
	cfg.ModelTempMaxKey = getenvDefault("MODEL_TEMP_MAX_KEY", "models/temp-max-linreg.json")
	cfg.ModelTempMinKey = getenvDefault("MODEL_TEMP_MIN_KEY", "models/temp-min-linreg.json")

	cfg.AEMETAPIKey = os.Getenv("AEMET_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	if locs := os.Getenv("SYNC_LOCATIONS"); locs != "" {
		for _, loc := range strings.Split(locs, ",") {
			if loc = strings.TrimSpace(loc); loc != "" {
				cfg.SyncLocations = append(cfg.SyncLocations, loc)
			}
		}
	}

	intervalStr := getenvDefault("SYNC_INTERVAL", "6h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	cfg.SyncInterval = interval

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "console")

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *AppConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword), c.DBHost, c.DBPort, c.DBName)
}

// SyncEnabled reports whether the observation sync job should run.
func (c *AppConfig) SyncEnabled() bool {
	return len(c.SyncLocations) > 0 && c.AEMETAPIKey != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
