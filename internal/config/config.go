package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Feed fallback policies for photos whose signed URL could not be issued.
const (
	FallbackOmit  = "omit"
	FallbackEmpty = "empty"
)

// Config holds all configuration values from environment.
type Config struct {
	AppPort    string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSSL       bool

	// Redis is optional; without it caches live in process memory.
	RedisHost string
	RedisPort string

	JWTSecret string

	LogLevel string
	Debug    bool

	// Signed URL lifetimes
	PublicURLTTL time.Duration // anonymous map listing
	OwnerURLTTL  time.Duration // authenticated per-user listing and uploads

	FeedLimit       int
	FeedConcurrency int
	FeedFallback    string

	MaxUploadBytes  int64
	CommentCacheTTL time.Duration
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one is present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment.
func FromEnv() (*Config, error) {
	var err error
	cfg := &Config{
		AppPort:        getEnv("STORAGE_PORT", "8080"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "photos"),
		RedisHost:      os.Getenv("REDIS_HOST"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FeedFallback:   strings.ToLower(getEnv("FEED_URL_FALLBACK", FallbackOmit)),
	}

	if cfg.MinioSSL, err = boolEnv("MINIO_SSL", false); err != nil {
		return nil, err
	}
	if cfg.Debug, err = boolEnv("DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.PublicURLTTL, err = durationEnv("PUBLIC_URL_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.OwnerURLTTL, err = durationEnv("OWNER_URL_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CommentCacheTTL, err = durationEnv("COMMENT_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.FeedLimit, err = intEnv("FEED_LIMIT", 500); err != nil {
		return nil, err
	}
	if cfg.FeedConcurrency, err = intEnv("FEED_CONCURRENCY", 16); err != nil {
		return nil, err
	}
	maxUpload, err := intEnv("MAX_UPLOAD_BYTES", 20*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	// Basic validation for required fields
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("database configuration is incomplete")
	}
	if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
		return nil, fmt.Errorf("minio configuration is incomplete")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.FeedFallback != FallbackOmit && cfg.FeedFallback != FallbackEmpty {
		return nil, fmt.Errorf("invalid FEED_URL_FALLBACK value %q (want %q or %q)", cfg.FeedFallback, FallbackOmit, FallbackEmpty)
	}
	if cfg.FeedConcurrency < 1 {
		return nil, fmt.Errorf("FEED_CONCURRENCY must be at least 1")
	}
	if cfg.MaxUploadBytes < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return cfg, nil
}

// RedisEnabled reports whether a Redis cache was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// ConnectDatabase initializes a GORM database connection to PostgreSQL.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %v", key, err)
	}
	return val, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %v", key, err)
	}
	return val, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %v", key, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return val, nil
}
