// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP      *HTTPConfig
	Mongo     *MongoConfig
	Redis     *RedisConfig
	Breaker   *BreakerConfig
	RateLimit *RateLimitConfig
	Log       *LogConfig
	Tracing   *TracingConfig
	Seed      bool
}

type HTTPConfig struct {
	Port            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type MongoConfig struct {
	URI      string
	Database string
	// URISet and DatabaseSet report whether the variables were present at all.
	URISet      bool
	DatabaseSet bool

	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
}

// RedisConfig is disabled when Addr is empty.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	CartTTL     time.Duration
	CategoryTTL time.Duration
}

type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// RateLimitConfig is disabled when RPS is zero.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type LogConfig struct {
	Level  string
	Format string
}

// TracingConfig selects the span exporter: "stdout", "otlp" or empty for none.
type TracingConfig struct {
	Exporter    string
	ServiceName string
}

// LoadDotEnv loads variables from the given files (".env" by default) without
// overriding the environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration. Malformed numeric, boolean or duration values are errors.
func Load() (*Config, error) {
	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, err
	}

	mongoCfg, err := loadMongoConfig()
	if err != nil {
		return nil, err
	}

	redisCfg, err := loadRedisConfig()
	if err != nil {
		return nil, err
	}

	breakerCfg, err := loadBreakerConfig()
	if err != nil {
		return nil, err
	}

	rateCfg, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	seed, err := parseBoolEnv("SEED_CATALOG", true)
	if err != nil {
		return nil, err
	}

	tracingCfg, err := loadTracingConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTP:      httpCfg,
		Mongo:     mongoCfg,
		Redis:     redisCfg,
		Breaker:   breakerCfg,
		RateLimit: rateCfg,
		Log: &LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
		Tracing: tracingCfg,
		Seed:    seed,
	}, nil
}

func loadHTTPConfig() (*HTTPConfig, error) {
	requestTimeout, err := parseDurationEnv("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	return &HTTPConfig{
		Port:            getEnvOrDefault("PORT", "8000"),
		RequestTimeout:  requestTimeout,
		ShutdownTimeout: shutdownTimeout,
		AllowedOrigins:  splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}, nil
}

func loadMongoConfig() (*MongoConfig, error) {
	_, uriSet := os.LookupEnv("DATABASE_URL")
	_, dbSet := os.LookupEnv("DATABASE_NAME")

	connectTimeout, err := parseDurationEnv("MONGO_CONNECT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	selectionTimeout, err := parseDurationEnv("MONGO_SERVER_SELECTION_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	maxPool, err := parseIntEnv("MONGO_MAX_POOL_SIZE", 100)
	if err != nil {
		return nil, err
	}
	if maxPool < 1 {
		return nil, fmt.Errorf("MONGO_MAX_POOL_SIZE must be positive, got %d", maxPool)
	}

	minPool, err := parseIntEnv("MONGO_MIN_POOL_SIZE", 10)
	if err != nil {
		return nil, err
	}
	if minPool < 0 || minPool > maxPool {
		return nil, fmt.Errorf("MONGO_MIN_POOL_SIZE must be within [0, %d], got %d", maxPool, minPool)
	}

	return &MongoConfig{
		URI:                    os.Getenv("DATABASE_URL"),
		Database:               getEnvOrDefault("DATABASE_NAME", "holocommerce"),
		URISet:                 uriSet,
		DatabaseSet:            dbSet,
		ConnectTimeout:         connectTimeout,
		ServerSelectionTimeout: selectionTimeout,
		MaxPoolSize:            uint64(maxPool),
		MinPoolSize:            uint64(minPool),
	}, nil
}

func loadTracingConfig() (*TracingConfig, error) {
	exporter := strings.ToLower(strings.TrimSpace(os.Getenv("TRACING_EXPORTER")))
	switch exporter {
	case "", "none":
		exporter = ""
	case "stdout", "otlp":
	default:
		return nil, fmt.Errorf("TRACING_EXPORTER must be stdout, otlp or none, got %q", exporter)
	}

	return &TracingConfig{
		Exporter:    exporter,
		ServiceName: getEnvOrDefault("OTEL_SERVICE_NAME", "holocommerce-storefront"),
	}, nil
}

func loadRedisConfig() (*RedisConfig, error) {
	db, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cartTTL, err := parseDurationEnv("CART_CACHE_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	categoryTTL, err := parseDurationEnv("CATEGORY_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, err
	}

	return &RedisConfig{
		Addr:        os.Getenv("REDIS_ADDR"),
		Password:    os.Getenv("REDIS_PASSWORD"),
		DB:          db,
		CartTTL:     cartTTL,
		CategoryTTL: categoryTTL,
	}, nil
}

func loadBreakerConfig() (*BreakerConfig, error) {
	maxFailures, err := parseIntEnv("BREAKER_MAX_FAILURES", 5)
	if err != nil {
		return nil, err
	}
	if maxFailures < 1 {
		return nil, fmt.Errorf("BREAKER_MAX_FAILURES must be positive, got %d", maxFailures)
	}

	openTimeout, err := parseDurationEnv("BREAKER_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &BreakerConfig{
		MaxFailures: uint32(maxFailures),
		OpenTimeout: openTimeout,
	}, nil
}

func loadRateLimitConfig() (*RateLimitConfig, error) {
	rps, err := parseFloatEnv("RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, err
	}
	if rps < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", rps)
	}

	burst, err := parseIntEnv("RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, err
	}

	return &RateLimitConfig{RPS: rps, Burst: burst}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
