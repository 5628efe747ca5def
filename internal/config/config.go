package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

const (
	CartBackendRedis  = "redis"
	CartBackendMongo  = "mongo"
	CartBackendMemory = "memory"
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	LogLevel string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	CartBackend   string
	CartTTL       time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MongoURI      string
	MongoDB       string

	OrderIDPrefix string

	BreakerFailures    int
	BreakerOpenTimeout time.Duration
}

// maxCartTTL is the longest expiry a mongo TTL index can express.
const maxCartTTL = time.Duration(math.MaxInt32) * time.Second

func Load() (Config, error) {
	cfg := Config{
		AppEnv:   get("APP_ENV", "dev"),
		HTTPAddr: get("HTTP_ADDR", ":8080"),
		LogLevel: get("LOG_LEVEL", "info"),

		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		CartBackend:   get("CART_BACKEND", CartBackendRedis),
		CartTTL:       getDuration("CART_TTL", 7*24*time.Hour),
		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: get("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		MongoURI:      get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       get("MONGO_DB", "checkout"),

		OrderIDPrefix: get("ORDER_ID_PREFIX", "ORD"),

		BreakerFailures:    getInt("BREAKER_FAILURES", 5),
		BreakerOpenTimeout: getDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	if c.BreakerFailures < 1 {
		errs = append(errs, fmt.Errorf("BREAKER_FAILURES must be at least 1, got %d", c.BreakerFailures))
	}
	if c.CartTTL < 0 || c.CartTTL > maxCartTTL {
		errs = append(errs, fmt.Errorf("CART_TTL must be between 0 and %s, got %s", maxCartTTL, c.CartTTL))
	}
	return errors.Join(errs...)
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

// getDuration accepts Go durations ("90s", "2h").
func getDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
