// Package config reads storefront settings from the environment, after an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"

	BusLocal = "local"
	BusRedis = "redis"
	BusKafka = "kafka"

	AdminDemo   = "demo"
	AdminRemote = "remote"
)

type Config struct {
	HTTPPort        string
	APIBaseURL      string
	AuthBaseURL     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	StorageDriver string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisPrefix   string
	MongoURI      string
	MongoDBName   string

	BusDriver    string
	KafkaBrokers []string
	KafkaTopic   string

	AdminMode  string
	CartNotice time.Duration
	LogLevel   string
}

// Load reads files (default ".env") into the environment without
// overriding variables that are already set, then builds the Config.
// Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	requestTimeout, err := getEnvSeconds("REQUEST_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := getEnvSeconds("SHUTDOWN_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	cartNotice, err := getEnvSeconds("CART_NOTICE_SECONDS", 3)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		APIBaseURL:      getEnv("API_BASE_URL", "https://dhrumil-backend.vercel.app/api"),
		AuthBaseURL:     getEnv("AUTH_BASE_URL", "https://shopify-backend-indol.vercel.app/api"),
		RequestTimeout:  requestTimeout,
		ShutdownTimeout: shutdownTimeout,

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageSQLite)),
		SQLitePath:    getEnv("SQLITE_PATH", "storefront.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisPrefix:   getEnv("REDIS_PREFIX", "storefront"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGO_DB_NAME", "storefront"),

		BusDriver:    strings.ToLower(getEnv("BUS_DRIVER", BusLocal)),
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-events"),

		AdminMode:  strings.ToLower(getEnv("ADMIN_MODE", AdminDemo)),
		CartNotice: cartNotice,
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageSQLite, StorageRedis, StorageMongo:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.BusDriver {
	case BusLocal, BusRedis, BusKafka:
	default:
		return fmt.Errorf("unknown BUS_DRIVER %q", c.BusDriver)
	}
	switch c.AdminMode {
	case AdminDemo, AdminRemote:
	default:
		return fmt.Errorf("unknown ADMIN_MODE %q", c.AdminMode)
	}
	if c.BusDriver == BusKafka && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required for the kafka bus")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) (time.Duration, error) {
	raw := getEnv(key, strconv.Itoa(defaultValue))
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive number of seconds", key, raw)
	}
	return time.Duration(n) * time.Second, nil
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
