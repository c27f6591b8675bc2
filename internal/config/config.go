package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	Env         string
	Port        int
	ServiceName string

	StoreDriver      string
	DBURL            string
	DBMaxConns       int
	DBAcquireTimeout time.Duration
	SQLitePath       string

	BcryptCost int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TrustedProxies []string

	RegisterRateLimit  int
	RegisterRateWindow time.Duration
	MaxBodyBytes       int64
	CheckEmailCacheTTL time.Duration

	OTelEnabled     bool
	OTelEndpoint    string
	OTelSampleRatio float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env", "err", err)
	}

	return Config{
		Env:         getEnv("APP_ENV", "dev"),
		Port:        getEnvInt("PORT", 8080),
		ServiceName: getEnv("SERVICE_NAME", "staffhub-api"),

		StoreDriver:      getEnv("STORE_DRIVER", StorePostgres),
		DBURL:            buildDBURL(),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 10),
		DBAcquireTimeout: getEnvDuration("DB_ACQUIRE_TIMEOUT", 3*time.Second),
		SQLitePath:       getEnv("SQLITE_PATH", "staffhub.db"),

		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		TrustedProxies: getEnvList("TRUSTED_PROXIES"),

		RegisterRateLimit:  getEnvInt("RATE_LIMIT_REGISTER", 10),
		RegisterRateWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		CheckEmailCacheTTL: getEnvDuration("CHECK_EMAIL_CACHE_TTL", 30*time.Second),

		OTelEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "staffhub")
	pass := getEnv("DB_PASSWORD", "staffhub")
	name := getEnv("DB_NAME", "staffhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// getEnvList splits a comma separated value. Unset means nil.
func getEnvList(key string) []string {
	var out []string

	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid int env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			slog.Warn("invalid bool env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return b
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)

		if err != nil {
			slog.Warn("invalid float env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return f
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			slog.Warn("invalid duration env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return d
	}
	return fallback
}
