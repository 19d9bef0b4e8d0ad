package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr       string
	PostgresDSN    string
	RedisAddr      string
	KafkaBrokers   []string
	ServiceName    string
	LogLevel       string
	JWTSecret      []byte
	CORSOrigins    []string
	LockTimeout    time.Duration
	RequestTimeout time.Duration
	FanoutBuffer   int
	PrinterGroup   string
	PrinterWorkers int
}

func Load() Config {
	return Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8081"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		KafkaBrokers:   splitCSV(os.Getenv("KAFKA_BROKERS")),
		ServiceName:    getenv("SERVICE_NAME", "pos-api"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		JWTSecret:      []byte(getenv("JWT_SECRET", "dev-secret")),
		CORSOrigins:    splitCSV(os.Getenv("CORS_ORIGINS")),
		LockTimeout:    getDuration("LOCK_TIMEOUT", 3*time.Second),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 5*time.Second),
		FanoutBuffer:   getInt("FANOUT_BUFFER", 1024),
		PrinterGroup:   getenv("PRINTER_GROUP", "kitchen-printer"),
		PrinterWorkers: getInt("PRINTER_WORKERS", 1),
	}
}

func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q (debug, info, warn, error)", c.LogLevel)
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("LOCK_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.FanoutBuffer <= 0 {
		return fmt.Errorf("FANOUT_BUFFER must be positive")
	}
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
