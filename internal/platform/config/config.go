package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string
	LogLevel   string
	AdminToken string
	// Location decides which calendar day "today" is for visits and attendance.
	Location *time.Location
	// SeedDemo adds a sample guard and resident when running in memory.
	SeedDemo bool

	Database DatabaseConfig
	Redis    RedisConfig
	Audit    AuditConfig
	QR       QRConfig
}

// DatabaseConfig selects the persistence backend. An empty URL keeps every
// store in memory.
type DatabaseConfig struct {
	URL             string
	Driver          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the optional Redis client used for gate scan locks.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuditConfig configures where audit events go.
type AuditConfig struct {
	// Buffer > 0 makes audit emission asynchronous.
	Buffer       int
	KafkaBrokers []string
	KafkaTopic   string
}

// QRConfig configures pass redemption.
type QRConfig struct {
	ScanLockTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:       envOr("GATEHOUSE_ADDR", ":8080"),
		LogLevel:   envOr("LOG_LEVEL", "info"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
		Location:   location(os.Getenv("GATE_TIMEZONE")),
		SeedDemo:   envBool("GATEHOUSE_SEED_DEMO"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Driver:          envOr("DATABASE_DRIVER", "postgres"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Audit: AuditConfig{
			Buffer:       envInt("AUDIT_BUFFER", 256),
			KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
			KafkaTopic:   envOr("AUDIT_TOPIC", "gate.audit"),
		},
		QR: QRConfig{
			ScanLockTTL: envDuration("QR_SCAN_LOCK_TTL", 5*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// location resolves GATE_TIMEZONE. Blank or unknown names mean UTC so "today"
// never depends on the host's zone.
func location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
