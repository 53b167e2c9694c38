package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	AuditSinkPostgres = "postgres"
	AuditSinkKafka    = "kafka"
	AuditSinkLog      = "log"
)

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ConnString builds a lib/pq URL.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DBName)
}

type Redis struct {
	URL         string
	ElectionTTL time.Duration
}

type Kafka struct {
	Brokers    []string
	AuditTopic string
}

type Config struct {
	Addr                string
	LogLevel            string
	JWTSecret           string
	StorageDriver       string
	Postgres            Postgres
	Redis               Redis
	Kafka               Kafka
	AuditSink           string
	AuditBufferSize     int
	VoteTimeGranularity time.Duration
	ShutdownTimeout     time.Duration
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Addr:          getenv("SERVER_ADDR", "0.0.0.0:8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		StorageDriver: getenv("STORAGE_DRIVER", StoragePostgres),
		Postgres:      PostgresFromEnv(),
		Redis: Redis{
			URL: os.Getenv("REDIS_URL"),
		},
		Kafka: Kafka{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getenv("KAFKA_AUDIT_TOPIC", "ballot.audit"),
		},
		AuditSink: getenv("AUDIT_SINK", AuditSinkLog),
	}

	var err error
	if cfg.Redis.ElectionTTL, err = durationEnv("ELECTION_CACHE_TTL", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.VoteTimeGranularity, err = durationEnv("VOTE_TIME_GRANULARITY", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.AuditBufferSize, err = intEnv("AUDIT_BUFFER_SIZE", 1024); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// PostgresFromEnv reads only the POSTGRES_* variables, for jobs that need
// nothing else.
func PostgresFromEnv() Postgres {
	return Postgres{
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     getenv("POSTGRES_PORT", "5432"),
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		DBName:   os.Getenv("POSTGRES_DB"),
	}
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.AuditSink {
	case AuditSinkLog, AuditSinkPostgres:
	case AuditSinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("AUDIT_SINK=kafka requires KAFKA_BROKERS")
		}
	default:
		return fmt.Errorf("unknown AUDIT_SINK %q", c.AuditSink)
	}
	if c.AuditSink == AuditSinkPostgres && c.StorageDriver != StoragePostgres {
		return fmt.Errorf("AUDIT_SINK=postgres requires STORAGE_DRIVER=postgres")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AuditBufferSize < 1 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be positive")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
