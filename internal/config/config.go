package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Store backends accepted by SESSION_STORE.
const (
	StoreCookie   = "cookie"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config aggregates runtime configuration for the console.
type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Session  SessionConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// BackendConfig points at the users, projects and tasks REST services.
type BackendConfig struct {
	UsersURL       string
	ProjectsURL    string
	TasksURL       string
	TimeoutSeconds int
}

// SessionConfig tunes the session manager and its credential store.
type SessionConfig struct {
	Store             string
	Namespace         string
	Origin            string
	RevalidateSeconds int
	DefaultTTLSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "taskboard-console"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "127.0.0.1"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Backend: BackendConfig{
			UsersURL:       getEnv("USERS_API_URL", "http://localhost:8080"),
			ProjectsURL:    getEnv("PROJECTS_API_URL", "http://localhost:8081"),
			TasksURL:       getEnv("TASKS_API_URL", "http://localhost:8082"),
			TimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 10),
		},
		Session: SessionConfig{
			Store:             strings.ToLower(getEnv("SESSION_STORE", StoreCookie)),
			Namespace:         getEnv("SESSION_NAMESPACE", uuid.NewString()),
			Origin:            getEnv("SESSION_ORIGIN", "http://localhost:3000"),
			RevalidateSeconds: getEnvAsInt("SESSION_REVALIDATE_SECONDS", 60),
			DefaultTTLSeconds: getEnvAsInt("SESSION_DEFAULT_TTL_SECONDS", 3600),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Session.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (s SessionConfig) validate() error {
	switch s.Store {
	case StoreCookie, StoreRedis, StorePostgres:
		return nil
	default:
		return fmt.Errorf("invalid SESSION_STORE %q", s.Store)
	}
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds each backend call.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// RevalidateInterval is the period of the session re-validation tick.
func (s SessionConfig) RevalidateInterval() time.Duration {
	if s.RevalidateSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(s.RevalidateSeconds) * time.Second
}

// DefaultTTL applies when the login response carries no expiry.
func (s SessionConfig) DefaultTTL() time.Duration {
	if s.DefaultTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(s.DefaultTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
