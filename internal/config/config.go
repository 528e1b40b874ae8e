package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Search    SearchConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Provider  ProviderConfig
	Directory DirectoryConfig
	Session   SessionConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SearchConfig holds Meilisearch connection values. An empty URL disables
// the external index and title search falls back to the document store.
type SearchConfig struct {
	URL    string
	APIKey string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines inbound token verification parameters.
type AuthConfig struct {
	TokenSecret string
}

// ProviderConfig points at the upstream identity provider.
type ProviderConfig struct {
	BaseURL                 string
	APIKey                  string
	RequestTimeoutSeconds   int
	MembershipCacheTTLSec   int
	MembershipCacheDisabled bool
}

// DirectoryConfig tunes the collaborator directory cache.
type DirectoryConfig struct {
	RefreshIntervalSeconds int
	MinForceGapSeconds     int
}

// SessionConfig defines collaboration credential minting parameters.
type SessionConfig struct {
	CredentialSecret     string
	CredentialTTLSeconds int
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
			Name:                  getEnv("APP_NAME", "collab-access-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Search: SearchConfig{
			URL:    os.Getenv("MEILI_URL"),
			APIKey: os.Getenv("MEILI_API_KEY"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			TokenSecret: getEnv("AUTH_TOKEN_SECRET", "dev-secret"),
		},
		Provider: ProviderConfig{
			BaseURL:                 os.Getenv("IDENTITY_PROVIDER_URL"),
			APIKey:                  os.Getenv("IDENTITY_PROVIDER_API_KEY"),
			RequestTimeoutSeconds:   getEnvAsInt("IDENTITY_PROVIDER_TIMEOUT_SECONDS", 5),
			MembershipCacheTTLSec:   getEnvAsInt("MEMBERSHIP_CACHE_TTL_SECONDS", 60),
			MembershipCacheDisabled: getEnvAsBool("MEMBERSHIP_CACHE_DISABLED", false),
		},
		Directory: DirectoryConfig{
			RefreshIntervalSeconds: getEnvAsInt("DIRECTORY_REFRESH_INTERVAL_SECONDS", 30),
			MinForceGapSeconds:     getEnvAsInt("DIRECTORY_MIN_FORCE_GAP_SECONDS", 3),
		},
		Session: SessionConfig{
			CredentialSecret:     getEnv("SESSION_CREDENTIAL_SECRET", "dev-session-secret"),
			CredentialTTLSeconds: getEnvAsInt("SESSION_CREDENTIAL_TTL_SECONDS", 3600),
		},
	}

	return cfg, nil
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

// RefreshInterval returns the periodic roster refresh interval.
func (d DirectoryConfig) RefreshInterval() time.Duration {
	if d.RefreshIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(d.RefreshIntervalSeconds) * time.Second
}

// MinForceGap returns the minimum gap between two effective refreshes.
func (d DirectoryConfig) MinForceGap() time.Duration {
	if d.MinForceGapSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(d.MinForceGapSeconds) * time.Second
}

// CredentialTTL returns the session credential lifetime.
func (s SessionConfig) CredentialTTL() time.Duration {
	if s.CredentialTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(s.CredentialTTLSeconds) * time.Second
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
