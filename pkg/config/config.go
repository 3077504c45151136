package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Storage backend kinds selectable via STOREFRONT_STORAGE_BACKEND.
const (
	StorageBackendMemory   = "memory"
	StorageBackendRedis    = "redis"
	StorageBackendDatabase = "database"
)

type Config struct {
	App          AppConfig
	Storage      StorageConfig
	Redis        RedisConfig
	DB           DBConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Password     PasswordConfig
	RemoteSync   RemoteSyncConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	Backend   string `envconfig:"STOREFRONT_STORAGE_BACKEND" default:"memory"`
	Namespace string `envconfig:"STOREFRONT_STORAGE_NAMESPACE" default:"storefront"`
}

func (s StorageConfig) validate(cfg *Config) error {
	switch s.Backend {
	case StorageBackendMemory:
		return nil
	case StorageBackendRedis:
		if cfg.Redis.URL == "" && cfg.Redis.Address == "" {
			return fmt.Errorf("redis storage backend requires STOREFRONT_REDIS_URL or STOREFRONT_REDIS_ADDR")
		}
		return nil
	case StorageBackendDatabase:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("database storage backend requires STOREFRONT_DB_DSN")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"STOREFRONT_DB_DSN" default:"file:storefront.db"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" default:"storefront"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type AdminConfig struct {
	// Argon2id hash of the admin console password; admin routes are
	// disabled when empty.
	PasswordHash string `envconfig:"STOREFRONT_ADMIN_PASSWORD_HASH"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREFRONT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREFRONT_ARGON_KEY_LEN" default:"32"`
}

type RemoteSyncConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_REMOTE_SYNC_BASE_URL"`
	Timeout time.Duration `envconfig:"STOREFRONT_REMOTE_SYNC_TIMEOUT" default:"5s"`
}

// Enabled reports whether order mirroring is configured at all.
func (r RemoteSyncConfig) Enabled() bool {
	return strings.TrimSpace(r.BaseURL) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}
