package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs access tokens. Must be at least 32 bytes; the token
	// codec refuses shorter secrets at startup.
	JWTSecret string `env:"JWT_SECRET"`
	// JWTExpirationMS is the access token lifetime (default 15 minutes).
	JWTExpirationMS int64 `env:"JWT_EXPIRATION_MS, default=900000"`
	// JWTRefreshExpirationMS is the refresh token lifetime (default 7 days).
	JWTRefreshExpirationMS int64 `env:"JWT_REFRESH_EXPIRATION_MS, default=604800000"`

	// AuditWorkers sizes the security audit dispatcher pool.
	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,  default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
