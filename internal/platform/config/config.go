package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration. Stores are selected by which
// URLs are set: an empty DatabaseURL or RedisURL falls back to the in-memory
// implementation, which keeps local development dependency-free.
type Server struct {
	Addr string `env:"STATUTORY_ADDR" envDefault:":8080"`

	// DatabaseURL selects the Postgres-backed stores when set.
	DatabaseURL string `env:"DATABASE_URL"`
	// RedisURL selects the Redis-backed members list store when set.
	RedisURL string `env:"REDIS_URL"`

	// CoreURL points at the organisation core service that answers
	// permission queries for (user, event, action) triples.
	CoreURL     string        `env:"CORE_URL" envDefault:"http://localhost:8084"`
	CoreTimeout time.Duration `env:"CORE_TIMEOUT" envDefault:"5s"`

	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg, err := env.ParseAs[Server]()
	if err != nil {
		return Server{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
