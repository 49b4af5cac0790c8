// Package config loads bridge settings from the environment.
//
// Env (all optional):
//
//	CIDFEED_DATA_DIR, CIDFEED_ADDR, CIDFEED_TOKEN, CIDFEED_JWT_SECRET,
//	CIDFEED_SHELL_SECRET_HASH, CIDFEED_TOKEN_TTL, CIDFEED_STORE,
//	CIDFEED_CONSUL_ADDR, CIDFEED_JOURNAL, CIDFEED_LOG_LEVEL, CIDFEED_LOG_JSON
//
// A .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"cidfeed/pkg/store"
)

const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreConsul = "consul"
)

type Config struct {
	DataDir         string        `env:"CIDFEED_DATA_DIR"`
	Addr            string        `env:"CIDFEED_ADDR" envDefault:"127.0.0.1:7420"`
	Token           string        `env:"CIDFEED_TOKEN"`
	JWTSecret       string        `env:"CIDFEED_JWT_SECRET"`
	ShellSecretHash string        `env:"CIDFEED_SHELL_SECRET_HASH"`
	TokenTTL        time.Duration `env:"CIDFEED_TOKEN_TTL" envDefault:"24h"`
	Store           string        `env:"CIDFEED_STORE" envDefault:"file"`
	ConsulAddr      string        `env:"CIDFEED_CONSUL_ADDR" envDefault:"127.0.0.1:8500"`
	Journal         bool          `env:"CIDFEED_JOURNAL" envDefault:"true"`
	LogLevel        string        `env:"CIDFEED_LOG_LEVEL" envDefault:"info"`
	LogJSON         bool          `env:"CIDFEED_LOG_JSON"`
}

// Load reads .env (if any) and the process environment.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreMemory, StoreConsul:
	default:
		return fmt.Errorf("unsupported store type: %s", c.Store)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// ResolvedDataDir is DataDir with the platform fallbacks applied.
func (c Config) ResolvedDataDir() string {
	return store.ResolveDataDir(c.DataDir)
}

// AuthEnabled reports whether bridge routes require credentials.
func (c Config) AuthEnabled() bool {
	return c.Token != "" || c.ShellSecretHash != ""
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err == nil {
		return godotenv.Load(path)
	}
	return nil
}
