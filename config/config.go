// Package config loads the serving configuration from an optional TOML file
// with environment variable overrides. Environment always wins, so deployed
// instances can be steered without editing files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	PublisherNone  = "none"
	PublisherRedis = "redis"
	PublisherNATS  = "nats"
)

type Config struct {
	Addr        string `toml:"addr"`
	Store       string `toml:"store"`     // memory | postgres
	Publisher   string `toml:"publisher"` // none | redis | nats
	DatabaseURL string `toml:"database_url"`
	RedisAddr   string `toml:"redis_addr"`
	RedisDB     int    `toml:"redis_db"`
	NATSURL     string `toml:"nats_url"`
	LogLevel    string `toml:"log_level"`
}

func Default() Config {
	return Config{
		Addr:      ":8080",
		Store:     StoreMemory,
		Publisher: PublisherNone,
		RedisAddr: "localhost:6379",
		NATSURL:   "nats://localhost:4222",
		LogLevel:  "info",
	}
}

// Load reads path (when non-empty and present) over the defaults, then
// applies environment overrides, then validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
			}
		}
	}

	cfg.Addr = getEnv("AUCTIOND_ADDR", cfg.Addr)
	cfg.Store = getEnv("AUCTIOND_STORE", cfg.Store)
	cfg.Publisher = getEnv("AUCTIOND_PUBLISHER", cfg.Publisher)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.NATSURL = getEnv("NATS_URL", cfg.NATSURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("store %q requires DATABASE_URL", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q (allowed: %s, %s)", c.Store, StoreMemory, StorePostgres)
	}
	switch c.Publisher {
	case PublisherNone, PublisherRedis, PublisherNATS:
	default:
		return fmt.Errorf("unknown publisher %q (allowed: %s, %s, %s)", c.Publisher, PublisherNone, PublisherRedis, PublisherNATS)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
