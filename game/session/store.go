package session

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/wricardo/monopolio-paisa/game/service"
)

// Store backends selectable through SESSION_STORE
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// StoreConfig selects and configures the session store from the environment
type StoreConfig struct {
	Backend        string `env:"SESSION_STORE" envDefault:"file"`
	SessionsDir    string `env:"SESSIONS_DIR" envDefault:"sessions"`
	RedisURL       string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"monopolio"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"sessions.db"`
}

// LoadStoreConfig parses StoreConfig from the process environment
func LoadStoreConfig() (StoreConfig, error) {
	var cfg StoreConfig
	if err := env.Parse(&cfg); err != nil {
		return StoreConfig{}, fmt.Errorf("parse store config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, nil
}

// OpenPersistence builds the store named by cfg.Backend. The returned closer
// releases connections held by the Redis and SQLite stores and is a no-op for files.
func OpenPersistence(cfg StoreConfig, configManager service.ConfigManager) (SessionPersistence, io.Closer, error) {
	switch cfg.Backend {
	case "", StoreFile:
		p, err := NewFilePersistence(cfg.SessionsDir, configManager)
		if err != nil {
			return nil, nil, err
		}
		return p, nopCloser{}, nil
	case StoreRedis:
		p, err := NewRedisPersistence(NewRedisPool(cfg.RedisURL), cfg.RedisKeyPrefix, configManager)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case StoreSQLite:
		p, err := NewSQLitePersistence(cfg.SQLitePath, configManager)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q (want %s, %s or %s)", cfg.Backend, StoreFile, StoreRedis, StoreSQLite)
	}
}

// Describe returns a short human readable location of the configured store
func (cfg StoreConfig) Describe() string {
	switch cfg.Backend {
	case StoreRedis:
		return "redis " + redactURL(cfg.RedisURL) + " prefix=" + cfg.RedisKeyPrefix
	case StoreSQLite:
		return "sqlite " + cfg.SQLitePath
	default:
		return "file " + cfg.SessionsDir
	}
}

// redactURL drops credentials from a connection URL so it can be logged
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(invalid url)"
	}
	u.User = nil
	return u.String()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
