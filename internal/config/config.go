// Package config loads the application settings from Viper and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/gastobot/gastobot/internal/common"
)

// Settings holds the resolved runtime configuration.
type Settings struct {
	DBPath       string
	CacheBackend string
	Redis        RedisSettings
	LogLevel     string
	LogFormat    string
	Threshold    float64
}

// RedisSettings configures the Redis cache backend.
type RedisSettings struct {
	Addr     string
	Password string
	DB       int
}

// Load resolves settings from Viper with defaults filled in. Precedence is
// flags, then GASTOBOT_* environment variables, then the config file.
func Load() (*Settings, error) {
	s := &Settings{
		DBPath:       ExpandPath(viper.GetString("db.path")),
		CacheBackend: viper.GetString("cache.backend"),
		Redis: RedisSettings{
			Addr:     viper.GetString("cache.redis.addr"),
			Password: viper.GetString("cache.redis.password"),
			DB:       viper.GetInt("cache.redis.db"),
		},
		LogLevel:  viper.GetString("logging.level"),
		LogFormat: viper.GetString("logging.format"),
		Threshold: viper.GetFloat64("matching.threshold"),
	}

	if s.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		s.DBPath = filepath.Join(home, ".local", "share", "gastobot", "gastobot.db")
	}

	if s.CacheBackend == "" {
		s.CacheBackend = "memory"
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the settings for values that cannot work.
func (s *Settings) Validate() error {
	switch s.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("%w: unknown cache backend %q", common.ErrInvalidConfig, s.CacheBackend)
	}

	if s.CacheBackend == "redis" && s.Redis.Addr == "" {
		return fmt.Errorf("%w: cache.redis.addr is required for the redis backend", common.ErrInvalidConfig)
	}

	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("%w: matching.threshold must be between 0 and 1", common.ErrInvalidConfig)
	}

	return nil
}

// ExpandPath expands a leading ~ and $VAR environment references in a path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	} else if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
