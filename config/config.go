package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDatabase = "database"
)

type Config struct {
	Backend    string         `mapstructure:"backend"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Database   DatabaseConfig `mapstructure:"database"`
	Monitoring bool           `mapstructure:"monitoring"`
	Log        LogConfig      `mapstructure:"log"`

	// DefaultExpiration is the TTL applied when an operation gets no
	// explicit expiration.
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads an optional yaml file, overlays environment variables
// (KVSTATE_REDIS_ADDR -> redis.addr), and applies defaults. Pass an empty
// path for env-only configuration.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("backend", BackendMemory)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.dsn", "")
	v.SetDefault("monitoring", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("default_expiration", 90*24*time.Hour)

	v.SetEnvPrefix("kvstate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis backend selected but redis.addr is empty")
		}
	case BackendDatabase:
		if c.Database.DSN == "" {
			return fmt.Errorf("database backend selected but database.dsn is empty")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}
