package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conduit-lang/fieldmeta/internal/orm/query"
	"github.com/conduit-lang/fieldmeta/internal/web/cache"
)

// EnvPrefix prefixes the environment variables overriding the file, so
// server.address is read from FIELDMETA_SERVER_ADDRESS
const EnvPrefix = "FIELDMETA"

// Config represents the fieldmeta configuration
type Config struct {
	Locale  string   `mapstructure:"locale"`
	Dialect string   `mapstructure:"dialect"`
	Schema  []string `mapstructure:"schema"`

	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig configures `fieldmeta serve`
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig selects where rendered fragments are cached
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

// DatabaseConfig names the database filters run against
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("locale", "en")
	v.SetDefault("dialect", "mysql")
	v.SetDefault("schema", []string{})
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("database.driver", "")
	v.SetDefault("database.url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads the configuration. An empty path looks for fieldmeta.yaml
// (or .yml) in the working directory and falls back to defaults when there
// is none; an explicit path must exist
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fieldmeta")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values no default can repair
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Locale) == "" {
		return fmt.Errorf("locale must not be empty")
	}
	if _, err := query.ParseDialect(c.Dialect); err != nil {
		return fmt.Errorf("dialect: %w", err)
	}

	switch strings.ToLower(c.Cache.Backend) {
	case cache.BackendMemory, cache.BackendRedis, cache.BackendNone:
	default:
		return fmt.Errorf("cache.backend must be memory, redis or none, got: %s", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got: %s", c.Cache.TTL)
	}

	switch c.Database.Driver {
	case "", "pgx", "postgres", "postgresql", "sqlite3", "sqlite":
	default:
		return fmt.Errorf("database.driver must be pgx or sqlite3, got: %s", c.Database.Driver)
	}
	if c.Database.Driver != "" && c.Database.URL == "" {
		return fmt.Errorf("database.url is required with database.driver %s", c.Database.Driver)
	}
	return nil
}

// SQLDialect returns the dialect compiled filters are quoted for. A
// configured database decides it
func (c *Config) SQLDialect() query.Dialect {
	if c.Database.Driver != "" {
		if d, err := query.ParseDialect(c.Database.Driver); err == nil {
			return d
		}
	}
	d, err := query.ParseDialect(c.Dialect)
	if err != nil {
		return query.MySQL
	}
	return d
}
