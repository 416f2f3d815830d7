// Package config loads the application configuration from an optional
// config.yaml and ADMINSTORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"adminstore/internal/core/tenant"
	"adminstore/internal/infrastructure/storage"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

// EnvPrefix prefixes every environment override, e.g. ADMINSTORE_STORAGE_MODE.
const EnvPrefix = "ADMINSTORE"

type Configuration struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Logging  LoggingConfig  `mapstructure:"logging" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Tenants  TenantsConfig  `mapstructure:"tenants"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Mode string `mapstructure:"mode" validate:"required,oneof=mapped template driver"`
}

// DatabaseConfig is the default connection, used when a request names no tenant.
// URL may be empty; the first repository call then fails with ErrNoDefaultConnection.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns" validate:"gte=0"`
	MinConns        int32         `mapstructure:"min_conns" validate:"gte=0"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// TenantsConfig enables database-per-tenant routing when MetaURL is set.
type TenantsConfig struct {
	MetaURL         string        `mapstructure:"meta_url"`
	DBUser          string        `mapstructure:"db_user" validate:"required_with=MetaURL"`
	DBPassword      string        `mapstructure:"db_password"`
	MaxPools        int           `mapstructure:"max_pools" validate:"gte=0"`
	MaxConnsPerPool int32         `mapstructure:"max_conns_per_pool" validate:"gte=0"`
	PoolIdleTimeout time.Duration `mapstructure:"pool_idle_timeout"`
	Prewarm         bool          `mapstructure:"prewarm"`
}

// Enabled reports whether tenant routing is configured.
func (t TenantsConfig) Enabled() bool {
	return t.MetaURL != ""
}

// defaults doubles as the key list viper needs to bind environment variables
// for keys absent from the config file.
var defaults = map[string]any{
	"server.address":              ":8080",
	"server.read_timeout":         15 * time.Second,
	"server.write_timeout":        30 * time.Second,
	"server.idle_timeout":         60 * time.Second,
	"server.shutdown_timeout":     30 * time.Second,
	"logging.level":               "info",
	"logging.development":         false,
	"storage.mode":                string(storage.ModeMapped),
	"database.url":                "",
	"database.max_conns":          25,
	"database.min_conns":          2,
	"database.max_conn_lifetime":  time.Hour,
	"database.max_conn_idle_time": 30 * time.Minute,
	"tenants.meta_url":            "",
	"tenants.db_user":             "",
	"tenants.db_password":         "",
	"tenants.max_pools":           100,
	"tenants.max_conns_per_pool":  10,
	"tenants.pool_idle_timeout":   30 * time.Minute,
	"tenants.prewarm":             false,
}

// NewConfig reads config.yaml from the usual locations when present and
// applies environment overrides on top.
func NewConfig() (*Configuration, error) {
	return Load(viper.New())
}

// Load fills the configuration from v. Callers may preset values or a config
// file on v before calling.
func Load(v *viper.Viper) (*Configuration, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/adminstore")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Storage.Mode = strings.ToLower(strings.TrimSpace(cfg.Storage.Mode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// StorageMode returns the parsed backend mode.
func (c Configuration) StorageMode() storage.Mode {
	mode, _ := storage.ParseMode(c.Storage.Mode)
	return mode
}

// LoggerConfig maps the logging section onto pkg/logger.
func (c Configuration) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Logging.Level,
		Development: c.Logging.Development,
	}
}

// PoolConfig maps the database section onto the default pool settings.
func (c DatabaseConfig) PoolConfig() postgres.PoolConfig {
	pc := postgres.DefaultPoolConfig(c.URL)
	if c.MaxConns > 0 {
		pc.MaxConns = c.MaxConns
	}
	if c.MinConns > 0 {
		pc.MinConns = c.MinConns
	}
	if c.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = c.MaxConnLifetime
	}
	if c.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = c.MaxConnIdleTime
	}
	return pc
}

// ManagerConfig maps the tenants section onto the tenant manager settings.
func (t TenantsConfig) ManagerConfig() tenant.ManagerConfig {
	mc := tenant.DefaultManagerConfig()
	mc.DBUser = t.DBUser
	mc.DBPassword = t.DBPassword
	if t.MaxPools > 0 {
		mc.MaxTotalPools = t.MaxPools
	}
	if t.MaxConnsPerPool > 0 {
		mc.MaxConnsPerTenant = t.MaxConnsPerPool
	}
	if t.PoolIdleTimeout > 0 {
		mc.PoolIdleTimeout = t.PoolIdleTimeout
	}
	return mc
}
