package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Server         ServerConfig         `mapstructure:"server"`
	Log            LogConfig            `mapstructure:"log"`
	DB             DBConfig             `mapstructure:"db"`
	Directory      DirectoryConfig      `mapstructure:"directory"`
	SchemaRegistry SchemaRegistryConfig `mapstructure:"schema_registry"`
	Oracle         OracleConfig         `mapstructure:"oracle"`
	Notify         NotifyConfig         `mapstructure:"notify"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type DirectoryConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SchemaRegistryConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OracleConfig carries deployment-level knobs only. The dispute window, stake
// multiplier and reputation bounds are protocol constants and live in
// internal/oracle.
type OracleConfig struct {
	ResolverAccounts []string `mapstructure:"resolver_accounts"`
}

type NotifyConfig struct {
	WebhookURL      string        `mapstructure:"webhook_url"`
	WebhookTimeout  time.Duration `mapstructure:"webhook_timeout"`
	DispatchSpec    string        `mapstructure:"dispatch_spec"`
	PruneSpec       string        `mapstructure:"prune_spec"`
	RetainDelivered time.Duration `mapstructure:"retain_delivered"`
	DispatchBatch   int           `mapstructure:"dispatch_batch"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ORACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("directory.base_url", "http://localhost:8081")
	v.SetDefault("directory.timeout", "10s")
	v.SetDefault("schema_registry.base_url", "http://localhost:8082")
	v.SetDefault("schema_registry.timeout", "10s")
	v.SetDefault("oracle.resolver_accounts", []string{})
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.webhook_timeout", "5s")
	v.SetDefault("notify.dispatch_spec", "@every 10s")
	v.SetDefault("notify.prune_spec", "@every 1h")
	v.SetDefault("notify.retain_delivered", "24h")
	v.SetDefault("notify.dispatch_batch", 100)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
