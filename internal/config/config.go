// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultRPCURL is the public mainnet endpoint used when nothing else is set.
const DefaultRPCURL = "https://api.mainnet-beta.solana.com"

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Venues    VenuesConfig    `mapstructure:"venues"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// LedgerConfig configures Solana JSON-RPC access.
type LedgerConfig struct {
	RPCURL            string        `mapstructure:"rpc_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Commitment        string        `mapstructure:"commitment"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// RegistryConfig configures the Raydium v3 pool API.
type RegistryConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// CatalogConfig configures the bulk token list used for decimal lookups.
type CatalogConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig selects the decimal-scale store.
type CacheConfig struct {
	Backend       string `mapstructure:"backend"` // memory | redis
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisKey      string `mapstructure:"redis_key"`
}

// VenueConfig is shared by every quote venue.
type VenueConfig struct {
	Enabled           bool              `mapstructure:"enabled"`
	BaseURL           string            `mapstructure:"base_url"`
	Timeout           time.Duration     `mapstructure:"timeout"`
	RequestsPerMinute int               `mapstructure:"requests_per_minute"`
	SlippageBps       int               `mapstructure:"slippage_bps"`
	Headers           map[string]string `mapstructure:"headers"`
}

// OKXConfig adds the credentials OKX accepts on its DEX API.
type OKXConfig struct {
	VenueConfig `mapstructure:",squash"`
	APIKey      string `mapstructure:"api_key"`
	SecretKey   string `mapstructure:"secret_key"`
	Passphrase  string `mapstructure:"passphrase"`
	ProjectID   string `mapstructure:"project_id"`
}

// HasCredentials reports whether requests should be signed.
func (c OKXConfig) HasCredentials() bool {
	return c.APIKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

type VenuesConfig struct {
	Jupiter   VenueConfig `mapstructure:"jupiter"`
	Raydium   VenueConfig `mapstructure:"raydium"`
	OpenOcean VenueConfig `mapstructure:"openocean"`
	OKX       OKXConfig   `mapstructure:"okx"`
}

// WatchConfig drives the periodic comparison loop.
type WatchConfig struct {
	Pairs      []string      `mapstructure:"pairs"`
	Amounts    []float64     `mapstructure:"amounts"`
	Interval   time.Duration `mapstructure:"interval"`
	HealthPort int           `mapstructure:"health_port"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// AmountsDecimal returns trade sizes as decimals.
func (c *WatchConfig) AmountsDecimal() []decimal.Decimal {
	result := make([]decimal.Decimal, len(c.Amounts))
	for i, s := range c.Amounts {
		result[i] = decimal.NewFromFloat(s)
	}
	return result
}

type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceExporter  string `mapstructure:"trace_exporter"` // console | zipkin | otlp-http | otlp-grpc
	TraceEndpoint  string `mapstructure:"trace_endpoint"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load reads configuration from an optional file plus environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SOLQUOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("app.name", "SOLQUOTE_APP_NAME", "SERVICE_NAME")
	_ = v.BindEnv("app.environment", "SOLQUOTE_ENVIRONMENT", "ENVIRONMENT")
	_ = v.BindEnv("app.log_level", "SOLQUOTE_LOG_LEVEL", "LOG_LEVEL")

	_ = v.BindEnv("ledger.rpc_url", "SOLQUOTE_LEDGER_RPC_URL", "SOLANA_RPC_URL")
	_ = v.BindEnv("ledger.commitment", "SOLQUOTE_LEDGER_COMMITMENT")

	_ = v.BindEnv("registry.base_url", "SOLQUOTE_REGISTRY_BASE_URL", "RAYDIUM_API_URL")
	_ = v.BindEnv("catalog.url", "SOLQUOTE_CATALOG_URL")

	_ = v.BindEnv("cache.backend", "SOLQUOTE_CACHE_BACKEND")
	_ = v.BindEnv("cache.redis_addr", "SOLQUOTE_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("cache.redis_password", "SOLQUOTE_REDIS_PASSWORD", "REDIS_PASSWORD")

	_ = v.BindEnv("venues.okx.api_key", "SOLQUOTE_OKX_API_KEY", "OKX_API_KEY")
	_ = v.BindEnv("venues.okx.secret_key", "SOLQUOTE_OKX_SECRET_KEY", "OKX_SECRET_KEY")
	_ = v.BindEnv("venues.okx.passphrase", "SOLQUOTE_OKX_PASSPHRASE", "OKX_PASSPHRASE")
	_ = v.BindEnv("venues.okx.project_id", "SOLQUOTE_OKX_PROJECT_ID", "OKX_PROJECT_ID")

	_ = v.BindEnv("telemetry.enabled", "SOLQUOTE_OTEL_ENABLED", "OTEL_ENABLED")
	_ = v.BindEnv("telemetry.service_name", "SOLQUOTE_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	_ = v.BindEnv("telemetry.otlp_endpoint", "SOLQUOTE_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "solquote")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("ledger.rpc_url", DefaultRPCURL)
	v.SetDefault("ledger.timeout", "30s")
	v.SetDefault("ledger.commitment", "confirmed")
	v.SetDefault("ledger.requests_per_minute", 0)

	v.SetDefault("registry.base_url", "https://api-v3.raydium.io")
	v.SetDefault("registry.timeout", "15s")
	v.SetDefault("registry.requests_per_minute", 300)

	v.SetDefault("catalog.enabled", true)
	v.SetDefault("catalog.url", "https://token.jup.ag/strict")
	v.SetDefault("catalog.timeout", "15s")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.redis_key", "solquote:decimals")

	v.SetDefault("venues.jupiter.enabled", true)
	v.SetDefault("venues.jupiter.base_url", "https://lite-api.jup.ag/swap/v1")
	v.SetDefault("venues.jupiter.timeout", "10s")
	v.SetDefault("venues.jupiter.requests_per_minute", 60)
	v.SetDefault("venues.jupiter.slippage_bps", 50)

	v.SetDefault("venues.raydium.enabled", true)
	v.SetDefault("venues.raydium.base_url", "https://transaction-v1.raydium.io")
	v.SetDefault("venues.raydium.timeout", "10s")
	v.SetDefault("venues.raydium.requests_per_minute", 120)
	v.SetDefault("venues.raydium.slippage_bps", 50)

	v.SetDefault("venues.openocean.enabled", true)
	v.SetDefault("venues.openocean.base_url", "https://open-api.openocean.finance")
	v.SetDefault("venues.openocean.timeout", "10s")
	v.SetDefault("venues.openocean.requests_per_minute", 120)
	v.SetDefault("venues.openocean.slippage_bps", 50)

	v.SetDefault("venues.okx.enabled", true)
	v.SetDefault("venues.okx.base_url", "https://www.okx.com")
	v.SetDefault("venues.okx.timeout", "10s")
	v.SetDefault("venues.okx.requests_per_minute", 60)
	v.SetDefault("venues.okx.slippage_bps", 50)

	v.SetDefault("watch.pairs", []string{"SOL-USDC"})
	v.SetDefault("watch.amounts", []float64{1.0})
	v.SetDefault("watch.interval", "30s")
	v.SetDefault("watch.health_port", 8081)
	v.SetDefault("watch.stale_after", "2m")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "solquote")
	v.SetDefault("telemetry.trace_exporter", "console")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Ledger.Timeout <= 0 {
		return fmt.Errorf("ledger.timeout must be positive")
	}
	switch strings.ToLower(c.Ledger.Commitment) {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid ledger.commitment: %s", c.Ledger.Commitment)
	}
	if c.Registry.BaseURL == "" {
		return fmt.Errorf("registry.base_url is required")
	}
	if c.Catalog.Enabled && c.Catalog.URL == "" {
		return fmt.Errorf("catalog.url is required when the catalog is enabled")
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid cache.backend: %s", c.Cache.Backend)
	}

	venues := map[string]VenueConfig{
		"jupiter":   c.Venues.Jupiter,
		"raydium":   c.Venues.Raydium,
		"openocean": c.Venues.OpenOcean,
		"okx":       c.Venues.OKX.VenueConfig,
	}
	enabled := 0
	for name, vc := range venues {
		if !vc.Enabled {
			continue
		}
		enabled++
		if vc.BaseURL == "" {
			return fmt.Errorf("venues.%s.base_url is required", name)
		}
		if vc.Timeout <= 0 {
			return fmt.Errorf("venues.%s.timeout must be positive", name)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one venue must be enabled")
	}

	for _, p := range c.Watch.Pairs {
		if _, _, ok := SplitPair(p); !ok {
			return fmt.Errorf("invalid watch pair %q, want IN-OUT", p)
		}
	}
	return nil
}

// SplitPair splits "SOL-USDC" into its two legs.
func SplitPair(pair string) (in, out string, ok bool) {
	parts := strings.Split(pair, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}
