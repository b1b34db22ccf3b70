package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all portal configuration
type Config struct {
	App       AppConfig
	API       APIConfig
	Session   SessionConfig
	Cache     CacheConfig
	Redis     RedisConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Demo      DemoConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// APIConfig holds upstream platform API settings. BaseURL is a fixed prefix;
// the edge proxy at EdgeOrigin rewrites it to the upstream origin, the portal
// never knows the upstream host.
type APIConfig struct {
	EdgeOrigin string
	BaseURL    string
	Timeout    time.Duration
}

// Endpoint resolves the base prefix against the edge origin.
func (a *APIConfig) Endpoint() string {
	return strings.TrimRight(a.EdgeOrigin, "/") + a.BaseURL
}

// SessionConfig holds session persistence settings
type SessionConfig struct {
	StorePath string // path of the JSON session file
}

// CacheConfig holds query cache settings
type CacheConfig struct {
	Backend          string // memory, redis
	MaxEntries       int
	DefaultStaleness time.Duration
	WalletStaleness  time.Duration
}

// RedisConfig holds Redis connection settings for the redis cache backend
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds portal HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	AuthRateLimitEnabled  bool
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	TrustedProxies        []string
	CORSAllowOrigins      []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// DemoConfig gates the demo scaffolding (live activity feed, seeded wallet
// balances). All demo values are non-authoritative.
type DemoConfig struct {
	Enabled          bool
	ActivityInterval time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PORTAL_ prefix (e.g. PORTAL_API_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		API: APIConfig{
			EdgeOrigin: v.GetString("api.edge_origin"),
			BaseURL:    v.GetString("api.base_url"),
			Timeout:    v.GetDuration("api.timeout"),
		},
		Session: SessionConfig{
			StorePath: v.GetString("session.store_path"),
		},
		Cache: CacheConfig{
			Backend:          v.GetString("cache.backend"),
			MaxEntries:       v.GetInt("cache.max_entries"),
			DefaultStaleness: v.GetDuration("cache.default_staleness"),
			WalletStaleness:  v.GetDuration("cache.wallet_staleness"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:           v.GetDuration("http.read_timeout"),
			WriteTimeout:          v.GetDuration("http.write_timeout"),
			IdleTimeout:           v.GetDuration("http.idle_timeout"),
			AuthRateLimitEnabled:  v.GetBool("http.auth_rate_limit_enabled"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
			TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
			CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
		Demo: DemoConfig{
			Enabled:          v.GetBool("demo.enabled"),
			ActivityInterval: v.GetDuration("demo.activity_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "partner-portal"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.API.EdgeOrigin == "" {
		cfg.API.EdgeOrigin = "http://127.0.0.1:8081"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.Session.StorePath == "" {
		cfg.Session.StorePath = ".portal-session.json"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 1024
	}
	if cfg.Cache.DefaultStaleness == 0 {
		cfg.Cache.DefaultStaleness = 5 * time.Minute
	}
	if cfg.Cache.WalletStaleness == 0 {
		cfg.Cache.WalletStaleness = 2 * time.Minute
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	// Stricter limits for auth endpoints to slow down credential stuffing
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 5
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "partner-portal"
	}
	if cfg.Demo.ActivityInterval == 0 {
		cfg.Demo.ActivityInterval = 8 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got %q", c.Cache.Backend)
	}
	if c.Cache.DefaultStaleness < 0 || c.Cache.WalletStaleness < 0 {
		return fmt.Errorf("cache staleness windows cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Demo.Enabled {
			return fmt.Errorf("demo.enabled must be false in production")
		}
		if !strings.HasPrefix(c.API.BaseURL, "/") {
			return fmt.Errorf("api.base_url must be a relative prefix in production (edge proxy owns the upstream origin)")
		}
	}

	return nil
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
