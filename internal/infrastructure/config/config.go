package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	API       APIConfig
	Ads       AdsConfig
	Store     StoreConfig
	Redis     RedisConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Printing  PrintingConfig
	Export    ExportConfig
	Invoice   InvoiceConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// APIConfig holds settings for the admin REST backend
type APIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string
}

// AdsConfig holds ad unit ids and coordinator timings
type AdsConfig struct {
	AppOpenUnitID           string
	RewardedUnitID          string
	UseTestUnits            bool
	ShowAppOpenOnForeground bool
	LoadTimeout             time.Duration
	MinShowInterval         time.Duration
	RewardedSafetyTimeout   time.Duration
	ErrorRetryDelay         time.Duration
}

// Test ad unit ids published by the ad network for development builds
const (
	TestAppOpenUnitID  = "ca-app-pub-3940256099942544/9257395921"
	TestRewardedUnitID = "ca-app-pub-3940256099942544/5354046379"
)

// StoreConfig selects the persisted key-value backend
type StoreConfig struct {
	Driver     string // memory, sqlite, redis
	SQLitePath string
	KeyPrefix  string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Trace SQL of the sqlite store (otelgorm)
}

// PrintingConfig holds invoice PDF conversion settings
type PrintingConfig struct {
	Enabled         bool
	ChromeRemoteURL string // empty = launch a local headless Chrome
	Timeout         time.Duration
	NoSandbox       bool
}

// ExportConfig selects where exported invoice previews are archived
type ExportConfig struct {
	Driver       string // local, s3
	Dir          string
	Bucket       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// InvoiceConfig holds fixed invoice defaults
type InvoiceConfig struct {
	DefaultTaxRate float64
	SalesmanID     int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with OPTICA_ prefix (e.g., OPTICA_API_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.optica")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("OPTICA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

// Default returns the built-in configuration without reading files or the
// environment
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		API: APIConfig{
			BaseURL:    v.GetString("api.base_url"),
			Timeout:    v.GetDuration("api.timeout"),
			MaxRetries: v.GetInt("api.max_retries"),
			RetryDelay: v.GetDuration("api.retry_delay"),
			UserAgent:  v.GetString("api.user_agent"),
		},
		Ads: AdsConfig{
			AppOpenUnitID:           v.GetString("ads.app_open_unit_id"),
			RewardedUnitID:          v.GetString("ads.rewarded_unit_id"),
			UseTestUnits:            v.GetBool("ads.use_test_units"),
			ShowAppOpenOnForeground: v.GetBool("ads.show_app_open_on_foreground"),
			LoadTimeout:             v.GetDuration("ads.load_timeout"),
			MinShowInterval:         v.GetDuration("ads.min_show_interval"),
			RewardedSafetyTimeout:   v.GetDuration("ads.rewarded_safety_timeout"),
			ErrorRetryDelay:         v.GetDuration("ads.error_retry_delay"),
		},
		Store: StoreConfig{
			Driver:     v.GetString("store.driver"),
			SQLitePath: v.GetString("store.sqlite_path"),
			KeyPrefix:  v.GetString("store.key_prefix"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
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
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
		Printing: PrintingConfig{
			Enabled:         v.GetBool("printing.enabled"),
			ChromeRemoteURL: v.GetString("printing.chrome_remote_url"),
			Timeout:         v.GetDuration("printing.timeout"),
			NoSandbox:       v.GetBool("printing.no_sandbox"),
		},
		Export: ExportConfig{
			Driver:       v.GetString("export.driver"),
			Dir:          v.GetString("export.dir"),
			Bucket:       v.GetString("export.bucket"),
			Endpoint:     v.GetString("export.endpoint"),
			Region:       v.GetString("export.region"),
			AccessKey:    v.GetString("export.access_key"),
			SecretKey:    v.GetString("export.secret_key"),
			UsePathStyle: v.GetBool("export.use_path_style"),
		},
		Invoice: InvoiceConfig{
			DefaultTaxRate: v.GetFloat64("invoice.default_tax_rate"),
			SalesmanID:     v.GetInt("invoice.salesman_id"),
		},
	}

	// the foreground trigger is on unless explicitly disabled
	if !v.IsSet("ads.show_app_open_on_foreground") {
		cfg.Ads.ShowAppOpenOnForeground = true
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
		cfg.App.Name = "optica-admin"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://optical.aasols.com/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.MaxRetries == 0 {
		cfg.API.MaxRetries = 2
	}
	if cfg.API.RetryDelay == 0 {
		cfg.API.RetryDelay = 500 * time.Millisecond
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "optica-admin/1.0"
	}
	if cfg.Ads.LoadTimeout == 0 {
		cfg.Ads.LoadTimeout = 6 * time.Second
	}
	if cfg.Ads.MinShowInterval == 0 {
		cfg.Ads.MinShowInterval = 90 * time.Second
	}
	if cfg.Ads.RewardedSafetyTimeout == 0 {
		cfg.Ads.RewardedSafetyTimeout = 15 * time.Second
	}
	if cfg.Ads.ErrorRetryDelay == 0 {
		cfg.Ads.ErrorRetryDelay = 2 * time.Second
	}
	// development builds never serve real inventory
	if cfg.App.Env != "production" && cfg.Ads.AppOpenUnitID == "" && cfg.Ads.RewardedUnitID == "" {
		cfg.Ads.UseTestUnits = true
	}
	if cfg.Ads.UseTestUnits {
		cfg.Ads.AppOpenUnitID = TestAppOpenUnitID
		cfg.Ads.RewardedUnitID = TestRewardedUnitID
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "optica.db"
	}
	if cfg.Store.KeyPrefix == "" {
		cfg.Store.KeyPrefix = "optica:"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
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
		cfg.Telemetry.ServiceName = "optica-admin"
	}
	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 30 * time.Second
	}
	if cfg.Export.Driver == "" {
		cfg.Export.Driver = "local"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "exports"
	}
	if cfg.Export.Region == "" {
		cfg.Export.Region = "us-east-1"
	}
	if cfg.Invoice.DefaultTaxRate == 0 {
		cfg.Invoice.DefaultTaxRate = 15
	}
	if cfg.Invoice.SalesmanID == 0 {
		cfg.Invoice.SalesmanID = 4
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries cannot be negative")
	}

	for name, d := range map[string]time.Duration{
		"ads.load_timeout":            c.Ads.LoadTimeout,
		"ads.min_show_interval":       c.Ads.MinShowInterval,
		"ads.rewarded_safety_timeout": c.Ads.RewardedSafetyTimeout,
		"ads.error_retry_delay":       c.Ads.ErrorRetryDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}

	switch c.Store.Driver {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("store.driver must be one of memory, sqlite, redis, got %q", c.Store.Driver)
	}

	switch c.Export.Driver {
	case "local":
	case "s3":
		if c.Export.Bucket == "" {
			return fmt.Errorf("export.bucket is required when export.driver is s3")
		}
	default:
		return fmt.Errorf("export.driver must be local or s3, got %q", c.Export.Driver)
	}

	if c.Invoice.DefaultTaxRate < 0 || c.Invoice.DefaultTaxRate > 100 {
		return fmt.Errorf("invoice.default_tax_rate must be between 0 and 100, got %v", c.Invoice.DefaultTaxRate)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if u.Scheme != "https" {
			return fmt.Errorf("api.base_url must use https in production")
		}
		if c.Ads.UseTestUnits {
			return fmt.Errorf("ads.use_test_units must be false in production")
		}
		if c.Ads.AppOpenUnitID == "" || c.Ads.RewardedUnitID == "" {
			return fmt.Errorf("ads unit ids are required in production")
		}
	}

	return nil
}

// Addr returns the host:port of the Redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// IsProduction reports whether the app runs with production settings
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}
