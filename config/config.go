package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Premiumflow PremiumflowConfig `yaml:"premiumflow"`
	Server      ServerConfig      `yaml:"server"`
	Source      SourceConfig      `yaml:"source"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type PremiumflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type ServerConfig struct {
	Address           string `yaml:"address"`
	ReadTimeoutMs     int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs    int    `yaml:"write_timeout_ms"`
	ShutdownTimeoutMs int    `yaml:"shutdown_timeout_ms"`
}

type SourceConfig struct {
	NSE NSESourceConfig `yaml:"nse"`
}

type NSESourceConfig struct {
	PageURL        string               `yaml:"page_url"`
	APIURL         string               `yaml:"api_url"`
	Symbol         string               `yaml:"symbol"`
	TimeoutMs      int                  `yaml:"timeout_ms"`
	UserAgent      string               `yaml:"user_agent"`
	AcceptLanguage string               `yaml:"accept_language"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	ConnectionPool ConnectionPoolConfig `yaml:"connection_pool"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

type ConnectionPoolConfig struct {
	MaxIdleConns      int `yaml:"max_idle_conns"`
	MaxConnsPerHost   int `yaml:"max_conns_per_host"`
	IdleConnTimeoutMs int `yaml:"idle_conn_timeout_ms"`
}

type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	Output        string `yaml:"output"`
	MaxAge        int    `yaml:"max_age"`
	DashboardName string `yaml:"dashboard_name"`
}

type MetricsConfig struct {
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
}

func LoadConfig(path string) (*Config, error) {
	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Server: ServerConfig{
			ReadTimeoutMs:     15000,
			WriteTimeoutMs:    30000,
			ShutdownTimeoutMs: 5000,
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override upstream settings from environment variables if available
	if v := os.Getenv("NSE_SYMBOL"); v != "" {
		config.Source.NSE.Symbol = strings.TrimSpace(v)
	}
	if config.Metrics.CloudWatch.Enabled {
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Metrics.CloudWatch.Region = strings.TrimSpace(v)
		}
	}

	config.Source.NSE.Symbol = strings.TrimSpace(config.Source.NSE.Symbol)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Premiumflow.Name == "" {
		return fmt.Errorf("premiumflow.name is required")
	}

	if cfg.Premiumflow.Version == "" {
		return fmt.Errorf("premiumflow.version is required")
	}

	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	nse := &cfg.Source.NSE
	if nse.PageURL == "" {
		return fmt.Errorf("source.nse.page_url is required")
	}
	if nse.APIURL == "" {
		return fmt.Errorf("source.nse.api_url is required")
	}
	if !isValidHTTPURL(nse.PageURL) {
		return fmt.Errorf("source.nse.page_url '%s' is invalid", nse.PageURL)
	}
	if !isValidHTTPURL(nse.APIURL) {
		return fmt.Errorf("source.nse.api_url '%s' is invalid", nse.APIURL)
	}
	if nse.Symbol == "" {
		return fmt.Errorf("source.nse.symbol is required")
	}
	if nse.TimeoutMs <= 0 {
		return fmt.Errorf("source.nse.timeout_ms must be greater than 0")
	}

	if cfg.Metrics.CloudWatch.Enabled && cfg.Metrics.CloudWatch.Region == "" {
		return fmt.Errorf("metrics.cloudwatch.region is required when CloudWatch is enabled")
	}

	return nil
}

func isValidHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
