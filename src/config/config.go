package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"market-dashboard/src/models"
	"market-dashboard/src/utils"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a Config from raw YAML. ${VAR} references are expanded from the
// environment before decoding.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var modelConfig models.MConfig
	if err := yaml.Unmarshal([]byte(expanded), &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Default returns a validated configuration with every default applied
func Default() *Config {
	c := &Config{MConfig: &models.MConfig{}}
	c.ApplyDefaults()
	return c
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "market-dashboard"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.GrpcPort == 0 {
		c.GrpcPort = 50051
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "memory"
	}

	if c.Network.TimeoutMs == 0 {
		c.Network.TimeoutMs = int(utils.APITimeout.Milliseconds())
	}
	if c.Network.RetryAttempts == 0 {
		c.Network.RetryAttempts = utils.RetryAttempts
	}
	if c.Network.RetryDelayMs == 0 {
		c.Network.RetryDelayMs = int(utils.RetryDelay.Milliseconds())
	}

	if c.Endpoints.CurrencyURL == "" {
		c.Endpoints.CurrencyURL = utils.CurrencyEndpoint
	}
	if c.Endpoints.MarketURL == "" {
		c.Endpoints.MarketURL = utils.MarketEndpoint
	}

	if c.Polling.IntervalMs == 0 {
		c.Polling.IntervalMs = int(utils.PollingInterval.Milliseconds())
	}
	if c.Polling.CountdownIntervalMs == 0 {
		c.Polling.CountdownIntervalMs = int(utils.CountdownInterval.Milliseconds())
	}

	if c.Connectivity.IntervalSeconds == 0 {
		c.Connectivity.IntervalSeconds = 15
	}
	if c.Connectivity.ProbeURL == "" {
		c.Connectivity.ProbeURL = c.Endpoints.CurrencyURL
	}

	if c.History.MaxPoints == 0 {
		c.History.MaxPoints = utils.DefaultHistoryPoints
	}

	if c.Display.DefaultCurrency == "" {
		c.Display.DefaultCurrency = utils.DefaultSelectedCurrency
	}
	if c.Display.LocaleTag == "" {
		c.Display.LocaleTag = "en-AU"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "memory":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.TimeoutMs <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1")
	}
	if c.Network.RetryDelayMs < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}

	// Validate Endpoints
	for name, raw := range map[string]string{
		"currency_url": c.Endpoints.CurrencyURL,
		"market_url":   c.Endpoints.MarketURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || !strings.HasPrefix(u.Scheme, "http") || u.Host == "" {
			return fmt.Errorf("endpoint %s is not a valid http url: %q", name, raw)
		}
	}

	// Validate Polling
	if c.Polling.IntervalMs <= 0 {
		return fmt.Errorf("polling interval must be greater than 0")
	}
	if c.Polling.CountdownIntervalMs <= 0 {
		return fmt.Errorf("countdown interval must be greater than 0")
	}

	if c.Connectivity.Enabled && c.Connectivity.IntervalSeconds <= 0 {
		return fmt.Errorf("connectivity probe interval must be greater than 0")
	}

	if c.History.MaxPoints <= 0 {
		return fmt.Errorf("history max points must be greater than 0")
	}
	if c.History.MaxMemoryMB < 0 {
		return fmt.Errorf("history memory limit cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
