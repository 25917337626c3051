package models

// MConfig Structure
type MConfig struct {
	Name         string              `yaml:"name"`
	Host         string              `yaml:"host"`
	Port         int                 `yaml:"port"`
	LogLevel     string              `yaml:"log_level"`
	GrpcHost     string              `yaml:"grpc_host"`
	GrpcPort     int                 `yaml:"grpc_port"`
	Storage      MStorageConfig      `yaml:"storage"`
	Network      MNetworkConfig      `yaml:"network"`
	Endpoints    MEndpointsConfig    `yaml:"endpoints"`
	Polling      MPollingConfig      `yaml:"polling"`
	Connectivity MConnectivityConfig `yaml:"connectivity"`
	History      MHistoryConfig      `yaml:"history"`
	Display      MDisplayConfig      `yaml:"display"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // memory, sqlite or postgres
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled       bool     `yaml:"enabled"` // proxy rotation
	Proxies       []string `yaml:"proxies"`
	TimeoutMs     int      `yaml:"timeout_ms"`
	RetryAttempts int      `yaml:"retries"`
	RetryDelayMs  int      `yaml:"retry_delay_ms"`
	UserAgent     string   `yaml:"user_agent"`
}

type MEndpointsConfig struct {
	CurrencyURL string `yaml:"currency_url"`
	MarketURL   string `yaml:"market_url"`
}

type MPollingConfig struct {
	IntervalMs          int  `yaml:"interval_ms"`
	CountdownIntervalMs int  `yaml:"countdown_interval_ms"`
	AutoStart           bool `yaml:"auto_start"`
}

type MConnectivityConfig struct {
	Enabled         bool   `yaml:"enabled"`
	ProbeURL        string `yaml:"probe_url"`
	IntervalSeconds int    `yaml:"probe_interval_seconds"`
}

type MHistoryConfig struct {
	MaxPoints   int `yaml:"max_points"`
	MaxMemoryMB int `yaml:"max_memory_mb"` // 0 = derive from system memory
}

type MDisplayConfig struct {
	DefaultCurrency string `yaml:"default_currency"`
	LocaleTag       string `yaml:"locale_tag"`
}
