// Package util provides common utilities for netscan.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// HTTP server
	ListenPort int `mapstructure:"listen_port"`

	// Result cache
	CacheCapacity int `mapstructure:"cache_capacity"`

	// Free-tier quota (fixed window)
	QuotaTokens int           `mapstructure:"quota_tokens"`
	QuotaWindow time.Duration `mapstructure:"quota_window"`

	// Probe settings
	PortTimeout    time.Duration `mapstructure:"port_timeout"`
	PingCount      int           `mapstructure:"ping_count"`
	PingDeadline   time.Duration `mapstructure:"ping_deadline"`
	TraceMaxHops   int           `mapstructure:"trace_max_hops"`
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout"`
	DNSResolver    string        `mapstructure:"dns_resolver"`

	// Upstream services
	GeoAPIBase   string `mapstructure:"geo_api_base"`
	IPLookupBase string `mapstructure:"ip_lookup_base"`
	RDAPBase     string `mapstructure:"rdap_base"`
	UpgradeURL   string `mapstructure:"upgrade_url"`

	// Pro-tier user ids (config-backed tier store)
	ProUsers []string `mapstructure:"pro_users"`

	// Optional static bearer keys per tool
	APIKeys map[string]string `mapstructure:"api_keys"`

	// Audit log; empty DataDir disables it
	AuditEnabled bool `mapstructure:"audit_enabled"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".netscan")

	return &Config{
		DataDir:  dataDir,
		LogLevel: "info",
		LogFile:  filepath.Join(dataDir, "netscan.log"),

		ListenPort: 8080,

		CacheCapacity: 128,

		QuotaTokens: 5,
		QuotaWindow: 60 * time.Second,

		PortTimeout:  1200 * time.Millisecond,
		PingCount:    4,
		PingDeadline: 5 * time.Second,
		TraceMaxHops: 10,
		ProbeTimeout: 8 * time.Second,
		DNSResolver:  "8.8.8.8:53",

		GeoAPIBase:   "http://ip-api.com/json",
		IPLookupBase: "https://ipapi.co",
		RDAPBase:     "https://rdap.org/domain",
		UpgradeURL:   "/pricing",

		APIKeys:      map[string]string{},
		AuditEnabled: true,
	}
}

// LoadConfig loads configuration from file and environment.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	// Ensure config directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(cfg.DataDir)
	viper.AddConfigPath(".")

	// Set defaults in viper
	viper.SetDefault("data_dir", cfg.DataDir)
	viper.SetDefault("log_level", cfg.LogLevel)
	viper.SetDefault("listen_port", cfg.ListenPort)
	viper.SetDefault("cache_capacity", cfg.CacheCapacity)
	viper.SetDefault("quota_tokens", cfg.QuotaTokens)
	viper.SetDefault("quota_window", cfg.QuotaWindow)
	viper.SetDefault("port_timeout", cfg.PortTimeout)
	viper.SetDefault("ping_count", cfg.PingCount)
	viper.SetDefault("ping_deadline", cfg.PingDeadline)
	viper.SetDefault("trace_max_hops", cfg.TraceMaxHops)
	viper.SetDefault("probe_timeout", cfg.ProbeTimeout)
	viper.SetDefault("dns_resolver", cfg.DNSResolver)
	viper.SetDefault("geo_api_base", cfg.GeoAPIBase)
	viper.SetDefault("ip_lookup_base", cfg.IPLookupBase)
	viper.SetDefault("rdap_base", cfg.RDAPBase)
	viper.SetDefault("upgrade_url", cfg.UpgradeURL)
	viper.SetDefault("audit_enabled", cfg.AuditEnabled)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// EnsureDir ensures a directory exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
