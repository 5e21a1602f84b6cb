// Package config loads the dashboard configuration from an optional YAML
// file plus environment credentials. API keys never live in the YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultQuoteCurrency = "AUD"
	DefaultCacheDir      = "./cache"
	DefaultDataDir       = "./data"
	DefaultPollInterval  = time.Minute
	DefaultDashboardAddr = ":8087"
)

// AlertRule triggers a notification when an instrument's last price
// crosses the configured bound.
type AlertRule struct {
	Instrument string
	Above      bool
	Price      decimal.Decimal
}

// Config is the resolved runtime configuration.
type Config struct {
	QuoteCurrency string
	BaseURL       string
	APIKey        string
	PrivateKey    string
	CacheDir      string
	DataDir       string
	PollInterval  time.Duration
	DashboardAddr string
	// DashboardDomain enables autocert TLS for the dashboard when set.
	DashboardDomain string
	Alerts          []AlertRule
}

type alertRuleTmp struct {
	Instrument string `yaml:"instrument"`
	Direction  string `yaml:"direction"`
	Price      string `yaml:"price"`
}

type configTmp struct {
	QuoteCurrency   string         `yaml:"quote_currency,omitempty"`
	BaseURL         string         `yaml:"base_url,omitempty"`
	CacheDir        string         `yaml:"cache_dir,omitempty"`
	DataDir         string         `yaml:"data_dir,omitempty"`
	PollInterval    string         `yaml:"poll_interval,omitempty"`
	DashboardAddr   string         `yaml:"dashboard_addr,omitempty"`
	DashboardDomain string         `yaml:"dashboard_domain,omitempty"`
	Alerts          []alertRuleTmp `yaml:"alerts,omitempty"`
}

// Load resolves the configuration. path may be empty, in which case only
// defaults and the environment apply. A .env file next to the binary is
// honoured for credentials.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		QuoteCurrency: DefaultQuoteCurrency,
		CacheDir:      DefaultCacheDir,
		DataDir:       DefaultDataDir,
		PollInterval:  DefaultPollInterval,
		DashboardAddr: DefaultDashboardAddr,
		APIKey:        os.Getenv("BTCMARKETS_API_KEY"),
		PrivateKey:    os.Getenv("BTCMARKETS_PRIVATE_KEY"),
	}

	if path != "" {
		if err := cfg.applyYaml(path); err != nil {
			return nil, err
		}
	}

	if cfg.APIKey == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("BTCMARKETS_API_KEY and BTCMARKETS_PRIVATE_KEY environment variables must be set")
	}
	return cfg, nil
}

func (c *Config) applyYaml(path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if tmp.QuoteCurrency != "" {
		c.QuoteCurrency = tmp.QuoteCurrency
	}
	if tmp.BaseURL != "" {
		c.BaseURL = tmp.BaseURL
	}
	if tmp.CacheDir != "" {
		c.CacheDir = tmp.CacheDir
	}
	if tmp.DataDir != "" {
		c.DataDir = tmp.DataDir
	}
	if tmp.PollInterval != "" {
		interval, err := time.ParseDuration(tmp.PollInterval)
		if err != nil {
			return fmt.Errorf("incorrect 'poll_interval' in %s: %w", path, err)
		}
		c.PollInterval = interval
	}
	if tmp.DashboardAddr != "" {
		c.DashboardAddr = tmp.DashboardAddr
	}
	c.DashboardDomain = tmp.DashboardDomain

	for _, a := range tmp.Alerts {
		rule, err := parseAlertRule(a)
		if err != nil {
			return err
		}
		c.Alerts = append(c.Alerts, rule)
	}
	return nil
}

func parseAlertRule(a alertRuleTmp) (AlertRule, error) {
	if a.Instrument == "" {
		return AlertRule{}, fmt.Errorf("alert rule without instrument")
	}

	price, err := decimal.NewFromString(a.Price)
	if err != nil {
		return AlertRule{}, fmt.Errorf("incorrect 'price' in alert rule for %s (must be a decimal): %w", a.Instrument, err)
	}

	switch a.Direction {
	case "above":
		return AlertRule{Instrument: a.Instrument, Above: true, Price: price}, nil
	case "below":
		return AlertRule{Instrument: a.Instrument, Above: false, Price: price}, nil
	default:
		return AlertRule{}, fmt.Errorf("incorrect 'direction' in alert rule for %s (must be 'above' or 'below')", a.Instrument)
	}
}
