package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither -config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Database struct {
		Driver      string `yaml:"driver"` // sqlite, postgres or memory
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresURL string `yaml:"postgres_url"`
	} `yaml:"database"`
	Quotes struct {
		Source      string             `yaml:"source"` // yahoo, rest or static
		BaseURL     string             `yaml:"base_url"`
		APIKey      string             `yaml:"api_key"`
		PricePath   string             `yaml:"price_path"`
		TTL         time.Duration      `yaml:"ttl"`
		Retries     uint               `yaml:"retries"`
		Concurrency int                `yaml:"concurrency"`
		Static      map[string]float64 `yaml:"static"`
	} `yaml:"quotes"`
	Report struct {
		Dir      string `yaml:"dir"`
		Currency string `yaml:"currency"`
		Title    string `yaml:"title"`
	} `yaml:"report"`
	Dashboard struct {
		Addr            string        `yaml:"addr"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"dashboard"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Path resolves the config file location: the flag value, then CONFIG_PATH,
// then DefaultPath.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := map[string]*string{
		"TRACKER_DB_DRIVER":      &c.Database.Driver,
		"TRACKER_SQLITE_PATH":    &c.Database.SQLitePath,
		"TRACKER_POSTGRES_URL":   &c.Database.PostgresURL,
		"TRACKER_QUOTE_SOURCE":   &c.Quotes.Source,
		"TRACKER_QUOTE_BASE_URL": &c.Quotes.BaseURL,
		"TRACKER_QUOTE_API_KEY":  &c.Quotes.APIKey,
		"TRACKER_ADDR":           &c.Dashboard.Addr,
		"TRACKER_REPORT_DIR":     &c.Report.Dir,
		"TELEGRAM_BOT_TOKEN":     &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":       &c.Telegram.ChatID,
		"HTTPS_PROXY":            &c.Proxy,
		"LOG_LEVEL":              &c.Log.Level,
	}
	for key, dst := range setString {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("TRACKER_QUOTE_TTL"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("TRACKER_QUOTE_TTL: %w", err)
		}
		c.Quotes.TTL = d
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		c.Log.Pretty, _ = strconv.ParseBool(v)
	}
	return nil
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/portfolio.db"
	}
	if c.Quotes.Source == "" {
		if c.Quotes.BaseURL != "" {
			c.Quotes.Source = "rest"
		} else {
			c.Quotes.Source = "yahoo"
		}
	}
	if c.Quotes.TTL == 0 {
		c.Quotes.TTL = time.Minute
	}
	if c.Quotes.Retries == 0 {
		c.Quotes.Retries = 3
	}
	if c.Quotes.Concurrency == 0 {
		c.Quotes.Concurrency = 4
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "report"
	}
	if c.Report.Currency == "" {
		c.Report.Currency = money.USD
	}
	c.Report.Currency = strings.ToUpper(c.Report.Currency)
	if c.Report.Title == "" {
		c.Report.Title = "Portfolio Report"
	}
	if c.Dashboard.Addr == "" {
		c.Dashboard.Addr = ":8080"
	}
	if c.Dashboard.RefreshInterval == 0 {
		c.Dashboard.RefreshInterval = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the selected backends are fully configured.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required for sqlite")
		}
	case "postgres":
		if c.Database.PostgresURL == "" {
			return fmt.Errorf("database.postgres_url is required for postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver %q is not one of sqlite, postgres, memory", c.Database.Driver)
	}

	switch c.Quotes.Source {
	case "yahoo", "static":
	case "rest":
		if c.Quotes.BaseURL == "" {
			return fmt.Errorf("quotes.base_url is required for the rest source")
		}
	default:
		return fmt.Errorf("quotes.source %q is not one of yahoo, rest, static", c.Quotes.Source)
	}
	if c.Quotes.TTL < 0 {
		return fmt.Errorf("quotes.ttl must not be negative")
	}
	if c.Quotes.Concurrency < 0 {
		return fmt.Errorf("quotes.concurrency must not be negative")
	}

	if money.GetCurrency(c.Report.Currency) == nil {
		return fmt.Errorf("report.currency %q is not an ISO 4217 code", c.Report.Currency)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
