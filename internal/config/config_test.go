package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/portfolio.db", cfg.Database.SQLitePath)
	assert.Equal(t, "yahoo", cfg.Quotes.Source)
	assert.Equal(t, time.Minute, cfg.Quotes.TTL)
	assert.Equal(t, "USD", cfg.Report.Currency)
	assert.Equal(t, ":8080", cfg.Dashboard.Addr)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  postgres_url: postgres://localhost/portfolio
quotes:
  base_url: http://quotes.local
  price_path: $.data.last
  ttl: 2m30s
  static:
    AAPL: 180.5
report:
  currency: eur
dashboard:
  refresh_interval: 10s
schedule:
  report_cron: "0 0 18 * * 1-5"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "rest", cfg.Quotes.Source, "base_url implies rest")
	assert.Equal(t, "$.data.last", cfg.Quotes.PricePath)
	assert.Equal(t, 150*time.Second, cfg.Quotes.TTL)
	assert.Equal(t, 180.5, cfg.Quotes.Static["AAPL"])
	assert.Equal(t, "EUR", cfg.Report.Currency)
	assert.Equal(t, 10*time.Second, cfg.Dashboard.RefreshInterval)
	assert.Equal(t, "0 0 18 * * 1-5", cfg.Schedule.ReportCron)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  sqlite_path: from-file.db\n")
	t.Setenv("TRACKER_SQLITE_PATH", "from-env.db")
	t.Setenv("TRACKER_QUOTE_TTL", "90")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database.SQLitePath)
	assert.Equal(t, 90*time.Second, cfg.Quotes.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_BadInput(t *testing.T) {
	_, err := Load(writeConfig(t, "database: [unclosed"))
	assert.Error(t, err)

	t.Setenv("TRACKER_QUOTE_TTL", "soon")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"postgres without url", func(c *Config) { c.Database.Driver = "postgres" }},
		{"rest without base url", func(c *Config) { c.Quotes.Source = "rest"; c.Quotes.BaseURL = "" }},
		{"unknown source", func(c *Config) { c.Quotes.Source = "bloomberg" }},
		{"negative ttl", func(c *Config) { c.Quotes.TTL = -time.Second }},
		{"unknown currency", func(c *Config) { c.Report.Currency = "XXY" }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "t"; c.Telegram.ChatID = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, Path(""))
	t.Setenv("CONFIG_PATH", "/etc/tracker.yaml")
	assert.Equal(t, "/etc/tracker.yaml", Path(""))
	assert.Equal(t, "local.yaml", Path("local.yaml"))
}
