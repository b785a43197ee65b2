package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSITrader/internal/broker"
)

func withCredentials(t *testing.T) {
	t.Setenv("APCA_API_KEY_ID", "PKTEST")
	t.Setenv("APCA_API_SECRET_KEY", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	withCredentials(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"AAPL", "TSLA", "MSFT"}, cfg.Trading.Symbols)
	assert.Equal(t, 50.0, cfg.Trading.MaxTradeDollars)
	assert.Equal(t, 2, cfg.Trading.MaxTradesPerDay)
	assert.Equal(t, 14, cfg.Strategy.RSIPeriod)
	assert.Equal(t, 9, cfg.Strategy.EMAPeriod)
	assert.Equal(t, 35.0, cfg.Strategy.RSIBuy)
	assert.Equal(t, 70.0, cfg.Strategy.RSISell)
	assert.Equal(t, 0.03, cfg.Strategy.StopLossPct)
	assert.Equal(t, 300*time.Second, cfg.Schedule.PollInterval)
	assert.Equal(t, 60*time.Second, cfg.Schedule.ErrorBackoff)
	assert.Equal(t, "trade_log.csv", cfg.Journal.TradeLogFile)
	assert.Equal(t, broker.PaperTradingURL, cfg.BaseURL())
	assert.False(t, cfg.EmailEnabled())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	withCredentials(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
trading:
  symbols: [nvda, " amd ", NVDA]
  max_trade_dollars: 200
  bracket: true
strategy:
  rsi_method: wilder
schedule:
  poll_interval: 1m
  summary_mode: positions
alpaca:
  paper: false
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("MAX_TRADE_DOLLARS", "75")
	t.Setenv("ERROR_BACKOFF", "30")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"NVDA", "AMD"}, cfg.Trading.Symbols)
	assert.Equal(t, 75.0, cfg.Trading.MaxTradeDollars, "env wins over yaml")
	assert.True(t, cfg.Trading.Bracket)
	assert.Equal(t, "wilder", cfg.Strategy.RSIMethod)
	assert.Equal(t, time.Minute, cfg.Schedule.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Schedule.ErrorBackoff)
	assert.Equal(t, "positions", cfg.Schedule.SummaryMode)
	assert.Equal(t, broker.LiveTradingURL, cfg.BaseURL())
	assert.Equal(t, 9, cfg.Strategy.EMAPeriod, "unset keys keep defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	withCredentials(t)
	t.Setenv("SYMBOLS", "SPY, QQQ")
	t.Setenv("PAPER", "false")
	t.Setenv("POLL_INTERVAL", "2m")
	t.Setenv("EMAIL_USER", "bot@example.com")
	t.Setenv("EMAIL_PASS", "app-password")
	t.Setenv("EMAIL_TO", "me@example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"SPY", "QQQ"}, cfg.Trading.Symbols)
	assert.False(t, cfg.Alpaca.Paper)
	assert.Equal(t, 2*time.Minute, cfg.Schedule.PollInterval)
	assert.True(t, cfg.EmailEnabled())
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("RSI_PERIOD", "fourteen")
	t.Setenv("BRACKET", "maybe")

	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RSI_PERIOD")
	assert.Contains(t, err.Error(), "BRACKET")
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trading: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing key", func(c *Config) { c.Alpaca.APIKey = "" }},
		{"no symbols", func(c *Config) { c.Trading.Symbols = nil }},
		{"zero budget", func(c *Config) { c.Trading.MaxTradeDollars = 0 }},
		{"bad buy mode", func(c *Config) { c.Trading.BuyMode = "yolo" }},
		{"crossover without slow ema", func(c *Config) { c.Trading.BuyMode = "crossover"; c.Strategy.SlowEMA = 0 }},
		{"zero attempts", func(c *Config) { c.Trading.OrderAttempts = 0 }},
		{"bad rsi method", func(c *Config) { c.Strategy.RSIMethod = "ewm" }},
		{"bad seed", func(c *Config) { c.Strategy.EMASeed = "zero" }},
		{"too few bars", func(c *Config) { c.Data.BarLimit = 10 }},
		{"bad timeframe", func(c *Config) { c.Data.Timeframe = "2H" }},
		{"bad summary hour", func(c *Config) { c.Schedule.SummaryHour = 24 }},
		{"bad summary mode", func(c *Config) { c.Schedule.SummaryMode = "weekly" }},
		{"sheet without credentials", func(c *Config) { c.Journal.GoogleSheetID = "abc" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Alpaca.APIKey, cfg.Alpaca.APISecret = "k", "s"
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
