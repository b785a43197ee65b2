package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"RSITrader/internal/broker"
	"RSITrader/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Alpaca struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		Paper     bool   `yaml:"paper"`
		Feed      string `yaml:"feed"`
	} `yaml:"alpaca"`
	Trading struct {
		Symbols         []string      `yaml:"symbols"`
		MaxTradeDollars float64       `yaml:"max_trade_dollars"`
		MaxTradesPerDay int           `yaml:"max_trades_per_day"`
		BuyMode         string        `yaml:"buy_mode"`
		ManageSells     bool          `yaml:"manage_sells"`
		LogPositions    bool          `yaml:"log_positions"`
		Bracket         bool          `yaml:"bracket"`
		TakeProfitPct   float64       `yaml:"take_profit_pct"`
		BracketStopPct  float64       `yaml:"bracket_stop_pct"`
		TimeInForce     string        `yaml:"time_in_force"`
		OrderAttempts   int           `yaml:"order_attempts"`
		OrderRetryDelay time.Duration `yaml:"order_retry_delay"`
	} `yaml:"trading"`
	Strategy struct {
		RSIPeriod     int     `yaml:"rsi_period"`
		RSIMethod     string  `yaml:"rsi_method"`
		EMAPeriod     int     `yaml:"ema_period"`
		EMASeed       string  `yaml:"ema_seed"`
		FastEMA       int     `yaml:"fast_ema"`
		SlowEMA       int     `yaml:"slow_ema"`
		RSIBuy        float64 `yaml:"rsi_buy"`
		RSISell       float64 `yaml:"rsi_sell"`
		RSICrossLevel float64 `yaml:"rsi_cross_level"`
		StopLossPct   float64 `yaml:"stop_loss_pct"`
	} `yaml:"strategy"`
	Data struct {
		Timeframe string `yaml:"timeframe"`
		BarLimit  int    `yaml:"bar_limit"`
	} `yaml:"data"`
	Schedule struct {
		PollInterval time.Duration `yaml:"poll_interval"`
		ErrorBackoff time.Duration `yaml:"error_backoff"`
		ResetCron    string        `yaml:"reset_cron"`
		SummaryHour  int           `yaml:"summary_hour"`
		SummaryMode  string        `yaml:"summary_mode"`
	} `yaml:"schedule"`
	Email struct {
		User        string `yaml:"user"`
		Password    string `yaml:"password"`
		To          string `yaml:"to"`
		SMTPHost    string `yaml:"smtp_host"`
		SMTPPort    int    `yaml:"smtp_port"`
		TradeEmails bool   `yaml:"trade_emails"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Journal struct {
		TradeLogFile      string `yaml:"trade_log_file"`
		SQLitePath        string `yaml:"sqlite_path"`
		GoogleCredentials string `yaml:"google_credentials_json"`
		GoogleSheetID     string `yaml:"google_sheet_id"`
		GoogleSheetName   string `yaml:"google_sheet_name"`
	} `yaml:"journal"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	LogLevel string `yaml:"log_level"`
	Proxy    string `yaml:"proxy"`
}

// Default returns the configuration the bot ships with.
func Default() *Config {
	cfg := &Config{}
	cfg.Alpaca.Paper = true
	cfg.Alpaca.Feed = "iex"

	cfg.Trading.Symbols = []string{"AAPL", "TSLA", "MSFT"}
	cfg.Trading.MaxTradeDollars = 50
	cfg.Trading.MaxTradesPerDay = 2
	cfg.Trading.BuyMode = "simple"
	cfg.Trading.ManageSells = true
	cfg.Trading.TakeProfitPct = 0.05
	cfg.Trading.BracketStopPct = 0.03
	cfg.Trading.TimeInForce = "day"
	cfg.Trading.OrderAttempts = 1
	cfg.Trading.OrderRetryDelay = 5 * time.Second

	cfg.Strategy.RSIPeriod = 14
	cfg.Strategy.RSIMethod = "rolling"
	cfg.Strategy.EMAPeriod = 9
	cfg.Strategy.EMASeed = "first"
	cfg.Strategy.FastEMA = 9
	cfg.Strategy.SlowEMA = 21
	cfg.Strategy.RSIBuy = 35
	cfg.Strategy.RSISell = 70
	cfg.Strategy.RSICrossLevel = 30
	cfg.Strategy.StopLossPct = 0.03

	cfg.Data.Timeframe = "5Min"
	cfg.Data.BarLimit = 100

	cfg.Schedule.PollInterval = 300 * time.Second
	cfg.Schedule.ErrorBackoff = 60 * time.Second
	cfg.Schedule.ResetCron = "0 0 0 * * *"
	cfg.Schedule.SummaryMode = "orders"

	cfg.Email.SMTPHost = "smtp.gmail.com"
	cfg.Email.SMTPPort = 587

	cfg.Journal.TradeLogFile = "trade_log.csv"
	cfg.Journal.GoogleSheetName = "Trade Log"

	cfg.Server.Port = "8080"
	cfg.LogLevel = "info"
	return cfg
}

// Load reads .env, then the YAML file at path, then applies environment variable overrides.
// A missing .env or YAML file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	cfg.Trading.Symbols = normalizeSymbols(cfg.Trading.Symbols)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	e := &env{}
	e.str("APCA_API_KEY_ID", &c.Alpaca.APIKey)
	e.str("APCA_API_SECRET_KEY", &c.Alpaca.APISecret)
	e.boolean("PAPER", &c.Alpaca.Paper)
	e.str("APCA_DATA_FEED", &c.Alpaca.Feed)

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Trading.Symbols = strings.Split(v, ",")
	}
	e.float("MAX_TRADE_DOLLARS", &c.Trading.MaxTradeDollars)
	e.integer("MAX_TOTAL_TRADES_PER_DAY", &c.Trading.MaxTradesPerDay)
	e.str("BUY_MODE", &c.Trading.BuyMode)
	e.boolean("MANAGE_SELLS", &c.Trading.ManageSells)
	e.boolean("LOG_POSITIONS", &c.Trading.LogPositions)
	e.boolean("BRACKET", &c.Trading.Bracket)
	e.integer("ORDER_ATTEMPTS", &c.Trading.OrderAttempts)
	e.duration("ORDER_RETRY_DELAY", &c.Trading.OrderRetryDelay)

	e.integer("RSI_PERIOD", &c.Strategy.RSIPeriod)
	e.str("RSI_METHOD", &c.Strategy.RSIMethod)
	e.integer("EMA_PERIOD", &c.Strategy.EMAPeriod)
	e.float("RSI_BUY", &c.Strategy.RSIBuy)
	e.float("RSI_SELL", &c.Strategy.RSISell)
	e.float("HARD_STOP_LOSS_PCT", &c.Strategy.StopLossPct)

	e.str("BAR_TIMEFRAME", &c.Data.Timeframe)
	e.integer("BAR_LIMIT", &c.Data.BarLimit)

	e.duration("POLL_INTERVAL", &c.Schedule.PollInterval)
	e.duration("ERROR_BACKOFF", &c.Schedule.ErrorBackoff)
	e.integer("SUMMARY_HOUR", &c.Schedule.SummaryHour)
	e.str("SUMMARY_MODE", &c.Schedule.SummaryMode)

	e.str("EMAIL_USER", &c.Email.User)
	e.str("EMAIL_PASS", &c.Email.Password)
	e.str("EMAIL_TO", &c.Email.To)
	e.str("SMTP_HOST", &c.Email.SMTPHost)
	e.integer("SMTP_PORT", &c.Email.SMTPPort)
	e.boolean("TRADE_EMAILS", &c.Email.TradeEmails)

	e.str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	e.str("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)

	e.str("TRADE_LOG_FILE", &c.Journal.TradeLogFile)
	e.str("SQLITE_PATH", &c.Journal.SQLitePath)
	e.str("GOOGLE_CREDENTIALS_JSON", &c.Journal.GoogleCredentials)
	e.str("GOOGLE_SHEET_ID", &c.Journal.GoogleSheetID)
	e.str("GOOGLE_SHEET_NAME", &c.Journal.GoogleSheetName)

	e.str("PORT", &c.Server.Port)
	e.str("LOG_LEVEL", &c.LogLevel)
	e.str("HTTPS_PROXY", &c.Proxy)
	return errors.Join(e.errs...)
}

// Validate checks that all required fields are set and values are in range.
func (c *Config) Validate() error {
	if c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "" {
		return fmt.Errorf("alpaca api key and secret are required (APCA_API_KEY_ID, APCA_API_SECRET_KEY)")
	}
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("trading.symbols must not be empty")
	}
	if c.Trading.MaxTradeDollars <= 0 {
		return fmt.Errorf("trading.max_trade_dollars must be positive")
	}
	if c.Trading.MaxTradesPerDay < 0 {
		return fmt.Errorf("trading.max_trades_per_day must not be negative")
	}
	switch c.Trading.BuyMode {
	case "simple", "crossover":
	default:
		return fmt.Errorf("trading.buy_mode %q must be simple or crossover", c.Trading.BuyMode)
	}
	if c.Trading.BuyMode == "crossover" && (c.Strategy.FastEMA <= 0 || c.Strategy.SlowEMA <= c.Strategy.FastEMA) {
		return fmt.Errorf("crossover needs 0 < strategy.fast_ema < strategy.slow_ema")
	}
	if c.Trading.OrderAttempts < 1 {
		return fmt.Errorf("trading.order_attempts must be at least 1")
	}
	if c.Trading.Bracket && (c.Trading.TakeProfitPct <= 0 || c.Trading.BracketStopPct <= 0 || c.Trading.BracketStopPct >= 1) {
		return fmt.Errorf("bracket percentages must be in (0, 1)")
	}
	if c.Strategy.RSIPeriod < 1 || c.Strategy.EMAPeriod < 1 {
		return fmt.Errorf("strategy.rsi_period and strategy.ema_period must be positive")
	}
	switch c.Strategy.RSIMethod {
	case "rolling", "wilder":
	default:
		return fmt.Errorf("strategy.rsi_method %q must be rolling or wilder", c.Strategy.RSIMethod)
	}
	switch c.Strategy.EMASeed {
	case "first", "sma":
	default:
		return fmt.Errorf("strategy.ema_seed %q must be first or sma", c.Strategy.EMASeed)
	}
	if c.Strategy.StopLossPct < 0 || c.Strategy.StopLossPct >= 1 {
		return fmt.Errorf("strategy.stop_loss_pct must be in [0, 1)")
	}
	if _, err := model.Timeframe(c.Data.Timeframe).Duration(); err != nil {
		return fmt.Errorf("data.timeframe: %w", err)
	}
	if c.Data.BarLimit <= c.Strategy.RSIPeriod {
		return fmt.Errorf("data.bar_limit must exceed strategy.rsi_period")
	}
	if c.Schedule.PollInterval <= 0 || c.Schedule.ErrorBackoff <= 0 {
		return fmt.Errorf("schedule.poll_interval and schedule.error_backoff must be positive")
	}
	if c.Schedule.SummaryHour < 0 || c.Schedule.SummaryHour > 23 {
		return fmt.Errorf("schedule.summary_hour must be 0-23")
	}
	switch c.Schedule.SummaryMode {
	case "orders", "positions":
	default:
		return fmt.Errorf("schedule.summary_mode %q must be orders or positions", c.Schedule.SummaryMode)
	}
	if c.Journal.TradeLogFile == "" {
		return fmt.Errorf("journal.trade_log_file is required")
	}
	if (c.Journal.GoogleCredentials == "") != (c.Journal.GoogleSheetID == "") {
		return fmt.Errorf("journal.google_credentials_json and journal.google_sheet_id must be set together")
	}
	return nil
}

// BaseURL returns the trading endpoint for the configured account type.
func (c *Config) BaseURL() string {
	if c.Alpaca.Paper {
		return broker.PaperTradingURL
	}
	return broker.LiveTradingURL
}

// EmailEnabled reports whether SMTP credentials and a recipient are configured.
func (c *Config) EmailEnabled() bool {
	return c.Email.User != "" && c.Email.Password != "" && c.Email.To != ""
}

// TelegramEnabled reports whether the Telegram channel is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func normalizeSymbols(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// env applies overrides from environment variables, collecting parse errors.
type env struct {
	errs []error
}

func (e *env) str(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (e *env) integer(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (e *env) float(key string, dst *float64) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = f
}

func (e *env) boolean(key string, dst *bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = b
}

// duration accepts a Go duration ("5m") or a bare number of seconds ("300").
func (e *env) duration(key string, dst *time.Duration) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}
