package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"RSITrader/internal/bot"
	"RSITrader/internal/broker"
	"RSITrader/internal/calculator"
	"RSITrader/internal/collector"
	"RSITrader/internal/config"
	"RSITrader/internal/model"
	"RSITrader/internal/notifier"
	"RSITrader/internal/recorder"
	"RSITrader/internal/scheduler"
	"RSITrader/internal/server"
	"RSITrader/internal/state"
	"RSITrader/internal/strategy"
	"RSITrader/internal/trader"
)

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "RSI/EMA trading bot for Alpaca",
	Long: `Polls Alpaca for recent bars on each configured symbol, computes EMA and RSI,
and submits market or bracket orders when the configured signal fires.`,
	SilenceUsage: true,
	RunE:         run,
}

func main() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.Flags().StringP("config", "c", defaultPath, "Path to the YAML config file. Environment variables override it.")
	rootCmd.Flags().Bool("once", false, "Run a single tick and exit.")

	cobra.CheckErr(rootCmd.Execute())
}

func run(cmd *cobra.Command, _ []string) error {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	once, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}

	// Load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	setupLogging(cfg.LogLevel)

	mode := "PAPER"
	if !cfg.Alpaca.Paper {
		mode = "LIVE"
	}
	log.Infof("[BOOT] RSITrader starting: %s trading, symbols %v", mode, cfg.Trading.Symbols)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init broker
	brk := broker.NewAlpacaBroker(broker.AlpacaOptions{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
		BaseURL:   cfg.BaseURL(),
		Feed:      cfg.Alpaca.Feed,
	})

	// Init journals
	rec, err := buildRecorder(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rec.Close(); err != nil {
			log.Errorf("[LOG] close journals: %v", err)
		}
	}()

	// Init notifiers
	notify := buildNotifier(cfg)

	// Init pipeline
	tracker := state.NewTracker()
	col := collector.NewCollector(brk, model.Timeframe(cfg.Data.Timeframe), cfg.Data.BarLimit, calculator.Params{
		EMAPeriod: cfg.Strategy.EMAPeriod,
		RSIPeriod: cfg.Strategy.RSIPeriod,
		FastEMA:   cfg.Strategy.FastEMA,
		SlowEMA:   cfg.Strategy.SlowEMA,
		Seed:      calculator.EMASeed(cfg.Strategy.EMASeed),
		RSIMethod: calculator.RSIMethod(cfg.Strategy.RSIMethod),
	})
	eng := strategy.NewEngine(model.BuyMode(cfg.Trading.BuyMode), strategy.Thresholds{
		RSIBuy:        cfg.Strategy.RSIBuy,
		RSISell:       cfg.Strategy.RSISell,
		StopLossPct:   cfg.Strategy.StopLossPct,
		RSICrossLevel: cfg.Strategy.RSICrossLevel,
	})
	sub := trader.NewSubmitter(brk, rec, notify, trader.Options{
		TimeInForce:    cfg.Trading.TimeInForce,
		Bracket:        cfg.Trading.Bracket,
		TakeProfitPct:  cfg.Trading.TakeProfitPct,
		BracketStopPct: cfg.Trading.BracketStopPct,
		Attempts:       cfg.Trading.OrderAttempts,
		RetryDelay:     cfg.Trading.OrderRetryDelay,
		TradeEmails:    cfg.Email.TradeEmails,
	})
	b := bot.New(brk, col, eng, sub, tracker, rec, notify, bot.Options{
		Symbols:         cfg.Trading.Symbols,
		MaxTradeDollars: cfg.Trading.MaxTradeDollars,
		MaxTradesPerDay: cfg.Trading.MaxTradesPerDay,
		ManageSells:     cfg.Trading.ManageSells,
		LogPositions:    cfg.Trading.LogPositions,
		SummaryHour:     cfg.Schedule.SummaryHour,
		SummaryMode:     bot.SummaryMode(cfg.Schedule.SummaryMode),
		Interval:        cfg.Schedule.PollInterval,
		ErrorBackoff:    cfg.Schedule.ErrorBackoff,
	})

	if once {
		report := b.Tick(ctx)
		for _, r := range report.Results {
			log.Infof("[BOT] %s: %s %s %s", r.Symbol, r.Status, r.Action, r.Reason)
		}
		if report.Err != nil {
			return report.Err
		}
		if report.Fatal() {
			return fmt.Errorf("tick had fatal failures")
		}
		return nil
	}

	// Init scheduler
	sched := scheduler.NewScheduler(b, tracker)
	if err := sched.RegisterAll(cfg.Schedule.ResetCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start(ctx)
	defer sched.Stop()

	// Keep-alive endpoint
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Run(ctx, cfg.Server.Port) }()

	log.Info("[BOOT] RSITrader is running. Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
		log.Info("[BOOT] shutdown signal received, stopping...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("keep-alive server: %w", err)
		}
	}
	return nil
}

func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("[BOOT] unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func buildRecorder(ctx context.Context, cfg *config.Config) (recorder.Recorder, error) {
	csvRec, err := recorder.NewCSVRecorder(cfg.Journal.TradeLogFile)
	if err != nil {
		return nil, fmt.Errorf("init trade log: %w", err)
	}
	recs := recorder.Multi{csvRec}

	if cfg.Journal.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Journal.SQLitePath)
		if err != nil {
			log.Warnf("[BOOT] init sqlite journal failed, skipping: %v", err)
		} else {
			recs = append(recs, sr)
		}
	}

	if cfg.Journal.GoogleCredentials != "" {
		sh, err := recorder.NewSheetsRecorder(ctx, cfg.Journal.GoogleCredentials, cfg.Journal.GoogleSheetID, cfg.Journal.GoogleSheetName)
		if err != nil {
			log.Warnf("[BOOT] init google sheets journal failed, skipping: %v", err)
		} else {
			recs = append(recs, sh)
		}
	}
	log.Infof("[BOOT] %d trade journal(s) active", len(recs))
	return recs, nil
}

func buildNotifier(cfg *config.Config) notifier.Notifier {
	var channels notifier.Multi
	if cfg.EmailEnabled() {
		channels = append(channels, notifier.NewEmailNotifier(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.User, cfg.Email.Password, cfg.Email.To))
	}
	if cfg.TelegramEnabled() {
		channels = append(channels, notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy))
	}
	if len(channels) == 0 {
		log.Warn("[BOOT] no notification channel configured, summaries are log-only")
		return notifier.Noop{}
	}
	return channels
}
