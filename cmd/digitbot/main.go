// Digitbot - Digit frequency trader for synthetic tick indices
//
// Reads ticks (one per line, "price", "symbol,price" or
// "symbol,epoch,price") from TICKS_FILE or stdin, runs the DigitPad
// analyzer over the last digits and sizes one-tick contracts with the
// hybrid recovery money manager.
//
// Strategy:
// 1. Warm up on 50 ticks of digit history
// 2. Take the highest scoring signal with confidence >= 60%
// 3. Settle on the next tick's last digit
// 4. Escalate stakes after losses until the deficit is recovered
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/digitbot/bot"
	"github.com/web3guy0/digitbot/core"
	"github.com/web3guy0/digitbot/feeds"
	"github.com/web3guy0/digitbot/internal/config"
	"github.com/web3guy0/digitbot/internal/metrics"
	"github.com/web3guy0/digitbot/internal/notify"
	"github.com/web3guy0/digitbot/risk"
	"github.com/web3guy0/digitbot/storage"
	"github.com/web3guy0/digitbot/strategy"
)

const version = "1.0.0"

func main() {
	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().
		Str("version", version).
		Str("symbol", cfg.Symbol).
		Str("balance", cfg.StartingBalance.String()).
		Str("risk", cfg.RiskLevel.String()).
		Bool("small_capital", cfg.SmallCapital).
		Msg("🎲 Digitbot starting...")

	// Symbol sanity checks
	symbols := core.DefaultSymbols()
	if sym := symbols.Get(cfg.Symbol); sym == nil {
		log.Warn().Str("symbol", cfg.Symbol).Strs("known", symbols.TickSymbols()).Msg("⚠️ Unknown symbol")
	} else {
		if !symbols.SupportsDigits(cfg.Symbol) {
			log.Warn().Str("symbol", cfg.Symbol).Msg("⚠️ Symbol does not support tick contracts")
		}
		if cfg.Money().MinStake.LessThan(sym.MinStake) {
			log.Warn().
				Str("min_stake", cfg.Money().MinStake.String()).
				Str("symbol_min", sym.MinStake.String()).
				Msg("⚠️ MIN_STAKE below the symbol minimum")
		}
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ====== CORE COMPONENTS ======

	// 1. Journal (optional)
	var journal *storage.Journal
	var sink core.SettlementSink
	if cfg.DatabasePath != "" {
		journal, err = storage.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer journal.Close()
		sink = journal
		log.Info().Str("path", cfg.DatabasePath).Msg("💾 Trade journal opened")
	}

	// 2. Metrics
	recorder := metrics.New()
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("📊 Metrics endpoint started")
	}

	// 3. Telegram (optional)
	var telegramBot *bot.TelegramBot
	riskObservers := []risk.Option{
		risk.WithObserver(notify.RiskLogger(log.Logger)),
		risk.WithObserver(recorder.RiskObserver()),
	}
	if cfg.TelegramToken != "" {
		telegramBot, err = bot.NewTelegramBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Telegram bot disabled")
			telegramBot = nil
		} else {
			riskObservers = append(riskObservers, risk.WithObserver(telegramBot.RiskObserver()))
		}
	}

	// 4. Analyzer
	pad := strategy.NewDigitPad(
		strategy.WithObserver(notify.StrategyLogger(log.Logger)),
		strategy.WithObserver(recorder.StrategyObserver()),
	)

	// 5. Money manager
	money, err := risk.NewRecoveryManager(cfg.Money(), riskObservers...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create money manager")
	}

	for _, p := range money.Preview(cfg.PreviewLevels) {
		log.Info().
			Int("level", p.Level).
			Str("stake", p.Stake.String()).
			Str("cumulative", p.CumulativeRisk.String()).
			Bool("affordable", p.CanAfford).
			Msg("📋 Recovery plan")
	}

	// 6. Engine + router
	engine := core.NewEngine(pad, money, core.Options{
		Symbol:       cfg.Symbol,
		StopOnProfit: cfg.StopOnProfit,
		Sink:         sink,
	})
	router := core.NewRouter()
	if cfg.Symbol == "*" {
		router.SubscribeAll(engine)
	} else {
		router.Subscribe(cfg.Symbol, engine)
	}
	log.Info().Str("session", engine.SessionID()).Msg("⚡ Engine started")

	if telegramBot != nil {
		telegramBot.SetSources(engine, money)
		telegramBot.SetControlCallbacks(engine.Pause, engine.Resume)
		if journal != nil {
			telegramBot.SetTradeHistory(journal)
		}
		telegramBot.Start()
		telegramBot.NotifyStartup(cfg.Symbol, money.Config().Level)
	}

	// 7. Tick source
	var (
		ticks  <-chan feeds.Tick
		errs   <-chan error
		replay *feeds.Replay
	)
	switch cfg.Feed {
	case "live":
		live := feeds.NewLiveFeed(cfg.FeedURL, cfg.Symbol)
		ticks, errs = live.Stream(ctx)
		defer func() {
			st := live.Stats()
			log.Info().Int("connects", st.Connects).Int("received", st.Received).Msg("📡 Live feed closed")
		}()
	default:
		var input io.Reader = os.Stdin
		if cfg.TicksFile != "" {
			f, err := os.Open(cfg.TicksFile)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to open ticks file")
			}
			defer f.Close()
			input = f
		}
		replay = feeds.NewReplay(input, cfg.Symbol)
		ticks, errs = replay.Stream(ctx)
	}
	log.Info().Str("feed", cfg.Feed).Msg("📈 Tick feed started")

	// Run until input ends, shutdown signal or every engine halts
	err = router.Run(ctx, ticks)
	switch {
	case errors.Is(err, context.Canceled):
		log.Info().Msg("🛑 Received shutdown signal")
	case err != nil:
		log.Error().Err(err).Msg("Router stopped")
		if telegramBot != nil {
			telegramBot.NotifyError(err)
		}
	case router.Active():
		// Feed closed on its own; the error channel is already closed too
		for err := range errs {
			log.Error().Err(err).Msg("Tick feed failed")
			if telegramBot != nil {
				telegramBot.NotifyError(err)
			}
		}
		if replay != nil {
			log.Info().Int("skipped", replay.Skipped()).Msg("📭 Tick input exhausted")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down...")
	engine.Stop()

	snap := engine.Snapshot()
	log.Info().
		Int("ticks", snap.Ticks).
		Int("rejected", snap.Rejected).
		Int("trades", snap.Trades).
		Int("wins", snap.Wins).
		Int("losses", snap.Losses).
		Str("pnl", snap.PnL.String()).
		Str("halt_reason", snap.HaltReason).
		Msg("🏁 Session finished")

	notify.LogSummary(log.Logger, money.Summary())

	if journal != nil {
		if stats, err := journal.SessionStats(engine.SessionID()); err != nil {
			log.Error().Err(err).Msg("Failed to read session stats")
		} else {
			log.Info().
				Int64("trades", stats.Trades).
				Int64("wins", stats.Wins).
				Str("profit", stats.Profit.String()).
				Msg("💾 Journal totals")
		}
	}

	if telegramBot != nil {
		telegramBot.Stop()
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}

	log.Info().Msg("👋 Goodbye!")
}
