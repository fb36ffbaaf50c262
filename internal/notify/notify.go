package notify

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/web3guy0/digitbot/risk"
	"github.com/web3guy0/digitbot/strategy"
)

// StrategyLogger logs strategy events. Ticks are debug level.
func StrategyLogger(logger zerolog.Logger) strategy.Observer {
	return func(e strategy.Event) {
		switch e.Kind {
		case strategy.EventCreated:
			logger.Info().
				Str("strategy", e.Strategy).
				Int("min_ticks", strategy.MinTicksRequired).
				Float64("min_confidence", strategy.MinConfidence).
				Msg("🎲 Strategy initialized")
		case strategy.EventTick:
			logger.Debug().Float64("price", e.Price).Int("digit", e.Digit).Msg("Tick")
		case strategy.EventRejected:
			logger.Warn().Float64("price", e.Price).Msg("Invalid tick rejected")
		case strategy.EventAnalysis:
			if e.Result == nil || e.Result.Best == nil {
				return
			}
			if e.Result.Best.Strong() {
				logger.Info().
					Str("pattern", e.Result.Pattern).
					Str("best", e.Result.Best.String()).
					Str("reason", e.Result.Best.Reason).
					Msg("🔥 Strong signal")
				return
			}
			logger.Debug().
				Str("pattern", e.Result.Pattern).
				Int("signals", len(e.Result.Signals)).
				Str("best", e.Result.Best.String()).
				Msg("📊 Analysis")
		case strategy.EventReset:
			logger.Info().Str("strategy", e.Strategy).Msg("Strategy reset")
		}
	}
}

// RiskLogger logs money manager events
func RiskLogger(logger zerolog.Logger) risk.Observer {
	return func(e risk.Event) {
		switch e.Kind {
		case risk.EventCreated:
			logger.Info().
				Str("balance", "$"+e.Balance.StringFixed(2)).
				Str("base_stake", "$"+e.Amount.StringFixed(2)).
				Str("risk_level", e.Level.String()).
				Int("max_recovery_levels", e.MaxLevels).
				Msg("💰 Money manager initialized")
		case risk.EventRecoveryStarted:
			logger.Info().
				Str("to_recover", "$"+e.Amount.StringFixed(2)).
				Msg("🔄 Entering recovery mode")
		case risk.EventRecoveryEscalated:
			logger.Info().
				Int("level", e.RecoveryLevel).
				Str("deficit", "$"+e.Deficit.StringFixed(2)).
				Msg("📉 Recovery escalated")
		case risk.EventRecoveryPartial:
			logger.Info().
				Str("recovered", "$"+e.Amount.StringFixed(2)).
				Str("remaining", "$"+e.Deficit.StringFixed(2)).
				Msg("📈 Partial recovery")
		case risk.EventRecoveryCompleted:
			logger.Info().
				Str("deficit", "$"+e.Amount.StringFixed(2)).
				Int("level", e.RecoveryLevel).
				Msg("✅ Recovery COMPLETE")
		case risk.EventMaxLevelReached:
			logger.Warn().
				Int("max_levels", e.MaxLevels).
				Str("deficit", "$"+e.Deficit.StringFixed(2)).
				Msg("⛔ Max recovery level reached")
		case risk.EventStopAdvised:
			logger.Warn().
				Str("reason", string(e.StopReason)).
				Str("balance", "$"+e.Balance.StringFixed(2)).
				Str("daily_loss", "$"+e.Amount.StringFixed(2)).
				Msg("⛔ Stop trading advised")
		case risk.EventProfitTarget:
			logger.Info().
				Str("profit", "$"+e.Amount.StringFixed(2)).
				Msg("🎯 Profit target reached")
		case risk.EventLevelChanged:
			logger.Info().
				Str("from", e.PreviousLevel.String()).
				Str("to", e.Level.String()).
				Msg("⚡ Risk level changed")
		case risk.EventBalanceUpdated:
			logger.Debug().Str("balance", "$"+e.Balance.StringFixed(2)).Msg("Balance updated")
		case risk.EventSessionReset:
			logger.Info().Str("balance", "$"+e.Balance.StringFixed(2)).Msg("🔄 Session reset")
		case risk.EventTradeRecorded:
			if e.Trade == nil {
				return
			}
			logger.Debug().
				Str("trade_id", e.Trade.TradeID).
				Str("profit", e.Trade.Profit.StringFixed(2)).
				Str("balance", e.Trade.Balance.StringFixed(2)).
				Bool("recovering", e.Trade.InRecovery).
				Msg("Trade recorded")
		}
	}
}

// LogSummary writes a multi-line summary one line per log entry
func LogSummary(logger zerolog.Logger, summary string) {
	for _, line := range strings.Split(summary, "\n") {
		if line != "" {
			logger.Info().Msg(line)
		}
	}
}
