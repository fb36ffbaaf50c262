package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/digitbot/risk"
	"github.com/web3guy0/digitbot/strategy"
)

func TestRiskLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	cfg := risk.DefaultConfig(decimal.NewFromInt(10))
	cfg.Level = risk.LevelVeryHigh
	m, err := risk.NewRecoveryManager(cfg, risk.WithObserver(RiskLogger(logger)))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		m.RecordTrade(decimal.RequireFromString("0.35"), decimal.RequireFromString("-0.35"), false)
	}

	out := buf.String()
	assert.Contains(t, out, "💰 Money manager initialized")
	assert.Contains(t, out, `"risk_level":"VERY_HIGH"`)
	assert.Contains(t, out, "🔄 Entering recovery mode")
	assert.Contains(t, out, "📉 Recovery escalated")
	assert.Contains(t, out, "⛔ Max recovery level reached")
	assert.Contains(t, out, `"reason":"max_recovery_level"`)
	assert.NotContains(t, out, "Trade recorded", "debug lines filtered")
}

func TestStrategyLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	dp := strategy.NewDigitPad(strategy.WithObserver(StrategyLogger(logger)))
	dp.AddTick(-5)
	dp.AddTick(10.01)
	dp.Reset()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "🎲 Strategy initialized")
	assert.Contains(t, lines[1], "Invalid tick rejected")
	assert.Contains(t, lines[2], `"digit":1`)
	assert.Contains(t, lines[3], "Strategy reset")
}

func TestStrategyLogger_Analysis(t *testing.T) {
	strong := strategy.NewSignal(strategy.ContractDiffer).Prediction(1).Confidence(0.9).Reason("cold digit").Build()
	weak := strategy.NewSignal(strategy.ContractEven).Confidence(0.65).Build()

	type test struct {
		best     *strategy.Signal
		level    zerolog.Level
		contains string
	}

	tests := map[string]test{
		"strong-info": {best: &strong, level: zerolog.InfoLevel, contains: "🔥 Strong signal"},
		"weak-hidden": {best: &weak, level: zerolog.InfoLevel},
		"weak-debug":  {best: &weak, level: zerolog.DebugLevel, contains: "📊 Analysis"},
		"no-best":     {level: zerolog.DebugLevel},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			observe := StrategyLogger(zerolog.New(&buf).Level(tt.level))
			observe(strategy.Event{
				Kind:   strategy.EventAnalysis,
				Result: &strategy.AnalysisResult{Pattern: "COLD_DIGITS", Best: tt.best},
			})

			if tt.contains == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.contains)
		})
	}
}

func TestLogSummary(t *testing.T) {
	var buf bytes.Buffer
	LogSummary(zerolog.New(&buf), "💰 Balance: $10.00 (+0.0%)\n\n📊 Trades: 0 (W: 0 / L: 0)")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}
