package bot

import (
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/digitbot/core"
	"github.com/web3guy0/digitbot/risk"
	"github.com/web3guy0/digitbot/types"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Text
	}
	return out
}

type staticStats struct {
	snap core.Snapshot
}

func (s staticStats) Snapshot() core.Snapshot {
	return s.snap
}

type staticHistory struct {
	trades []types.TradeRecord
	err    error
}

func (h staticHistory) RecentTrades(limit int) ([]types.TradeRecord, error) {
	return h.trades, h.err
}

func newTestBot(t *testing.T, snap core.Snapshot) (*TelegramBot, *fakeSender, *risk.RecoveryManager) {
	t.Helper()
	money, err := risk.NewRecoveryManager(risk.DefaultConfig(decimal.NewFromInt(10)))
	require.NoError(t, err)

	out := &fakeSender{}
	b := newBot(out, 42)
	b.SetSources(staticStats{snap: snap}, money)
	return b, out, money
}

// run executes fn with the send loop running and returns what was sent
func run(b *TelegramBot, out *fakeSender, fn func()) []string {
	b.Start()
	fn()
	b.Stop()
	return out.texts()
}

func TestTelegramBot_Commands(t *testing.T) {
	type test struct {
		cmd      string
		contains []string
	}

	tests := map[string]test{
		"help": {
			cmd:      "help",
			contains: []string{"/pause", "/plan"},
		},
		"status": {
			cmd:      "STATUS",
			contains: []string{"RUNNING", "R\\_100", "$10.35", "DIGITDIFF 1 @ $0.35"},
		},
		"stats": {
			cmd:      "stats",
			contains: []string{"Total Trades: *4*", "Win Rate: *75.0%*", "+$0.35"},
		},
		"plan": {
			cmd:      "plan",
			contains: []string{"L1: $0.53", "L5: $1.18 (total $4.10)"},
		},
		"summary": {
			cmd:      "summary",
			contains: []string{"$10.00"},
		},
		"ping": {
			cmd:      "ping",
			contains: []string{"Pong"},
		},
		"unknown": {
			cmd:      "moon",
			contains: []string{"Unknown command"},
		},
		"trades-unavailable": {
			cmd:      "trades",
			contains: []string{"Trades not available"},
		},
	}

	snap := core.Snapshot{
		Symbol:  "R_100",
		Ticks:   120,
		Trades:  4,
		Wins:    3,
		Losses:  1,
		PnL:     decimal.RequireFromString("0.35"),
		Balance: decimal.RequireFromString("10.35"),
		Open: &types.Contract{
			Type:       "DIGITDIFF",
			Prediction: 1,
			Stake:      decimal.RequireFromString("0.35"),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b, out, _ := newTestBot(t, snap)
			sent := run(b, out, func() { b.handleCommand(tt.cmd) })

			require.Len(t, sent, 1)
			for _, want := range tt.contains {
				assert.Contains(t, sent[0], want)
			}
		})
	}
}

func TestTelegramBot_StatusHalted(t *testing.T) {
	b, out, _ := newTestBot(t, core.Snapshot{Halted: true, HaltReason: "daily_loss_limit", Paused: true})
	sent := run(b, out, func() { b.handleCommand("status") })

	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "HALTED (daily\\_loss\\_limit)")
	assert.NotContains(t, sent[0], "PAUSED")
}

func TestTelegramBot_Trades(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	b, out, _ := newTestBot(t, core.Snapshot{})
	b.SetTradeHistory(staticHistory{trades: []types.TradeRecord{
		{Timestamp: ts, Stake: decimal.RequireFromString("0.53"), Profit: decimal.RequireFromString("0.50"), IsWin: true, IsRecovery: true, RecoveryLevel: 1},
		{Timestamp: ts, Stake: decimal.RequireFromString("0.35"), Profit: decimal.RequireFromString("-0.35")},
	}})

	sent := run(b, out, func() { b.handleCommand("trades") })

	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "✅ $0.53 → +$0.50 🔄L1")
	assert.Contains(t, sent[0], "❌ $0.35 → -$0.35")
	assert.Contains(t, sent[0], "May 1 09:30:00")
}

func TestTelegramBot_TradesError(t *testing.T) {
	b, out, _ := newTestBot(t, core.Snapshot{})
	b.SetTradeHistory(staticHistory{err: errors.New("db closed")})

	sent := run(b, out, func() { b.handleCommand("trades") })
	assert.Equal(t, []string{"❌ Failed to fetch trades"}, sent)
}

func TestTelegramBot_PauseResume(t *testing.T) {
	b, out, _ := newTestBot(t, core.Snapshot{})

	var calls []string
	b.SetControlCallbacks(
		func() { calls = append(calls, "pause") },
		func() { calls = append(calls, "resume") },
	)

	sent := run(b, out, func() {
		b.handleCommand("pause")
		b.handleCommand("resume")
	})

	assert.Equal(t, []string{"pause", "resume"}, calls)
	assert.Equal(t, []string{"⏸️ Trading paused", "▶️ Trading resumed"}, sent)
}

func TestTelegramBot_RiskObserver(t *testing.T) {
	out := &fakeSender{}
	b := newBot(out, 42)

	money, err := risk.NewRecoveryManager(risk.DefaultConfig(decimal.NewFromInt(10)),
		risk.WithObserver(b.RiskObserver()))
	require.NoError(t, err)

	sent := run(b, out, func() {
		money.RecordTrade(decimal.RequireFromString("0.35"), decimal.RequireFromString("-0.35"), false)
		money.RecordTrade(decimal.RequireFromString("0.53"), decimal.RequireFromString("0.50"), true)
	})

	require.Len(t, sent, 2)
	assert.Contains(t, sent[0], "RECOVERY STARTED")
	assert.Contains(t, sent[0], "Lost: *$0.35*")
	assert.Contains(t, sent[0], "Max levels: *5*")
	assert.Contains(t, sent[1], "RECOVERY COMPLETE")
	assert.Contains(t, sent[1], "Balance: *$10.15*")

	for _, m := range out.sent {
		assert.Equal(t, int64(42), m.ChatID)
		assert.Equal(t, tgbotapi.ModeMarkdown, m.ParseMode)
	}
}

func TestTelegramBot_NotifyStartup(t *testing.T) {
	b, out, _ := newTestBot(t, core.Snapshot{Balance: decimal.NewFromInt(25)})
	sent := run(b, out, func() { b.NotifyStartup("R_50", risk.LevelVeryHigh) })

	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "R\\_50")
	assert.Contains(t, sent[0], "VERY\\_HIGH")
	assert.Contains(t, sent[0], "$25.00")
}

func TestTelegramBot_StopIdempotent(t *testing.T) {
	b, _, _ := newTestBot(t, core.Snapshot{})
	b.Start()
	b.Stop()
	b.Stop()
}
