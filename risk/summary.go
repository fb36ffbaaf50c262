package risk

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Summary returns a human-readable session summary for display
func (m *RecoveryManager) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	profit := m.balance.Sub(m.cfg.StartingBalance)
	profitPct := 0.0
	if m.cfg.StartingBalance.IsPositive() {
		profitPct = profit.Div(m.cfg.StartingBalance).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	lines := []string{
		fmt.Sprintf("💰 Balance: $%s (%+.1f%%)", m.balance.StringFixed(2), profitPct),
		fmt.Sprintf("📊 Trades: %d (W: %d / L: %d)", m.metrics.TotalTrades, m.metrics.Wins, m.metrics.Losses),
		fmt.Sprintf("📈 Win Rate: %.1f%%", m.metrics.WinRate()),
		fmt.Sprintf("⚡ Risk Level: %s", m.cfg.Level),
	}

	if m.state.IsRecovering {
		lines = append(lines, fmt.Sprintf("🔄 Recovery L%d: $%s to recover",
			m.state.Level, m.state.TotalDeficit.StringFixed(2)))
	}

	if m.metrics.MaxDrawdown.IsPositive() {
		lines = append(lines, fmt.Sprintf("📉 Max Drawdown: $%s", m.metrics.MaxDrawdown.StringFixed(2)))
	}

	return strings.Join(lines, "\n")
}
