package risk

import (
	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// CIRCUIT BREAKER - Capital protection advisories
// ═══════════════════════════════════════════════════════════════════════════════

// StopReason explains why trading should halt
type StopReason string

const (
	StopNone          StopReason = ""
	StopDailyLoss     StopReason = "daily_loss_limit"
	StopMaxRecovery   StopReason = "max_recovery_level"
	StopBalanceTooLow StopReason = "balance_too_low"
)

var minBalanceStakes = decimal.NewFromInt(3)

// ShouldStopTrading reports whether any capital protection limit is hit.
// Checked in order: daily loss, recovery depth, minimum balance.
func (m *RecoveryManager) ShouldStopTrading() (bool, StopReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shouldStop()
}

func (m *RecoveryManager) shouldStop() (bool, StopReason) {
	dailyLoss := m.cfg.StartingBalance.Sub(m.balance)
	if dailyLoss.GreaterThanOrEqual(m.limits.DailyLossAmount) {
		return true, StopDailyLoss
	}

	if m.state.IsRecovering && m.state.Level >= m.cfg.Level.MaxRecoveryLevels() {
		return true, StopMaxRecovery
	}

	if m.balance.LessThan(m.cfg.MinStake.Mul(minBalanceStakes)) {
		return true, StopBalanceTooLow
	}

	return false, StopNone
}

// ShouldTakeProfit reports whether the session profit target is reached.
// EventProfitTarget is emitted once per session.
func (m *RecoveryManager) ShouldTakeProfit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	profit := m.balance.Sub(m.cfg.StartingBalance)
	if profit.LessThan(m.limits.ProfitTargetAmount) {
		return false
	}
	if m.profitTargetHit {
		return true
	}
	m.profitTargetHit = true
	m.emit(Event{
		Kind:   EventProfitTarget,
		Amount: profit,
	})
	return true
}
