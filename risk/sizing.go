package risk

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// STAKE SIZING - Normal and recovery stakes
// ═══════════════════════════════════════════════════════════════════════════════
//
// NORMAL:     base * min(1 + (wins-2)*0.1, 1.5) once wins >= 3
// RECOVERING: L0 base * m, L>0 base * m^(1 + 0.5L)
//
// Both clamped to [MinStake, MaxStake], MaxStake = max(MinStake, balance * MaxStakePct)
//
// ═══════════════════════════════════════════════════════════════════════════════

// EstimatedPayout is the profit per unit staked assumed for planning
var EstimatedPayout = decimal.NewFromFloat(0.95)

// PreviewBuffer is the share of balance the cumulative recovery exposure may use
var PreviewBuffer = decimal.NewFromFloat(0.80)

var (
	winBonusStep = decimal.NewFromFloat(0.1)
	winBonusCap  = decimal.NewFromFloat(1.5)
)

// StakeCalculation is the recommended next stake
type StakeCalculation struct {
	Stake           decimal.Decimal // Rounded to 2 decimals
	Level           Level
	IsRecovery      bool
	RecoveryLevel   int
	Reason          string
	EstimatedProfit decimal.Decimal
	MaxLoss         decimal.Decimal // Worst case if this trade fails
}

// PreviewLevel is one row of the recovery stake plan
type PreviewLevel struct {
	Level          int // 1-based
	Stake          decimal.Decimal
	CumulativeRisk decimal.Decimal
	CanAfford      bool
}

// CalculateStake returns the stake for the next trade
func (m *RecoveryManager) CalculateStake() StakeCalculation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateLimits()

	if m.state.IsRecovering {
		return m.recoveryStake()
	}
	return m.normalStake()
}

func (m *RecoveryManager) normalStake() StakeCalculation {
	stake := m.cfg.BaseStake
	reason := "Normal trading stake"

	if wins := m.state.ConsecutiveWins; wins >= 3 {
		bonus := decimal.NewFromInt(1).Add(winBonusStep.Mul(decimal.NewFromInt(int64(wins - 2))))
		bonus = decimal.Min(bonus, winBonusCap)
		stake = m.cfg.BaseStake.Mul(bonus)
		reason = fmt.Sprintf("Winning streak bonus (%d wins)", wins)
	}

	stake = m.clamp(stake).Round(2)

	return StakeCalculation{
		Stake:           stake,
		Level:           m.cfg.Level,
		Reason:          reason,
		EstimatedProfit: stake.Mul(EstimatedPayout),
		MaxLoss:         stake,
	}
}

func (m *RecoveryManager) recoveryStake() StakeCalculation {
	level := m.state.Level
	stake := m.clamp(m.rawRecoveryStake(level)).Round(2)

	profit := stake.Mul(EstimatedPayout)
	deficit := m.state.TotalDeficit

	var reason string
	if profit.GreaterThanOrEqual(deficit) {
		reason = fmt.Sprintf("Recovery L%d: Full recovery possible ($%s >= $%s)",
			level, profit.StringFixed(2), deficit.StringFixed(2))
	} else {
		reason = fmt.Sprintf("Recovery L%d: Partial recovery ($%s remaining)",
			level, deficit.Sub(profit).StringFixed(2))
	}

	return StakeCalculation{
		Stake:           stake,
		Level:           m.cfg.Level,
		IsRecovery:      true,
		RecoveryLevel:   level,
		Reason:          reason,
		EstimatedProfit: profit,
		MaxLoss:         stake.Add(deficit),
	}
}

// rawRecoveryStake is the unclamped stake for a recovery level
func (m *RecoveryManager) rawRecoveryStake(level int) decimal.Decimal {
	mult := m.cfg.Level.Multiplier()
	if level == 0 {
		return m.cfg.BaseStake.Mul(decimal.NewFromFloat(mult))
	}
	// decimal.Pow only takes integer exponents
	exponent := 1 + float64(level)*0.5
	return m.cfg.BaseStake.Mul(decimal.NewFromFloat(math.Pow(mult, exponent)))
}

func (m *RecoveryManager) clamp(stake decimal.Decimal) decimal.Decimal {
	return decimal.Max(m.cfg.MinStake, decimal.Min(stake, m.limits.MaxStake))
}

// Preview lists the next n recovery stakes with cumulative exposure
func (m *RecoveryManager) Preview(n int) []PreviewLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateLimits()

	if n <= 0 {
		return []PreviewLevel{}
	}

	preview := make([]PreviewLevel, 0, n)
	budget := m.balance.Mul(PreviewBuffer)
	cumulative := decimal.Zero

	for level := 0; level < n; level++ {
		stake := decimal.Min(m.rawRecoveryStake(level), m.limits.MaxStake)
		cumulative = cumulative.Add(stake)

		preview = append(preview, PreviewLevel{
			Level:          level + 1,
			Stake:          stake.Round(2),
			CumulativeRisk: cumulative.Round(2),
			CanAfford:      cumulative.LessThanOrEqual(budget),
		})
	}
	return preview
}
