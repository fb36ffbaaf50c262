package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SHARED TYPES - Avoid import cycles
// ═══════════════════════════════════════════════════════════════════════════════

// TradeRecord is an immutable entry in the money manager's trade history
type TradeRecord struct {
	ID            string
	Timestamp     time.Time
	Stake         decimal.Decimal
	Profit        decimal.Decimal // Negative on a loss
	IsWin         bool
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	RecoveryLevel int  // Recovery level after the trade was applied
	IsRecovery    bool // Still recovering after the trade
}

// Contract describes a paper contract opened on a signal
type Contract struct {
	ID         string
	SessionID  string
	Symbol     string
	Type       string // DIGITOVER, DIGITDIFF, ...
	Prediction int
	Stake      decimal.Decimal
	Payout     float64
	Confidence float64
	Reason     string
	OpenedAt   time.Time
}

// Settlement is a paper contract resolved against its exit tick
type Settlement struct {
	Contract  Contract
	ExitPrice float64
	ExitDigit int
	Won       bool
	Profit    decimal.Decimal
	Trade     TradeRecord
	SettledAt time.Time
}
