package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/digitbot/feeds"
	"github.com/web3guy0/digitbot/risk"
	"github.com/web3guy0/digitbot/strategy"
	"github.com/web3guy0/digitbot/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ENGINE - Paper trading orchestrator
// ═══════════════════════════════════════════════════════════════════════════════
//
// Flow per tick:
//   Tick → Strategy.AddTick → settle open contract → Stake manager → Sink
//        → Strategy.Analyze → CalculateStake → open contract for the next tick
//
// One contract at a time, settled on the exit digit of the following tick.
// Trading halts on the money manager's stop advisory.
//
// ═══════════════════════════════════════════════════════════════════════════════

// ErrHalted is returned by OnTick after the engine has stopped trading
var ErrHalted = errors.New("engine halted")

// StakeManager interface for the money manager to keep core decoupled from risk internals
type StakeManager interface {
	CalculateStake() risk.StakeCalculation
	RecordTrade(stake, profit decimal.Decimal, isWin bool) risk.TradeResult
	ShouldTakeProfit() bool
	Balance() decimal.Decimal
}

// SettlementSink persists contracts and settlements (journal)
type SettlementSink interface {
	SaveContract(c types.Contract) error
	SaveSettlement(s types.Settlement) error
}

// Options are the engine's optional settings
type Options struct {
	Symbol       string
	StopOnProfit bool
	Sink         SettlementSink
	Now          func() time.Time
}

type Engine struct {
	mu sync.Mutex

	// Components
	strategy strategy.Strategy
	money    StakeManager
	sink     SettlementSink

	// Settings
	sessionID    string
	symbol       string
	stopOnProfit bool
	now          func() time.Time

	// State
	open       *types.Contract
	openSignal strategy.Signal
	paused     bool
	halted     bool
	haltReason string

	// Stats
	ticks       int
	rejected    int
	totalTrades int
	winCount    int
	lossCount   int
	totalPnL    decimal.Decimal
}

// NewEngine creates a new paper trading engine
func NewEngine(strat strategy.Strategy, money StakeManager, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		strategy:     strat,
		money:        money,
		sink:         opts.Sink,
		sessionID:    uuid.NewString(),
		symbol:       opts.Symbol,
		stopOnProfit: opts.StopOnProfit,
		now:          now,
		totalPnL:     decimal.Zero,
	}
}

// SessionID identifies this engine run in the journal
func (e *Engine) SessionID() string {
	return e.sessionID
}

// OnTick processes a single tick. It returns the settlement when the tick
// resolved an open contract. Sink failures are returned after the state
// change has been applied.
func (e *Engine) OnTick(tick feeds.Tick) (*types.Settlement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.halted {
		return nil, ErrHalted
	}

	digit, ok := e.strategy.AddTick(tick.Price)
	if !ok {
		e.rejected++
		log.Debug().Float64("price", tick.Price).Str("symbol", tick.Symbol).Msg("Tick rejected")
		return nil, nil
	}
	e.ticks++

	var (
		settlement *types.Settlement
		errs       []error
	)

	if e.open != nil {
		settlement = e.settle(tick, digit)
		if e.sink != nil {
			if err := e.sink.SaveSettlement(*settlement); err != nil {
				errs = append(errs, fmt.Errorf("save settlement: %w", err))
			}
		}
	}

	if !e.halted && !e.paused && e.open == nil {
		if err := e.tryOpen(tick); err != nil {
			errs = append(errs, err)
		}
	}

	return settlement, errors.Join(errs...)
}

// settle resolves the open contract against the exit digit
func (e *Engine) settle(tick feeds.Tick, digit int) *types.Settlement {
	contract := *e.open
	signal := e.openSignal
	e.open = nil

	won := signal.Wins(digit)
	profit := contract.Stake.Neg()
	if won {
		profit = contract.Stake.Mul(decimal.NewFromFloat(contract.Payout)).Round(2)
	}

	result := e.money.RecordTrade(contract.Stake, profit, won)

	e.totalTrades++
	e.totalPnL = e.totalPnL.Add(profit)
	if won {
		e.winCount++
	} else {
		e.lossCount++
	}

	history := types.TradeRecord{
		ID:            result.TradeID,
		Timestamp:     e.now(),
		Stake:         contract.Stake,
		Profit:        profit,
		IsWin:         won,
		BalanceBefore: result.Balance.Sub(profit),
		BalanceAfter:  result.Balance,
		RecoveryLevel: result.RecoveryLevel,
		IsRecovery:    result.InRecovery,
	}

	icon := "❌"
	if won {
		icon = "✅"
	}
	log.Info().
		Str("contract", contract.Type).
		Int("prediction", contract.Prediction).
		Int("exit_digit", digit).
		Str("stake", contract.Stake.StringFixed(2)).
		Str("profit", profit.StringFixed(2)).
		Str("balance", result.Balance.StringFixed(2)).
		Bool("recovery", result.InRecovery).
		Msg(icon + " Contract settled")

	// always checked so the profit target event fires without STOP_ON_PROFIT
	takeProfit := e.money.ShouldTakeProfit()
	if result.ShouldStop {
		e.halt(string(result.StopReason))
	} else if takeProfit && e.stopOnProfit {
		e.halt("profit_target")
	}

	return &types.Settlement{
		Contract:  contract,
		ExitPrice: tick.Price,
		ExitDigit: digit,
		Won:       won,
		Profit:    profit,
		Trade:     history,
		SettledAt: history.Timestamp,
	}
}

// tryOpen opens a contract on the current best signal, if any
func (e *Engine) tryOpen(tick feeds.Tick) error {
	result, ok := e.strategy.Analyze()
	if !ok || result.Best == nil {
		return nil
	}
	signal := *result.Best

	calc := e.money.CalculateStake()
	balance := e.money.Balance()
	if calc.Stake.GreaterThan(balance) {
		e.halt("insufficient_balance")
		return nil
	}

	symbol := tick.Symbol
	if symbol == "" {
		symbol = e.symbol
	}

	contract := &types.Contract{
		ID:         uuid.NewString(),
		SessionID:  e.sessionID,
		Symbol:     symbol,
		Type:       signal.Contract.String(),
		Prediction: signal.Prediction,
		Stake:      calc.Stake,
		Payout:     signal.Payout,
		Confidence: signal.Confidence,
		Reason:     signal.Reason,
		OpenedAt:   e.now(),
	}
	e.open = contract
	e.openSignal = signal

	log.Info().
		Str("symbol", symbol).
		Str("contract", contract.Type).
		Int("prediction", contract.Prediction).
		Float64("confidence", signal.Confidence).
		Str("stake", calc.Stake.StringFixed(2)).
		Str("stake_reason", calc.Reason).
		Str("reason", signal.Reason).
		Msg("🎯 SIGNAL TAKEN")

	if e.sink != nil {
		if err := e.sink.SaveContract(*contract); err != nil {
			return fmt.Errorf("save contract: %w", err)
		}
	}
	return nil
}

func (e *Engine) halt(reason string) {
	if e.halted {
		return
	}
	e.halted = true
	e.haltReason = reason
	log.Warn().
		Str("reason", reason).
		Str("balance", e.money.Balance().StringFixed(2)).
		Int("trades", e.totalTrades).
		Msg("⛔ Trading halted")
}

// Stop halts trading. An open contract is abandoned unsettled.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.halt("stopped")
}

// Pause stops opening new contracts. Ticks are still analyzed and an open
// contract still settles.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.paused {
		e.paused = true
		log.Info().Msg("⏸️ Trading paused")
	}
}

// Resume re-enables opening contracts after Pause
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		e.paused = false
		log.Info().Msg("▶️ Trading resumed")
	}
}

// Halted reports whether the engine stopped trading
func (e *Engine) Halted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.halted
}

// Snapshot is a point-in-time view of the engine
type Snapshot struct {
	SessionID  string
	Symbol     string
	Ticks      int
	Rejected   int
	Trades     int
	Wins       int
	Losses     int
	PnL        decimal.Decimal
	Balance    decimal.Decimal
	Open       *types.Contract
	Paused     bool
	Halted     bool
	HaltReason string
}

// Snapshot returns current engine statistics
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	var open *types.Contract
	if e.open != nil {
		c := *e.open
		open = &c
	}

	return Snapshot{
		SessionID:  e.sessionID,
		Symbol:     e.symbol,
		Ticks:      e.ticks,
		Rejected:   e.rejected,
		Trades:     e.totalTrades,
		Wins:       e.winCount,
		Losses:     e.lossCount,
		PnL:        e.totalPnL,
		Balance:    e.money.Balance(),
		Open:       open,
		Paused:     e.paused,
		Halted:     e.halted,
		HaltReason: e.haltReason,
	}
}
