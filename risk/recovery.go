package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/digitbot/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// HYBRID MONEY MANAGER - Progressive stakes + deficit recovery
// ═══════════════════════════════════════════════════════════════════════════════
//
// Two states:
//   NORMAL     - base stake, small bonus on win streaks
//   RECOVERING - escalating stake until the accumulated deficit is won back
//
// Recovery stake growth is sub-linear in the exponent:
//   L0: base * m        L1: base * m^1.5        L2: base * m^2 ...
//
// Hard limits (advisory, the caller decides whether to halt):
//   - daily loss >= DailyLossLimit * starting balance
//   - recovery level reached the risk level's max
//   - balance < 3 * MinStake
//
// ═══════════════════════════════════════════════════════════════════════════════

// RecoveryState tracks the loss recovery state machine
type RecoveryState struct {
	IsRecovering      bool
	Level             int
	TotalDeficit      decimal.Decimal
	TargetRecovery    decimal.Decimal // Stake lost when recovery started
	RecoveryProgress  decimal.Decimal // Profit of the last recovering win
	ConsecutiveLosses int
	ConsecutiveWins   int
}

// SessionMetrics are the running session statistics
type SessionMetrics struct {
	StartingBalance      decimal.Decimal
	CurrentBalance       decimal.Decimal
	PeakBalance          decimal.Decimal
	LowestBalance        decimal.Decimal
	TotalTrades          int
	Wins                 int
	Losses               int
	TotalProfit          decimal.Decimal
	MaxDrawdown          decimal.Decimal
	RecoveryAttempts     int
	SuccessfulRecoveries int
	FailedRecoveries     int
}

// WinRate returns wins/trades as a percentage
func (m SessionMetrics) WinRate() float64 {
	if m.TotalTrades == 0 {
		return 0
	}
	return float64(m.Wins) / float64(m.TotalTrades) * 100
}

// Limits are derived from the config and current balance
type Limits struct {
	MaxStake           decimal.Decimal
	MaxRecoveryLevels  int
	Multiplier         float64
	DailyLossAmount    decimal.Decimal
	ProfitTargetAmount decimal.Decimal
}

// TradeResult summarizes the manager state after RecordTrade
type TradeResult struct {
	TradeID       string
	Balance       decimal.Decimal
	Profit        decimal.Decimal
	IsWin         bool
	InRecovery    bool
	RecoveryLevel int
	Deficit       decimal.Decimal
	ShouldStop    bool
	StopReason    StopReason
}

// RecoveryManager is the hybrid progressive/deficit money manager.
// Methods are safe for concurrent use; observers run under the lock.
type RecoveryManager struct {
	mu sync.Mutex

	cfg     Config
	balance decimal.Decimal
	limits  Limits

	state   RecoveryState
	metrics SessionMetrics

	history []types.TradeRecord
	stakes  []decimal.Decimal

	profitTargetHit bool

	observer Observer
	now      func() time.Time
}

// NewRecoveryManager creates a manager. BaseStake is raised to MinStake if below.
func NewRecoveryManager(cfg Config, opts ...Option) (*RecoveryManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BaseStake = decimal.Max(cfg.BaseStake, cfg.MinStake)

	m := &RecoveryManager{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.startSession(cfg.StartingBalance)

	m.emit(Event{
		Kind:      EventCreated,
		Amount:    cfg.BaseStake,
		MaxLevels: m.limits.MaxRecoveryLevels,
	})
	return m, nil
}

func (m *RecoveryManager) startSession(balance decimal.Decimal) {
	m.cfg.StartingBalance = balance
	m.balance = balance
	m.state = RecoveryState{}
	m.metrics = SessionMetrics{
		StartingBalance: balance,
		CurrentBalance:  balance,
		PeakBalance:     balance,
		LowestBalance:   balance,
	}
	m.history = nil
	m.stakes = nil
	m.profitTargetHit = false
	m.updateLimits()
}

func (m *RecoveryManager) updateLimits() {
	m.limits = Limits{
		MaxStake:           decimal.Max(m.cfg.MinStake, m.balance.Mul(m.cfg.MaxStakePct)),
		MaxRecoveryLevels:  m.cfg.Level.MaxRecoveryLevels(),
		Multiplier:         m.cfg.Level.Multiplier(),
		DailyLossAmount:    m.cfg.StartingBalance.Mul(m.cfg.DailyLossLimit),
		ProfitTargetAmount: m.cfg.StartingBalance.Mul(m.cfg.ProfitTarget),
	}
}

// RecordTrade applies a settled trade. profit is negative on a loss.
func (m *RecoveryManager) RecordTrade(stake, profit decimal.Decimal, isWin bool) TradeResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.balance
	m.balance = m.balance.Add(profit)

	m.metrics.CurrentBalance = m.balance
	m.metrics.TotalTrades++
	m.metrics.TotalProfit = m.metrics.TotalProfit.Add(profit)
	if isWin {
		m.metrics.Wins++
	} else {
		m.metrics.Losses++
	}

	if m.balance.GreaterThan(m.metrics.PeakBalance) {
		m.metrics.PeakBalance = m.balance
	}
	if m.balance.LessThan(m.metrics.LowestBalance) {
		m.metrics.LowestBalance = m.balance
	}
	if dd := m.metrics.PeakBalance.Sub(m.balance); dd.GreaterThan(m.metrics.MaxDrawdown) {
		m.metrics.MaxDrawdown = dd
	}

	if isWin {
		m.handleWin(profit)
	} else {
		m.handleLoss(stake)
	}

	record := types.TradeRecord{
		ID:            uuid.NewString(),
		Timestamp:     m.now(),
		Stake:         stake,
		Profit:        profit,
		IsWin:         isWin,
		BalanceBefore: before,
		BalanceAfter:  m.balance,
		RecoveryLevel: m.state.Level,
		IsRecovery:    m.state.IsRecovering,
	}
	m.history = append(m.history, record)
	m.stakes = append(m.stakes, stake)

	m.updateLimits()

	stop, reason := m.shouldStop()
	result := TradeResult{
		TradeID:       record.ID,
		Balance:       m.balance,
		Profit:        profit,
		IsWin:         isWin,
		InRecovery:    m.state.IsRecovering,
		RecoveryLevel: m.state.Level,
		Deficit:       m.state.TotalDeficit,
		ShouldStop:    stop,
		StopReason:    reason,
	}

	m.emit(Event{
		Kind:          EventTradeRecorded,
		Amount:        profit,
		Stake:         stake,
		Deficit:       m.state.TotalDeficit,
		RecoveryLevel: m.state.Level,
		Trade:         &result,
	})
	if stop {
		m.emit(Event{
			Kind:          EventStopAdvised,
			Amount:        m.cfg.StartingBalance.Sub(m.balance),
			Deficit:       m.state.TotalDeficit,
			RecoveryLevel: m.state.Level,
			MaxLevels:     m.limits.MaxRecoveryLevels,
			StopReason:    reason,
			Trade:         &result,
		})
	}
	return result
}

func (m *RecoveryManager) handleWin(profit decimal.Decimal) {
	m.state.ConsecutiveWins++
	m.state.ConsecutiveLosses = 0

	if !m.state.IsRecovering {
		return
	}

	owed := m.state.TotalDeficit
	m.state.TotalDeficit = owed.Sub(profit)
	m.state.RecoveryProgress = profit

	if m.state.TotalDeficit.LessThanOrEqual(decimal.Zero) {
		level := m.state.Level
		m.metrics.SuccessfulRecoveries++
		m.resetRecovery()
		m.emit(Event{
			Kind:          EventRecoveryCompleted,
			Amount:        owed,
			RecoveryLevel: level,
		})
		return
	}

	m.emit(Event{
		Kind:          EventRecoveryPartial,
		Amount:        profit,
		Deficit:       m.state.TotalDeficit,
		RecoveryLevel: m.state.Level,
	})
}

func (m *RecoveryManager) handleLoss(stake decimal.Decimal) {
	m.state.ConsecutiveLosses++
	m.state.ConsecutiveWins = 0

	if !m.state.IsRecovering {
		m.state.IsRecovering = true
		m.state.Level = 0
		m.state.TotalDeficit = stake
		m.state.TargetRecovery = stake
		m.metrics.RecoveryAttempts++
		m.emit(Event{
			Kind:    EventRecoveryStarted,
			Amount:  stake,
			Deficit: stake,
		})
		return
	}

	m.state.Level++
	m.state.TotalDeficit = m.state.TotalDeficit.Add(stake)

	maxLevels := m.cfg.Level.MaxRecoveryLevels()
	if m.state.Level >= maxLevels {
		m.metrics.FailedRecoveries++
		m.emit(Event{
			Kind:          EventMaxLevelReached,
			Amount:        stake,
			Deficit:       m.state.TotalDeficit,
			RecoveryLevel: m.state.Level,
			MaxLevels:     maxLevels,
		})
		return
	}

	m.emit(Event{
		Kind:          EventRecoveryEscalated,
		Amount:        stake,
		Deficit:       m.state.TotalDeficit,
		RecoveryLevel: m.state.Level,
		MaxLevels:     maxLevels,
	})
}

// resetRecovery returns to NORMAL with every counter at its default,
// including the win streak
func (m *RecoveryManager) resetRecovery() {
	m.state = RecoveryState{}
}

// UpdateBalance resynchronizes with an external balance. Recovery state is untouched.
func (m *RecoveryManager) UpdateBalance(balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = balance
	m.metrics.CurrentBalance = balance
	m.updateLimits()
	m.emit(Event{Kind: EventBalanceUpdated, Balance: balance})
}

// SetLevel changes the risk level. Recovery state is untouched.
func (m *RecoveryManager) SetLevel(level Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !level.Valid() {
		return fmt.Errorf("%w: unknown risk level %d", ErrInvalidConfig, int(level))
	}
	previous := m.cfg.Level
	m.cfg.Level = level
	m.updateLimits()
	m.emit(Event{
		Kind:          EventLevelChanged,
		Level:         level,
		PreviousLevel: previous,
		MaxLevels:     m.limits.MaxRecoveryLevels,
	})
	return nil
}

// ResetSession starts a new session with the given balance, or the current
// balance when nil. All state and history are cleared.
func (m *RecoveryManager) ResetSession(balance *decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.balance
	if balance != nil {
		b = *balance
	}
	m.startSession(b)
	m.emit(Event{Kind: EventSessionReset, Balance: b})
}

// Balance returns the current balance
func (m *RecoveryManager) Balance() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance
}

// State returns a copy of the recovery state
func (m *RecoveryManager) State() RecoveryState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Metrics returns a copy of the session metrics
func (m *RecoveryManager) Metrics() SessionMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// Config returns the active configuration
func (m *RecoveryManager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Limits returns the currently derived limits
func (m *RecoveryManager) Limits() Limits {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limits
}

// History returns a copy of the trade history, oldest first
func (m *RecoveryManager) History() []types.TradeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.TradeRecord, len(m.history))
	copy(out, m.history)
	return out
}

// StakeHistory returns a copy of the stakes used, oldest first
func (m *RecoveryManager) StakeHistory() []decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]decimal.Decimal, len(m.stakes))
	copy(out, m.stakes)
	return out
}
