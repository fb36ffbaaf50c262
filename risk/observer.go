package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind identifies a money manager event
type EventKind string

const (
	EventCreated           EventKind = "created"
	EventTradeRecorded     EventKind = "trade_recorded"
	EventRecoveryStarted   EventKind = "recovery_started"
	EventRecoveryEscalated EventKind = "recovery_escalated"
	EventRecoveryPartial   EventKind = "recovery_partial"
	EventRecoveryCompleted EventKind = "recovery_completed"
	EventMaxLevelReached   EventKind = "max_level_reached"
	EventStopAdvised       EventKind = "stop_advised"
	EventProfitTarget      EventKind = "profit_target"
	EventLevelChanged      EventKind = "level_changed"
	EventBalanceUpdated    EventKind = "balance_updated"
	EventSessionReset      EventKind = "session_reset"
)

// Event is delivered to an Observer after the state change it describes.
// Only the fields relevant to the kind are set.
type Event struct {
	Kind          EventKind
	Balance       decimal.Decimal
	Amount        decimal.Decimal // stake lost, profit recovered, or loss/profit vs start
	Stake         decimal.Decimal // trade_recorded
	Deficit       decimal.Decimal
	RecoveryLevel int
	MaxLevels     int
	Level         Level
	PreviousLevel Level
	StopReason    StopReason
	Trade         *TradeResult
}

// Observer receives money manager events synchronously. It must not call
// back into the manager.
type Observer func(Event)

// Option configures a RecoveryManager
type Option func(*RecoveryManager)

// WithObserver attaches an observer; multiple observers are called in order
func WithObserver(obs Observer) Option {
	return func(m *RecoveryManager) {
		if obs == nil {
			return
		}
		prev := m.observer
		if prev == nil {
			m.observer = obs
			return
		}
		m.observer = func(e Event) {
			prev(e)
			obs(e)
		}
	}
}

// WithClock overrides the clock used for trade record timestamps
func WithClock(now func() time.Time) Option {
	return func(m *RecoveryManager) {
		if now != nil {
			m.now = now
		}
	}
}

func (m *RecoveryManager) emit(e Event) {
	if m.observer == nil {
		return
	}
	if e.Balance.IsZero() {
		e.Balance = m.balance
	}
	if e.Level == 0 {
		e.Level = m.cfg.Level
	}
	m.observer(e)
}
