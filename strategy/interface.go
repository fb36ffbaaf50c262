package strategy

import (
	"fmt"
)

// ═══════════════════════════════════════════════════════════════════════════════
// STRATEGY INTERFACE - Tick-driven digit strategies
// ═══════════════════════════════════════════════════════════════════════════════
//
// The caller feeds every tick with AddTick and asks for an analysis when it
// is ready to trade. Strategies are not safe for concurrent use; the caller
// serializes access per instance.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Strategy is the interface digit strategies implement
type Strategy interface {
	// Name returns the strategy identifier
	Name() string

	// AddTick ingests a price and returns the extracted digit (false if rejected)
	AddTick(price float64) (int, bool)

	// Analyze returns the current analysis (false while warming up)
	Analyze() (*AnalysisResult, bool)

	// Reset clears all accumulated state
	Reset()
}

// Signal is a single contract recommendation
type Signal struct {
	Contract   ContractType   // OVER, UNDER, MATCH, DIFFER, EVEN, ODD
	Prediction int            // Barrier digit, or parity target (0 even / 1 odd)
	Confidence float64        // 0-1 confidence score
	Payout     float64        // Estimated payout multiplier
	Reason     string         // Human-readable reason
	Type       PredictionType // Prediction category
	Strategy   string         // Source strategy name
}

// Score is the ranking key used for best-signal selection
func (s Signal) Score() float64 {
	return s.Confidence * (1 + s.Payout/10)
}

// Strong reports whether the signal clears HighConfidence
func (s Signal) Strong() bool {
	return s.Confidence >= HighConfidence
}

// Wins settles the signal against an exit digit
func (s Signal) Wins(digit int) bool {
	return s.Contract.Wins(s.Prediction, digit)
}

func (s Signal) String() string {
	return fmt.Sprintf("%s %d (conf: %.1f%%)", s.Contract, s.Prediction, s.Confidence*100)
}

// ═══════════════════════════════════════════════════════════════════════════════
// SIGNAL BUILDER - Helper for creating signals
// ═══════════════════════════════════════════════════════════════════════════════

// SignalBuilder helps construct signals; payout and category come from the contract
type SignalBuilder struct {
	signal Signal
}

// NewSignal creates a new signal builder for the contract
func NewSignal(contract ContractType) *SignalBuilder {
	return &SignalBuilder{
		signal: Signal{
			Contract: contract,
			Payout:   contract.Payout(),
			Type:     contract.PredictionType(),
		},
	}
}

// Prediction sets the barrier digit or parity target
func (sb *SignalBuilder) Prediction(digit int) *SignalBuilder {
	sb.signal.Prediction = digit
	return sb
}

// Confidence sets the confidence level (0-1)
func (sb *SignalBuilder) Confidence(conf float64) *SignalBuilder {
	sb.signal.Confidence = conf
	return sb
}

// Reason sets the signal reason
func (sb *SignalBuilder) Reason(format string, args ...interface{}) *SignalBuilder {
	sb.signal.Reason = fmt.Sprintf(format, args...)
	return sb
}

// Strategy sets the source strategy name
func (sb *SignalBuilder) Strategy(name string) *SignalBuilder {
	sb.signal.Strategy = name
	return sb
}

// Build returns the completed signal with confidence clamped to [0,1]
func (sb *SignalBuilder) Build() Signal {
	s := sb.signal
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
	return s
}

// ═══════════════════════════════════════════════════════════════════════════════
// ANALYSIS RESULT
// ═══════════════════════════════════════════════════════════════════════════════

// AnalysisResult is a point-in-time view of the digit statistics and signals
type AnalysisResult struct {
	Signals       []Signal
	Best          *Signal // nil when no signal clears MinConfidence
	Frequencies   [10]float64
	EvenRatio     float64
	OddRatio      float64
	Pattern       string
	HotDigits     []int
	ColdDigits    []int
	TickCount     int
	CurrentStreak int
	StreakDigit   int
}

// Stats is the strategy statistics snapshot
type Stats struct {
	TickCount     int
	Frequencies   [10]float64
	EvenRatio     float64
	OddRatio      float64
	HotDigits     []int
	ColdDigits    []int
	CurrentStreak int
	StreakDigit   int
	LastDigit     int
	Pattern       string
	Ready         bool
}
